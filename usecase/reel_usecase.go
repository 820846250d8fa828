package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/clients/instagram"
	"reelshare/infrastructure/logger"
)

type IReelUsecase interface {
	Submit(ctx context.Context, accountID, link string) (*dto.SubmitReelResponse, error)
	BulkSubmit(ctx context.Context, accountID string, entries []string) (*dto.BulkSubmitResponse, error)
	List(ctx context.Context, q dto.ReelListQuery) (*dto.ReelListResponse, error)
	ListMine(ctx context.Context, accountID string, q dto.ReelListQuery) (*dto.MyReelsResponse, error)
	Get(ctx context.Context, id string, role model.Role) (*model.Reel, error)
	Stats(ctx context.Context, accountID string, role model.Role) (interface{}, error)
	Retry(ctx context.Context, accountID, id string) (*model.Reel, error)
	Delete(ctx context.Context, accountID, id string) error
	ResolveReel(ctx context.Context, reel *model.Reel)
	ResolveLink(ctx context.Context, accountID, link string) (*model.ReelPayload, error)
	SweepStale(ctx context.Context) (int, error)
}

type ReelOptions struct {
	BulkLimit int
	PageSize  int64
	// PerSubmitter scopes duplicate detection to one account instead of the whole deployment.
	PerSubmitter bool
	StaleAfter   time.Duration
	SweepBatch   int64
}

// ReelDeps groups the optional collaborators; nil fields are skipped.
type ReelDeps struct {
	Cache     repository.IResolutionCache
	Limiter   repository.ISubmissionLimiter
	Publisher repository.IReelEventPublisher
	Status    repository.IReelStatusBroadcaster
	Notifier  INotificationUsecase
}

type reelUsecase struct {
	reelRepo    repository.IReel
	accountRepo repository.IAccount
	resolver    IResolver
	queue       repository.ITaskQueue
	deps        ReelDeps
	opts        ReelOptions

	// ids of reels queued or resolving in this process
	inflight sync.Map
}

func NewReelUsecase(reelRepo repository.IReel, accountRepo repository.IAccount, resolver IResolver, queue repository.ITaskQueue, deps ReelDeps, opts ReelOptions) IReelUsecase {
	if opts.BulkLimit <= 0 {
		opts.BulkLimit = 50
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = 50
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 10 * time.Minute
	}
	return &reelUsecase{
		reelRepo:    reelRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		queue:       queue,
		deps:        deps,
		opts:        opts,
	}
}

func (u *reelUsecase) Submit(ctx context.Context, accountID, link string) (*dto.SubmitReelResponse, error) {
	if err := u.allow(ctx, accountID); err != nil {
		return nil, err
	}
	link = strings.TrimSpace(link)
	shortcode, ok := instagram.ExtractShortcode(link)
	if !ok {
		return nil, ErrInvalidURL
	}
	if link == shortcode || strings.HasPrefix(link, "/") {
		link = instagram.CanonicalURL(shortcode)
	}

	if existing, err := u.findDuplicate(ctx, shortcode, accountID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicate
	}

	reel, err := u.create(ctx, accountID, link, shortcode)
	if err != nil {
		return nil, err
	}
	u.enqueue(reel)
	return &dto.SubmitReelResponse{ID: reel.ID.Hex(), Identifier: reel.Shortcode, Status: reel.Status}, nil
}

func (u *reelUsecase) BulkSubmit(ctx context.Context, accountID string, entries []string) (*dto.BulkSubmitResponse, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyBatch
	}
	// the limit counts well-formed identifiers; malformed entries are reported per item
	valid := 0
	for _, entry := range entries {
		if _, ok := instagram.ExtractShortcode(strings.TrimSpace(entry)); ok {
			valid++
		}
	}
	if valid > u.opts.BulkLimit || len(entries) > 2*u.opts.BulkLimit {
		return nil, fmt.Errorf("%w: maximum %d reels allowed at once", ErrBulkLimit, u.opts.BulkLimit)
	}
	if err := u.allow(ctx, accountID); err != nil {
		return nil, err
	}

	res := &dto.BulkSubmitResponse{Total: len(entries), Errors: []string{}, Items: make([]dto.BulkItemResult, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	reject := func(item dto.BulkItemResult, msg string) {
		item.Message = msg
		res.Items = append(res.Items, item)
		res.Errors = append(res.Errors, msg)
		res.Rejected++
	}

	for _, entry := range entries {
		input := strings.TrimSpace(entry)
		item := dto.BulkItemResult{Input: entry}
		shortcode, ok := instagram.ExtractShortcode(input)
		if !ok {
			reject(item, "Invalid shortcode format: "+entry)
			continue
		}
		item.Identifier = shortcode
		if seen[shortcode] {
			reject(item, "Duplicate in request: "+shortcode)
			continue
		}
		seen[shortcode] = true

		existing, err := u.findDuplicate(ctx, shortcode, accountID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			reject(item, "Already imported: "+shortcode)
			continue
		}

		link := input
		if link == shortcode || strings.HasPrefix(link, "/") {
			link = instagram.CanonicalURL(shortcode)
		}
		reel, err := u.create(ctx, accountID, link, shortcode)
		if errors.Is(err, ErrDuplicate) {
			reject(item, "Already imported: "+shortcode)
			continue
		}
		if err != nil {
			reject(item, "Failed to import: "+shortcode)
			logger.GetLogger().WithField("shortcode", shortcode).WithField("error", err).Error("Bulk import insert failed")
			continue
		}
		u.enqueue(reel)

		item.ID = reel.ID.Hex()
		item.Status = reel.Status
		item.Accepted = true
		res.Items = append(res.Items, item)
		res.Accepted++
	}
	return res, nil
}

func (u *reelUsecase) List(ctx context.Context, q dto.ReelListQuery) (*dto.ReelListResponse, error) {
	q = u.page(q)
	reels, total, err := u.reelRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	u.attachSubmitters(ctx, reels)
	return &dto.ReelListResponse{Count: len(reels), Total: total, Reels: reels}, nil
}

func (u *reelUsecase) ListMine(ctx context.Context, accountID string, q dto.ReelListQuery) (*dto.MyReelsResponse, error) {
	q = u.page(q)
	q.SubmittedBy = accountID
	reels, total, err := u.reelRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	stats, err := u.reelRepo.CountByStatus(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.MyReelsResponse{
		ReelListResponse: dto.ReelListResponse{Count: len(reels), Total: total, Reels: reels},
		Stats:            stats,
	}, nil
}

func (u *reelUsecase) Get(ctx context.Context, id string, role model.Role) (*model.Reel, error) {
	var (
		reel *model.Reel
		err  error
	)
	if role == model.RoleViewer {
		reel, err = u.reelRepo.IncrementViews(ctx, id)
	} else {
		reel, err = u.reelRepo.GetByID(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.attachSubmitters(ctx, []*model.Reel{reel})
	return reel, nil
}

func (u *reelUsecase) Stats(ctx context.Context, accountID string, role model.Role) (interface{}, error) {
	if role == model.RoleSender {
		counts, err := u.reelRepo.CountByStatus(ctx, accountID)
		if err != nil {
			return nil, err
		}
		views, err := u.reelRepo.SumViews(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return dto.SenderStatistics{
			TotalShared:      counts.Total,
			SuccessfulShares: counts.Success,
			PendingShares:    counts.Pending,
			FailedShares:     counts.Failed,
			TotalViews:       views,
		}, nil
	}

	counts, err := u.reelRepo.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	senders, err := u.reelRepo.CountSubmitters(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := u.reelRepo.CountSince(ctx, model.ReelStatusSuccess, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	return dto.ViewerStatistics{TotalReelsAvailable: counts.Success, TotalSenders: senders, RecentReels: recent}, nil
}

func (u *reelUsecase) Retry(ctx context.Context, accountID, id string) (*model.Reel, error) {
	reel, err := u.owned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if reel.Status != model.ReelStatusFailed {
		return nil, ErrNotRetryable
	}
	reel, err = u.reelRepo.ResetForRetry(ctx, id)
	if errors.Is(err, repository.ErrStaleReel) {
		return nil, ErrNotRetryable
	}
	if err != nil {
		return nil, err
	}
	u.enqueue(reel)
	return reel, nil
}

func (u *reelUsecase) Delete(ctx context.Context, accountID, id string) error {
	deleted, err := u.reelRepo.Delete(ctx, id, accountID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ResolveReel runs the resolver for one pending reel and records the terminal state.
// It never panics and never returns an error; failures end up on the record.
func (u *reelUsecase) ResolveReel(ctx context.Context, reel *model.Reel) {
	lg := logger.GetLogger().WithField("reelId", reel.ID.Hex()).WithField("shortcode", reel.Shortcode)
	id := reel.ID.Hex()

	var (
		payload *model.ReelPayload
		failure *model.FailureReason
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				lg.WithField("panic", r).Error("Resolution panicked")
				payload = nil
				failure = &model.FailureReason{Category: model.FailureInternal, Message: fmt.Sprintf("internal error: %v", r)}
			}
		}()
		if err := u.reelRepo.MarkAttempt(ctx, id); err != nil {
			lg.WithField("error", err).Warn("Failed to record resolution attempt")
		}
		payload, failure = u.resolve(ctx, reel)
	}()

	updated, err := u.reelRepo.Complete(ctx, id, payload, failure)
	if errors.Is(err, repository.ErrStaleReel) {
		lg.Info("Reel left pending state before resolution finished")
		return
	}
	if err != nil {
		lg.WithField("error", err).Error("Failed to store resolution outcome")
		return
	}

	if updated.Status == model.ReelStatusSuccess {
		lg.WithField("method", updated.Payload.Method).Info("Reel resolved")
	} else {
		lg.WithField("category", updated.Failure.Category).WithField("reason", updated.Failure.Message).Warn("Reel resolution failed")
	}
	u.announce(ctx, updated)
}

func (u *reelUsecase) resolve(ctx context.Context, reel *model.Reel) (*model.ReelPayload, *model.FailureReason) {
	payload, err := u.lookup(ctx, reel.Shortcode, reel.SourceURL)
	if err != nil {
		var re *model.ResolutionError
		if errors.As(err, &re) {
			return nil, re.Reason()
		}
		return nil, &model.FailureReason{Category: model.FailureUnavailable, Message: err.Error()}
	}
	return payload, nil
}

// lookup consults the cache before running the resolver and stores fresh results.
func (u *reelUsecase) lookup(ctx context.Context, shortcode, sourceURL string) (*model.ReelPayload, error) {
	if u.deps.Cache != nil {
		cached, err := u.deps.Cache.Get(ctx, shortcode)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Resolution cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	payload, err := u.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	if u.deps.Cache != nil {
		if err := u.deps.Cache.Set(ctx, shortcode, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Resolution cache write failed")
		}
	}
	return payload, nil
}

// ResolveLink resolves a link synchronously without storing a reel. Failures
// are returned as *model.ResolutionError.
func (u *reelUsecase) ResolveLink(ctx context.Context, accountID, link string) (*model.ReelPayload, error) {
	link = strings.TrimSpace(link)
	shortcode, ok := instagram.ExtractShortcode(link)
	if !ok {
		return nil, ErrInvalidURL
	}
	if err := u.allow(ctx, accountID); err != nil {
		return nil, err
	}
	if link == shortcode || strings.HasPrefix(link, "/") {
		link = instagram.CanonicalURL(shortcode)
	}
	return u.lookup(ctx, shortcode, link)
}

func (u *reelUsecase) announce(ctx context.Context, reel *model.Reel) {
	if u.deps.Status != nil {
		u.deps.Status.BroadcastReelStatus(reel)
	}
	if u.deps.Publisher != nil {
		if err := u.deps.Publisher.Publish(ctx, model.NewReelEvent(reel)); err != nil {
			logger.GetLogger().WithField("reelId", reel.ID.Hex()).WithField("error", err).Warn("Failed to publish reel event")
		}
	}
	if u.deps.Notifier != nil && reel.Status == model.ReelStatusSuccess {
		if _, err := u.deps.Notifier.NotifyReelResolved(ctx, reel); err != nil {
			logger.GetLogger().WithField("reelId", reel.ID.Hex()).WithField("error", err).Warn("Failed to notify viewers")
		}
	}
}

// SweepStale re-queues reels whose resolution task was lost, e.g. across a restart.
func (u *reelUsecase) SweepStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-u.opts.StaleAfter)
	reels, err := u.reelRepo.FindStalePending(ctx, cutoff, u.opts.SweepBatch)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, r := range reels {
		if _, busy := u.inflight.Load(r.ID.Hex()); busy {
			continue
		}
		if u.enqueue(r) {
			queued++
		}
	}
	if queued > 0 {
		logger.GetLogger().WithField("count", queued).Info("Re-queued stale pending reels")
	}
	return queued, nil
}

func (u *reelUsecase) enqueue(reel *model.Reel) bool {
	r := *reel
	id := r.ID.Hex()
	u.inflight.Store(id, struct{}{})
	err := u.queue.Submit(func(ctx context.Context) {
		defer u.inflight.Delete(id)
		u.ResolveReel(ctx, &r)
	})
	if err != nil {
		u.inflight.Delete(id)
		logger.GetLogger().WithField("reelId", reel.ID.Hex()).WithField("error", err).Warn("Resolution queue rejected task; reel stays pending")
		return false
	}
	return true
}

func (u *reelUsecase) allow(ctx context.Context, accountID string) error {
	if u.deps.Limiter == nil {
		return nil
	}
	ok, err := u.deps.Limiter.Allow(ctx, accountID)
	if err != nil {
		// fail open: a limiter outage must not stop intake
		logger.GetLogger().WithField("error", err).Warn("Submission limiter unavailable")
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (u *reelUsecase) findDuplicate(ctx context.Context, shortcode, accountID string) (*model.Reel, error) {
	scope := ""
	if u.opts.PerSubmitter {
		scope = accountID
	}
	existing, err := u.reelRepo.FindByShortcode(ctx, shortcode, scope)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return existing, err
}

func (u *reelUsecase) create(ctx context.Context, accountID, link, shortcode string) (*model.Reel, error) {
	submitter, err := u.accountRepo.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	reel := &model.Reel{
		SourceURL:   link,
		Shortcode:   shortcode,
		SubmittedBy: submitter.ID,
		Status:      model.ReelStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.reelRepo.Create(ctx, reel); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return reel, nil
}

func (u *reelUsecase) owned(ctx context.Context, accountID, id string) (*model.Reel, error) {
	reel, err := u.reelRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reel.SubmittedBy.Hex() != accountID {
		return nil, ErrForbidden
	}
	return reel, nil
}

func (u *reelUsecase) page(q dto.ReelListQuery) dto.ReelListQuery {
	if q.Limit <= 0 || q.Limit > u.opts.PageSize {
		q.Limit = u.opts.PageSize
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
	if !q.Status.Valid() {
		q.Status = ""
	}
	return q
}

func (u *reelUsecase) attachSubmitters(ctx context.Context, reels []*model.Reel) {
	if len(reels) == 0 {
		return
	}
	ids := make([]string, 0, len(reels))
	for _, r := range reels {
		ids = append(ids, r.SubmittedBy.Hex())
	}
	accounts, err := u.accountRepo.GetPublicByIDs(ctx, ids)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to load submitters")
		return
	}
	for _, r := range reels {
		if a, ok := accounts[r.SubmittedBy.Hex()]; ok {
			a := a
			r.Submitter = &a
		}
	}
}
