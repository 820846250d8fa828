package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/worker"
	"reelshare/usecase"
)

type reelFixture struct {
	reels    *MockReelRepository
	accounts *MockAccountRepository
	resolver *MockResolver
	queue    *queueRecorder
	sender   *model.Account
	uc       usecase.IReelUsecase
}

func newReelFixture(t *testing.T, deps usecase.ReelDeps, opts usecase.ReelOptions) *reelFixture {
	t.Helper()
	f := &reelFixture{
		reels:    new(MockReelRepository),
		accounts: new(MockAccountRepository),
		resolver: new(MockResolver),
		queue:    &queueRecorder{},
		sender:   &model.Account{ID: bson.NewObjectID(), Username: "sender", Role: model.RoleSender},
	}
	f.accounts.On("GetByID", mock.Anything, f.sender.ID.Hex()).Return(f.sender, nil).Maybe()
	f.uc = usecase.NewReelUsecase(f.reels, f.accounts, f.resolver, f.queue, deps, opts)
	return f
}

func (f *reelFixture) expectCreate() {
	f.reels.On("Create", mock.Anything, mock.AnythingOfType("*model.Reel")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Reel).ID = bson.NewObjectID()
		}).
		Return(nil)
}

func TestReelUsecase_SubmitQueuesPendingReel(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("FindByShortcode", mock.Anything, "DPq_tjEgUMf", "").Return(nil, repository.ErrNotFound).Once()
	f.expectCreate()

	res, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "https://www.instagram.com/reel/DPq_tjEgUMf/")
	require.NoError(t, err)
	assert.Equal(t, "DPq_tjEgUMf", res.Identifier)
	assert.Equal(t, model.ReelStatusPending, res.Status)
	assert.NotEmpty(t, res.ID)
	assert.Len(t, f.queue.tasks, 1)

	created := f.reels.Calls[1].Arguments.Get(1).(*model.Reel)
	assert.Equal(t, f.sender.ID, created.SubmittedBy)
	assert.Equal(t, model.ReelStatusPending, created.Status)
	assert.Nil(t, created.Payload)
	assert.Nil(t, created.Failure)
}

func TestReelUsecase_SubmitBareShortcodeStoresCanonicalURL(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("FindByShortcode", mock.Anything, "DEF456GHI", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()

	_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "DEF456GHI")
	require.NoError(t, err)
	created := f.reels.Calls[1].Arguments.Get(1).(*model.Reel)
	assert.Equal(t, "https://www.instagram.com/reel/DEF456GHI/", created.SourceURL)
}

func TestReelUsecase_SubmitRelativePathStoresCanonicalURL(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()

	res, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "/p/ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", res.Identifier)
	created := f.reels.Calls[1].Arguments.Get(1).(*model.Reel)
	assert.Equal(t, "https://www.instagram.com/reel/ABC123/", created.SourceURL)
}

func TestReelUsecase_SubmitInvalidURLCreatesNothing(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})

	_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "https://example.com/foo")
	assert.ErrorIs(t, err, usecase.ErrInvalidURL)
	f.reels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.queue.tasks)
}

func TestReelUsecase_SubmitDuplicate(t *testing.T) {
	t.Run("second submission is rejected", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound).Once()
		f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(&model.Reel{Shortcode: "ABC123"}, nil).Once()
		f.expectCreate()

		_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "https://www.instagram.com/reel/ABC123/")
		require.NoError(t, err)
		_, err = f.uc.Submit(context.Background(), f.sender.ID.Hex(), "https://www.instagram.com/p/ABC123")
		assert.ErrorIs(t, err, usecase.ErrDuplicate)
		f.reels.AssertNumberOfCalls(t, "Create", 1)
		assert.Len(t, f.queue.tasks, 1)
	})

	t.Run("unique index race maps to duplicate", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
		f.reels.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

		_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
		assert.ErrorIs(t, err, usecase.ErrDuplicate)
		assert.Empty(t, f.queue.tasks)
	})

	t.Run("per submitter policy scopes lookup", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{PerSubmitter: true})
		f.reels.On("FindByShortcode", mock.Anything, "ABC123", f.sender.ID.Hex()).Return(&model.Reel{}, nil)

		_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
		assert.ErrorIs(t, err, usecase.ErrDuplicate)
		f.reels.AssertExpectations(t)
	})
}

func TestReelUsecase_SubmitRateLimited(t *testing.T) {
	limiter := new(MockLimiter)
	f := newReelFixture(t, usecase.ReelDeps{Limiter: limiter}, usecase.ReelOptions{})
	limiter.On("Allow", mock.Anything, f.sender.ID.Hex()).Return(false, nil)

	_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
	assert.ErrorIs(t, err, usecase.ErrRateLimited)
	f.reels.AssertNotCalled(t, "FindByShortcode", mock.Anything, mock.Anything, mock.Anything)
}

func TestReelUsecase_SubmitLimiterOutageFailsOpen(t *testing.T) {
	limiter := new(MockLimiter)
	f := newReelFixture(t, usecase.ReelDeps{Limiter: limiter}, usecase.ReelOptions{})
	limiter.On("Allow", mock.Anything, f.sender.ID.Hex()).Return(false, errors.New("redis down"))
	f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()

	_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
	assert.NoError(t, err)
}

func TestReelUsecase_BulkSubmit(t *testing.T) {
	t.Run("over the limit is rejected wholesale", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		entries := make([]string, 51)
		for i := range entries {
			entries[i] = fmt.Sprintf("CODE%02d", i)
		}

		res, err := f.uc.BulkSubmit(context.Background(), f.sender.ID.Hex(), entries)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, usecase.ErrBulkLimit)
		f.reels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty is rejected", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		_, err := f.uc.BulkSubmit(context.Background(), f.sender.ID.Hex(), nil)
		assert.ErrorIs(t, err, usecase.ErrEmptyBatch)
	})

	t.Run("fifty valid and two malformed", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		f.reels.On("FindByShortcode", mock.Anything, mock.Anything, "").Return(nil, repository.ErrNotFound)
		f.expectCreate()

		entries := make([]string, 0, 52)
		for i := 0; i < 25; i++ {
			entries = append(entries, fmt.Sprintf("CODE%02d", i))
		}
		entries = append(entries, "not a shortcode!")
		for i := 25; i < 50; i++ {
			entries = append(entries, fmt.Sprintf("https://www.instagram.com/reel/CODE%02d/", i))
		}
		entries = append(entries, "https://example.com/reel/NOPE/")

		res, err := f.uc.BulkSubmit(context.Background(), f.sender.ID.Hex(), entries)
		require.NoError(t, err)
		assert.Equal(t, 52, res.Total)
		assert.Equal(t, 50, res.Accepted)
		assert.Equal(t, 2, res.Rejected)
		assert.Equal(t, []string{
			"Invalid shortcode format: not a shortcode!",
			"Invalid shortcode format: https://example.com/reel/NOPE/",
		}, res.Errors)
		assert.Len(t, f.queue.tasks, 50)
		f.reels.AssertNumberOfCalls(t, "Create", 50)
	})

	t.Run("duplicates are skipped and reported", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		f.reels.On("FindByShortcode", mock.Anything, "OLD1", "").Return(&model.Reel{Shortcode: "OLD1"}, nil)
		f.reels.On("FindByShortcode", mock.Anything, "NEW1", "").Return(nil, repository.ErrNotFound)
		f.expectCreate()

		res, err := f.uc.BulkSubmit(context.Background(), f.sender.ID.Hex(), []string{"OLD1", "NEW1", "https://www.instagram.com/p/NEW1/"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Accepted)
		assert.Equal(t, 2, res.Rejected)
		assert.Contains(t, res.Errors, "Already imported: OLD1")
		assert.Contains(t, res.Errors, "Duplicate in request: NEW1")
		require.Len(t, res.Items, 3)
		assert.True(t, res.Items[1].Accepted)
		assert.Equal(t, "NEW1", res.Items[1].Identifier)
	})
}

func TestReelUsecase_ViewerGetIncrementsViewCount(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	id := bson.NewObjectID()
	f.reels.On("IncrementViews", mock.Anything, id.Hex()).
		Return(&model.Reel{ID: id, SubmittedBy: f.sender.ID, Status: model.ReelStatusSuccess, ViewCount: 1}, nil).Once()
	f.reels.On("IncrementViews", mock.Anything, id.Hex()).
		Return(&model.Reel{ID: id, SubmittedBy: f.sender.ID, Status: model.ReelStatusSuccess, ViewCount: 2}, nil).Once()
	f.accounts.On("GetPublicByIDs", mock.Anything, []string{f.sender.ID.Hex()}).Return(map[string]model.AccountPublic{
		f.sender.ID.Hex(): f.sender.Public(),
	}, nil)

	_, err := f.uc.Get(context.Background(), id.Hex(), model.RoleViewer)
	require.NoError(t, err)
	reel, err := f.uc.Get(context.Background(), id.Hex(), model.RoleViewer)
	require.NoError(t, err)

	assert.EqualValues(t, 2, reel.ViewCount)
	require.NotNil(t, reel.Submitter)
	assert.Equal(t, "sender", reel.Submitter.Username)
	f.reels.AssertNumberOfCalls(t, "IncrementViews", 2)
}

func TestReelUsecase_SenderGetDoesNotCount(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	id := bson.NewObjectID()
	f.reels.On("GetByID", mock.Anything, id.Hex()).Return(&model.Reel{ID: id, SubmittedBy: f.sender.ID}, nil)
	f.accounts.On("GetPublicByIDs", mock.Anything, mock.Anything).Return(map[string]model.AccountPublic{}, nil)

	_, err := f.uc.Get(context.Background(), id.Hex(), model.RoleSender)
	require.NoError(t, err)
	f.reels.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestReelUsecase_GetNotFound(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("IncrementViews", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := f.uc.Get(context.Background(), "missing", model.RoleViewer)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func pendingReel(owner bson.ObjectID) *model.Reel {
	return &model.Reel{
		ID:          bson.NewObjectID(),
		SourceURL:   "https://www.instagram.com/reel/DPq_tjEgUMf/",
		Shortcode:   "DPq_tjEgUMf",
		SubmittedBy: owner,
		Status:      model.ReelStatusPending,
	}
}

func TestReelUsecase_ResolveAllSourcesFail(t *testing.T) {
	status, publisher, notifier := new(MockBroadcaster), new(MockPublisher), new(MockNotifier)
	reels := new(MockReelRepository)
	accounts := new(MockAccountRepository)
	src := newSource("json")
	src.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(nil, fail("json", model.FailureUnavailable, "reel not found or is private"))

	uc := usecase.NewReelUsecase(reels, accounts, usecase.NewResolver(src), worker.Inline{},
		usecase.ReelDeps{Status: status, Publisher: publisher, Notifier: notifier}, usecase.ReelOptions{})

	reel := pendingReel(bson.NewObjectID())
	failed := *reel
	failed.Status = model.ReelStatusFailed
	failed.Failure = &model.FailureReason{Category: model.FailureUnavailable, Message: "reel not found or is private"}

	reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	reels.On("Complete", mock.Anything, reel.ID.Hex(), (*model.ReelPayload)(nil), mock.MatchedBy(func(f *model.FailureReason) bool {
		return f != nil && f.Category == model.FailureUnavailable && f.Message != ""
	})).Return(&failed, nil).Once()
	status.On("BroadcastReelStatus", &failed).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e model.ReelEvent) bool {
		return e.Status == model.ReelStatusFailed && e.Category == model.FailureUnavailable
	})).Return(nil).Once()

	uc.ResolveReel(context.Background(), reel)

	reels.AssertExpectations(t)
	status.AssertExpectations(t)
	publisher.AssertExpectations(t)
	notifier.AssertNotCalled(t, "NotifyReelResolved", mock.Anything, mock.Anything)
}

func TestReelUsecase_ResolveSuccessNotifiesAndCaches(t *testing.T) {
	cache, notifier := new(MockCache), new(MockNotifier)
	f := newReelFixture(t, usecase.ReelDeps{Cache: cache, Notifier: notifier}, usecase.ReelOptions{})
	reel := pendingReel(f.sender.ID)
	payload := &model.ReelPayload{Type: model.MediaTypeVideo, Method: "json", VideoURL: "https://cdn.example/v.mp4"}
	done := *reel
	done.Status = model.ReelStatusSuccess
	done.Payload = payload

	cache.On("Get", mock.Anything, "DPq_tjEgUMf").Return(nil, nil)
	cache.On("Set", mock.Anything, "DPq_tjEgUMf", payload).Return(nil)
	f.reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	f.resolver.On("Resolve", mock.Anything, reel.SourceURL).Return(payload, nil)
	f.reels.On("Complete", mock.Anything, reel.ID.Hex(), payload, (*model.FailureReason)(nil)).Return(&done, nil)
	notifier.On("NotifyReelResolved", mock.Anything, &done).Return(&dto.SendPushResult{Sent: 1, Total: 1}, nil).Once()

	f.uc.ResolveReel(context.Background(), reel)

	cache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestReelUsecase_ResolveUsesCachedPayload(t *testing.T) {
	cache := new(MockCache)
	f := newReelFixture(t, usecase.ReelDeps{Cache: cache}, usecase.ReelOptions{})
	reel := pendingReel(f.sender.ID)
	cached := &model.ReelPayload{Type: model.MediaTypeVideo, Method: "direct", VideoURL: "https://cdn.example/c.mp4"}

	cache.On("Get", mock.Anything, reel.Shortcode).Return(cached, nil)
	f.reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	f.reels.On("Complete", mock.Anything, reel.ID.Hex(), cached, (*model.FailureReason)(nil)).
		Return(&model.Reel{ID: reel.ID, Status: model.ReelStatusSuccess, Payload: cached}, nil)

	f.uc.ResolveReel(context.Background(), reel)

	f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	f.reels.AssertExpectations(t)
}

func TestReelUsecase_ResolveStaleRecordIsLeftAlone(t *testing.T) {
	status := new(MockBroadcaster)
	f := newReelFixture(t, usecase.ReelDeps{Status: status}, usecase.ReelOptions{})
	reel := pendingReel(f.sender.ID)

	f.reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	f.resolver.On("Resolve", mock.Anything, reel.SourceURL).Return(&model.ReelPayload{VideoURL: "https://cdn.example/v.mp4"}, nil)
	f.reels.On("Complete", mock.Anything, reel.ID.Hex(), mock.Anything, mock.Anything).Return(nil, repository.ErrStaleReel)

	f.uc.ResolveReel(context.Background(), reel)
	status.AssertNotCalled(t, "BroadcastReelStatus", mock.Anything)
}

func TestReelUsecase_ResolvePanicBecomesFailure(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	reel := pendingReel(f.sender.ID)

	f.reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	f.resolver.On("Resolve", mock.Anything, reel.SourceURL).Run(func(mock.Arguments) { panic("parser exploded") })
	f.reels.On("Complete", mock.Anything, reel.ID.Hex(), (*model.ReelPayload)(nil), mock.MatchedBy(func(f *model.FailureReason) bool {
		return f != nil && f.Category == model.FailureInternal
	})).Return(&model.Reel{ID: reel.ID, Status: model.ReelStatusFailed, Failure: &model.FailureReason{Category: model.FailureInternal}}, nil)

	assert.NotPanics(t, func() { f.uc.ResolveReel(context.Background(), reel) })
	f.reels.AssertExpectations(t)
}

func TestReelUsecase_SubmittedTaskResolvesRecord(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()
	f.reels.On("MarkAttempt", mock.Anything, mock.Anything).Return(nil)
	f.resolver.On("Resolve", mock.Anything, "https://www.instagram.com/reel/ABC123/").Return(nil, &model.ResolutionError{Category: model.FailureUnavailable, Message: "gone"})
	f.reels.On("Complete", mock.Anything, mock.Anything, (*model.ReelPayload)(nil), mock.Anything).
		Return(&model.Reel{Status: model.ReelStatusFailed, Failure: &model.FailureReason{Category: model.FailureUnavailable, Message: "gone"}}, nil).Once()

	_, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "https://www.instagram.com/reel/ABC123/")
	require.NoError(t, err)
	f.reels.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	f.queue.runAll()
	f.reels.AssertNumberOfCalls(t, "Complete", 1)
}

func TestReelUsecase_Retry(t *testing.T) {
	t.Run("only failed reels", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		reel := pendingReel(f.sender.ID)
		reel.Status = model.ReelStatusSuccess
		f.reels.On("GetByID", mock.Anything, reel.ID.Hex()).Return(reel, nil)

		_, err := f.uc.Retry(context.Background(), f.sender.ID.Hex(), reel.ID.Hex())
		assert.ErrorIs(t, err, usecase.ErrNotRetryable)
	})

	t.Run("only the owner", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		reel := pendingReel(bson.NewObjectID())
		reel.Status = model.ReelStatusFailed
		f.reels.On("GetByID", mock.Anything, reel.ID.Hex()).Return(reel, nil)

		_, err := f.uc.Retry(context.Background(), f.sender.ID.Hex(), reel.ID.Hex())
		assert.ErrorIs(t, err, usecase.ErrForbidden)
	})

	t.Run("failed reel goes back to pending and is queued", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		reel := pendingReel(f.sender.ID)
		reel.Status = model.ReelStatusFailed
		reset := *reel
		reset.Status = model.ReelStatusPending
		reset.Attempts = 2
		f.reels.On("GetByID", mock.Anything, reel.ID.Hex()).Return(reel, nil)
		f.reels.On("ResetForRetry", mock.Anything, reel.ID.Hex()).Return(&reset, nil)

		got, err := f.uc.Retry(context.Background(), f.sender.ID.Hex(), reel.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, model.ReelStatusPending, got.Status)
		assert.Len(t, f.queue.tasks, 1)
	})
}

func TestReelUsecase_Delete(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("Delete", mock.Anything, "r1", f.sender.ID.Hex()).Return(true, nil)
	f.reels.On("Delete", mock.Anything, "r2", f.sender.ID.Hex()).Return(false, nil)

	assert.NoError(t, f.uc.Delete(context.Background(), f.sender.ID.Hex(), "r1"))
	assert.ErrorIs(t, f.uc.Delete(context.Background(), f.sender.ID.Hex(), "r2"), usecase.ErrNotFound)
}

func TestReelUsecase_Stats(t *testing.T) {
	t.Run("sender", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		id := f.sender.ID.Hex()
		f.reels.On("CountByStatus", mock.Anything, id).Return(model.ReelStats{Total: 5, Success: 3, Pending: 1, Failed: 1}, nil)
		f.reels.On("SumViews", mock.Anything, id).Return(int64(42), nil)

		got, err := f.uc.Stats(context.Background(), id, model.RoleSender)
		require.NoError(t, err)
		assert.Equal(t, dto.SenderStatistics{TotalShared: 5, SuccessfulShares: 3, PendingShares: 1, FailedShares: 1, TotalViews: 42}, got)
	})

	t.Run("viewer", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		f.reels.On("CountByStatus", mock.Anything, "").Return(model.ReelStats{Total: 9, Success: 7}, nil)
		f.reels.On("CountSubmitters", mock.Anything).Return(int64(2), nil)
		f.reels.On("CountSince", mock.Anything, model.ReelStatusSuccess, mock.MatchedBy(func(since time.Time) bool {
			return time.Since(since) > 23*time.Hour && time.Since(since) < 25*time.Hour
		})).Return(int64(4), nil)

		got, err := f.uc.Stats(context.Background(), bson.NewObjectID().Hex(), model.RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, dto.ViewerStatistics{TotalReelsAvailable: 7, TotalSenders: 2, RecentReels: 4}, got)
	})
}

func TestReelUsecase_ListClampsPaging(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{PageSize: 20})
	f.reels.On("List", mock.Anything, dto.ReelListQuery{Limit: 20, Skip: 0}).Return([]*model.Reel{}, int64(0), nil)

	res, err := f.uc.List(context.Background(), dto.ReelListQuery{Status: "bogus", Limit: 500, Skip: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	f.reels.AssertExpectations(t)
}

func TestReelUsecase_ListMineIncludesStats(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	id := f.sender.ID.Hex()
	reels := []*model.Reel{pendingReel(f.sender.ID)}
	f.reels.On("List", mock.Anything, dto.ReelListQuery{SubmittedBy: id, Status: model.ReelStatusPending, Limit: 50}).Return(reels, int64(1), nil)
	f.reels.On("CountByStatus", mock.Anything, id).Return(model.ReelStats{Total: 1, Pending: 1}, nil)

	res, err := f.uc.ListMine(context.Background(), id, dto.ReelListQuery{Status: model.ReelStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.EqualValues(t, 1, res.Stats.Pending)
}

func TestReelUsecase_SweepStale(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{StaleAfter: 10 * time.Minute, SweepBatch: 5})
	stale := []*model.Reel{pendingReel(f.sender.ID), pendingReel(f.sender.ID)}
	f.reels.On("FindStalePending", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 10*time.Minute
	}), int64(5)).Return(stale, nil)

	n, err := f.uc.SweepStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.queue.tasks, 2)
}

func TestReelUsecase_SweepSkipsReelsStillQueued(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()

	res, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
	require.NoError(t, err)
	require.Len(t, f.queue.tasks, 1)

	queued := pendingReel(f.sender.ID)
	queued.ID, _ = bson.ObjectIDFromHex(res.ID)
	other := pendingReel(f.sender.ID)
	f.reels.On("FindStalePending", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Reel{queued, other}, nil)

	n, err := f.uc.SweepStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.queue.tasks, 2)
}

func TestReelUsecase_SweepRequeuesAfterTaskFinished(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	reel := pendingReel(f.sender.ID)
	f.reels.On("FindStalePending", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Reel{reel}, nil)
	f.reels.On("MarkAttempt", mock.Anything, reel.ID.Hex()).Return(nil)
	f.reels.On("Complete", mock.Anything, reel.ID.Hex(), mock.Anything, mock.Anything).Return(nil, repository.ErrStaleReel)
	f.resolver.On("Resolve", mock.Anything, reel.SourceURL).Return(nil, &model.ResolutionError{Category: model.FailureUnavailable, Message: "gone"})

	n, err := f.uc.SweepStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	f.queue.runAll()

	n, err = f.uc.SweepStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReelUsecase_QueueFullKeepsReelPending(t *testing.T) {
	f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
	f.queue.err = worker.ErrQueueFull
	f.reels.On("FindByShortcode", mock.Anything, "ABC123", "").Return(nil, repository.ErrNotFound)
	f.expectCreate()

	res, err := f.uc.Submit(context.Background(), f.sender.ID.Hex(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, model.ReelStatusPending, res.Status)
}

func TestReelUsecase_ResolveLink(t *testing.T) {
	t.Run("resolves and caches without storing", func(t *testing.T) {
		cache := new(MockCache)
		f := newReelFixture(t, usecase.ReelDeps{Cache: cache}, usecase.ReelOptions{})
		payload := &model.ReelPayload{Type: model.MediaTypeVideo, Method: "json", VideoURL: "https://cdn.example/v.mp4"}
		cache.On("Get", mock.Anything, "ABC123").Return(nil, nil)
		cache.On("Set", mock.Anything, "ABC123", payload).Return(nil)
		f.resolver.On("Resolve", mock.Anything, "https://www.instagram.com/reel/ABC123/").Return(payload, nil)

		got, err := f.uc.ResolveLink(context.Background(), f.sender.ID.Hex(), "/reel/ABC123/")
		require.NoError(t, err)
		assert.Same(t, payload, got)
		f.reels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.queue.tasks)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips resolver", func(t *testing.T) {
		cache := new(MockCache)
		f := newReelFixture(t, usecase.ReelDeps{Cache: cache}, usecase.ReelOptions{})
		cached := &model.ReelPayload{Type: model.MediaTypeEmbed, Method: "oembed", EmbedHTML: "<blockquote></blockquote>"}
		cache.On("Get", mock.Anything, "ABC123").Return(cached, nil)

		got, err := f.uc.ResolveLink(context.Background(), f.sender.ID.Hex(), "https://www.instagram.com/p/ABC123/")
		require.NoError(t, err)
		assert.Same(t, cached, got)
		f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("resolution error is returned as is", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		blocked := &model.ResolutionError{Category: model.FailureBlocked, StatusCode: 429, Message: "rate limited by instagram"}
		f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, blocked)

		_, err := f.uc.ResolveLink(context.Background(), f.sender.ID.Hex(), "ABC123")
		var re *model.ResolutionError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, model.FailureBlocked, re.Category)
		assert.Equal(t, 429, re.StatusCode)
	})

	t.Run("invalid url", func(t *testing.T) {
		f := newReelFixture(t, usecase.ReelDeps{}, usecase.ReelOptions{})
		_, err := f.uc.ResolveLink(context.Background(), f.sender.ID.Hex(), "https://example.com/reel/ABC123/")
		assert.ErrorIs(t, err, usecase.ErrInvalidURL)
		f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("rate limited", func(t *testing.T) {
		limiter := new(MockLimiter)
		f := newReelFixture(t, usecase.ReelDeps{Limiter: limiter}, usecase.ReelOptions{})
		limiter.On("Allow", mock.Anything, f.sender.ID.Hex()).Return(false, nil)

		_, err := f.uc.ResolveLink(context.Background(), f.sender.ID.Hex(), "ABC123")
		assert.ErrorIs(t, err, usecase.ErrRateLimited)
		f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})
}
