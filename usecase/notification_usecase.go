package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"
)

const (
	DefaultPushTitle = "New Reel Shared!"
	DefaultPushBody  = "A new Instagram reel has been shared with you"
)

type INotificationUsecase interface {
	Send(ctx context.Context, req dto.SendPushRequest) (*dto.SendPushResult, error)
	NotifyReelResolved(ctx context.Context, reel *model.Reel) (*dto.SendPushResult, error)
}

type NotificationOptions struct {
	Icon        string
	Badge       string
	ViewerURL   string
	Parallelism int
}

type notificationUsecase struct {
	pushRepo    repository.IPushSubscription
	accountRepo repository.IAccount
	sender      repository.IPushSender
	opts        NotificationOptions
}

// NewNotificationUsecase returns a dispatcher; a nil sender turns every send into a no-op.
func NewNotificationUsecase(pushRepo repository.IPushSubscription, accountRepo repository.IAccount, sender repository.IPushSender, opts NotificationOptions) INotificationUsecase {
	if opts.ViewerURL == "" {
		opts.ViewerURL = "/viewer"
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 8
	}
	return &notificationUsecase{pushRepo: pushRepo, accountRepo: accountRepo, sender: sender, opts: opts}
}

func (u *notificationUsecase) NotifyReelResolved(ctx context.Context, reel *model.Reel) (*dto.SendPushResult, error) {
	req := dto.SendPushRequest{URL: fmt.Sprintf("%s?reel=%s", u.opts.ViewerURL, reel.ID.Hex())}
	if reel.Payload != nil && reel.Payload.Owner != nil && reel.Payload.Owner.Username != "" {
		req.Body = fmt.Sprintf("New reel from @%s is ready to watch", reel.Payload.Owner.Username)
	}
	return u.Send(ctx, req)
}

func (u *notificationUsecase) Send(ctx context.Context, req dto.SendPushRequest) (*dto.SendPushResult, error) {
	if u.sender == nil {
		return &dto.SendPushResult{}, nil
	}

	var recipients []string
	if req.AccountID != "" {
		recipients = []string{req.AccountID}
	} else {
		ids, err := u.accountRepo.ListIDsByRole(ctx, model.RoleViewer)
		if err != nil {
			return nil, err
		}
		recipients = ids
	}
	if len(recipients) == 0 {
		return &dto.SendPushResult{}, nil
	}
	subs, err := u.pushRepo.ListByAccounts(ctx, recipients)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return &dto.SendPushResult{}, nil
	}

	msg := u.message(req)
	var sent, removed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Parallelism)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			err := u.sender.Send(gctx, sub, msg)
			switch {
			case err == nil:
				atomic.AddInt64(&sent, 1)
			case errors.Is(err, repository.ErrSubscriptionGone):
				if delErr := u.pushRepo.DeleteByEndpoint(gctx, sub.Endpoint); delErr != nil {
					logger.GetLogger().WithField("error", delErr).Warn("Failed to delete expired push subscription")
				} else {
					atomic.AddInt64(&removed, 1)
				}
			default:
				logger.GetLogger().WithField("endpoint", sub.Endpoint).WithField("error", err).Warn("Push delivery failed")
			}
			// one bad endpoint must not cancel the others
			return nil
		})
	}
	_ = g.Wait()

	return &dto.SendPushResult{Sent: int(sent), Total: len(subs), Removed: int(removed)}, nil
}

func (u *notificationUsecase) message(req dto.SendPushRequest) model.PushMessage {
	msg := model.PushMessage{
		Title:     req.Title,
		Body:      req.Body,
		Icon:      req.Icon,
		Badge:     u.opts.Badge,
		URL:       req.URL,
		Timestamp: time.Now().UnixMilli(),
	}
	if msg.Title == "" {
		msg.Title = DefaultPushTitle
	}
	if msg.Body == "" {
		msg.Body = DefaultPushBody
	}
	if msg.Icon == "" {
		msg.Icon = u.opts.Icon
	}
	if msg.URL == "" {
		msg.URL = u.opts.ViewerURL
	}
	return msg
}
