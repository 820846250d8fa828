package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
)

type IPushUsecase interface {
	Subscribe(ctx context.Context, accountID string, req dto.SubscribeRequest) error
	Unsubscribe(ctx context.Context, accountID, endpoint string) error
	VAPIDPublicKey() (string, error)
}

type pushUsecase struct {
	pushRepo repository.IPushSubscription
	sender   repository.IPushSender
}

func NewPushUsecase(pushRepo repository.IPushSubscription, sender repository.IPushSender) IPushUsecase {
	return &pushUsecase{pushRepo: pushRepo, sender: sender}
}

func (u *pushUsecase) Subscribe(ctx context.Context, accountID string, req dto.SubscribeRequest) error {
	owner, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return ErrForbidden
	}
	endpoint, err := url.Parse(req.Subscription.Endpoint)
	if err != nil || endpoint.Scheme != "https" || endpoint.Host == "" {
		return ErrInvalidEndpoint
	}
	now := time.Now().UTC()
	return u.pushRepo.Upsert(ctx, &model.PushSubscription{
		Account:   owner,
		Endpoint:  req.Subscription.Endpoint,
		Keys:      req.Subscription.Keys,
		UserAgent: req.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (u *pushUsecase) Unsubscribe(ctx context.Context, accountID, endpoint string) error {
	deleted, err := u.pushRepo.DeleteForAccount(ctx, endpoint, accountID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !deleted) {
		return ErrNotFound
	}
	return err
}

func (u *pushUsecase) VAPIDPublicKey() (string, error) {
	if u.sender == nil {
		return "", ErrPushDisabled
	}
	return u.sender.PublicKey(), nil
}
