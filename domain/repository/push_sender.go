package repository

import (
	"context"
	"errors"

	"reelshare/domain/model"
)

// ErrSubscriptionGone means the push service reported the endpoint as permanently invalid.
var ErrSubscriptionGone = errors.New("push subscription expired or unsubscribed")

type IPushSender interface {
	Send(ctx context.Context, sub *model.PushSubscription, message model.PushMessage) error
	PublicKey() string
}
