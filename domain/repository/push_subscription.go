package repository

import (
	"context"

	"reelshare/domain/model"
)

type IPushSubscription interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	DeleteForAccount(ctx context.Context, endpoint, accountID string) (bool, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	ListByAccounts(ctx context.Context, accountIDs []string) ([]*model.PushSubscription, error)
}
