package repository

import (
	"context"

	"reelshare/domain/model"
)

type IAccount interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	ListIDsByRole(ctx context.Context, role model.Role) ([]string, error)
	GetPublicByIDs(ctx context.Context, ids []string) (map[string]model.AccountPublic, error)
}
