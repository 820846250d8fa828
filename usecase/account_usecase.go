package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"
	"reelshare/infrastructure/utils"
)

type IAccountUsecase interface {
	Register(ctx context.Context, req model.ReqRegister) (*dto.AuthResponse, error)
	Login(ctx context.Context, req model.ReqLogin) (*dto.AuthResponse, error)
	Me(ctx context.Context, accountID string) (*model.AccountPublic, error)
}

type accountUsecase struct {
	accountRepo repository.IAccount
	secretKey   string
	tokenTTL    time.Duration
}

func NewAccountUsecase(accountRepo repository.IAccount, secretKey string, tokenTTL time.Duration) IAccountUsecase {
	return &accountUsecase{accountRepo: accountRepo, secretKey: secretKey, tokenTTL: tokenTTL}
}

func (u *accountUsecase) Register(ctx context.Context, req model.ReqRegister) (*dto.AuthResponse, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	account := &model.Account{
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	logger.GetLogger().WithField("username", account.Username).WithField("role", account.Role).Info("Account registered")
	return u.issue(account)
}

func (u *accountUsecase) Login(ctx context.Context, req model.ReqLogin) (*dto.AuthResponse, error) {
	account, err := u.accountRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u.issue(account)
}

func (u *accountUsecase) Me(ctx context.Context, accountID string) (*model.AccountPublic, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pub := account.Public()
	return &pub, nil
}

func (u *accountUsecase) issue(account *model.Account) (*dto.AuthResponse, error) {
	token, err := utils.GenerateToken(*account, u.secretKey, u.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: account.Public()}, nil
}
