package repository

import (
	"context"
	"time"

	"reelshare/domain/dto"
	"reelshare/domain/model"
)

// IReel persists reels. Complete and ResetForRetry are conditional updates:
// they return ErrStaleReel when the reel is not in the expected status.
type IReel interface {
	Create(ctx context.Context, reel *model.Reel) error
	GetByID(ctx context.Context, id string) (*model.Reel, error)
	FindByShortcode(ctx context.Context, shortcode string, submittedBy string) (*model.Reel, error)
	List(ctx context.Context, q dto.ReelListQuery) ([]*model.Reel, int64, error)
	Complete(ctx context.Context, id string, payload *model.ReelPayload, failure *model.FailureReason) (*model.Reel, error)
	ResetForRetry(ctx context.Context, id string) (*model.Reel, error)
	MarkAttempt(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (*model.Reel, error)
	Delete(ctx context.Context, id string, submittedBy string) (bool, error)
	CountByStatus(ctx context.Context, submittedBy string) (model.ReelStats, error)
	SumViews(ctx context.Context, submittedBy string) (int64, error)
	CountSince(ctx context.Context, status model.ReelStatus, since time.Time) (int64, error)
	CountSubmitters(ctx context.Context) (int64, error)
	FindStalePending(ctx context.Context, olderThan time.Time, limit int64) ([]*model.Reel, error)
}
