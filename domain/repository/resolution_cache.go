package repository

import (
	"context"

	"reelshare/domain/model"
)

// IResolutionCache holds recently resolved payloads by shortcode. Get returns nil, nil on a miss.
type IResolutionCache interface {
	Get(ctx context.Context, shortcode string) (*model.ReelPayload, error)
	Set(ctx context.Context, shortcode string, payload *model.ReelPayload) error
}

// ISubmissionLimiter bounds how often one account may submit.
type ISubmissionLimiter interface {
	Allow(ctx context.Context, accountID string) (bool, error)
}
