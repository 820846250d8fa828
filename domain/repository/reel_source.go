package repository

import (
	"context"

	"reelshare/domain/model"
)

// IReelSource is one independent way of turning a reel link into a payload.
// Implementations must not share mutable state between calls and must return
// *model.ResolutionError on failure, never a partially filled payload.
type IReelSource interface {
	Name() string
	Resolve(ctx context.Context, sourceURL, shortcode string) (*model.ReelPayload, error)
}
