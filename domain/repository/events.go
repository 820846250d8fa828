package repository

import (
	"context"

	"reelshare/domain/model"
)

type IReelEventPublisher interface {
	Publish(ctx context.Context, event model.ReelEvent) error
	Close() error
}

// IReelStatusBroadcaster pushes status changes to the submitter's open streams.
type IReelStatusBroadcaster interface {
	BroadcastReelStatus(reel *model.Reel)
}

// ITaskQueue runs resolution work off the request path.
type ITaskQueue interface {
	Submit(task func(ctx context.Context)) error
}
