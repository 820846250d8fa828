package usecase

import (
	"context"
	"errors"

	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/clients/instagram"
	"reelshare/infrastructure/logger"
)

type IResolver interface {
	Resolve(ctx context.Context, sourceURL string) (*model.ReelPayload, error)
}

// Resolver tries each source in order. A playable payload wins immediately;
// otherwise the highest-fidelity degraded payload seen is returned.
type Resolver struct {
	sources []repository.IReelSource
}

func NewResolver(sources ...repository.IReelSource) *Resolver {
	return &Resolver{sources: sources}
}

func (r *Resolver) Resolve(ctx context.Context, sourceURL string) (*model.ReelPayload, error) {
	shortcode, ok := instagram.ExtractShortcode(sourceURL)
	if !ok {
		return nil, &model.ResolutionError{Category: model.FailureInvalidURL, Message: "could not extract reel shortcode from url"}
	}

	lg := logger.GetLogger().WithField("shortcode", shortcode)
	var (
		best      *model.ReelPayload
		lastErr   error
		lastName  string
		attempted int
		blocked   int
	)
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			lastErr, lastName = err, src.Name()
			break
		}
		attempted++
		payload, err := src.Resolve(ctx, sourceURL, shortcode)
		if err == nil && payload.Fidelity() == model.FidelityNone {
			err = &model.ResolutionError{Category: model.FailureUnavailable, Message: "source returned no media", Source: src.Name()}
		}
		if err != nil {
			lg.WithField("source", src.Name()).WithField("error", err).Info("Resolution source failed")
			var re *model.ResolutionError
			if errors.As(err, &re) && re.Blocked() {
				blocked++
			}
			lastErr, lastName = err, src.Name()
			continue
		}
		if payload.Method == "" {
			payload.Method = src.Name()
		}
		if payload.Playable() {
			return payload, nil
		}
		if payload.Fidelity() > best.Fidelity() {
			best = payload
		}
	}
	if best != nil {
		lg.WithField("method", best.Method).Info("Resolved without playable media")
		return best, nil
	}

	failure := &model.ResolutionError{Category: model.FailureUnavailable, Source: lastName, Message: "no resolution source configured"}
	if lastErr != nil {
		failure.Message = lastErr.Error()
		var re *model.ResolutionError
		if errors.As(lastErr, &re) {
			failure.Message = re.Message
			failure.StatusCode = re.StatusCode
		}
	}
	if attempted > 0 && blocked == attempted {
		failure.Category = model.FailureBlocked
	}
	return nil, failure
}
