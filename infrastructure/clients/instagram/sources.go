package instagram

import (
	"fmt"

	"reelshare/domain/repository"
)

// NewSources builds the resolution sources in the given order. The direct
// source is left out when no endpoint is configured so it never counts as an
// attempt.
func NewSources(opts Options, order []string) ([]repository.IReelSource, error) {
	opts.HTTPClient = opts.client()
	sources := make([]repository.IReelSource, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case SourceDirect:
			if opts.DirectEndpoint == "" {
				continue
			}
			sources = append(sources, NewDirectSource(opts))
		case SourceJSON:
			sources = append(sources, NewJSONSource(opts))
		case SourceOEmbed:
			sources = append(sources, NewOEmbedSource(opts))
		case SourceHTML:
			sources = append(sources, NewHTMLSource(opts))
		default:
			return nil, fmt.Errorf("unknown resolution source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no resolution sources configured")
	}
	return sources, nil
}
