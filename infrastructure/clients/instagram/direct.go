package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"reelshare/domain/model"
	"reelshare/domain/repository"
)

const SourceDirect = "direct"

type directRequest struct {
	Target string `json:"target"`
}

type directResponse struct {
	RemoteURLs []string `json:"remote_urls"`
	Thumbnail  string   `json:"thumbnail"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
}

type directError struct {
	Message string `json:"msg"`
}

// DirectSource delegates to an external URL-resolution service that answers
// with one or more direct media URLs.
type DirectSource struct {
	client   *http.Client
	endpoint string
}

func NewDirectSource(opts Options) repository.IReelSource {
	return &DirectSource{client: opts.client(), endpoint: opts.DirectEndpoint}
}

func (s *DirectSource) Name() string { return SourceDirect }

func (s *DirectSource) Resolve(ctx context.Context, sourceURL, _ string) (*model.ReelPayload, error) {
	if s.endpoint == "" {
		return nil, unavailable(SourceDirect, "direct resolver not configured")
	}
	resp, err := do(ctx, s.client, http.MethodPost, s.endpoint, directRequest{Target: sourceURL}, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, transportError(SourceDirect, err)
	}
	if !ok(resp.status) {
		var de directError
		if json.Unmarshal(resp.body, &de) == nil && de.Message != "" {
			e := statusError(SourceDirect, resp.status)
			e.Message = de.Message
			return nil, e
		}
		return nil, statusError(SourceDirect, resp.status)
	}

	var out directResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, unavailable(SourceDirect, "malformed response body")
	}
	var media string
	for _, u := range out.RemoteURLs {
		if u = strings.TrimSpace(u); u != "" {
			media = u
			break
		}
	}
	if media == "" {
		return nil, unavailable(SourceDirect, "no media url returned")
	}
	return &model.ReelPayload{
		Type:      model.MediaTypeVideo,
		Method:    SourceDirect,
		VideoURL:  media,
		Thumbnail: out.Thumbnail,
		Title:     out.Title,
		Author:    out.Author,
	}, nil
}
