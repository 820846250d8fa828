package instagram

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/go-querystring/query"
	"reelshare/domain/model"
	"reelshare/domain/repository"
)

const (
	SourceOEmbed = "oembed"

	OEmbedWarning = "Limited data available. Video playback may not work directly."
)

type oembedQuery struct {
	URL string `url:"url"`
}

type oembedResponse struct {
	Title           string `json:"title"`
	AuthorName      string `json:"author_name"`
	AuthorURL       string `json:"author_url"`
	HTML            string `json:"html"`
	ThumbnailURL    string `json:"thumbnail_url"`
	ThumbnailWidth  int    `json:"thumbnail_width"`
	ThumbnailHeight int    `json:"thumbnail_height"`
}

// OEmbedSource fetches public embed metadata. It never yields a playable URL.
type OEmbedSource struct {
	client   *http.Client
	endpoint string
}

func NewOEmbedSource(opts Options) repository.IReelSource {
	return &OEmbedSource{client: opts.client(), endpoint: orDefault(opts.OEmbedURL, DefaultOEmbedURL)}
}

func (s *OEmbedSource) Name() string { return SourceOEmbed }

func (s *OEmbedSource) Resolve(ctx context.Context, sourceURL, shortcode string) (*model.ReelPayload, error) {
	v, err := query.Values(oembedQuery{URL: sourceURL})
	if err != nil {
		return nil, unavailable(SourceOEmbed, err.Error())
	}
	resp, err := do(ctx, s.client, http.MethodGet, s.endpoint+"?"+v.Encode(), nil, map[string]string{
		"User-Agent": UserAgentFor(shortcode),
		"Accept":     "application/json",
	})
	if err != nil {
		return nil, transportError(SourceOEmbed, err)
	}
	if !ok(resp.status) {
		return nil, statusError(SourceOEmbed, resp.status)
	}

	var out oembedResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, unavailable(SourceOEmbed, "malformed response body")
	}
	p := &model.ReelPayload{
		Type:      model.MediaTypeEmbed,
		Method:    SourceOEmbed,
		Thumbnail: out.ThumbnailURL,
		Title:     out.Title,
		Caption:   out.Title,
		Author:    out.AuthorName,
		AuthorURL: out.AuthorURL,
		EmbedHTML: out.HTML,
		Warning:   OEmbedWarning,
	}
	if out.AuthorName != "" {
		p.Owner = &model.ReelOwner{Username: out.AuthorName}
	}
	if out.ThumbnailWidth > 0 && out.ThumbnailHeight > 0 {
		p.Dimensions = &model.Dimensions{Width: out.ThumbnailWidth, Height: out.ThumbnailHeight}
	}
	if p.Fidelity() == model.FidelityNone {
		return nil, unavailable(SourceOEmbed, "empty embed response")
	}
	return p, nil
}
