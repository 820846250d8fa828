package instagram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
	"reelshare/domain/model"
	"reelshare/domain/repository"
)

const SourceJSON = "json"

type detailQuery struct {
	A string `url:"__a"`
	D string `url:"__d"`
}

// JSONSource reads the per-item detail document for a shortcode.
type JSONSource struct {
	client  *http.Client
	baseURL string
}

func NewJSONSource(opts Options) repository.IReelSource {
	return &JSONSource{client: opts.client(), baseURL: strings.TrimSuffix(orDefault(opts.JSONBaseURL, DefaultPageBaseURL), "/")}
}

func (s *JSONSource) Name() string { return SourceJSON }

func (s *JSONSource) Resolve(ctx context.Context, _, shortcode string) (*model.ReelPayload, error) {
	v, err := query.Values(detailQuery{A: "1", D: "dis"})
	if err != nil {
		return nil, unavailable(SourceJSON, err.Error())
	}
	target := fmt.Sprintf("%s/p/%s/?%s", s.baseURL, shortcode, v.Encode())

	resp, err := do(ctx, s.client, http.MethodGet, target, nil, map[string]string{
		"User-Agent":      UserAgentFor(shortcode),
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"X-IG-App-ID":     "936619743392459",
	})
	if err != nil {
		return nil, transportError(SourceJSON, err)
	}
	if !ok(resp.status) {
		return nil, statusError(SourceJSON, resp.status)
	}

	p := decodeDetail(resp.body, SourceJSON)
	if p == nil {
		return nil, unavailable(SourceJSON, "no media url in detail response")
	}
	return p, nil
}
