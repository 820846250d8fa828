package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reelshare/domain/model"
)

const (
	DefaultPageBaseURL = "https://www.instagram.com"
	DefaultOEmbedURL   = "https://api.instagram.com/oembed/"

	maxBodyBytes = 5 << 20
)

// Options configures the resolution sources. Empty URLs fall back to the public endpoints.
type Options struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	DirectEndpoint string
	JSONBaseURL    string
	OEmbedURL      string
	PageBaseURL    string
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type response struct {
	status int
	body   []byte
}

func do(ctx context.Context, client *http.Client, method, target string, body any, headers map[string]string) (*response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

func unavailable(source, message string) *model.ResolutionError {
	return &model.ResolutionError{Category: model.FailureUnavailable, Message: message, Source: source}
}

func transportError(source string, err error) *model.ResolutionError {
	return unavailable(source, fmt.Sprintf("request failed: %v", err))
}

// statusError maps a non-2xx upstream status to a failure. Access denials and
// throttling are reported as blocked.
func statusError(source string, status int) *model.ResolutionError {
	e := &model.ResolutionError{Category: model.FailureUnavailable, Source: source, StatusCode: status}
	switch status {
	case http.StatusNotFound:
		e.Message = "reel not found or is private"
	case http.StatusTooManyRequests:
		e.Category = model.FailureBlocked
		e.Message = "rate limited by instagram"
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Category = model.FailureBlocked
		e.Message = "access forbidden, instagram requires login or blocked this client"
	default:
		e.Message = fmt.Sprintf("instagram returned status %d", status)
	}
	return e
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
