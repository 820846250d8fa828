package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"
)

const (
	SourceHTML = "html"

	HTMLWarning = "This data may expire quickly. Media URLs are temporary and may require authentication."
)

var (
	sharedDataPattern     = regexp.MustCompile(`(?s)window\._sharedData\s*=\s*(\{.*\})\s*;?\s*$`)
	additionalDataPattern = regexp.MustCompile(`(?s)additionalDataLoaded\(\s*'[^']*'\s*,\s*(\{.*\})\s*\)\s*;?\s*$`)
)

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Cache-Control":             "max-age=0",
}

// pageMatcher extracts a payload from a parsed page, or nil.
type pageMatcher struct {
	name  string
	match func(doc *goquery.Document) *model.ReelPayload
}

var pageMatchers = []pageMatcher{
	{"shared_data", matchSharedData},
	{"ld_json", matchLinkedData},
	{"additional_data", matchAdditionalData},
	{"meta_tags", matchMetaTags},
}

// HTMLSource scrapes the public reel page.
type HTMLSource struct {
	client  *http.Client
	baseURL string
}

func NewHTMLSource(opts Options) repository.IReelSource {
	return &HTMLSource{client: opts.client(), baseURL: strings.TrimSuffix(orDefault(opts.PageBaseURL, DefaultPageBaseURL), "/")}
}

func (s *HTMLSource) Name() string { return SourceHTML }

func (s *HTMLSource) Resolve(ctx context.Context, _, shortcode string) (*model.ReelPayload, error) {
	headers := make(map[string]string, len(browserHeaders)+1)
	for k, v := range browserHeaders {
		headers[k] = v
	}
	headers["User-Agent"] = UserAgentFor(shortcode)

	resp, err := do(ctx, s.client, http.MethodGet, fmt.Sprintf("%s/reel/%s/", s.baseURL, shortcode), nil, headers)
	if err != nil {
		return nil, transportError(SourceHTML, err)
	}
	if !ok(resp.status) {
		return nil, statusError(SourceHTML, resp.status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.body))
	if err != nil {
		return nil, unavailable(SourceHTML, "unparseable page")
	}
	for _, m := range pageMatchers {
		if p := m.match(doc); p != nil {
			logger.GetLogger().WithField("shortcode", shortcode).WithField("matcher", m.name).Debug("Page matcher succeeded")
			p.Method = SourceHTML
			p.Warning = HTMLWarning
			return p, nil
		}
	}

	if looksLikeLoginWall(strings.ToLower(string(resp.body))) {
		return nil, &model.ResolutionError{Category: model.FailureBlocked, Source: SourceHTML, StatusCode: resp.status, Message: "instagram served a login page"}
	}
	return nil, unavailable(SourceHTML, "could not find media in page")
}

func looksLikeLoginWall(lowerBody string) bool {
	return strings.Contains(lowerBody, "instagram.com/accounts/login") ||
		strings.Contains(lowerBody, "loginform")
}

// scriptMatching returns the first capture of re across the page's script bodies.
func scriptMatching(doc *goquery.Document, marker string, re *regexp.Regexp) []byte {
	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, marker) {
			return true
		}
		if m := re.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			found = []byte(m[1])
			return false
		}
		return true
	})
	return found
}

type sharedData struct {
	EntryData struct {
		PostPage []struct {
			GraphQL struct {
				ShortcodeMedia *shortcodeMedia `json:"shortcode_media"`
			} `json:"graphql"`
		} `json:"PostPage"`
	} `json:"entry_data"`
}

func matchSharedData(doc *goquery.Document) *model.ReelPayload {
	raw := scriptMatching(doc, "window._sharedData", sharedDataPattern)
	if raw == nil {
		return nil
	}
	var sd sharedData
	if err := json.Unmarshal(raw, &sd); err != nil || len(sd.EntryData.PostPage) == 0 {
		return nil
	}
	media := sd.EntryData.PostPage[0].GraphQL.ShortcodeMedia
	if media == nil {
		return nil
	}
	p := media.payload(SourceHTML)
	if p.Fidelity() < model.FidelityImage {
		return nil
	}
	return p
}

func matchAdditionalData(doc *goquery.Document) *model.ReelPayload {
	raw := scriptMatching(doc, "additionalDataLoaded", additionalDataPattern)
	if raw == nil {
		return nil
	}
	return decodeDetail(raw, SourceHTML)
}

// stringList accepts either a JSON string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l stringList) first() string {
	for _, s := range l {
		if s != "" {
			return s
		}
	}
	return ""
}

type ldVideo struct {
	ContentURL   string      `json:"contentUrl"`
	ThumbnailURL stringList  `json:"thumbnailUrl"`
	Width        json.Number `json:"width"`
	Height       json.Number `json:"height"`
}

type linkedData struct {
	ldVideo
	Name        string     `json:"name"`
	Caption     string     `json:"caption"`
	Description string     `json:"description"`
	ArticleBody string     `json:"articleBody"`
	Image       stringList `json:"image"`
	Video       []ldVideo  `json:"video"`
	Author      struct {
		Name          string `json:"name"`
		AlternateName string `json:"alternateName"`
		URL           string `json:"url"`
	} `json:"author"`
}

func matchLinkedData(doc *goquery.Document) *model.ReelPayload {
	var p *model.ReelPayload
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := []byte(strings.TrimSpace(sel.Text()))
		var blocks []linkedData
		if err := json.Unmarshal(raw, &blocks); err != nil {
			var one linkedData
			if err := json.Unmarshal(raw, &one); err != nil {
				return true
			}
			blocks = []linkedData{one}
		}
		for i := range blocks {
			if p = blocks[i].payload(); p != nil {
				return false
			}
		}
		return true
	})
	return p
}

func (ld *linkedData) payload() *model.ReelPayload {
	video := ld.ldVideo
	if video.ContentURL == "" && len(ld.Video) > 0 {
		video = ld.Video[0]
	}
	p := &model.ReelPayload{
		VideoURL:  video.ContentURL,
		ImageURL:  ld.Image.first(),
		Thumbnail: video.ThumbnailURL.first(),
		Title:     ld.Name,
		Caption:   firstNonEmpty(ld.Caption, ld.ArticleBody, ld.Description),
		Author:    firstNonEmpty(ld.Author.AlternateName, ld.Author.Name),
		AuthorURL: ld.Author.URL,
	}
	if p.ImageURL == "" {
		p.ImageURL = p.Thumbnail
	}
	if p.Author != "" {
		p.Owner = &model.ReelOwner{Username: p.Author}
	}
	w, _ := video.Width.Int64()
	h, _ := video.Height.Int64()
	if w > 0 && h > 0 {
		p.Dimensions = &model.Dimensions{Width: int(w), Height: int(h)}
	}
	if p.Fidelity() < model.FidelityImage {
		return nil
	}
	return typed(p)
}

func matchMetaTags(doc *goquery.Document) *model.ReelPayload {
	meta := func(property string) string {
		return strings.TrimSpace(doc.Find(fmt.Sprintf(`meta[property="%s"]`, property)).AttrOr("content", ""))
	}
	p := &model.ReelPayload{
		VideoURL: firstNonEmpty(meta("og:video:secure_url"), meta("og:video")),
		ImageURL: meta("og:image"),
		Title:    meta("og:title"),
		Caption:  meta("og:description"),
	}
	p.Thumbnail = p.ImageURL
	if p.Fidelity() < model.FidelityImage {
		return nil
	}
	return typed(p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
