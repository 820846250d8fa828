package instagram

import (
	"encoding/json"

	"reelshare/domain/model"
)

// shortcodeMedia is the graphql shape found in page state blobs and the legacy detail endpoint.
type shortcodeMedia struct {
	Typename       string `json:"__typename"`
	IsVideo        bool   `json:"is_video"`
	VideoURL       string `json:"video_url"`
	DisplayURL     string `json:"display_url"`
	ThumbnailSrc   string `json:"thumbnail_src"`
	VideoViewCount int64  `json:"video_view_count"`
	Caption        struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	Likes struct {
		Count int64 `json:"count"`
	} `json:"edge_media_preview_like"`
	Comments struct {
		Count int64 `json:"count"`
	} `json:"edge_media_to_comment"`
	Owner struct {
		Username      string `json:"username"`
		ProfilePicURL string `json:"profile_pic_url"`
	} `json:"owner"`
	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
}

func (m *shortcodeMedia) payload(method string) *model.ReelPayload {
	p := &model.ReelPayload{
		Method:    method,
		ImageURL:  m.DisplayURL,
		Thumbnail: m.ThumbnailSrc,
		Likes:     m.Likes.Count,
		Comments:  m.Comments.Count,
		Views:     m.VideoViewCount,
	}
	if m.IsVideo || m.Typename == "GraphVideo" || m.Typename == "XDTGraphVideo" {
		p.VideoURL = m.VideoURL
	}
	if p.Thumbnail == "" {
		p.Thumbnail = m.DisplayURL
	}
	if len(m.Caption.Edges) > 0 {
		p.Caption = m.Caption.Edges[0].Node.Text
	}
	if m.Owner.Username != "" || m.Owner.ProfilePicURL != "" {
		p.Owner = &model.ReelOwner{Username: m.Owner.Username, ProfilePic: m.Owner.ProfilePicURL}
	}
	if m.Dimensions.Width > 0 && m.Dimensions.Height > 0 {
		p.Dimensions = &model.Dimensions{Width: m.Dimensions.Width, Height: m.Dimensions.Height}
	}
	return typed(p)
}

type imageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// mediaItem is the shape returned in "items" by the mobile web detail endpoint.
type mediaItem struct {
	MediaType     int              `json:"media_type"`
	ProductType   string           `json:"product_type"`
	VideoVersions []imageCandidate `json:"video_versions"`
	Images        struct {
		Candidates []imageCandidate `json:"candidates"`
	} `json:"image_versions2"`
	Caption *struct {
		Text string `json:"text"`
	} `json:"caption"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	PlayCount    int64 `json:"play_count"`
	ViewCount    int64 `json:"view_count"`
	User         struct {
		Username      string `json:"username"`
		ProfilePicURL string `json:"profile_pic_url"`
	} `json:"user"`
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
}

func (it *mediaItem) payload(method string) *model.ReelPayload {
	p := &model.ReelPayload{
		Method:   method,
		Likes:    it.LikeCount,
		Comments: it.CommentCount,
		Views:    it.PlayCount,
	}
	if p.Views == 0 {
		p.Views = it.ViewCount
	}
	if (it.MediaType == 2 || it.ProductType == "clips") && len(it.VideoVersions) > 0 {
		p.VideoURL = it.VideoVersions[0].URL
	}
	if len(it.Images.Candidates) > 0 {
		p.ImageURL = it.Images.Candidates[0].URL
		p.Thumbnail = it.Images.Candidates[0].URL
	}
	if it.Caption != nil {
		p.Caption = it.Caption.Text
	}
	if it.User.Username != "" || it.User.ProfilePicURL != "" {
		p.Owner = &model.ReelOwner{Username: it.User.Username, ProfilePic: it.User.ProfilePicURL}
	}
	if it.OriginalWidth > 0 && it.OriginalHeight > 0 {
		p.Dimensions = &model.Dimensions{Width: it.OriginalWidth, Height: it.OriginalHeight}
	}
	return typed(p)
}

// mediaDetail covers both detail envelopes: {"items": [...]} and {"graphql": {"shortcode_media": ...}}.
type mediaDetail struct {
	Items   []mediaItem `json:"items"`
	GraphQL struct {
		ShortcodeMedia *shortcodeMedia `json:"shortcode_media"`
	} `json:"graphql"`
	Data struct {
		ShortcodeMedia *shortcodeMedia `json:"xdt_shortcode_media"`
	} `json:"data"`
}

// decodeDetail returns nil when raw holds no recognizable media.
func decodeDetail(raw []byte, method string) *model.ReelPayload {
	var d mediaDetail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil
	}
	var p *model.ReelPayload
	switch {
	case len(d.Items) > 0:
		p = d.Items[0].payload(method)
	case d.GraphQL.ShortcodeMedia != nil:
		p = d.GraphQL.ShortcodeMedia.payload(method)
	case d.Data.ShortcodeMedia != nil:
		p = d.Data.ShortcodeMedia.payload(method)
	}
	if p.Fidelity() < model.FidelityImage {
		return nil
	}
	return p
}

// typed sets Type from the best media reference present.
func typed(p *model.ReelPayload) *model.ReelPayload {
	switch p.Fidelity() {
	case model.FidelityVideo:
		p.Type = model.MediaTypeVideo
	case model.FidelityImage:
		p.Type = model.MediaTypeImage
	default:
		p.Type = model.MediaTypeEmbed
	}
	return p
}
