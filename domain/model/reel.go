package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ReelStatus string

const (
	ReelStatusPending ReelStatus = "pending"
	ReelStatusSuccess ReelStatus = "success"
	ReelStatusFailed  ReelStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ReelStatus) Valid() bool {
	switch s {
	case ReelStatusPending, ReelStatusSuccess, ReelStatusFailed:
		return true
	}
	return false
}

func (s ReelStatus) Terminal() bool {
	return s == ReelStatusSuccess || s == ReelStatusFailed
}

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeEmbed MediaType = "embed"
)

// Reel is one submitted Instagram link and the outcome of resolving it.
// Payload is set only when Status is success, Failure only when failed.
type Reel struct {
	ID          bson.ObjectID  `json:"id"                    bson:"_id,omitempty"`
	SourceURL   string         `json:"sourceUrl"             bson:"sourceUrl"`
	Shortcode   string         `json:"shortcode"             bson:"shortcode"`
	SubmittedBy bson.ObjectID  `json:"submittedBy"           bson:"submittedBy"`
	Submitter   *AccountPublic `json:"submitter,omitempty"   bson:"-"`
	Status      ReelStatus     `json:"status"                bson:"status"`
	Payload     *ReelPayload   `json:"payload,omitempty"     bson:"payload,omitempty"`
	Failure     *FailureReason `json:"failure,omitempty"     bson:"failure,omitempty"`
	ViewCount   int64          `json:"viewCount"             bson:"viewCount"`
	Attempts    int            `json:"attempts"              bson:"attempts"`
	CreatedAt   time.Time      `json:"createdAt"             bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"             bson:"updatedAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"  bson:"resolvedAt,omitempty"`
}

// ReelPayload is the normalized media descriptor every resolution source maps into.
type ReelPayload struct {
	Type       MediaType   `json:"type"                 bson:"type"`
	Method     string      `json:"method"               bson:"method"`
	VideoURL   string      `json:"videoUrl,omitempty"   bson:"videoUrl,omitempty"`
	ImageURL   string      `json:"imageUrl,omitempty"   bson:"imageUrl,omitempty"`
	Thumbnail  string      `json:"thumbnail,omitempty"  bson:"thumbnail,omitempty"`
	Caption    string      `json:"caption,omitempty"    bson:"caption,omitempty"`
	Title      string      `json:"title,omitempty"      bson:"title,omitempty"`
	Author     string      `json:"author,omitempty"     bson:"author,omitempty"`
	AuthorURL  string      `json:"authorUrl,omitempty"  bson:"authorUrl,omitempty"`
	EmbedHTML  string      `json:"embedHtml,omitempty"  bson:"embedHtml,omitempty"`
	Likes      int64       `json:"likes"                bson:"likes"`
	Comments   int64       `json:"comments"             bson:"comments"`
	Views      int64       `json:"views"                bson:"views"`
	Owner      *ReelOwner  `json:"owner,omitempty"      bson:"owner,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Warning    string      `json:"warning,omitempty"    bson:"warning,omitempty"`
}

type ReelOwner struct {
	Username   string `json:"username,omitempty"   bson:"username,omitempty"`
	ProfilePic string `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"  bson:"width"`
	Height int `json:"height" bson:"height"`
}

type FailureReason struct {
	Message  string          `json:"message"  bson:"message"`
	Category FailureCategory `json:"category" bson:"category"`
}

// Fidelity ranks how useful a payload is for playback: a direct video URL
// beats a still image, which beats embed-only metadata.
type Fidelity int

const (
	FidelityNone Fidelity = iota
	FidelityEmbed
	FidelityImage
	FidelityVideo
)

func (p *ReelPayload) Fidelity() Fidelity {
	switch {
	case p == nil:
		return FidelityNone
	case p.VideoURL != "":
		return FidelityVideo
	case p.ImageURL != "":
		return FidelityImage
	case p.EmbedHTML != "" || p.Thumbnail != "" || p.Title != "" || p.Author != "":
		return FidelityEmbed
	}
	return FidelityNone
}

// Playable reports whether the payload carries a direct video URL.
func (p *ReelPayload) Playable() bool {
	return p.Fidelity() == FidelityVideo
}

// ReelStats is the per-status breakdown for one submitter.
type ReelStats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Pending int64 `json:"pending"`
	Failed  int64 `json:"failed"`
}
