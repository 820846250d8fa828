package dto

import "reelshare/domain/model"

// SubmitReelRequest is the body of POST /api/reels.
type SubmitReelRequest struct {
	SourceURL string `json:"sourceUrl"`
	// URL is accepted for clients that still post {"url": ...}.
	URL string `json:"url"`
}

func (r SubmitReelRequest) Link() string {
	if r.SourceURL != "" {
		return r.SourceURL
	}
	return r.URL
}

// ResolveReelResponse is returned by POST /api/reels/resolve; nothing is stored.
type ResolveReelResponse struct {
	Success bool               `json:"success"`
	Data    *model.ReelPayload `json:"data"`
}

type SubmitReelResponse struct {
	ID         string           `json:"id"`
	Identifier string           `json:"identifier"`
	Status     model.ReelStatus `json:"status"`
}

// BulkSubmitRequest is the body of POST /api/reels/bulk. Entries may be full
// links or bare shortcodes.
type BulkSubmitRequest struct {
	SourceURLs []string `json:"sourceUrls"`
	Shortcodes []string `json:"shortcodes"`
}

func (r BulkSubmitRequest) Entries() []string {
	if len(r.SourceURLs) > 0 {
		return r.SourceURLs
	}
	return r.Shortcodes
}

type BulkItemResult struct {
	Input      string           `json:"input"`
	Identifier string           `json:"identifier,omitempty"`
	ID         string           `json:"id,omitempty"`
	Status     model.ReelStatus `json:"status,omitempty"`
	Accepted   bool             `json:"accepted"`
	Message    string           `json:"message,omitempty"`
}

type BulkSubmitResponse struct {
	Total    int              `json:"total"`
	Accepted int              `json:"accepted"`
	Rejected int              `json:"rejected"`
	Errors   []string         `json:"errors"`
	Items    []BulkItemResult `json:"items"`
}

// ReelListQuery carries listing filters; zero Limit means the default page size.
type ReelListQuery struct {
	Status      model.ReelStatus
	SubmittedBy string
	Limit       int64
	Skip        int64
}

type ReelListResponse struct {
	Count int           `json:"count"`
	Total int64         `json:"total"`
	Reels []*model.Reel `json:"reels"`
}

type MyReelsResponse struct {
	ReelListResponse
	Stats model.ReelStats `json:"stats"`
}

type SenderStatistics struct {
	TotalShared      int64 `json:"totalShared"`
	SuccessfulShares int64 `json:"successfulShares"`
	PendingShares    int64 `json:"pendingShares"`
	FailedShares     int64 `json:"failedShares"`
	TotalViews       int64 `json:"totalViews"`
}

type ViewerStatistics struct {
	TotalReelsAvailable int64 `json:"totalReelsAvailable"`
	TotalSenders        int64 `json:"totalSenders"`
	RecentReels         int64 `json:"recentReels"`
}
