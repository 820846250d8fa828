package model

import "time"

// ReelEvent is emitted whenever a reel reaches a terminal state.
type ReelEvent struct {
	Type        string          `json:"type"`
	ReelID      string          `json:"reelId"`
	Shortcode   string          `json:"shortcode"`
	SubmittedBy string          `json:"submittedBy"`
	Status      ReelStatus      `json:"status"`
	Method      string          `json:"method,omitempty"`
	Category    FailureCategory `json:"category,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

const ReelEventResolved = "reel.resolved"

func NewReelEvent(r *Reel) ReelEvent {
	evt := ReelEvent{
		Type:        ReelEventResolved,
		ReelID:      r.ID.Hex(),
		Shortcode:   r.Shortcode,
		SubmittedBy: r.SubmittedBy.Hex(),
		Status:      r.Status,
		Attempts:    r.Attempts,
		OccurredAt:  time.Now().UTC(),
	}
	if r.Payload != nil {
		evt.Method = r.Payload.Method
	}
	if r.Failure != nil {
		evt.Category = r.Failure.Category
		evt.Error = r.Failure.Message
	}
	return evt
}
