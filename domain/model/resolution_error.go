package model

import "fmt"

type FailureCategory string

const (
	FailureInvalidURL  FailureCategory = "invalid_url"
	FailureDuplicate   FailureCategory = "duplicate"
	FailureUnavailable FailureCategory = "unavailable"
	FailureBlocked     FailureCategory = "blocked"
	FailureInternal    FailureCategory = "internal"
)

// ResolutionError is returned by resolution sources and by the resolver.
type ResolutionError struct {
	Category   FailureCategory
	Message    string
	Source     string
	StatusCode int
}

func (e *ResolutionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Source, e.Message, e.Category)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Category)
}

func (e *ResolutionError) Reason() *FailureReason {
	return &FailureReason{Message: e.Message, Category: e.Category}
}

// Blocked reports whether upstream denied access; retrying later may help.
func (e *ResolutionError) Blocked() bool {
	return e.Category == FailureBlocked
}
