package scraper

import (
	"errors"
	"fmt"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// Reason classifies why a record could not be extracted.
type Reason string

// Extraction failure reasons.
const (
	ReasonUnreachable      Reason = "unreachable"
	ReasonHTTPStatus       Reason = "http_status"
	ReasonUnexpectedMarkup Reason = "unexpected_markup"
)

// Sentinel errors matched by errors.Is against an *ExtractError.
var (
	ErrUnreachable      = errors.New("page unreachable")
	ErrHTTPStatus       = errors.New("non-success http status")
	ErrUnexpectedMarkup = errors.New("unexpected markup")
)

// ExtractError reports a record that was discarded.
type ExtractError struct {
	URL        string
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *ExtractError) Error() string {
	switch e.Reason {
	case ReasonHTTPStatus:
		return fmt.Sprintf("extract %s: status %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Reason, e.Err)
		}
		return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
	}
}

// Unwrap exposes the underlying cause.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's reason.
func (e *ExtractError) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Reason == ReasonUnreachable
	case ErrHTTPStatus:
		return e.Reason == ReasonHTTPStatus
	case ErrUnexpectedMarkup:
		return e.Reason == ReasonUnexpectedMarkup
	}
	return false
}

// Result is a successfully extracted record. Missing lists the fields that
// were not found on the page and hold their sentinel.
type Result struct {
	Record  animal.Record
	Missing []animal.Field
}

// Complete reports whether every table field was found.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}
