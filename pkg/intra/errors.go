package intra

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRequestFailed    = errors.New("request failed")
	ErrRequestExhausted = errors.New("request exhausted")
)

// RequestError describes a request that failed against the API.
// It unwraps to ErrRequestFailed or ErrRequestExhausted.
type RequestError struct {
	Kind     error
	URL      string
	Status   int
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrRequestExhausted):
		return fmt.Sprintf("%v: %s still rate limited after %d attempts", e.Kind, e.URL, e.Attempts)
	case e.Status != 0:
		return fmt.Sprintf("%v: %s returned %d %s", e.Kind, e.URL, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.URL)
	}
}

func (e *RequestError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
