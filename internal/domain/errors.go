package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by fetch and delete paths. Classify with errors.Is.
var (
	ErrExhausted    = errors.New("history exhausted")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient failure")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
)

// FetchError is returned by a Fetcher. Kind is one of ErrExhausted,
// ErrUnauthorized or ErrTransient; nil means not retryable.
type FetchError struct {
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == nil:
		return fmt.Sprintf("fetch: %v", e.Err)
	case e.Err == nil:
		return "fetch: " + e.Kind.Error()
	default:
		return fmt.Sprintf("fetch: %v: %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() []error {
	return nonNil(e.Kind, e.Err)
}

// ExecError is a per-item delete failure.
type ExecError struct {
	ID   string
	Kind error
	Err  error
}

func (e *ExecError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("delete %s: %v", e.ID, e.Kind)
	}
	return fmt.Sprintf("delete %s: %v: %v", e.ID, e.Kind, e.Err)
}

func (e *ExecError) Unwrap() []error {
	return nonNil(e.Kind, e.Err)
}

func nonNil(errs ...error) []error {
	out := errs[:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Retryable reports whether a later attempt might succeed.
func (e *ExecError) Retryable() bool {
	return errors.Is(e.Kind, ErrRateLimited) || errors.Is(e.Kind, ErrTransient)
}

// AbortCause says why a run stopped before the end of history.
type AbortCause int

const (
	AbortAuthExpired AbortCause = iota + 1
	AbortFetchFailedAfterRetries
	AbortFetchFailed
	AbortCanceled
)

func (c AbortCause) String() string {
	switch c {
	case AbortAuthExpired:
		return "auth_expired"
	case AbortFetchFailedAfterRetries:
		return "fetch_failed_after_retries"
	case AbortFetchFailed:
		return "fetch_failed"
	case AbortCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// AbortError is returned together with the partial RunResult of an aborted run.
type AbortError struct {
	Cause AbortCause
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("run aborted (%s): %v", e.Cause, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// KindOf maps err to the first matching error kind, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrNotFound, ErrRateLimited, ErrTransient, ErrExhausted} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
