package collector

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/domain"
)

// statusKind maps an HTTP status to an error kind. 2xx maps to nil.
func statusKind(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return domain.ErrUnauthorized
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code >= 500, code == http.StatusRequestTimeout:
		return domain.ErrTransient
	default:
		return nil
	}
}

// kindOf classifies err coming from an HTTP round trip or the reddit library.
func kindOf(err error) error {
	if kind := domain.KindOf(err); kind != nil {
		return kind
	}

	var rateErr *reddit.RateLimitError
	if errors.As(err, &rateErr) {
		return domain.ErrRateLimited
	}
	var respErr *reddit.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return statusKind(respErr.Response.StatusCode)
	}
	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		if tokenErr.Response != nil && statusKind(tokenErr.Response.StatusCode) == domain.ErrTransient {
			return domain.ErrTransient
		}
		return domain.ErrUnauthorized
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrTransient
	}
	return nil
}

// fetchError wraps a listing failure. Rate limiting is retried like any
// other transient failure; not-found is not retryable.
func fetchError(err error) error {
	switch kind := kindOf(err); kind {
	case domain.ErrUnauthorized, domain.ErrTransient:
		return &domain.FetchError{Kind: kind, Err: err}
	case domain.ErrRateLimited:
		return &domain.FetchError{Kind: domain.ErrTransient, Err: err}
	default:
		return &domain.FetchError{Err: err}
	}
}

func execError(item domain.HistoryItem, err error) error {
	kind := kindOf(err)
	if kind == nil {
		kind = domain.ErrTransient
	}
	return &domain.ExecError{ID: item.ID, Kind: kind, Err: err}
}
