package collector

import (
	"context"

	"github.com/qepting91/redelete/internal/domain"
)

// MaxPageSize is the largest listing page reddit hands out.
const MaxPageSize = 100

// Listing is one page of a single remote listing.
type Listing struct {
	Items []domain.HistoryItem // newest first
	After string               // empty when the listing has no more pages
}

// Source is a remote account exposing submitted and comment listings.
type Source interface {
	List(ctx context.Context, account string, kind domain.Kind, after string, limit int) (Listing, error)
	domain.Remover
}

// History merges an account's submitted and comments listings into one
// newest-first stream. It implements domain.Collector.
type History struct {
	src      Source
	pageSize int
}

func NewHistory(src Source, pageSize int) *History {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &History{src: src, pageSize: pageSize}
}

// FetchNext returns the next run of merged items. A stream is only
// refilled once its buffered items are used up, so each call makes at most
// one request per listing. Items are released only while both streams can
// vouch that nothing newer is still to come.
func (h *History) FetchNext(ctx context.Context, account string, cursor *domain.Cursor) (domain.Page, error) {
	if cursor.Exhausted() {
		return domain.Page{}, &domain.FetchError{Kind: domain.ErrExhausted}
	}
	next := cursor.Clone()

	streams := []struct {
		kind domain.Kind
		pos  *domain.StreamPosition
	}{
		{domain.Post, &next.Posts},
		{domain.Comment, &next.Comments},
	}
	for _, s := range streams {
		if s.pos.Done || len(s.pos.Pending) > 0 {
			continue
		}
		listing, err := h.src.List(ctx, account, s.kind, s.pos.After, h.pageSize)
		if err != nil {
			return domain.Page{}, err
		}
		s.pos.Pending = listing.Items
		s.pos.After = listing.After
		if listing.After == "" || len(listing.Items) == 0 {
			s.pos.Done = true
		}
	}

	items := merge(&next.Posts, &next.Comments)
	if len(items) == 0 && next.Exhausted() {
		return domain.Page{}, &domain.FetchError{Kind: domain.ErrExhausted}
	}
	return domain.Page{Items: items, Next: next}, nil
}

func (h *History) Remove(ctx context.Context, item domain.HistoryItem) error {
	return h.src.Remove(ctx, item)
}

func merge(posts, comments *domain.StreamPosition) []domain.HistoryItem {
	var out []domain.HistoryItem
	for {
		if len(posts.Pending) == 0 && !posts.Done {
			return out
		}
		if len(comments.Pending) == 0 && !comments.Done {
			return out
		}
		switch {
		case len(posts.Pending) == 0 && len(comments.Pending) == 0:
			return out
		case len(comments.Pending) == 0,
			len(posts.Pending) > 0 && !comments.Pending[0].NewerThan(posts.Pending[0]):
			out = append(out, posts.Pending[0])
			posts.Pending = posts.Pending[1:]
		default:
			out = append(out, comments.Pending[0])
			comments.Pending = comments.Pending[1:]
		}
	}
}
