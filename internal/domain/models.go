package domain

import (
	"context"
	"time"
)

// Kind distinguishes submissions from comments.
type Kind int

const (
	Post Kind = iota
	Comment
)

func (k Kind) String() string {
	switch k {
	case Post:
		return "post"
	case Comment:
		return "comment"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind appear as a word in journal lines.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// HistoryItem is one post or comment authored by the account.
type HistoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // fullname, e.g. "t3_abc123" or "t1_xyz789"
	Kind      Kind      `json:"kind"`
	Subreddit string    `json:"subreddit"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	URL       string    `json:"url,omitempty"`
}

// NewerThan orders items newest first, posts ahead of comments on equal timestamps.
func (h HistoryItem) NewerThan(o HistoryItem) bool {
	if !h.CreatedAt.Equal(o.CreatedAt) {
		return h.CreatedAt.After(o.CreatedAt)
	}
	return h.Kind < o.Kind
}

// FilterRule is the retention rule set for one account. A nil threshold
// never retains anything.
type FilterRule struct {
	ExcludedSubreddits []string
	MinAgeHours        *int
	MinScoreThreshold  *int
}

// Int returns a pointer to n, for filling FilterRule thresholds.
func Int(n int) *int {
	return &n
}

// Clone returns a copy that shares no memory with r.
func (r FilterRule) Clone() FilterRule {
	out := FilterRule{}
	if r.ExcludedSubreddits != nil {
		out.ExcludedSubreddits = append([]string(nil), r.ExcludedSubreddits...)
	}
	if r.MinAgeHours != nil {
		out.MinAgeHours = Int(*r.MinAgeHours)
	}
	if r.MinScoreThreshold != nil {
		out.MinScoreThreshold = Int(*r.MinScoreThreshold)
	}
	return out
}

// RetainReason names the rule that kept an item.
type RetainReason int

const (
	ReasonNone RetainReason = iota
	ReasonSubreddit
	ReasonTooNew
	ReasonScoreTooHigh
)

func (r RetainReason) String() string {
	switch r {
	case ReasonSubreddit:
		return "subreddit"
	case ReasonTooNew:
		return "too_new"
	case ReasonScoreTooHigh:
		return "score_too_high"
	default:
		return "none"
	}
}

// Decision is the outcome of evaluating one item against a FilterRule.
type Decision struct {
	Delete bool
	Reason RetainReason
}

func Retain(reason RetainReason) Decision {
	return Decision{Reason: reason}
}

var Delete = Decision{Delete: true}

// Mode selects whether approved items are really removed.
type Mode int

const (
	DryRun Mode = iota
	Live
)

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "dry-run"
}

// Page is one batch of merged history plus the position to continue from.
type Page struct {
	Items []HistoryItem
	Next  *Cursor
}

// Fetcher walks an account's history one page at a time.
type Fetcher interface {
	FetchNext(ctx context.Context, account string, cursor *Cursor) (Page, error)
}

// Remover issues the remote delete call for one item.
type Remover interface {
	Remove(ctx context.Context, item HistoryItem) error
}

// Collector defines the interface for history access
type Collector interface {
	Fetcher
	Remover
}
