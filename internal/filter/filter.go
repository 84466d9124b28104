// Package filter decides which history items are kept.
package filter

import (
	"strings"
	"time"

	"github.com/qepting91/redelete/internal/domain"
)

// Evaluate applies rules to item in a fixed order: excluded subreddit, then
// age, then score. It performs no I/O and depends only on its arguments.
//
// An item exactly MinAgeHours old is old enough to delete. Subreddit names
// compare case-insensitively, ignoring a leading "r/".
func Evaluate(item domain.HistoryItem, rules domain.FilterRule, now time.Time) domain.Decision {
	if excluded(item.Subreddit, rules.ExcludedSubreddits) {
		return domain.Retain(domain.ReasonSubreddit)
	}
	if rules.MinAgeHours != nil {
		minAge := time.Duration(*rules.MinAgeHours) * time.Hour
		if now.Sub(item.CreatedAt) < minAge {
			return domain.Retain(domain.ReasonTooNew)
		}
	}
	if rules.MinScoreThreshold != nil && item.Score >= *rules.MinScoreThreshold {
		return domain.Retain(domain.ReasonScoreTooHigh)
	}
	return domain.Delete
}

// NormalizeSubreddit strips the "r/" prefix and surrounding space and lowercases.
func NormalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	} else if len(name) >= 3 && strings.EqualFold(name[:3], "/r/") {
		name = name[3:]
	}
	return strings.ToLower(name)
}

func excluded(sub string, list []string) bool {
	if len(list) == 0 {
		return false
	}
	sub = NormalizeSubreddit(sub)
	for _, s := range list {
		if NormalizeSubreddit(s) == sub {
			return true
		}
	}
	return false
}
