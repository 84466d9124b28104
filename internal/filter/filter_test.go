package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qepting91/redelete/internal/domain"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func item(sub string, score int, age time.Duration) domain.HistoryItem {
	return domain.HistoryItem{
		ID:        "abc",
		Name:      "t1_abc",
		Kind:      domain.Comment,
		Subreddit: sub,
		Score:     score,
		CreatedAt: now.Add(-age),
	}
}

func TestEvaluate(t *testing.T) {
	rules := domain.FilterRule{
		ExcludedSubreddits: []string{"rust"},
		MinAgeHours:        domain.Int(24),
		MinScoreThreshold:  domain.Int(500),
	}

	tests := []struct {
		name     string
		item     domain.HistoryItem
		rules    domain.FilterRule
		expected domain.Decision
	}{
		{
			name:     "excluded_subreddit",
			item:     item("rust", 10, 48*time.Hour),
			rules:    rules,
			expected: domain.Retain(domain.ReasonSubreddit),
		},
		{
			name:     "subreddit_wins_over_age_and_score",
			item:     item("rust", 9000, time.Minute),
			rules:    rules,
			expected: domain.Retain(domain.ReasonSubreddit),
		},
		{
			name:     "too_new",
			item:     item("go", 10, 23*time.Hour),
			rules:    rules,
			expected: domain.Retain(domain.ReasonTooNew),
		},
		{
			name:     "age_wins_over_score",
			item:     item("go", 9000, time.Hour),
			rules:    rules,
			expected: domain.Retain(domain.ReasonTooNew),
		},
		{
			name:     "score_at_threshold",
			item:     item("go", 500, 48*time.Hour),
			rules:    rules,
			expected: domain.Retain(domain.ReasonScoreTooHigh),
		},
		{
			name:     "score_below_threshold",
			item:     item("go", 499, 48*time.Hour),
			rules:    rules,
			expected: domain.Delete,
		},
		{
			name:     "negative_score",
			item:     item("go", -20, 48*time.Hour),
			rules:    rules,
			expected: domain.Delete,
		},
		{
			name:     "no_rules_full_wipe",
			item:     item("rust", 9000, 0),
			rules:    domain.FilterRule{},
			expected: domain.Delete,
		},
		{
			name:     "zero_score_threshold_is_set",
			item:     item("go", 0, 0),
			rules:    domain.FilterRule{MinScoreThreshold: domain.Int(0)},
			expected: domain.Retain(domain.ReasonScoreTooHigh),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.item, tt.rules, now))
		})
	}
}

func TestEvaluateAgeBoundary(t *testing.T) {
	rules := domain.FilterRule{MinAgeHours: domain.Int(24)}

	assert.Equal(t, domain.Delete, Evaluate(item("go", 0, 24*time.Hour), rules, now),
		"an item exactly min_age_hours old is deleted")
	assert.Equal(t, domain.Retain(domain.ReasonTooNew),
		Evaluate(item("go", 0, 24*time.Hour-time.Nanosecond), rules, now))
	assert.Equal(t, domain.Delete, Evaluate(item("go", 0, 24*time.Hour+time.Second), rules, now))
}

func TestEvaluateStableOnSameSideOfBoundary(t *testing.T) {
	rules := domain.FilterRule{MinAgeHours: domain.Int(24), MinScoreThreshold: domain.Int(100)}
	it := item("go", 5, 0)
	it.CreatedAt = now.Add(-10 * time.Hour)

	youngA := Evaluate(it, rules, now)
	youngB := Evaluate(it, rules, now.Add(13*time.Hour))
	assert.Equal(t, youngA, youngB)

	oldA := Evaluate(it, rules, now.Add(14*time.Hour))
	oldB := Evaluate(it, rules, now.Add(1000*time.Hour))
	assert.Equal(t, oldA, oldB)
	assert.NotEqual(t, youngA, oldA)

	for i := 0; i < 5; i++ {
		assert.Equal(t, youngA, Evaluate(it, rules, now))
	}
}

func TestEvaluateSubredditCaseInsensitive(t *testing.T) {
	rules := domain.FilterRule{ExcludedSubreddits: []string{"AskReddit", "r/golang"}}

	for _, sub := range []string{"askreddit", "ASKREDDIT", "AskReddit", "r/AskReddit", "GoLang", "/r/golang"} {
		assert.Equal(t, domain.Retain(domain.ReasonSubreddit), Evaluate(item(sub, 0, 0), rules, now), sub)
	}
	assert.Equal(t, domain.Delete, Evaluate(item("askredditt", 0, 0), rules, now))
}

func TestEvaluateDoesNotMutateRules(t *testing.T) {
	rules := domain.FilterRule{ExcludedSubreddits: []string{"R/Rust"}, MinAgeHours: domain.Int(1)}
	snapshot := rules.Clone()

	Evaluate(item("rust", 0, 0), rules, now)

	assert.Equal(t, snapshot, rules)
}
