package domain

import "time"

// ExecStatus is the per-item outcome of the deletion executor.
type ExecStatus int

const (
	StatusDeleted ExecStatus = iota
	StatusSkipped
	StatusFailed
)

func (s ExecStatus) String() string {
	switch s {
	case StatusDeleted:
		return "deleted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecResult is what the executor did with one approved item.
// AlreadyGone is set when the remote answered not-found.
type ExecResult struct {
	Item        HistoryItem
	Status      ExecStatus
	AlreadyGone bool
	Err         *ExecError
}

// ItemFailure is one entry of RunResult.Failures.
type ItemFailure struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Err  string `json:"error"`
}

// RetainedTally counts retained items by the rule that kept them.
type RetainedTally struct {
	Subreddit    int `json:"subreddit"`
	TooNew       int `json:"too_new"`
	ScoreTooHigh int `json:"score_too_high"`
}

func (t RetainedTally) Total() int {
	return t.Subreddit + t.TooNew + t.ScoreTooHigh
}

// RunResult aggregates one traversal.
type RunResult struct {
	Seen     int           `json:"seen"`
	Retained RetainedTally `json:"retained"`
	Deleted  int           `json:"deleted"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Pages    int           `json:"pages"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// Retain tallies one retained item.
func (r *RunResult) Retain(reason RetainReason) {
	switch reason {
	case ReasonSubreddit:
		r.Retained.Subreddit++
	case ReasonTooNew:
		r.Retained.TooNew++
	case ReasonScoreTooHigh:
		r.Retained.ScoreTooHigh++
	}
}

// Record tallies one executor outcome.
func (r *RunResult) Record(res ExecResult) {
	switch res.Status {
	case StatusDeleted:
		r.Deleted++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
		f := ItemFailure{ID: res.Item.ID}
		if res.Err != nil {
			if res.Err.Kind != nil {
				f.Kind = res.Err.Kind.Error()
			}
			f.Err = res.Err.Error()
		}
		r.Failures = append(r.Failures, f)
	}
}

// Clean reports a run that has nothing to complain about.
func (r RunResult) Clean() bool {
	return r.Failed == 0
}

// Outcome is one journal line: what happened to an item and why.
type Outcome struct {
	Item   HistoryItem `json:"item"`
	Action string      `json:"action"`
	Reason string      `json:"reason,omitempty"`
	Error  string      `json:"error,omitempty"`
	At     time.Time   `json:"at"`
}
