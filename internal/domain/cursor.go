package domain

// StreamPosition tracks one remote listing (submitted or comments).
// Pending holds items already fetched but not yet emitted by the merge.
type StreamPosition struct {
	After   string        `json:"after,omitempty"`
	Done    bool          `json:"done,omitempty"`
	Pending []HistoryItem `json:"pending,omitempty"`
}

func (s StreamPosition) drained() bool {
	return s.Done && len(s.Pending) == 0
}

// Cursor marks a position in the merged reverse-chronological history.
// A nil *Cursor means start from the newest item.
type Cursor struct {
	Posts    StreamPosition `json:"posts"`
	Comments StreamPosition `json:"comments"`
}

// ExhaustedCursor returns the end-of-history sentinel.
func ExhaustedCursor() *Cursor {
	return &Cursor{Posts: StreamPosition{Done: true}, Comments: StreamPosition{Done: true}}
}

// Exhausted reports whether no further pages exist.
func (c *Cursor) Exhausted() bool {
	return c != nil && c.Posts.drained() && c.Comments.drained()
}

// Clone copies c; a nil cursor clones to a fresh start position.
func (c *Cursor) Clone() *Cursor {
	if c == nil {
		return &Cursor{}
	}
	out := *c
	return &out
}
