package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qepting91/redelete/internal/domain"
)

// MockClient implements Source over an in-memory history
type MockClient struct {
	mu       sync.Mutex
	items    map[domain.Kind][]domain.HistoryItem
	deleted  map[string]bool
	Latency  time.Duration
	ListErrs []error // returned, in order, by the next List calls
}

// NewMockClient builds a fake history of n posts and n comments, one per
// hour counted back from now, spread over a handful of subreddits.
func NewMockClient(n int, now time.Time) *MockClient {
	subs := []string{"golang", "rust", "AskReddit", "programming", "pics"}
	var items []domain.HistoryItem
	for i := 0; i < n; i++ {
		sub := subs[i%len(subs)]
		at := now.Add(-time.Duration(2*i) * time.Hour).UTC()
		items = append(items,
			domain.HistoryItem{
				ID:        fmt.Sprintf("p%d", i),
				Name:      fmt.Sprintf("t3_p%d", i),
				Kind:      domain.Post,
				Subreddit: sub,
				CreatedAt: at,
				Score:     (i * 37) % 1200,
				Title:     fmt.Sprintf("[%s] Simulated submission #%d", sub, i),
				URL:       "http://localhost/mock-url",
			},
			domain.HistoryItem{
				ID:        fmt.Sprintf("c%d", i),
				Name:      fmt.Sprintf("t1_c%d", i),
				Kind:      domain.Comment,
				Subreddit: sub,
				CreatedAt: at.Add(-time.Hour),
				Score:     (i*53)%300 - 20,
				Body:      fmt.Sprintf("Simulated comment #%d", i),
			},
		)
	}
	return NewMockClientWith(items...)
}

// NewMockClientWith serves exactly items. Each listing is sorted newest first.
func NewMockClientWith(items ...domain.HistoryItem) *MockClient {
	mc := &MockClient{items: make(map[domain.Kind][]domain.HistoryItem), deleted: make(map[string]bool)}
	for _, it := range items {
		mc.items[it.Kind] = insertSorted(mc.items[it.Kind], it)
	}
	return mc
}

func insertSorted(list []domain.HistoryItem, it domain.HistoryItem) []domain.HistoryItem {
	i := len(list)
	for i > 0 && it.NewerThan(list[i-1]) {
		i--
	}
	list = append(list, domain.HistoryItem{})
	copy(list[i+1:], list[i:])
	list[i] = it
	return list
}

func (mc *MockClient) List(ctx context.Context, account string, kind domain.Kind, after string, limit int) (Listing, error) {
	if mc.Latency > 0 {
		select {
		case <-time.After(mc.Latency):
		case <-ctx.Done():
			return Listing{}, &domain.FetchError{Kind: domain.ErrTransient, Err: ctx.Err()}
		}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.ListErrs) > 0 {
		err := mc.ListErrs[0]
		mc.ListErrs = mc.ListErrs[1:]
		if err != nil {
			return Listing{}, err
		}
	}

	// Deleted items drop out of the listing, as they do remotely.
	var live []domain.HistoryItem
	for _, it := range mc.items[kind] {
		if !mc.deleted[it.Name] || it.Name == after {
			live = append(live, it)
		}
	}

	start := 0
	if after != "" {
		start = len(live)
		for i, it := range live {
			if it.Name == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(live) {
		end = len(live)
	}

	var out Listing
	for _, it := range live[start:end] {
		if !mc.deleted[it.Name] {
			out.Items = append(out.Items, it)
		}
	}
	if end < len(live) && end > start {
		out.After = live[end-1].Name
	}
	return out, nil
}

func (mc *MockClient) Remove(_ context.Context, item domain.HistoryItem) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.deleted[item.Name] || !mc.known(item.Name) {
		return &domain.ExecError{ID: item.ID, Kind: domain.ErrNotFound}
	}
	mc.deleted[item.Name] = true
	return nil
}

// Deleted reports whether name was removed.
func (mc *MockClient) Deleted(name string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.deleted[name]
}

func (mc *MockClient) known(name string) bool {
	for _, list := range mc.items {
		for _, it := range list {
			if it.Name == name {
				return true
			}
		}
	}
	return false
}
