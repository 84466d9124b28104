package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/qepting91/redelete/internal/domain"
)

// WriterService appends run outcomes to an NDJSON journal. It is the only
// goroutine touching the file.
type WriterService struct {
	FilePath string

	mu  sync.Mutex
	err error
	n   int
}

// Start consumes input until it is closed. Input is always drained, even
// when the file cannot be written, so senders never block.
func (w *WriterService) Start(wg *sync.WaitGroup, input <-chan domain.Outcome) {
	defer wg.Done()

	f, err := w.open()
	if err != nil {
		w.fail(err)
		for range input {
		}
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.fail(fmt.Errorf("close journal: %w", err))
		}
	}()

	enc := json.NewEncoder(f)

	for outcome := range input {
		// Write as NDJSON
		if err := enc.Encode(outcome); err != nil {
			w.fail(fmt.Errorf("write journal: %w", err))
			continue
		}
		w.mu.Lock()
		w.n++
		w.mu.Unlock()
	}
}

func (w *WriterService) open() (*os.File, error) {
	if dir := filepath.Dir(w.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return f, nil
}

func (w *WriterService) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first write failure. Call it after Start has returned.
func (w *WriterService) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Written returns how many outcomes reached the file.
func (w *WriterService) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}
