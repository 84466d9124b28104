package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/redelete/internal/domain"
)

func TestRender(t *testing.T) {
	res := domain.RunResult{
		Seen:     3,
		Pages:    1,
		Retained: domain.RetainedTally{Subreddit: 1, ScoreTooHigh: 1},
		Deleted:  1,
	}
	var buf bytes.Buffer

	require.NoError(t, Render(&buf, "someone", res))

	html := buf.String()
	assert.Contains(t, html, "Retained Items")
	assert.Contains(t, html, "Run Outcome")
	assert.Contains(t, html, "excluded subreddit")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, WriteFile(path, "someone", domain.RunResult{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
}
