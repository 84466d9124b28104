package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadExclusions(t *testing.T) {
	input := "\uFEFFsubreddit,note\n" +
		"golang,keep\n" +
		"r/rust\n" +
		"\n" +
		"# a comment\n" +
		"GoLang,dup\n" +
		"not a sub!\n" +
		"  AskReddit  ,\n"

	subs, skipped, err := ReadExclusions(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "rust", "AskReddit"}, subs)
	assert.Equal(t, []string{"not a sub!"}, skipped)
}

func TestReadExclusionsHeaderOnly(t *testing.T) {
	subs, skipped, err := ReadExclusions(strings.NewReader("subreddit\n"))

	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Empty(t, skipped)
}

func TestLoadExclusions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.csv")
	require.NoError(t, os.WriteFile(path, []byte("subreddit\npics\n"), 0o600))

	subs, _, err := LoadExclusions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pics"}, subs)

	_, _, err = LoadExclusions(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
