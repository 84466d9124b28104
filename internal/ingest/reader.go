package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/qepting91/redelete/internal/filter"
)

// Regex for valid subreddit names
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

// LoadExclusions reads subreddit names from the first column of a CSV file
// with a header row. Blank, malformed and duplicate names are skipped; the
// skipped names are returned so callers can report them.
func LoadExclusions(path string) (subs []string, skipped []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadExclusions(f)
}

func ReadExclusions(src io.Reader) (subs []string, skipped []string, err error) {
	// Wrap in BOM stripper
	r := csv.NewReader(stripBOM(src))
	r.FieldsPerRecord = -1
	r.Comment = '#'

	seen := make(map[string]bool)
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped = append(skipped, fmt.Sprintf("line %d", parseErr.Line))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		line++
		if line == 1 {
			continue // Skip header
		}
		if len(record) == 0 {
			continue
		}

		// Validation (Fail-Soft)
		sub := strings.TrimSpace(record[0])
		name := strings.TrimPrefix(strings.TrimPrefix(sub, "/"), "r/")
		if sub == "" {
			continue
		}
		if !subNameRegex.MatchString(name) {
			skipped = append(skipped, sub)
			continue
		}
		key := filter.NormalizeSubreddit(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		subs = append(subs, name)
	}
	return subs, skipped, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
