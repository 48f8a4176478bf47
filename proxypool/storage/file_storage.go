package storage

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"proxyz/internal/shared/logger"
)

// ListFile persists a candidate list as UTF-8 text, one address:port per
// line. Blank lines and lines starting with '#' are ignored on read;
// writes are sorted, deduplicated and overwrite the file.
type ListFile struct {
	path string
}

// NewListFile wraps the given path. The file need not exist yet.
func NewListFile(path string) *ListFile {
	return &ListFile{path: path}
}

// Path returns the wrapped file path.
func (f *ListFile) Path() string {
	return f.path
}

// Load reads all candidate tokens from the file, in file order.
func (f *ListFile) Load() ([]string, error) {
	l := logger.WithComponent("ProxyPool/Storage")

	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var tokens []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	l.Debug().Int("count", len(tokens)).Str("path", f.path).Msg("Loaded candidate list.")
	return tokens, nil
}

// Save writes the tokens back sorted and deduplicated, one per line with
// a trailing newline, replacing whatever the file held before.
func (f *ListFile) Save(tokens []string) error {
	l := logger.WithComponent("ProxyPool/Storage")

	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for t := range unique {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	var sb strings.Builder
	for _, t := range sorted {
		sb.WriteString(t)
		sb.WriteString("\n")
	}

	if err := os.WriteFile(f.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}

	l.Debug().Int("count", len(sorted)).Str("path", f.path).Msg("Saved candidate list.")
	return nil
}
