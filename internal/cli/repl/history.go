package repl

import (
	"os"
	"path/filepath"
	"strings"
)

const maxHistory = 1000

// History is the list of lines entered in the shell, oldest first,
// persisted one line per entry.
type History struct {
	path  string
	lines []string
	limit int
}

// NewHistory returns an empty History stored at path. An empty path means
// ~/.respkv/history.
func NewHistory(path string) *History {
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".respkv", "history")
	}
	return &History{path: path, limit: maxHistory}
}

// Path returns the file the history is saved to.
func (h *History) Path() string {
	return h.path
}

// Add records line. Repeating the previous line is a no-op, and the oldest
// entries are dropped past the size limit.
func (h *History) Add(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = append(h.lines[:0], h.lines[over:]...)
	}
}

// Get returns the entry i steps back, 0 being the most recent, or "" if
// there is none.
func (h *History) Get(i int) string {
	if i < 0 || i >= len(h.lines) {
		return ""
	}
	return h.lines[len(h.lines)-1-i]
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.lines)
}

// Load appends the entries saved at Path. A missing file is not an error.
func (h *History) Load() error {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			h.Add(line)
		}
	}
	return nil
}

// Save writes every entry to Path, creating its directory if needed. The
// file is private to the owner.
func (h *History) Save() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return err
	}
	var b strings.Builder
	for _, line := range h.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(h.path, []byte(b.String()), 0600)
}
