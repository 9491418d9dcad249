// Package notify carries the "state changed, please re-render" signal out
// of the core. The core only ever calls StateChanged; how the signal
// reaches a display surface is this package's concern.
package notify

import (
	"os"
	"path/filepath"
	"time"
)

// TouchFile signals by rewriting a marker file with the current timestamp.
// A widget-like process polls the file's mtime and re-renders on change.
// Signal failures are swallowed: a missed refresh must never fail the
// mutation that triggered it.
type TouchFile struct {
	Path string
}

func NewTouchFile(path string) *TouchFile {
	return &TouchFile{Path: path}
}

func (t *TouchFile) StateChanged() {
	if t.Path == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(t.Path), 0o755)
	_ = os.WriteFile(t.Path, []byte(time.Now().Format(time.RFC3339Nano)+"\n"), 0o644)
}
