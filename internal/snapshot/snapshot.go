package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Default file filters. Generated artifacts and binaries add bulk without
// adding review signal.
var (
	ignoredExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".pdf", ".zip", ".lock"}
	ignoredPaths      = []string{"node_modules/", ".git/", "vendor/", "__pycache__/", ".pytest_cache/"}
)

// DefaultMaxFileSize is the per-file character ceiling for snapshot inclusion.
const DefaultMaxFileSize = 10000

// Options controls snapshot collection.
type Options struct {
	// Dir is the repository root. Empty means the current directory.
	Dir string
	// MaxFileSize skips files larger than this many bytes. Zero applies
	// DefaultMaxFileSize.
	MaxFileSize int
}

// Bundle renders the tracked files of a repository as a single text block,
// each file preceded by a path header. Binary, oversized, and ignored files
// are skipped. The result is advisory context; the caller budgets it against
// the prompt ceiling.
func Bundle(opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	out, err := exec.Command("git", "-C", dir, "ls-files").Output()
	if err != nil {
		return "", fmt.Errorf("listing tracked files: git ls-files failed: %w", err)
	}

	var sb strings.Builder
	for _, path := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		path = strings.TrimSpace(path)
		if path == "" || !includePath(path) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			// Deleted or unreadable entries are skipped, not fatal.
			continue
		}
		if len(content) > maxSize || isBinary(content) {
			continue
		}

		fmt.Fprintf(&sb, "=== %s ===\n", path)
		sb.Write(content)
		if !bytes.HasSuffix(content, []byte("\n")) {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func includePath(path string) bool {
	for _, ext := range ignoredExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, p := range ignoredPaths {
		if strings.Contains(path, p) {
			return false
		}
	}
	return true
}

// isBinary applies git's heuristic: a NUL byte in the leading block means
// the file is not text.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
