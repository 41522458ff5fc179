// Package walker collects the files of a project directory for upload into
// the studio.
package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ziadkadry99/vibe-studio/internal/pages"
)

// DefaultMaxFileSize is the largest file loaded as a page (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// Entry is one file found in a project.
type Entry struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the root.
	Size        int64
	Language    string
	ContentHash string // SHA-256 hex digest of the content.
}

// Config controls Walk.
type Config struct {
	RootDir     string
	Exclude     []string // Glob patterns; matching files are skipped.
	MaxFileSize int64    // 0 means DefaultMaxFileSize.
}

// Walk returns every text file under cfg.RootDir, sorted by relative path.
// Default-excluded directories, .gitignore matches, binaries and oversized
// files are skipped.
func Walk(cfg Config) ([]Entry, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	ignore := loadGitignore(filepath.Join(root, ".gitignore"))

	var entries []Entry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if shouldExcludeDir(d.Name()) || ignore.matchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.matchFile(rel) || matchesAny(rel, cfg.Exclude) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize || isBinary(p) {
			return nil
		}
		hash, err := hashFile(p)
		if err != nil {
			return nil
		}

		entries = append(entries, Entry{
			Path:        p,
			RelPath:     rel,
			Size:        fi.Size(),
			Language:    DetectLanguage(d.Name()),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

// Files turns entries into upload inputs named the way a browser names a
// directory upload: prefixed with the root directory's own name.
func Files(root string, entries []Entry) []pages.File {
	prefix := filepath.Base(filepath.Clean(root))
	if prefix == "." || prefix == string(filepath.Separator) {
		prefix = ""
	}
	files := make([]pages.File, len(entries))
	for i, e := range entries {
		files[i] = pages.DiskFile(path.Join(prefix, e.RelPath), e.Path)
	}
	return files
}

// Fingerprint summarises the names and contents of entries; it changes
// whenever a file is added, removed, renamed or edited.
func Fingerprint(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		io.WriteString(h, e.RelPath)
		h.Write([]byte{0})
		io.WriteString(h, e.ContentHash)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes.
func isBinary(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	return strings.IndexByte(string(buf[:n]), 0) >= 0
}

func hashFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
