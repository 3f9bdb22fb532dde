package diffdir

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// Status classifies a file relative to the sync destination.
type Status int

const (
	// Unchanged means both copies have identical content.
	Unchanged Status = iota
	// Added means the file exists only in the source tree.
	Added
	// Modified means both copies exist with differing content.
	Modified
	// Deleted means the file exists only in the destination tree.
	Deleted
)

func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// Entry is one file-level difference between two trees.
type Entry struct {
	// Path is the slash-separated path relative to both roots.
	Path string
	// SourcePath and DestPath are the absolute locations of the two
	// copies; one of them may not exist on disk.
	SourcePath string
	DestPath   string
	Status     Status
}

// Engine compares directory trees, skipping excluded paths.
type Engine struct {
	excludes []string
}

// NewEngine returns an engine with the default exclude patterns:
// VCS metadata, editor droppings, dependency and build output dirs.
func NewEngine() *Engine {
	return &Engine{
		excludes: []string{
			".git",
			"__pycache__",
			".pyc",
			".DS_Store",
			"Thumbs.db",
			"*.swp",
			"*.swo",
			"*~",
			"node_modules",
			"target",
			".idea",
			".vscode",
		},
	}
}

// WithExcludes appends custom patterns and returns the engine.
func (e *Engine) WithExcludes(patterns ...string) *Engine {
	e.excludes = append(e.excludes, patterns...)
	return e
}

// Excluded reports whether a path matches any exclude pattern. Patterns
// starting with '*' match path suffixes; all others match anywhere in the
// path. Matching is case-insensitive.
func (e *Engine) Excluded(path string, extra []string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, set := range [][]string{e.excludes, extra} {
		for _, pat := range set {
			pat = strings.ToLower(pat)
			if strings.HasPrefix(pat, "*") {
				if strings.HasSuffix(lower, pat[1:]) {
					return true
				}
			} else if strings.Contains(lower, pat) {
				return true
			}
		}
	}
	return false
}

// Compare walks both trees and returns every file that differs, sorted by
// relative path. Files present only under sourceDir come back Added,
// content differences Modified, files present only under destDir Deleted.
// A missing root on either side is treated as an empty tree.
func (e *Engine) Compare(sourceDir, destDir string, extra []string) ([]Entry, error) {
	var entries []Entry

	err := e.walkFiles(sourceDir, extra, func(rel, abs string) error {
		destPath := filepath.Join(destDir, filepath.FromSlash(rel))
		status, err := fileStatus(abs, destPath)
		if err != nil {
			return err
		}
		if status != Unchanged {
			entries = append(entries, Entry{
				Path:       rel,
				SourcePath: abs,
				DestPath:   destPath,
				Status:     status,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Second pass over the destination catches files the source no
	// longer has.
	err = e.walkFiles(destDir, extra, func(rel, abs string) error {
		srcPath := filepath.Join(sourceDir, filepath.FromSlash(rel))
		if _, serr := os.Stat(srcPath); os.IsNotExist(serr) {
			entries = append(entries, Entry{
				Path:       rel,
				SourcePath: srcPath,
				DestPath:   abs,
				Status:     Deleted,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// walkFiles visits every non-excluded regular file under root, calling fn
// with the slash-relative and absolute paths. A nonexistent root is not
// an error.
func (e *Engine) walkFiles(root string, extra []string, fn func(rel, abs string) error) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		if e.Excluded(rel, extra) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		return fn(filepath.ToSlash(rel), path)
	})
}

// fileStatus compares one source file against its destination location.
// Size is checked before content so identical-length files are the only
// ones read twice.
func fileStatus(srcPath, dstPath string) (Status, error) {
	dstInfo, err := os.Stat(dstPath)
	if os.IsNotExist(err) {
		return Added, nil
	}
	if err != nil {
		return Unchanged, fmt.Errorf("stat %s: %w", dstPath, err)
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return Unchanged, fmt.Errorf("stat %s: %w", srcPath, err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		return Modified, nil
	}

	srcData, err := os.ReadFile(srcPath)
	if err != nil {
		return Unchanged, fmt.Errorf("read %s: %w", srcPath, err)
	}
	dstData, err := os.ReadFile(dstPath)
	if err != nil {
		return Unchanged, fmt.Errorf("read %s: %w", dstPath, err)
	}
	if !bytes.Equal(srcData, dstData) {
		return Modified, nil
	}
	return Unchanged, nil
}

// Stats counts added and removed lines for an entry. Missing files count
// as empty, so an Added entry reports its whole line count as additions.
func Stats(entry Entry) (added, removed int, err error) {
	srcText, err := readOrEmpty(entry.SourcePath)
	if err != nil {
		return 0, 0, err
	}
	dstText, err := readOrEmpty(entry.DestPath)
	if err != nil {
		return 0, 0, err
	}

	d := dmp.New()
	diffs := d.DiffMain(srcText, dstText, true)
	for _, df := range diffs {
		n := countLines(df.Text)
		switch df.Type {
		case dmp.DiffInsert:
			added += n
		case dmp.DiffDelete:
			removed += n
		}
	}
	return added, removed, nil
}

func readOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// countLines counts lines the way a unified diff would: a trailing
// newline does not start a new line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// LoadLines reads a file as a line slice for side-by-side rendering.
// CRLF endings are normalized and an empty or missing file yields no
// lines rather than a single empty one.
func LoadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}
