package syncer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"syncview/internal/diffdir"
)

// Options controls how files are copied.
type Options struct {
	// Backup copies an existing destination to <path>.backup before it
	// is overwritten or deleted.
	Backup bool
	// ContinueOnError keeps going after a failed file instead of
	// stopping the batch.
	ContinueOnError bool
	// DryRun reports what would happen without touching the filesystem.
	DryRun bool
}

// DefaultOptions enables backups and continue-on-error.
func DefaultOptions() Options {
	return Options{Backup: true, ContinueOnError: true}
}

// Result summarizes a batch sync.
type Result struct {
	Synced  int
	Failed  int
	Skipped int
	// Errors holds one "path: reason" message per failed file.
	Errors []string
}

// Engine applies diff entries to the filesystem.
type Engine struct {
	opts Options
	// Logf receives progress lines, dry-run announcements included.
	// Nil silences them.
	Logf func(format string, args ...any)
}

// New returns an engine with the given options.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

// SyncFile copies one entry's source over its destination, creating
// parent directories and preserving the source modification time.
func (e *Engine) SyncFile(entry diffdir.Entry) error {
	if e.opts.DryRun {
		e.logf("would sync %s -> %s", entry.SourcePath, entry.DestPath)
		return nil
	}

	if e.opts.Backup {
		if _, err := os.Stat(entry.DestPath); err == nil {
			if err := backup(entry.DestPath); err != nil {
				return err
			}
		}
	}

	if dir := filepath.Dir(entry.DestPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := copyFile(entry.SourcePath, entry.DestPath); err != nil {
		return err
	}

	// Best-effort mtime preservation keeps later size+content checks
	// cheap; a failure here is not worth failing the sync.
	if info, err := os.Stat(entry.SourcePath); err == nil {
		_ = os.Chtimes(entry.DestPath, info.ModTime(), info.ModTime())
	}

	e.logf("synced %s", entry.Path)
	return nil
}

// DeleteFile removes an entry's destination copy, used for files the
// source no longer has.
func (e *Engine) DeleteFile(entry diffdir.Entry) error {
	if e.opts.DryRun {
		e.logf("would delete %s", entry.DestPath)
		return nil
	}
	if e.opts.Backup {
		if err := backup(entry.DestPath); err != nil {
			return err
		}
	}
	if err := os.Remove(entry.DestPath); err != nil {
		return fmt.Errorf("delete %s: %w", entry.DestPath, err)
	}
	e.logf("deleted %s", entry.Path)
	return nil
}

// SyncAll applies a batch of entries: Added and Modified entries are
// copied, Deleted entries removed, Unchanged entries skipped. The batch
// stops at the first failure unless ContinueOnError is set.
func (e *Engine) SyncAll(entries []diffdir.Entry) Result {
	var res Result
	for _, entry := range entries {
		var err error
		switch entry.Status {
		case diffdir.Added, diffdir.Modified:
			err = e.SyncFile(entry)
		case diffdir.Deleted:
			err = e.DeleteFile(entry)
		default:
			res.Skipped++
			continue
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", entry.Path, err))
			if !e.opts.ContinueOnError {
				break
			}
			continue
		}
		res.Synced++
	}
	return res
}

func backup(path string) error {
	if err := copyFile(path, path+".backup"); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", dst, err)
	}
	return nil
}
