package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileBackend keeps every document as <dir>/<name>.json.
type FileBackend struct {
	dir     string
	timeout time.Duration

	mu sync.Mutex
}

func NewFileBackend(dir string, timeout time.Duration) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	return &FileBackend{
		dir:     dir,
		timeout: timeout,
	}, nil
}

// Path returns the file the named document is stored in.
func (b *FileBackend) Path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Load(ctx context.Context, name string) (Document, error) {
	var doc Document
	err := b.run(ctx, func(context.Context) error {
		body, err := os.ReadFile(b.Path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		} else if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		doc = Document{Body: body, Version: checksum(body)}
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	return doc, nil
}

func (b *FileBackend) Save(ctx context.Context, name string, body []byte, base string) (string, error) {
	path := b.Path(name)
	err := b.run(ctx, func(ctx context.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()

		current, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if base != "" {
				return ErrConflict
			}
		case err != nil:
			return fmt.Errorf("read document: %w", err)
		case checksum(current) != base:
			return ErrConflict
		}

		// the caller may have given up while we waited for the lock
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("file store: %w", err)
		}

		return writeFileAtomic(path, body)
	})
	if err != nil {
		return "", err
	}

	return checksum(body), nil
}

// run executes fn with the bounded context and gives up waiting once it
// expires. fn keeps running in the background in that case; it must check the
// context before anything irreversible, and a rename that still lands late is
// caught by the version check of the next Save.
func (b *FileBackend) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("file store: %w", ctx.Err())
	}
}

func writeFileAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(body); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
