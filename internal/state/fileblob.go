package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileBlob stores each key as a JSON file in a directory. Put writes a
// uniquely named temp file in the same directory and renames it over the
// target, so a concurrent reader sees either the old file or the new one.
type FileBlob struct {
	dir string
}

func NewFileBlob(dir string) (*FileBlob, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileBlob{dir: dir}, nil
}

func (b *FileBlob) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBlob) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (b *FileBlob) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp for %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp for %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

const (
	lockRetryDelay = 25 * time.Millisecond
	lockWaitMax    = 5 * time.Second
	lockStaleAfter = 30 * time.Second
)

// Lock takes a lock file in the state directory (O_EXCL create), the
// cross-process counterpart to Store's in-process mutex. Locks older than
// lockStaleAfter are treated as abandoned by a crashed process and stolen.
func (b *FileBlob) Lock(ctx context.Context) (func(), error) {
	path := filepath.Join(b.dir, ".lock")
	deadline := time.Now().Add(lockWaitMax)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("acquire state lock: %w", err)
		}
		if fi, serr := os.Stat(path); serr == nil && time.Since(fi.ModTime()) > lockStaleAfter {
			os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire state lock: %s held too long", path)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (b *FileBlob) Quarantine(_ context.Context, key string, data []byte) error {
	name := fmt.Sprintf("%s.corrupt-%d.json", key, time.Now().Unix())
	if err := os.WriteFile(filepath.Join(b.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("quarantine %s: %w", key, err)
	}
	return nil
}

func (b *FileBlob) Close() error { return nil }

var _ BlobStore = (*FileBlob)(nil)
