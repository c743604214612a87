package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const fileLockRetryDelay = 50 * time.Millisecond

// File stores the document as <dir>/<rootKey>.json. A sibling .lock file
// serializes writers across processes.
type File struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFile(dir, rootKey string) (*File, error) {
	if rootKey == "" {
		rootKey = DefaultRootKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, rootKey+".json")
	return &File{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) ([]byte, error) {
	// one flock handle is shared by Load and Update, so they must not overlap
	f.mu.Lock()
	defer f.mu.Unlock()

	ok, err := f.lock.TryRLockContext(ctx, fileLockRetryDelay)
	if err != nil {
		return nil, wrap("lock "+f.path, err)
	}
	if !ok {
		return nil, wrap("lock "+f.path, errors.New("lock not acquired"))
	}
	defer func() { _ = f.lock.Unlock() }()

	return f.read()
}

func (f *File) Update(ctx context.Context, fn func([]byte) ([]byte, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ok, err := f.lock.TryLockContext(ctx, fileLockRetryDelay)
	if err != nil {
		return wrap("lock "+f.path, err)
	}
	if !ok {
		return wrap("lock "+f.path, errors.New("lock not acquired"))
	}
	defer func() { _ = f.lock.Unlock() }()

	current, err := f.read()
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return f.write(next)
}

func (f *File) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("read "+f.path, err)
	}
	return data, nil
}

// write replaces the file through a rename so readers never see a partial document.
func (f *File) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return wrap("create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return wrap("write "+tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return wrap("sync "+tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return wrap("close "+tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return wrap("rename "+tmpName, err)
	}
	return nil
}
