package lock

import (
	"context"
	"path/filepath"
	"sync"
)

// Release frees a held lock. Calling it more than once is safe.
type Release func() error

// Locker acquires exclusive locks by name.
type Locker interface {
	// Acquire blocks until the named lock is held or ctx is done.
	Acquire(ctx context.Context, name string) (Release, error)
}

// FlockLocker locks files below a root directory with flock.
type FlockLocker struct {
	root string
}

// NewFlockLocker creates a locker whose names are paths relative to root.
func NewFlockLocker(root string) *FlockLocker {
	return &FlockLocker{root: root}
}

// Acquire locks root/name, waiting until the lock is granted or ctx ends.
func (f *FlockLocker) Acquire(ctx context.Context, name string) (Release, error) {
	l := NewFileLock(filepath.Join(f.root, filepath.FromSlash(name)))
	if err := l.LockContext(ctx); err != nil {
		return nil, err
	}
	return onceRelease(l.Unlock), nil
}

// MemLocker is an in-process Locker for filesystems that have no lock
// support, such as in-memory test filesystems.
type MemLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemLocker creates an empty MemLocker.
func NewMemLocker() *MemLocker {
	return &MemLocker{slots: make(map[string]chan struct{})}
}

func (m *MemLocker) slot(name string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		m.slots[name] = ch
	}
	return ch
}

// Acquire takes the named slot or waits until ctx is done.
func (m *MemLocker) Acquire(ctx context.Context, name string) (Release, error) {
	ch := m.slot(name)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return onceRelease(func() error {
		<-ch
		return nil
	}), nil
}

func onceRelease(fn func() error) Release {
	var once sync.Once
	var err error
	return func() error {
		once.Do(func() { err = fn() })
		return err
	}
}
