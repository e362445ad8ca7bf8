// Package lock provides exclusive advisory locks for cache entries.
//
// Every cache entry has a zero-byte lock file. Holding its lock grants
// exclusive access to the entry for the whole check/execute/write sequence,
// for readers and writers alike. Locks are flock(2) based, so they are
// released by the kernel if the holding process dies.
package lock

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock provides exclusive file-based locking using flock.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created if it doesn't exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (l *FileLock) open() error {
	if l.file != nil {
		return nil
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

func (l *FileLock) closeFile() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// Lock acquires an exclusive lock on the file.
// Blocks until the lock is acquired.
func (l *FileLock) Lock() error {
	if err := l.open(); err != nil {
		return err
	}
	if err := flockExclusive(l.file); err != nil {
		l.closeFile()
		return err
	}
	return nil
}

func flockExclusive(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if another holder has it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.open(); err != nil {
		return false, err
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
		return false, nil
	}
	l.closeFile()
	return false, err
}

// LockContext acquires the lock, blocking in the kernel until it is granted
// or ctx is done. Waiters are woken as soon as the holder releases.
//
// When ctx ends first the pending request is abandoned: if the kernel grants
// it later, the lock is released right away and the file closed.
func (l *FileLock) LockContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.open(); err != nil {
		return err
	}

	f := l.file
	granted := make(chan error, 1)
	go func() { granted <- flockExclusive(f) }()

	select {
	case err := <-granted:
		if err != nil {
			l.closeFile()
		}
		return err
	case <-ctx.Done():
		l.file = nil
		go func() {
			if err := <-granted; err == nil {
				unix.Flock(int(f.Fd()), unix.LOCK_UN)
			}
			f.Close()
		}()
		return ctx.Err()
	}
}

// Unlock releases the lock and closes the file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.closeFile()
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}
