// Package cachedir resolves where cache entries live on disk.
//
// The cache root is a platform cache directory (or an explicit override).
// Inside it, each command gets its own directory named by its encoded key.
// All paths handed out by a [Resolver] are relative to the root of its
// filesystem, which is the cache root in production.
package cachedir

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// AppName is the directory created under the platform cache dir.
const AppName = "cmdcache"

const dirPerm = 0o755

// BaseDir returns the absolute cache root, creating it if needed.
// An explicit dir (flag, env or config) wins over the platform cache dir.
func BaseDir(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve user cache dir: %w", err)
		}
		dir = filepath.Join(base, AppName)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return dir, nil
}

// Resolver maps command keys to directories inside a cache filesystem.
type Resolver struct {
	fs billy.Filesystem
}

// New creates a resolver over fs.
func New(fs billy.Filesystem) *Resolver {
	return &Resolver{fs: fs}
}

// NewOS creates a resolver rooted at the given directory on disk.
func NewOS(root string) *Resolver {
	return New(osfs.New(root))
}

// FS returns the cache filesystem.
func (r *Resolver) FS() billy.Filesystem {
	return r.fs
}

// CommandDir returns the directory for a command key without touching disk.
func (r *Resolver) CommandDir(dirKey string) string {
	return path.Clean(dirKey)
}

// ResolveCommandDir returns the directory for a command key, creating it
// and any intermediate directories if absent.
func (r *Resolver) ResolveCommandDir(dirKey string) (string, error) {
	dir := r.CommandDir(dirKey)
	if err := r.fs.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create command dir %s: %w", dir, err)
	}
	return dir, nil
}

// PlaceEntryFile ensures the parent directories of p exist so a file can
// be written there. It returns p unchanged.
func (r *Resolver) PlaceEntryFile(p string) (string, error) {
	parent := path.Dir(p)
	if parent == "." || parent == "/" {
		return p, nil
	}
	if err := r.fs.MkdirAll(parent, dirPerm); err != nil {
		return "", fmt.Errorf("create parent of %s: %w", p, err)
	}
	return p, nil
}
