package entry

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/raphi011/cmdcache/internal/cachedir"
	"github.com/raphi011/cmdcache/internal/key"
)

// File name prefixes of the four entry files.
const (
	LockPrefix     = "lockfile_"
	ExitCodePrefix = "exitcode_"
	StdoutPrefix   = "stdout_"
	StderrPrefix   = "stderr_"
)

const (
	filePerm  = 0o644
	tmpSuffix = ".tmp"
)

// ErrNoExitStatus is returned by Write when the command produced no exit
// status (it was killed by a signal). Such results are never cached.
var ErrNoExitStatus = errors.New("command has no exit status")

// Paths are the four files of one entry, relative to the cache root.
type Paths struct {
	Lock     string
	ExitCode string
	Stdout   string
	Stderr   string
}

// PathsFor returns the entry files for entryKey inside commandDir.
func PathsFor(commandDir, entryKey string) Paths {
	return Paths{
		Lock:     path.Join(commandDir, LockPrefix+entryKey),
		ExitCode: path.Join(commandDir, ExitCodePrefix+entryKey),
		Stdout:   path.Join(commandDir, StdoutPrefix+entryKey),
		Stderr:   path.Join(commandDir, StderrPrefix+entryKey),
	}
}

// Hit is a fresh, committed entry.
type Hit struct {
	ExitCode  int
	CreatedAt time.Time
}

// Info describes an entry found by List.
type Info struct {
	EntryKey string
	// Args is the decoded argument vector. Nil when the key cannot be decoded.
	Args     []string
	ExitCode int
	// Valid is false when the exit-code file does not parse.
	Valid      bool
	ModTime    time.Time
	StdoutSize int64
	StderrSize int64
}

// Age returns how old the entry is at now, in whole seconds.
func (i Info) Age(now time.Time) time.Duration {
	return time.Duration(now.Unix()-i.ModTime.Unix()) * time.Second
}

// Fresh reports whether ReadIfFresh would return a hit for this entry.
func (i Info) Fresh(now time.Time, ttl time.Duration, cacheFailures bool) bool {
	if !i.Valid || i.Age(now) >= ttl {
		return false
	}
	return i.ExitCode == 0 || cacheFailures
}

// Store owns all entry file I/O on a cache filesystem.
type Store struct {
	dirs *cachedir.Resolver
	fs   billy.Filesystem
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store on the resolver's filesystem.
func NewStore(dirs *cachedir.Resolver, opts ...Option) *Store {
	s := &Store{
		dirs: dirs,
		fs:   dirs.FS(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadIfFresh returns the committed entry at p if it is younger than ttl.
// A missing, expired or unparsable entry is a miss, as is a non-zero exit
// code unless cacheFailures is set.
func (s *Store) ReadIfFresh(p Paths, ttl time.Duration, cacheFailures bool) (*Hit, bool) {
	info, err := s.fs.Stat(p.ExitCode)
	if err != nil {
		return nil, false
	}

	age := s.now().Unix() - info.ModTime().Unix()
	if age >= int64(ttl/time.Second) {
		return nil, false
	}

	code, err := s.readExitCode(p.ExitCode)
	if err != nil {
		return nil, false
	}
	if code != 0 && !cacheFailures {
		return nil, false
	}

	return &Hit{ExitCode: code, CreatedAt: info.ModTime()}, true
}

func (s *Store) readExitCode(name string) (int, error) {
	data, err := util.ReadFile(s.fs, name)
	if err != nil {
		return 0, err
	}
	code, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return 0, err
	}
	return int(code), nil
}

// Write commits a result to p. The previous exit-code file is removed first
// and the new one is renamed into place after both output files, so readers
// never see a marker next to foreign output.
func (s *Store) Write(p Paths, exitCode *int, stdout, stderr []byte) error {
	for _, name := range []string{p.ExitCode, p.Stdout, p.Stderr} {
		if _, err := s.dirs.PlaceEntryFile(name); err != nil {
			return err
		}
	}

	if exitCode == nil {
		return ErrNoExitStatus
	}

	if err := s.remove(p.ExitCode); err != nil {
		return fmt.Errorf("remove commit marker: %w", err)
	}
	if err := s.writeAtomic(p.Stdout, stdout); err != nil {
		return err
	}
	if err := s.writeAtomic(p.Stderr, stderr); err != nil {
		return err
	}
	return s.writeAtomic(p.ExitCode, []byte(strconv.Itoa(*exitCode)))
}

func (s *Store) writeAtomic(name string, data []byte) error {
	tmp := name + tmpSuffix
	if err := util.WriteFile(s.fs, tmp, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Open opens an entry file for reading.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	return s.fs.Open(name)
}

// dataPrefixes name the files that make up an entry's cached result.
var dataPrefixes = []string{ExitCodePrefix, StdoutPrefix, StderrPrefix}

// Clear removes the entry's data files, including temp files left by an
// interrupted commit. The lock file stays so that processes waiting on it
// keep locking the same file.
func (s *Store) Clear(p Paths) error {
	for _, name := range []string{p.ExitCode, p.Stdout, p.Stderr} {
		for _, n := range []string{name, name + tmpSuffix} {
			if err := s.remove(n); err != nil {
				return fmt.Errorf("clear %s: %w", n, err)
			}
		}
	}
	return nil
}

func (s *Store) remove(name string) error {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns every committed entry in commandDir, sorted by entry key.
// A missing directory has no entries.
func (s *Store) List(commandDir string) ([]Info, error) {
	var infos []Info
	err := s.walk(commandDir, func(rel string, fi os.FileInfo) {
		if strings.HasSuffix(rel, tmpSuffix) {
			return
		}
		if entryKey, ok := strings.CutPrefix(rel, ExitCodePrefix); ok {
			infos = append(infos, s.info(commandDir, entryKey, fi))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", commandDir, err)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].EntryKey < infos[j].EntryKey
	})
	return infos, nil
}

// Keys returns the sorted keys of every entry in commandDir that has any
// data file, committed or not.
func (s *Store) Keys(commandDir string) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.walk(commandDir, func(rel string, _ os.FileInfo) {
		rel = strings.TrimSuffix(rel, tmpSuffix)
		for _, prefix := range dataPrefixes {
			if entryKey, ok := strings.CutPrefix(rel, prefix); ok {
				seen[entryKey] = struct{}{}
				return
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", commandDir, err)
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

// walk calls fn for every file below commandDir with its path relative to
// commandDir. A missing directory has no files.
func (s *Store) walk(commandDir string, fn func(rel string, fi os.FileInfo)) error {
	if _, err := s.fs.Stat(commandDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return util.Walk(s.fs, commandDir, func(name string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			fn(strings.TrimPrefix(filepath.ToSlash(name), commandDir+"/"), fi)
		}
		return nil
	})
}

func (s *Store) info(commandDir, entryKey string, fi os.FileInfo) Info {
	p := PathsFor(commandDir, entryKey)
	info := Info{
		EntryKey: entryKey,
		ModTime:  fi.ModTime(),
	}
	if args, err := key.DecodeArgs(entryKey); err == nil {
		info.Args = args
	}
	if code, err := s.readExitCode(p.ExitCode); err == nil {
		info.ExitCode = code
		info.Valid = true
	}
	if st, err := s.fs.Stat(p.Stdout); err == nil {
		info.StdoutSize = st.Size()
	}
	if st, err := s.fs.Stat(p.Stderr); err == nil {
		info.StderrSize = st.Size()
	}
	return info
}
