package memo

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/cmdcache/internal/cachedir"
	"github.com/raphi011/cmdcache/internal/cmd"
	"github.com/raphi011/cmdcache/internal/entry"
	"github.com/raphi011/cmdcache/internal/key"
	"github.com/raphi011/cmdcache/internal/lock"
	"github.com/raphi011/cmdcache/internal/log"
	"github.com/raphi011/cmdcache/internal/replay"
)

// Runner executes a command and captures its result.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*cmd.Result, error)
}

// Invocation is one command line to memoize.
type Invocation struct {
	Command string
	Args    []string
}

func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Command
	}
	return inv.Command + " " + strings.Join(inv.Args, " ")
}

// Options control freshness and locking.
type Options struct {
	// TTL is how long a committed entry stays fresh.
	TTL time.Duration
	// CacheFailures makes non-zero exit codes eligible for hits.
	CacheFailures bool
	// LockTimeout bounds the wait for an entry lock. Zero waits forever.
	LockTimeout time.Duration
}

// Coordinator ties the key encoder, store, lock, runner and replayer
// together.
type Coordinator struct {
	store    *entry.Store
	dirs     *cachedir.Resolver
	locker   lock.Locker
	runner   Runner
	replayer *replay.Replayer
	opts     Options
}

// New creates a coordinator.
func New(store *entry.Store, dirs *cachedir.Resolver, locker lock.Locker, runner Runner, replayer *replay.Replayer, opts Options) *Coordinator {
	return &Coordinator{
		store:    store,
		dirs:     dirs,
		locker:   locker,
		runner:   runner,
		replayer: replayer,
		opts:     opts,
	}
}

// Run serves inv from the cache or executes it, and returns the exit code
// the process should terminate with.
//
// When the result cannot be committed its output is still replayed before
// the error is returned. A command killed by a signal is replayed but not
// cached, and yields 128+signal.
func (c *Coordinator) Run(ctx context.Context, inv Invocation) (int, error) {
	l := log.FromContext(ctx)

	p, err := c.paths(inv)
	if err != nil {
		return 1, err
	}
	l.Debug("cache entry", "path", p.ExitCode, "ttl", c.opts.TTL)

	release, err := c.acquire(ctx, p.Lock)
	if err != nil {
		return 1, err
	}
	defer release()

	if hit, ok := c.store.ReadIfFresh(p, c.opts.TTL, c.opts.CacheFailures); ok {
		stdout, stderr, err := c.openOutput(p)
		if err == nil {
			l.Debug("cache hit", "exit", hit.ExitCode, "created", hit.CreatedAt.Format(time.RFC3339))
			defer stdout.Close()
			defer stderr.Close()
			if err := c.replayer.Replay(stdout, stderr); err != nil {
				return 1, errors.Wrap(err, errors.CodeInternal, "failed to replay cached output")
			}
			return hit.ExitCode, nil
		}
		l.Debug("cache entry unreadable", "error", err)
	}
	l.Debug("cache miss", "command", inv)

	res, err := c.runner.Run(ctx, inv.Command, inv.Args...)
	if err != nil {
		return 1, errors.Wrapf(err, errors.CodeExecutionFailed, "failed to run %s", inv.Command)
	}

	commitErr := c.store.Write(p, res.Status, res.Stdout, res.Stderr)
	if errors.Is(commitErr, entry.ErrNoExitStatus) {
		l.Printf("cmdcache: %s terminated by signal %d (%s), result not cached\n", inv.Command, int(res.Signal), res.Signal)
		commitErr = nil
	}

	if err := c.replayer.Replay(bytes.NewReader(res.Stdout), bytes.NewReader(res.Stderr)); err != nil {
		return 1, errors.Wrap(err, errors.CodeInternal, "failed to replay output")
	}
	if commitErr != nil {
		return 1, errors.Wrap(commitErr, errors.CodeInternal, "failed to write cache entry")
	}
	return res.ExitCode(), nil
}

// Clear removes the entry for inv without running anything.
func (c *Coordinator) Clear(ctx context.Context, inv Invocation) error {
	p, err := c.paths(inv)
	if err != nil {
		return err
	}

	release, err := c.acquire(ctx, p.Lock)
	if err != nil {
		return err
	}
	defer release()

	if err := c.store.Clear(p); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to clear cache entry")
	}
	log.FromContext(ctx).Debug("cleared", "command", inv)
	return nil
}

// ClearAll removes every entry of command, including partly written ones,
// and returns how many were removed. Each entry is cleared under its own
// lock.
func (c *Coordinator) ClearAll(ctx context.Context, command string) (int, error) {
	dir := c.dirs.CommandDir(key.EncodeCommand(command))
	keys, err := c.store.Keys(dir)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "failed to list cache entries")
	}

	cleared := 0
	for _, entryKey := range keys {
		if err := c.clearEntry(ctx, entry.PathsFor(dir, entryKey)); err != nil {
			return cleared, err
		}
		cleared++
	}
	log.FromContext(ctx).Debug("cleared all", "command", command, "entries", cleared)
	return cleared, nil
}

func (c *Coordinator) clearEntry(ctx context.Context, p entry.Paths) error {
	if _, err := c.dirs.PlaceEntryFile(p.Lock); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create cache directory")
	}
	release, err := c.acquire(ctx, p.Lock)
	if err != nil {
		return err
	}
	defer release()

	if err := c.store.Clear(p); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to clear cache entry")
	}
	return nil
}

// List returns the cached entries of command.
func (c *Coordinator) List(command string) ([]entry.Info, error) {
	infos, err := c.store.List(c.dirs.CommandDir(key.EncodeCommand(command)))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list cache entries")
	}
	return infos, nil
}

// Options returns the coordinator's options.
func (c *Coordinator) Options() Options {
	return c.opts
}

// paths resolves the entry files for inv and makes sure the lock file can
// be created.
func (c *Coordinator) paths(inv Invocation) (entry.Paths, error) {
	k := key.Encode(inv.Command, inv.Args)
	dir, err := c.dirs.ResolveCommandDir(k.Dir)
	if err != nil {
		return entry.Paths{}, errors.Wrap(err, errors.CodeInternal, "failed to create cache directory")
	}
	p := entry.PathsFor(dir, k.Entry)
	if _, err := c.dirs.PlaceEntryFile(p.Lock); err != nil {
		return entry.Paths{}, errors.Wrap(err, errors.CodeInternal, "failed to create cache directory")
	}
	return p, nil
}

func (c *Coordinator) acquire(ctx context.Context, name string) (lock.Release, error) {
	if c.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.LockTimeout)
		defer cancel()
	}

	release, err := c.locker.Acquire(ctx, name)
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, errors.Wrapf(err, errors.CodeTimeout, "timed out after %s waiting for lock %s", c.opts.LockTimeout, name)
	default:
		return nil, errors.Wrapf(err, errors.CodeInternal, "failed to lock %s", name)
	}
}

func (c *Coordinator) openOutput(p entry.Paths) (io.ReadCloser, io.ReadCloser, error) {
	stdout, err := c.store.Open(p.Stdout)
	if err != nil {
		return nil, nil, err
	}
	stderr, err := c.store.Open(p.Stderr)
	if err != nil {
		stdout.Close()
		return nil, nil, err
	}
	return stdout, stderr, nil
}
