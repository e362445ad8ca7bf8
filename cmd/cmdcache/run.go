package main

import (
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raphi011/cmdcache/internal/cachedir"
	"github.com/raphi011/cmdcache/internal/cmd"
	"github.com/raphi011/cmdcache/internal/config"
	"github.com/raphi011/cmdcache/internal/entry"
	"github.com/raphi011/cmdcache/internal/lock"
	"github.com/raphi011/cmdcache/internal/log"
	"github.com/raphi011/cmdcache/internal/memo"
	"github.com/raphi011/cmdcache/internal/output"
	"github.com/raphi011/cmdcache/internal/replay"
	"github.com/raphi011/cmdcache/internal/ui/static"
)

// resolveOptions merges flags over the loaded config. Flags win when set.
func resolveOptions(flags *pflag.FlagSet, cfg *config.Config) (memo.Options, error) {
	var seconds *uint64
	if flags.Changed("cache-seconds") {
		s, err := flags.GetUint64("cache-seconds")
		if err != nil {
			return memo.Options{}, errors.Wrap(err, errors.CodeInvalidInput, "invalid --cache-seconds")
		}
		seconds = &s
	}
	duration := cfg.CacheDuration
	if flags.Changed("cache-duration") {
		duration, _ = flags.GetString("cache-duration")
	}
	ttl, err := config.ResolveTTL(seconds, duration)
	if err != nil {
		return memo.Options{}, errors.Wrap(err, errors.CodeInvalidInput, "invalid cache duration")
	}

	lockTimeout, err := cfg.LockWait()
	if err != nil {
		return memo.Options{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid lock timeout")
	}
	if flags.Changed("lock-timeout") {
		v, _ := flags.GetString("lock-timeout")
		lockTimeout, err = config.ParseDuration(v)
		if err != nil {
			return memo.Options{}, errors.Wrap(err, errors.CodeInvalidInput, "invalid --lock-timeout")
		}
	}

	cacheFailures := cfg.CacheFailures
	if flags.Changed("cache-failures") {
		cacheFailures, _ = flags.GetBool("cache-failures")
	}

	return memo.Options{
		TTL:           ttl,
		CacheFailures: cacheFailures,
		LockTimeout:   lockTimeout,
	}, nil
}

// runMemoized wires the cache for the configured directory and performs the
// requested action for args.
func runMemoized(c *cobra.Command, f *rootFlags, opts memo.Options, args []string) error {
	ctx := c.Context()
	l := log.FromContext(ctx)
	cfg := config.FromContext(ctx)

	root, err := cachedir.BaseDir(cfg.CacheDir)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to prepare cache directory")
	}
	l.Debug("cache dir", "path", root)

	dirs := cachedir.NewOS(root)
	coord := memo.New(
		entry.NewStore(dirs),
		dirs,
		lock.NewFlockLocker(root),
		cmd.Exec{},
		replay.New(c.OutOrStdout(), c.ErrOrStderr()),
		opts,
	)
	inv := memo.Invocation{Command: args[0], Args: args[1:]}

	switch {
	case f.clear:
		return coord.Clear(ctx, inv)
	case f.clearAll:
		_, err := coord.ClearAll(ctx, inv.Command)
		return err
	case f.list:
		return listEntries(c, coord, inv.Command)
	}

	code, err := coord.Run(ctx, inv)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

func listEntries(c *cobra.Command, coord *memo.Coordinator, command string) error {
	infos, err := coord.List(command)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		log.FromContext(c.Context()).Printf("no cached results for %s\n", command)
		return nil
	}

	opts := coord.Options()
	output.FromContext(c.Context()).Print(static.EntryTable(infos, time.Now(), opts.TTL, opts.CacheFailures))
	return nil
}
