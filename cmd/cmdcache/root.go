package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/raphi011/cmdcache/internal/config"
	"github.com/raphi011/cmdcache/internal/log"
	"github.com/raphi011/cmdcache/internal/output"
)

// rootFlags holds the parsed command-line flags. Cache tuning flags are
// read back from the flag set by resolveOptions.
type rootFlags struct {
	verbose  bool
	quiet    bool
	clear    bool
	clearAll bool
	list     bool
}

// exitCodeError carries the wrapped command's exit code out of RunE.
// It is not printed.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCode maps the result of executing the root command to a process
// exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "cmdcache [flags] <command> [args...]",
		Short: "Cache the output of shell commands",
		Long: `cmdcache runs a command and remembers its exit code, stdout and stderr.

Running the same command with the same arguments again within the cache
duration replays the remembered result instead of running it. Concurrent
invocations of the same command wait for each other, so the command runs
at most once per cache period.

Flags must come before the command; everything after it is passed through.`,
		Example: `  cmdcache curl -s https://example.com/status   # cached for 1 minute
  cmdcache -d 1h kubectl get nodes             # cached for an hour
  cmdcache -s 30 --cache-failures make check   # failures cached too
  cmdcache --clear curl -s https://example.com/status
  cmdcache --list curl`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := log.New(cmd.ErrOrStderr(), f.verbose, f.quiet)
			ctx = log.WithLogger(ctx, logger)
			ctx = output.WithPrinter(ctx, output.NewStyled(cmd.OutOrStdout()))
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd.Flags(), config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			return runMemoized(cmd, f, opts, args)
		},
	}

	cmd.Flags().SetInterspersed(false)

	cmd.Flags().Uint64P("cache-seconds", "s", 0, "Cache duration in seconds (overrides --cache-duration)")
	cmd.Flags().StringP("cache-duration", "d", config.DefaultCacheDuration, "Cache duration, e.g. 90s, 1min, 2h 30m, 1day")
	cmd.Flags().Bool("cache-failures", false, "Also cache non-zero exit codes")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print cache diagnostics to stderr")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress all diagnostics")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Remove the cached result of this command and exit")
	cmd.Flags().BoolVar(&f.clearAll, "clear-all", false, "Remove all cached results of this command and exit")
	cmd.Flags().BoolVar(&f.list, "list", false, "List cached results of this command and exit")
	cmd.Flags().String("lock-timeout", "", "Give up waiting for a concurrent run after this long (default: wait forever)")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("clear", "clear-all", "list")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

// Execute runs the root command and exits with the wrapped command's exit
// code.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmdcache: warning: %v\n", errors.Wrap(err, errors.CodeInvalidConfig, "ignoring config"))
	}

	// Interrupts end lock waits; a running command receives the signal itself.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = config.WithConfig(ctx, &cfg)

	err = newRootCmd().ExecuteContext(ctx)
	cancel()

	code := exitCode(err)
	var ec *exitCodeError
	if err != nil && !errors.As(err, &ec) {
		fmt.Fprintf(os.Stderr, "cmdcache: %v\n", err)
	}
	os.Exit(code)
}
