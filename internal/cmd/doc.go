// Package cmd runs external commands and captures their results.
//
// [Exec.Run] buffers stdout and stderr in memory and reports the exit status
// separately from launch errors:
//
//	res, err := cmd.Exec{}.Run(ctx, "git", "status")
//	if errors.Is(err, cmd.ErrLaunch) {
//	    // the program could not be started
//	}
//	os.Exit(res.ExitCode())
//
// A process killed by a signal has no status; [Result.Status] is nil and
// [Result.Signal] names the signal.
package cmd
