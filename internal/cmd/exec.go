package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/raphi011/cmdcache/internal/log"
)

// ErrLaunch is returned when a command could not be started at all.
var ErrLaunch = errors.New("failed to launch command")

// Result is the captured outcome of one command run.
type Result struct {
	// Status is the exit status. Nil when the process was killed by a signal.
	Status *int
	// Signal is set when Status is nil.
	Signal syscall.Signal
	Stdout []byte
	Stderr []byte
}

// ExitCode returns the code the caller should exit with: the status, or
// 128+signal for a killed process.
func (r *Result) ExitCode() int {
	switch {
	case r.Status != nil:
		return *r.Status
	case r.Signal != 0:
		return 128 + int(r.Signal)
	default:
		return 1
	}
}

// Exec runs commands in the current working directory and captures their
// output in memory.
type Exec struct{}

// Run executes name with args, waits for it to finish and returns its
// status and output. A non-zero exit is a result, not an error.
//
// ctx is only consulted before launch; a started command always runs to
// completion. Stdin is the null device.
func (Exec) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := log.FromContext(ctx).Command(name, args...)
	start := time.Now()

	var stdout, stderr bytes.Buffer
	c := exec.Command(name, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))

	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		code := 0
		res.Status = &code
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("%w %s: %w", ErrLaunch, name, err)
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		res.Signal = ws.Signal()
		return res, nil
	}
	code := exitErr.ExitCode()
	res.Status = &code
	return res, nil
}
