// Package replay writes a recorded command result back to the terminal.
package replay

import (
	"fmt"
	"io"
)

// Replayer copies recorded streams to the process's own stdout and stderr.
type Replayer struct {
	stdout io.Writer
	stderr io.Writer
}

// New creates a replayer writing to the given destinations.
func New(stdout, stderr io.Writer) *Replayer {
	return &Replayer{stdout: stdout, stderr: stderr}
}

// Replay copies stdout, then stderr, byte for byte. Nil readers are treated
// as empty streams.
func (r *Replayer) Replay(stdout, stderr io.Reader) error {
	if stdout != nil {
		if _, err := io.Copy(r.stdout, stdout); err != nil {
			return fmt.Errorf("replay stdout: %w", err)
		}
	}
	if stderr != nil {
		if _, err := io.Copy(r.stderr, stderr); err != nil {
			return fmt.Errorf("replay stderr: %w", err)
		}
	}
	return nil
}
