// Package memo runs commands through the result cache.
//
// A [Coordinator] serves one invocation at a time:
//
//	acquire lock -> check cache -> hit:  replay
//	                            -> miss: execute -> commit -> replay
//	-> release lock
//
// The per-entry lock is held for the whole sequence, so two invocations of
// the same command and arguments never run side by side and never observe a
// half-written entry. The lock is released on every path, including errors.
//
// Errors carry codes from github.com/jmgilman/go/errors: TIMEOUT for lock
// waits, EXECUTION_FAILED when the command cannot be launched and
// INTERNAL_ERROR for cache I/O. A non-zero exit of the command itself is
// not an error; it is returned as the exit code.
package memo
