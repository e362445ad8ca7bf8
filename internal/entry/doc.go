// Package entry stores and reads memoized command results.
//
// An entry is four sibling files inside a command directory, each named by a
// fixed prefix followed by the entry key:
//
//	lockfile_<key>  zero-byte lock target, never removed
//	exitcode_<key>  decimal exit status; its mtime is the entry's creation time
//	stdout_<key>    raw captured stdout
//	stderr_<key>    raw captured stderr
//
// The exit-code file is the commit marker. [Store.Write] removes it first and
// renames it into place last, so an interrupted write reads back as a miss.
// Anything that cannot be parsed is a miss as well; corruption is never
// reported as an error by [Store.ReadIfFresh].
package entry
