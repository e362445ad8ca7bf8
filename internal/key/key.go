// Package key derives the on-disk identity of a memoized command.
//
// A command invocation maps to two keys:
//
//   - Dir: base64 of the command name. Every argument vector of the same
//     command lives in one directory named by this key.
//   - Entry: base64 of the argument vector joined with "\n". It names the
//     entry files inside the command directory.
//
// Both keys use the URL-safe base64 alphabet so they never contain a path
// separator. Keys longer than [MaxSegment] bytes are split into "/"-separated
// segments so that no single path component exceeds common filename limits.
// Every segment but the last ends in [segmentMark], which is outside the
// base64url alphabet: a segment directory never has the name of a complete
// key, so a key is never the parent directory of a longer one.
// Argument order is significant and no normalization is applied.
package key

import (
	"encoding/base64"
	"strings"
)

// MaxSegment is the number of encoded bytes per path component.
const MaxSegment = 200

const segmentMark = "."

var encoding = base64.URLEncoding

// Key identifies one cache entry.
type Key struct {
	Dir   string
	Entry string
}

// Encode derives the cache key for a command and its arguments.
func Encode(command string, args []string) Key {
	return Key{
		Dir:   EncodeCommand(command),
		Entry: EncodeArgs(args),
	}
}

// EncodeCommand returns the directory key for a command name.
func EncodeCommand(command string) string {
	return segment(encoding.EncodeToString([]byte(command)))
}

// EncodeArgs returns the entry key for an argument vector.
func EncodeArgs(args []string) string {
	return segment(encoding.EncodeToString([]byte(strings.Join(args, "\n"))))
}

// DecodeArgs recovers the argument vector from an entry key.
// An empty key decodes to an empty (nil) vector.
func DecodeArgs(entry string) ([]string, error) {
	b, err := encoding.DecodeString(join(entry))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return strings.Split(string(b), "\n"), nil
}

// segment inserts segmentMark and "/" after every MaxSegment bytes.
func segment(s string) string {
	if len(s) <= MaxSegment {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*(len(s)/MaxSegment))
	for len(s) > MaxSegment {
		b.WriteString(s[:MaxSegment])
		b.WriteString(segmentMark + "/")
		s = s[MaxSegment:]
	}
	b.WriteString(s)
	return b.String()
}

// join reverses segment.
func join(s string) string {
	return strings.ReplaceAll(s, segmentMark+"/", "")
}
