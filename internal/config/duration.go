package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = time.Duration(30.44 * float64(day))
	year  = time.Duration(365.25 * float64(day))
)

// units maps human duration suffixes to their length.
var units = map[string]time.Duration{
	"nsec": time.Nanosecond, "ns": time.Nanosecond,
	"usec": time.Microsecond, "us": time.Microsecond,
	"msec": time.Millisecond, "ms": time.Millisecond,
	"seconds": time.Second, "second": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "min": time.Minute, "m": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": day, "day": day, "d": day,
	"weeks": week, "week": week, "w": week,
	"months": month, "month": month, "M": month,
	"years": year, "year": year, "y": year,
}

// ErrEmptyDuration is returned for blank duration strings.
var ErrEmptyDuration = errors.New("empty duration")

// ParseDuration parses Go durations ("1m30s") and human durations made of
// integer/unit pairs, optionally space separated ("1min", "2h 30m", "1day").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyDuration
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return d, nil
	}

	var total time.Duration
	rest := s
	for rest != "" {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}

		n := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
		if n == 0 {
			return 0, fmt.Errorf("expected number at %q", rest)
		}
		if n < 0 {
			return 0, fmt.Errorf("missing unit after %q", rest)
		}
		value, err := strconv.ParseInt(rest[:n], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", rest[:n], err)
		}
		rest = strings.TrimLeft(rest[n:], " \t")

		u := strings.IndexFunc(rest, func(r rune) bool { return !isLetter(r) })
		if u < 0 {
			u = len(rest)
		}
		name := rest[:u]
		if name == "" {
			return 0, fmt.Errorf("missing unit after %d", value)
		}
		unit, ok := units[name]
		if !ok {
			return 0, fmt.Errorf("unknown unit %q", name)
		}
		rest = rest[u:]

		if value > 0 && unit > time.Duration(math.MaxInt64)/time.Duration(value) {
			return 0, fmt.Errorf("duration %q overflows", s)
		}
		part := time.Duration(value) * unit
		if total > time.Duration(math.MaxInt64)-part {
			return 0, fmt.Errorf("duration %q overflows", s)
		}
		total += part
	}
	return total, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
