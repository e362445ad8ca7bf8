// Package static renders non-interactive terminal output, such as the
// cached entry table printed by --list.
package static

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/cmdcache/internal/entry"
	"github.com/raphi011/cmdcache/internal/ui/styles"
)

// EntryHeaders are the columns of the entry table.
var EntryHeaders = []string{"ARGS", "EXIT", "AGE", "STATUS", "STDOUT", "STDERR"}

// Columns holding numbers; they are right-aligned.
const (
	colExit   = 1
	colStdout = 4
	colStderr = 5
)

const (
	maxArgsWidth = 60
	columnGap    = 2
)

// Entry states shown in the STATUS column.
const (
	StatusFresh   = "fresh"
	StatusStale   = "stale"
	StatusFailed  = "failed"
	StatusCorrupt = "corrupt"
)

// EntryStatus classifies an entry the way a cache lookup at now would.
func EntryStatus(info entry.Info, now time.Time, ttl time.Duration, cacheFailures bool) string {
	switch {
	case !info.Valid:
		return StatusCorrupt
	case info.Fresh(now, ttl, cacheFailures):
		return StatusFresh
	case info.ExitCode != 0 && !cacheFailures && info.Age(now) < ttl:
		return StatusFailed
	default:
		return StatusStale
	}
}

// EntryTableRow formats one entry. The STATUS cell is styled.
func EntryTableRow(info entry.Info, now time.Time, ttl time.Duration, cacheFailures bool) []string {
	exit := "-"
	if info.Valid {
		exit = strconv.Itoa(info.ExitCode)
	}

	status := EntryStatus(info, now, ttl, cacheFailures)
	switch status {
	case StatusFresh:
		status = styles.SuccessStyle.Render(status)
	case StatusFailed:
		status = styles.WarningStyle.Render(status)
	case StatusCorrupt:
		status = styles.ErrorStyle.Render(status)
	default:
		status = styles.MutedStyle.Render(status)
	}

	return []string{
		FormatArgs(info.Args),
		exit,
		FormatAge(info.Age(now)),
		status,
		FormatSize(info.StdoutSize),
		FormatSize(info.StderrSize),
	}
}

// EntryTable renders all entries as a borderless table with bold headers.
// It returns "" when there are none.
func EntryTable(infos []entry.Info, now time.Time, ttl time.Duration, cacheFailures bool) string {
	if len(infos) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, EntryTableRow(info, now, ttl, cacheFailures))
	}

	t := table.New().
		Headers(EntryHeaders...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(entryCellStyle)

	return t.String() + "\n"
}

func entryCellStyle(row, col int) lipgloss.Style {
	s := lipgloss.NewStyle()
	if row == table.HeaderRow {
		s = styles.Bold
	}
	switch col {
	case colExit, colStdout, colStderr:
		s = s.Align(lipgloss.Right)
	}
	return s.PaddingRight(columnGap)
}

// FormatArgs renders an argument vector the way it would be typed, quoting
// arguments that contain whitespace or quotes. Long results are truncated.
func FormatArgs(args []string) string {
	if len(args) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	s := strings.Join(quoted, " ")
	if len(s) > maxArgsWidth {
		s = s[:maxArgsWidth-3] + "..."
	}
	return s
}

// FormatAge renders a duration with its largest unit, e.g. "42s", "3m", "5d".
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
