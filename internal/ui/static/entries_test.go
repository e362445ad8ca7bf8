package static

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/cmdcache/internal/entry"
)

var now = time.Unix(1_700_000_000, 0)

func TestEntryTableRow(t *testing.T) {
	t.Parallel()

	info := entry.Info{
		Args:       []string{"hello", "big world"},
		ExitCode:   0,
		Valid:      true,
		ModTime:    now.Add(-90 * time.Second),
		StdoutSize: 6,
		StderrSize: 2048,
	}

	row := EntryTableRow(info, now, time.Hour, false)

	// Must have exactly 6 columns matching headers: ARGS, EXIT, AGE, STATUS, STDOUT, STDERR
	if len(row) != len(EntryHeaders) {
		t.Fatalf("expected %d columns, got %d", len(EntryHeaders), len(row))
	}
	if row[0] != `hello "big world"` {
		t.Errorf("column 0 (ARGS) = %q, want %q", row[0], `hello "big world"`)
	}
	if row[1] != "0" {
		t.Errorf("column 1 (EXIT) = %q, want %q", row[1], "0")
	}
	if row[2] != "1m" {
		t.Errorf("column 2 (AGE) = %q, want %q", row[2], "1m")
	}
	if !strings.Contains(row[3], StatusFresh) {
		t.Errorf("column 3 (STATUS) = %q, want it to contain %q", row[3], StatusFresh)
	}
	if row[4] != "6 B" || row[5] != "2.0 KiB" {
		t.Errorf("size columns = %q, %q, want %q, %q", row[4], row[5], "6 B", "2.0 KiB")
	}
}

func TestEntryTableRow_Corrupt(t *testing.T) {
	t.Parallel()

	row := EntryTableRow(entry.Info{Valid: false, ModTime: now}, now, time.Hour, true)
	if row[1] != "-" {
		t.Errorf("EXIT for corrupt entry = %q, want %q", row[1], "-")
	}
	if row[0] != "(none)" {
		t.Errorf("ARGS for empty vector = %q, want %q", row[0], "(none)")
	}
}

func TestEntryStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		info          entry.Info
		cacheFailures bool
		want          string
	}{
		{
			name: "fresh success",
			info: entry.Info{Valid: true, ModTime: now.Add(-time.Minute)},
			want: StatusFresh,
		},
		{
			name: "expired success",
			info: entry.Info{Valid: true, ModTime: now.Add(-2 * time.Hour)},
			want: StatusStale,
		},
		{
			name: "exactly at ttl",
			info: entry.Info{Valid: true, ModTime: now.Add(-time.Hour)},
			want: StatusStale,
		},
		{
			name: "uncached failure",
			info: entry.Info{Valid: true, ExitCode: 1, ModTime: now.Add(-time.Minute)},
			want: StatusFailed,
		},
		{
			name:          "cached failure",
			info:          entry.Info{Valid: true, ExitCode: 1, ModTime: now.Add(-time.Minute)},
			cacheFailures: true,
			want:          StatusFresh,
		},
		{
			name: "corrupt",
			info: entry.Info{Valid: false, ModTime: now},
			want: StatusCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EntryStatus(tt.info, now, time.Hour, tt.cacheFailures); got != tt.want {
				t.Errorf("EntryStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryTable(t *testing.T) {
	t.Parallel()

	if got := EntryTable(nil, now, time.Hour, false); got != "" {
		t.Errorf("EntryTable(nil) = %q, want empty", got)
	}

	infos := []entry.Info{
		{Args: []string{"a"}, Valid: true, ModTime: now},
		{Args: []string{"b"}, Valid: true, ExitCode: 3, ModTime: now},
	}
	got := EntryTable(infos, now, time.Hour, false)
	lines := strings.Split(strings.TrimRight(ansi.Strip(got), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("EntryTable() has %d lines, want header + 2:\n%s", len(lines), got)
	}
	for _, want := range []string{"ARGS", "STATUS", "a", "b", "3"} {
		if !strings.Contains(got, want) {
			t.Errorf("EntryTable() missing %q:\n%s", want, got)
		}
	}
	if strings.ContainsAny(ansi.Strip(got), "│─┼") {
		t.Errorf("EntryTable() should render without borders:\n%s", got)
	}
}

func TestEntryTable_NumbersRightAligned(t *testing.T) {
	t.Parallel()

	infos := []entry.Info{
		{Args: []string{"x"}, Valid: true, ExitCode: 3, ModTime: now},
		{Args: []string{"y"}, Valid: true, ExitCode: 127, ModTime: now},
	}
	lines := strings.Split(ansi.Strip(EntryTable(infos, now, time.Hour, true)), "\n")

	end := strings.Index(lines[0], "EXIT") + len("EXIT")
	for i, code := range []string{"3", "127"} {
		row := lines[i+1]
		if len(row) < end || row[end-len(code):end] != code {
			t.Errorf("row %d = %q, want exit code %s ending at column %d", i, row, code, end)
		}
	}
}

func TestFormatArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{args: nil, want: "(none)"},
		{args: []string{"-l", "/tmp"}, want: "-l /tmp"},
		{args: []string{""}, want: `""`},
		{args: []string{"a\nb"}, want: `"a\nb"`},
		{args: []string{strings.Repeat("x", 100)}, want: strings.Repeat("x", maxArgsWidth-3) + "..."},
	}
	for _, tt := range tests {
		if got := FormatArgs(tt.args); got != tt.want {
			t.Errorf("FormatArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: -time.Second, want: "0s"},
		{d: 42 * time.Second, want: "42s"},
		{d: 3*time.Minute + 5*time.Second, want: "3m"},
		{d: 2 * time.Hour, want: "2h"},
		{d: 50 * time.Hour, want: "2d"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.d); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{n: 0, want: "0 B"},
		{n: 1023, want: "1023 B"},
		{n: 1536, want: "1.5 KiB"},
		{n: 5 << 20, want: "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.n); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
