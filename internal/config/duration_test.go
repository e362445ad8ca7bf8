package config

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1min", time.Minute, false},
		{"90s", 90 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"2h 30m", 2*time.Hour + 30*time.Minute, false},
		{"1day", 24 * time.Hour, false},
		{"1 day", 24 * time.Hour, false},
		{"2weeks", 14 * 24 * time.Hour, false},
		{"5 minutes 3 seconds", 5*time.Minute + 3*time.Second, false},
		{"  10sec  ", 10 * time.Second, false},
		{"0s", 0, false},
		{"", 0, true},
		{"soon", 0, true},
		{"5", 0, true},
		{"5 parsecs", 0, true},
		{"-1m", 0, true},
		{"99999999999years", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
