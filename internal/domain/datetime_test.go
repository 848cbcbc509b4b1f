package domain

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2026-03-02T09:00:00", want: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{in: "2026-03-02T09:00", want: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{in: " 2026-03-02 09:00:00 ", want: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{in: "2026-03-02T09:00:00+02:00", want: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)},
		{in: "2026-03-02T09:00:00Z", want: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{in: "next monday", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDateTime(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDateTime(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDateTime(%q) error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Fatalf("ParseDateTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
