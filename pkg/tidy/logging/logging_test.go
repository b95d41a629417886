package logging

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"info", log.InfoLevel, false},
		{"warn", log.WarnLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"INFO", log.InfoLevel, false},
		{"bogus", log.InfoLevel, true},
		{"", log.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q): expected ErrInvalidLevel, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init("nope"); err == nil {
		t.Error("Init with invalid level should fail")
	}
}

func TestGetReturnsSameLogger(t *testing.T) {
	if err := Init("info"); err != nil {
		t.Fatal(err)
	}

	a := Get("scan")
	b := Get("scan")
	if a != b {
		t.Error("Get returned different loggers for the same component")
	}
}
