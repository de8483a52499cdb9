package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "under a minute", seconds: 7, want: "0:07"},
		{name: "minutes", seconds: 125, want: "2:05"},
		{name: "over an hour", seconds: 3725, want: "62:05"},
		{name: "negative", seconds: -3, want: "0:00"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short string", in: "Abba", n: 10, want: "Abba"},
		{name: "exact length", in: "Abba", n: 4, want: "Abba"},
		{name: "truncated", in: "Kidane Mihret", n: 6, want: "Kidan…"},
		{name: "ethiopic runes", in: "ወረብ ከዓመት", n: 4, want: "ወረብ…"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestNormalizeTerm(t *testing.T) {
	if got := NormalizeTerm("  AbBa "); got != "abba" {
		t.Errorf("NormalizeTerm() = %q, want %q", got, "abba")
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("fetched catalog", "tracks", 2)

		if !strings.Contains(buf.String(), "fetched catalog") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "wereb.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello")
	})

	t.Run("GenerateID returns unique values", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected two distinct non-empty ids, got %q and %q", a, b)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"status": "ok"}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(compact) != `{"status":"ok"}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"status\"") {
		t.Errorf("expected indented output, got %s", pretty)
	}
}
