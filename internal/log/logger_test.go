package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"warn":    Warning,
		"warning": Warning,
		"error":   Error,
		"":        Notice,
		"bogus":   Notice,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q)=%d want=%d", input, got, want)
		}
	}
}

func TestSinkReceivesMessagesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	SetLevel(Info)
	defer SetLevel(Notice)

	logger := New("test")
	logger.Debug("hidden")
	logger.Infof("visible %d", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message leaked at info level: %q", out)
	}
	if !strings.Contains(out, "visible 42") {
		t.Fatalf("expected info message in sink, got %q", out)
	}
	if !strings.Contains(out, "[test]") {
		t.Fatalf("expected module name in output, got %q", out)
	}
}
