package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

var linePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)

func TestConsoleLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Info("Strike Rate Detected: 100", "metric", "strike_rate")

	line := buf.String()
	if !linePattern.MatchString(line) {
		t.Fatalf("line %q does not start with a bracketed timestamp", line)
	}
	if !strings.HasSuffix(line, "] Strike Rate Detected: 100\n") {
		t.Errorf("unexpected line %q", line)
	}
}

func TestConsoleErrorAlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Warn("OCR error: engine failed", "error", errors.New("exit status 1"), "cycle", 3)

	if !strings.HasSuffix(buf.String(), "OCR error: engine failed error=exit status 1\n") {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestConsoleVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, &Options{Verbose: true}).With("run", "abc").WithGroup("cycle")

	l.Info("sampled", "n", 2)

	if !strings.HasSuffix(buf.String(), "sampled run=abc cycle.n=2\n") {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, &Options{Level: slog.LevelWarn})

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered, got %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext should return stored logger")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("FromContext should fall back to default")
	}
}
