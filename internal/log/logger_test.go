package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	logger := New("test")

	SetLevel(Warning)
	logger.Info("hidden message")
	logger.Warning("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected info message to be filtered at warning level; got %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Fatalf("expected warning message in output; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("frame %d", 42)
	if !strings.Contains(buf.String(), "frame 42") {
		t.Fatalf("expected debug message at debug level; got %q", buf.String())
	}
	SetLevel(Notice)
}

func TestSetSinkPreservesLevel(t *testing.T) {
	SetLevel(Error)
	defer SetLevel(Notice)

	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	New("test").Warning("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected level to survive sink swap; got %q", buf.String())
	}
}
