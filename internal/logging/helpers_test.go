package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(nil, "ignored")
	Info(nil, "ignored")
	Warn(nil, "ignored")
	Error(nil, "ignored", errors.New("boom"))
}

func TestErrorAppendsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Error(logger, "store failed", errors.New("boom"), FieldUserID, int64(7))

	out := buf.String()
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "user_id=7") {
		t.Fatalf("expected error and user id fields, got %q", out)
	}
}

func TestDebugRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	Debug(logger, "dynamo feed query", FieldGroup, "comm")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at info level, got %q", buf.String())
	}

	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Debug(logger, "dynamo feed query", FieldGroup, "comm")
	if !strings.Contains(buf.String(), "group=comm") {
		t.Fatalf("expected debug line with group, got %q", buf.String())
	}
}
