package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"soundcheck/internal/services"
)

func newTestConsoleLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(buf, levelVar))
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newTestConsoleLogger(&buf, slog.LevelInfo), "matcher")

	logger.Info("accepted match", String("artist", "Big Thief"), Int("score", 95))

	line := buf.String()
	if !strings.Contains(line, " INFO matcher: accepted match") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, `artist="Big Thief"`) {
		t.Fatalf("expected quoted artist attr, got %q", line)
	}
	if !strings.Contains(line, "score=95") {
		t.Fatalf("expected score attr, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be hoisted, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelWarn)

	logger.Info("should be dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info record should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "WARN kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	logger.WithGroup("video").Info("checked", String("id", "dQw4w9WgXcQ"))

	if !strings.Contains(buf.String(), "video.id=dQw4w9WgXcQ") {
		t.Fatalf("expected flattened group key: %q", buf.String())
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Info("hello", Int("n", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parse json log: %v", err)
	}
	if record["msg"] != "hello" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestConsoleLogger(&buf, slog.LevelInfo)

	ctx := services.WithRunID(context.Background(), "run-1234")
	ctx = services.WithStage(ctx, "verify")
	ctx = services.WithArtist(ctx, "Mitski")

	WithContext(ctx, logger).Info("working")

	line := buf.String()
	for _, want := range []string{"run_id=run-1234", "stage=verify", "artist=Mitski"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
