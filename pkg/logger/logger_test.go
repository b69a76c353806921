package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithUserID(ctx, "user-9")
	logg.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id field, got %v", entry["request_id"])
	}
	if entry["user_id"] != "user-9" {
		t.Fatalf("expected user_id field, got %v", entry["user_id"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warn") != zerolog.WarnLevel {
		t.Fatal("expected warn level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("empty level should default to info")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatal("unknown level should default to info")
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})
	logg.Error(context.Background(), "boom", nil)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["stack"] == nil || entry["stack"] == "" {
		t.Fatal("expected stack field on error logs")
	}
}
