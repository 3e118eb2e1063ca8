package logtail

import (
	"fmt"
	"log"
	"testing"
)

func TestTailReturnsRecentLines(t *testing.T) {
	buf := New(3)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(buf, "entry-%d\n", i)
	}

	lines := buf.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for i, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if lines[i].Message != want {
			t.Errorf("line %d = %q, want %q", i, lines[i].Message, want)
		}
	}

	last := buf.Tail(1)
	if len(last) != 1 || last[0].Message != "entry-4" {
		t.Errorf("Tail(1) = %+v", last)
	}
}

func TestWriteJoinsPartialLines(t *testing.T) {
	buf := New(10)
	buf.Write([]byte("[Sync] hal"))
	buf.Write([]byte("f done\n[Email] second\n"))

	lines := buf.Tail(0)
	if len(lines) != 2 || lines[0].Message != "[Sync] half done" || lines[1].Message != "[Email] second" {
		t.Errorf("lines = %+v", lines)
	}
}

func TestStandardLoggerPrefixStripped(t *testing.T) {
	buf := New(10)
	logger := log.New(buf, "", log.LstdFlags)
	logger.Printf("[Sync] Failed to upsert customer 7: boom")

	lines := buf.Tail(5)
	if len(lines) != 1 {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].Message != "[Sync] Failed to upsert customer 7: boom" || lines[0].Level != LevelError {
		t.Errorf("line = %+v", lines[0])
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]string{
		"[Server] Starting on :8080":                  LevelInfo,
		"[Scheduler] Skipping sync":                   LevelWarn,
		"[Email] Failed to send to a@example.com":     LevelError,
		"[Cache] Redis unavailable, using local lock": LevelWarn,
	}
	for msg, want := range tests {
		if got := Level(msg); got != want {
			t.Errorf("Level(%q) = %s, want %s", msg, got, want)
		}
	}
}
