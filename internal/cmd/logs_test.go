package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daybook.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTailLogFile_LastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour")

	var buf bytes.Buffer
	if err := tailLogFile(context.Background(), &buf, path, 2, false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "three\nfour\n" {
		t.Errorf("got %q, want last two lines", got)
	}
}

func TestTailLogFile_Missing(t *testing.T) {
	var buf bytes.Buffer
	err := tailLogFile(context.Background(), &buf, filepath.Join(t.TempDir(), "nope.log"), 5, false)
	if err == nil {
		t.Fatal("expected an error for a missing log")
	}
}

func TestTailLogFile_FollowStopsWithContext(t *testing.T) {
	path := writeLog(t, "start\n")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	if err := tailLogFile(ctx, &buf, path, 10, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "start\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestDefaultLogPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)
	got, err := defaultLogPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "logs", "daybook.log"); got != want {
		t.Errorf("defaultLogPath() = %q, want %q", got, want)
	}
}
