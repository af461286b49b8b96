package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "brief.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(context.Background(), "brief.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveCreatesNestedKeyDirectories(t *testing.T) {
	base := t.TempDir()
	s, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "voice/abc.mp3"
	if err := s.Save(context.Background(), key, strings.NewReader("audio")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "voice", "abc.mp3")); err != nil {
		t.Fatalf("expected nested artifact on disk: %v", err)
	}
}

func TestOpenMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.Open(context.Background(), "missing.mp3"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestPathJoinsBase(t *testing.T) {
	base := t.TempDir()
	s, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, want := s.Path("voice/abc.mp3"), filepath.Join(base, "voice", "abc.mp3"); got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestNewCreatesBaseDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "artifacts")
	if _, err := New(base); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Fatalf("expected base dir created: %v", err)
	}
}
