package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/storage"

	s, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TempDir() != dir {
		t.Errorf("expected temp dir %s, got %s", dir, s.TempDir())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory to exist: %v", err)
	}
}

func TestLocalStorage_SaveLoadCleanup(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	path, err := s.SaveTemp(ctx, "result", strings.NewReader("(((...))) ( -1.20)\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := s.LoadTemp(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = r.Close()
	if string(data) != "(((...))) ( -1.20)\n" {
		t.Errorf("unexpected file contents %q", data)
	}

	if err := s.CleanupTemp(ctx, []string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err: %v", err)
	}
}

func TestLocalStorage_CleanupMissingFileIsNoError(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.CleanupTemp(context.Background(), []string{s.TempDir() + "/gone"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLocalStorage_UploadToS3NotConfigured(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.UploadToS3(context.Background(), "key", strings.NewReader("data"))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}

func TestLocalStorage_SaveTempCancelledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.SaveTemp(ctx, "result", strings.NewReader("data")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
