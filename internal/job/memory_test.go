package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepository_SaveAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	j := NewWithID("fold-1")
	j.Sequence = "ACGU"
	if err := repo.Save(ctx, j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.FindByID(ctx, "fold-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Sequence != "ACGU" {
		t.Errorf("expected sequence ACGU, got %s", found.Sequence)
	}

	// Mutating the returned job must not affect the stored copy.
	found.Sequence = "GGGG"
	again, _ := repo.FindByID(ctx, "fold-1")
	if again.Sequence != "ACGU" {
		t.Error("expected stored job to be isolated from returned clone")
	}
}

func TestMemoryRepository_FindMissing(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_List(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, NewWithID("fold-1"))
	_ = repo.Save(ctx, NewWithID("fold-2"))

	jobs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, NewWithID("fold-1"))
	if err := repo.Delete(ctx, "fold-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, "fold-1"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}
