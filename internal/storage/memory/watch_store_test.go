package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

func TestWatchStore_InsertAndGet(t *testing.T) {
	store := NewWatchStore()
	ctx := context.Background()

	w := &domain.WatchedAccount{
		Account:       "acc1",
		LastSignature: "sig1",
	}

	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.Get(ctx, "acc1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if result.LastSignature != "sig1" {
		t.Errorf("LastSignature mismatch: got %s, want sig1", result.LastSignature)
	}
}

func TestWatchStore_DuplicateKey(t *testing.T) {
	store := NewWatchStore()
	ctx := context.Background()

	w := &domain.WatchedAccount{Account: "acc1"}

	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, w)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestWatchStore_GetNotFound(t *testing.T) {
	store := NewWatchStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWatchStore_SetLastSignature(t *testing.T) {
	store := NewWatchStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.WatchedAccount{Account: "acc1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.SetLastSignature(ctx, "acc1", "sig9"); err != nil {
		t.Fatalf("SetLastSignature failed: %v", err)
	}

	result, err := store.Get(ctx, "acc1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result.LastSignature != "sig9" {
		t.Errorf("LastSignature mismatch: got %s, want sig9", result.LastSignature)
	}

	err = store.SetLastSignature(ctx, "missing", "sig1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestWatchStore_GetAll(t *testing.T) {
	store := NewWatchStore()
	ctx := context.Background()

	for _, acc := range []string{"acc1", "acc2", "acc3"} {
		if err := store.Insert(ctx, &domain.WatchedAccount{Account: acc}); err != nil {
			t.Fatalf("Insert %s failed: %v", acc, err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 accounts, got %d", len(all))
	}
}

func TestWatchStore_CopySemantics(t *testing.T) {
	store := NewWatchStore()
	ctx := context.Background()

	w := &domain.WatchedAccount{Account: "acc1", LastSignature: "sig1"}
	if err := store.Insert(ctx, w); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	w.LastSignature = "mutated"

	result, err := store.Get(ctx, "acc1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result.LastSignature != "sig1" {
		t.Errorf("Store leaked caller mutation: got %s", result.LastSignature)
	}
}
