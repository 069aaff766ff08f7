package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

func TestTokenMetadataStore_InsertAndGet(t *testing.T) {
	store := NewTokenMetadataStore()
	ctx := context.Background()

	meta := &domain.TokenMetadata{
		Address:  "mint1",
		Name:     "TestToken",
		Symbol:   "TT",
		Decimals: 9,
	}

	if err := store.Insert(ctx, meta); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByAddresses(ctx, []string{"mint1"})
	if err != nil {
		t.Fatalf("GetByAddresses failed: %v", err)
	}

	got, ok := result["mint1"]
	if !ok {
		t.Fatal("mint1 missing from result")
	}
	if got.Symbol != "TT" || got.Decimals != 9 {
		t.Errorf("Metadata mismatch: %+v", got)
	}
}

func TestTokenMetadataStore_DuplicateKey(t *testing.T) {
	store := NewTokenMetadataStore()
	ctx := context.Background()

	meta := &domain.TokenMetadata{Address: "mint1", Decimals: 6}

	if err := store.Insert(ctx, meta); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, meta)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTokenMetadataStore_MissingAddressesOmitted(t *testing.T) {
	store := NewTokenMetadataStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.TokenMetadata{Address: "mint1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByAddresses(ctx, []string{"mint1", "mint2"})
	if err != nil {
		t.Fatalf("GetByAddresses failed: %v", err)
	}

	if len(result) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(result))
	}
	if _, ok := result["mint2"]; ok {
		t.Error("mint2 should be absent, not present with zero value")
	}
}
