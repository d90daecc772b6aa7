package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

func TestContractStoreSaveAndGet(t *testing.T) {
	store := NewContractStore(100)
	ctx := context.Background()

	store.Save(&model.Contract{
		ID:        "test-id-1",
		UserID:    "user-1",
		Title:     "123 Main St",
		CreatedAt: time.Now(),
	})

	retrieved, err := store.Get(ctx, "test-id-1", "user-1")
	if err != nil {
		t.Fatalf("Expected to retrieve contract: %v", err)
	}
	if retrieved.Title != "123 Main St" {
		t.Errorf("Expected title '123 Main St', got %s", retrieved.Title)
	}

	if _, err := store.Get(ctx, "non-existent", "user-1"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
}

func TestContractStoreGetScopedByOwner(t *testing.T) {
	store := NewContractStore(100)

	store.Save(&model.Contract{ID: "c1", UserID: "owner", CreatedAt: time.Now()})

	if _, err := store.Get(context.Background(), "c1", "intruder"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound for another owner, got %v", err)
	}
}

func TestContractStoreUpdateSummary(t *testing.T) {
	store := NewContractStore(100)
	ctx := context.Background()

	before := time.Now().Add(-time.Hour)
	store.Save(&model.Contract{ID: "c1", UserID: "owner", CreatedAt: before})

	summary := "Standard residential purchase."
	if err := store.UpdateSummary(ctx, "c1", "owner", &summary, "summaries/c1.json"); err != nil {
		t.Fatalf("UpdateSummary failed: %v", err)
	}

	got, _ := store.Get(ctx, "c1", "owner")
	if got.Summary == nil || *got.Summary != summary {
		t.Errorf("Expected summary %q, got %v", summary, got.Summary)
	}
	if got.SummaryPath == nil || *got.SummaryPath != "summaries/c1.json" {
		t.Errorf("Expected summary path, got %v", got.SummaryPath)
	}
	if !got.UpdatedAt.After(before) {
		t.Error("Expected updated_at to be bumped")
	}

	// wrong owner must not overwrite
	other := "hijacked"
	if err := store.UpdateSummary(ctx, "c1", "intruder", &other, ""); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
	got, _ = store.Get(ctx, "c1", "owner")
	if *got.Summary != summary {
		t.Errorf("Summary was overwritten by another owner: %q", *got.Summary)
	}
}

func TestContractStoreGetReturnsCopy(t *testing.T) {
	store := NewContractStore(0)
	ctx := context.Background()
	store.Save(&model.Contract{ID: "c1", UserID: "owner", Title: "orig"})

	got, _ := store.Get(ctx, "c1", "owner")
	got.Title = "mutated"

	again, _ := store.Get(ctx, "c1", "owner")
	if again.Title != "orig" {
		t.Errorf("Expected stored contract to be unaffected, got %q", again.Title)
	}
}

func TestContractStoreDelete(t *testing.T) {
	store := NewContractStore(100)

	store.Save(&model.Contract{ID: "delete-me", UserID: "u", CreatedAt: time.Now()})
	store.Delete("delete-me")

	if store.Count() != 0 {
		t.Error("Expected contract to be deleted")
	}
}

func TestContractStoreAutoCleanup(t *testing.T) {
	store := NewContractStore(3) // Max 3 contracts
	ctx := context.Background()

	// Add 5 contracts
	base := time.Now()
	for i := 0; i < 5; i++ {
		store.Save(&model.Contract{
			ID:        string(rune('a' + i)),
			UserID:    "u",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	// Should only have 3 contracts (newest)
	if store.Count() != 3 {
		t.Errorf("Expected 3 contracts after cleanup, got %d", store.Count())
	}

	// Oldest contracts should be removed
	if _, err := store.Get(ctx, "a", "u"); err == nil {
		t.Error("Expected oldest contract 'a' to be removed")
	}
	if _, err := store.Get(ctx, "b", "u"); err == nil {
		t.Error("Expected second oldest contract 'b' to be removed")
	}
}

func TestContractStoreUnlimitedContracts(t *testing.T) {
	store := NewContractStore(0) // Unlimited

	for i := 0; i < 10; i++ {
		store.Save(&model.Contract{
			ID:        string(rune('a' + i)),
			CreatedAt: time.Now(),
		})
	}

	if store.Count() != 10 {
		t.Errorf("Expected 10 contracts, got %d", store.Count())
	}
}
