package cache

import (
	"context"
	"testing"
	"time"

	"sahasatis/backend/internal/cart"
	"sahasatis/backend/internal/domain"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	snap := SessionSnapshot{
		ID:         "ses-1",
		CustomerID: "CUS-001",
		Cart: cart.Snapshot{
			Lines: []domain.CartLine{{ProductID: "PRD-001", Quantity: 2}},
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, snap, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, found, err := store.Load(ctx, "ses-1")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.CustomerID != "CUS-001" || len(loaded.Cart.Lines) != 1 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	if err := store.Delete(ctx, "ses-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Load(ctx, "ses-1"); found {
		t.Fatalf("expected snapshot to be gone after delete")
	}
}

func TestMemorySessionStoreHonorsTTL(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, SessionSnapshot{ID: "ses-ttl"}, time.Millisecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, found, _ := store.Load(ctx, "ses-ttl"); found {
		t.Fatalf("expected expired snapshot to be dropped")
	}
}
