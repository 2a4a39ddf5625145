package session

import (
	"context"
	"testing"
	"time"

	"canopy-pos/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, time.Hour), mr
}

func TestStoreSaveAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewCartSession(uuid.New(), uuid.New())
	sess = sess.WithLine(domain.CartLine{
		Product:  domain.Product{ID: uuid.New(), Name: "Indica 1g", UnitPrice: decimal.RequireFromString("9.99")},
		Quantity: 2,
	})

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if loaded.ID != sess.ID {
		t.Errorf("loaded session id = %s, want %s", loaded.ID, sess.ID)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].Quantity != 2 {
		t.Errorf("loaded lines = %+v, want the saved line", loaded.Lines)
	}
	if !loaded.Lines[0].Product.UnitPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("loaded price = %s", loaded.Lines[0].Product.UnitPrice)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	if err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreSaveRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewCartSession(uuid.New(), uuid.New())
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	key := "pos:cart:" + sess.ID.String()
	if mr.TTL(key) != time.Hour {
		t.Errorf("ttl = %v, want %v", mr.TTL(key), time.Hour)
	}

	// An abandoned session disappears after the TTL.
	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("expired session: err = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewCartSession(uuid.New(), uuid.New())
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("after delete: err = %v, want ErrSessionNotFound", err)
	}

	// Deleting a missing session is not an error.
	if err := store.Delete(ctx, uuid.New()); err != nil {
		t.Errorf("deleting missing session: %v", err)
	}
}
