package user

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStoreTest(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestStoreCreateAndFind(t *testing.T) {
	store, _ := setupStoreTest(t)
	ctx := context.Background()

	u, err := New("alice", "s3cret")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	byID, err := store.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected username: %s", byID.Username)
	}

	byName, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("FindByUsername returned wrong user: %s", byName.ID)
	}
	if !byName.VerifyPassword("s3cret") {
		t.Fatal("expected password to verify after round trip")
	}
	if byName.VerifyPassword("wrong") {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestStoreDuplicateUsername(t *testing.T) {
	store, _ := setupStoreTest(t)
	ctx := context.Background()

	first, err := New("alice", "s3cret")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	second, err := New("alice", "other")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := store.Create(ctx, second); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStoreNotFound(t *testing.T) {
	store, _ := setupStoreTest(t)
	ctx := context.Background()

	if _, err := store.FindByID(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreInfrastructureError(t *testing.T) {
	store, mr := setupStoreTest(t)
	ctx := context.Background()

	// 接続先を落とすとインフラエラーになり、ErrNotFound とは区別される
	mr.Close()

	_, err := store.FindByUsername(ctx, "alice")
	if err == nil {
		t.Fatal("expected error after store shutdown")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("infrastructure error must not be ErrNotFound: %v", err)
	}
}

func TestVerifyDummyPassword(t *testing.T) {
	if VerifyDummyPassword("anything") {
		t.Fatal("dummy comparison must never succeed")
	}
}
