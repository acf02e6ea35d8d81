package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func setupJobStoreTest(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, 10*time.Minute), mr
}

func TestJobStoreUpsertAndGet(t *testing.T) {
	store, _ := setupJobStoreTest(t)
	ctx := context.Background()

	record := &Record{
		JobID:  "job-1",
		Status: StatusQueued,
	}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil || got.Status != StatusQueued {
		t.Fatalf("unexpected record: %#v", got)
	}
	if got.CreatedAt.IsZero() || got.ExpiresAt.IsZero() {
		t.Fatalf("expected timestamps to be set: %#v", got)
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	store, _ := setupJobStoreTest(t)

	got, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing job, got %#v", got)
	}
}

func TestJobStoreLifecycle(t *testing.T) {
	store, _ := setupJobStoreTest(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, &Record{JobID: "job-2", Status: StatusQueued}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := store.UpdateProgress(ctx, "job-2", ProgressInfo{Percent: 10, Stage: "archiving"}); err != nil {
		t.Fatalf("UpdateProgress returned error: %v", err)
	}
	got, _ := store.Get(ctx, "job-2")
	if got.Status != StatusRunning || got.Progress.Percent != 10 {
		t.Fatalf("unexpected record after progress: %#v", got)
	}

	if err := store.MarkDone(ctx, "job-2", "/snapshots/job-2.zip", 123, 4); err != nil {
		t.Fatalf("MarkDone returned error: %v", err)
	}
	got, _ = store.Get(ctx, "job-2")
	if got.Status != StatusSucceeded || got.ArchivePath != "/snapshots/job-2.zip" || got.FileCount != 4 {
		t.Fatalf("unexpected record after done: %#v", got)
	}

	if err := store.MarkFailed(ctx, "job-2", &ErrorInfo{Code: "SNAPSHOT_FAILED", Message: "boom"}); err != nil {
		t.Fatalf("MarkFailed returned error: %v", err)
	}
	got, _ = store.Get(ctx, "job-2")
	if got.Status != StatusFailed || got.Error == nil || got.Error.Code != "SNAPSHOT_FAILED" {
		t.Fatalf("unexpected record after failure: %#v", got)
	}
}

func TestJobStoreExpiry(t *testing.T) {
	store, mr := setupJobStoreTest(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, &Record{JobID: "job-3", Status: StatusQueued}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	mr.FastForward(11 * time.Minute)

	got, err := store.Get(ctx, "job-3")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected record to expire, got %#v", got)
	}
}
