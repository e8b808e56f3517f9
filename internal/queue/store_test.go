package queue_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"tidy/internal/queue"
	"tidy/internal/testsupport"
)

func TestEnqueueDeduplicatesActivePaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	path := filepath.Join(root, "report.pdf")

	first := testsupport.Enqueue(t, store, path, root, queue.KindCreated)
	second := testsupport.Enqueue(t, store, path, root, queue.KindScan)

	if first.ID != second.ID {
		t.Fatalf("expected dedupe across kinds, got ids %d and %d", first.ID, second.ID)
	}
	if second.Kind != queue.KindCreated {
		t.Fatalf("existing item kind = %s, want the original created", second.Kind)
	}

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queue holds %d items, want 1", len(items))
	}
}

func TestEnqueueConcurrentSamePathInsertsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	path := filepath.Join(root, "report.pdf")
	ctx := context.Background()

	// The watcher and the reconcile walk can observe one arrival at the
	// same moment; the active-path unique index must collapse the race.
	const writers = 8
	ids := make(chan int64, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := store.Enqueue(ctx, path, root, queue.KindCreated)
			if err != nil {
				t.Errorf("Enqueue: %v", err)
				return
			}
			ids <- item.ID
		}()
	}
	wg.Wait()
	close(ids)

	first := int64(-1)
	for id := range ids {
		if first == -1 {
			first = id
		}
		if id != first {
			t.Fatalf("concurrent enqueues returned ids %d and %d", first, id)
		}
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queue holds %d items, want 1", len(items))
	}
}

func TestEnqueueAllowsNewItemAfterCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	path := filepath.Join(root, "report.pdf")
	ctx := context.Background()

	first := testsupport.Enqueue(t, store, path, root, queue.KindCreated)
	first.Status = queue.StatusCompleted
	first.Result = queue.ResultMoved
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}

	second := testsupport.Enqueue(t, store, path, root, queue.KindCreated)
	if second.ID == first.ID {
		t.Fatal("a completed item must not block a fresh arrival at the same path")
	}
}

func TestNextPendingClaimsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	a := testsupport.Enqueue(t, store, filepath.Join(root, "a.txt"), root, queue.KindScan)
	b := testsupport.Enqueue(t, store, filepath.Join(root, "b.txt"), root, queue.KindScan)

	claimed, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if claimed == nil || claimed.ID != a.ID {
		t.Fatalf("claimed %+v, want item %d first", claimed, a.ID)
	}
	if claimed.Status != queue.StatusOrganizing {
		t.Fatalf("claimed status = %s, want organizing", claimed.Status)
	}

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if next == nil || next.ID != b.ID {
		t.Fatalf("second claim = %+v, want item %d", next, b.ID)
	}

	empty, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if empty != nil {
		t.Fatalf("empty queue returned %+v", empty)
	}
}

func TestUpdateRoundTripsOutcomeFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	item := testsupport.Enqueue(t, store, filepath.Join(root, "a.pdf"), root, queue.KindCreated)
	item.Status = queue.StatusCompleted
	item.Result = queue.ResultMoved
	item.Category = "Documents"
	item.FinalPath = filepath.Join(root, "Documents", "a.pdf")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != queue.StatusCompleted || got.Result != queue.ResultMoved {
		t.Fatalf("round trip status/result = %s/%s", got.Status, got.Result)
	}
	if got.Category != "Documents" || got.FinalPath != item.FinalPath {
		t.Fatalf("round trip category/final = %q/%q", got.Category, got.FinalPath)
	}
	if !got.Terminal() {
		t.Fatal("completed item should be terminal")
	}
}

func TestResetStuckOrganizing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	testsupport.Enqueue(t, store, filepath.Join(root, "a.txt"), root, queue.KindCreated)
	if _, err := store.NextPending(ctx); err != nil {
		t.Fatalf("NextPending: %v", err)
	}

	reset, err := store.ResetStuckOrganizing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckOrganizing: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset %d items, want 1", reset)
	}

	claimed, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending after reset: %v", err)
	}
	if claimed == nil {
		t.Fatal("reset item should be claimable again")
	}
}

func TestRetryFailedClearsErrorAndRequeues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	item := testsupport.Enqueue(t, store, filepath.Join(root, "a.txt"), root, queue.KindCreated)
	item.Status = queue.StatusFailed
	item.ErrorMessage = "permission denied"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("retried %d items, want 1", count)
	}

	got, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("error message = %q, want cleared", got.ErrorMessage)
	}
}

func TestStatsAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	testsupport.Enqueue(t, store, filepath.Join(root, "a.txt"), root, queue.KindCreated)
	done := testsupport.Enqueue(t, store, filepath.Join(root, "b.txt"), root, queue.KindCreated)
	done.Status = queue.StatusCompleted
	done.Result = queue.ResultMoved
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cleared %d, want 1", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("clear-all removed %d, want the remaining pending item", removed)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := cfg.Watch.TargetDirectories[0]
	ctx := context.Background()

	testsupport.Enqueue(t, store, filepath.Join(root, "a.txt"), root, queue.KindCreated)
	failed := testsupport.Enqueue(t, store, filepath.Join(root, "b.txt"), root, queue.KindCreated)
	failed.Status = queue.StatusFailed
	failed.ErrorMessage = "boom"
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	items, err := store.List(ctx, queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != failed.ID {
		t.Fatalf("filtered list = %+v", items)
	}
}

func TestParseStatus(t *testing.T) {
	if status, err := queue.ParseStatus("pending"); err != nil || status != queue.StatusPending {
		t.Fatalf("ParseStatus(pending) = %s, %v", status, err)
	}
	if _, err := queue.ParseStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
