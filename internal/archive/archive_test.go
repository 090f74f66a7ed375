package archive_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"logmon/internal/archive"
	"logmon/internal/monitor"
)

func openStore(t *testing.T) *archive.Store {
	t.Helper()
	store, err := archive.OpenPath(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecentRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		evt := monitor.Event{
			Seq:  uint64(i + 1),
			Time: base.Add(time.Duration(i) * time.Second),
			Text: "line",
		}
		if err := store.AppendContext(ctx, evt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Seq != 3 || events[2].Seq != 5 {
		t.Fatalf("expected chronological order of newest 3, got %+v", events)
	}
	if !events[0].Time.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("timestamp did not round-trip: %v", events[0].Time)
	}
}

func TestCountTracksAppends(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected empty archive, got %d (%v)", count, err)
	}
	store.Append(monitor.Event{Seq: 1, Time: time.Now(), Text: "x"})
	store.Append(monitor.Event{Seq: 2, Time: time.Now(), Text: "y"})
	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 lines, got %d", count)
	}
}

func TestPruneRemovesOnlyExpiredLines(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	old := monitor.Event{Seq: 1, Time: time.Now().AddDate(0, 0, -30), Text: "old"}
	fresh := monitor.Event{Seq: 2, Time: time.Now(), Text: "fresh"}
	if err := store.AppendContext(ctx, old); err != nil {
		t.Fatalf("append old: %v", err)
	}
	if err := store.AppendContext(ctx, fresh); err != nil {
		t.Fatalf("append fresh: %v", err)
	}

	removed, err := store.Prune(ctx, 14)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned line, got %d", removed)
	}
	events, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 1 || events[0].Text != "fresh" {
		t.Fatalf("unexpected survivors: %+v", events)
	}
}

func TestPruneDisabledRetentionIsNoop(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	store.Append(monitor.Event{Seq: 1, Time: time.Now().AddDate(0, 0, -365), Text: "ancient"})

	removed, err := store.Prune(ctx, 0)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no pruning with retention disabled, got %d", removed)
	}
}
