package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileSourceServesBaseUntilLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	src := NewFileSource(path, Default(), nil, nil)

	if src.Ready() {
		t.Fatalf("expected not ready before first load")
	}
	if got := src.Current(); got.Version != 1 || !got.ParallelFetch {
		t.Fatalf("expected base settings, got %+v", got)
	}
}

func TestFileSourceReloadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	writeFile(t, path, "parallelFetch: false\nqueryTimeout: 750ms\nlimits:\n  new: 10\n  archive: 5\n")
	rec := metrics.NewRecorder()
	src := NewFileSource(path, Default(), nil, rec)

	if err := src.Reload(); err != nil {
		t.Fatalf("unexpected reload error %v", err)
	}
	got := src.Current()
	if got.ParallelFetch {
		t.Fatalf("expected legacy path after reload")
	}
	if got.QueryTimeout != 750*time.Millisecond {
		t.Fatalf("expected 750ms timeout, got %v", got.QueryTimeout)
	}
	if limit, ok := got.Limits.LimitFor(matches.GroupArchive); !ok || limit != 5 {
		t.Fatalf("expected archive cap 5, got %d %v", limit, ok)
	}
	if _, ok := got.Limits.LimitFor(matches.GroupComm); ok {
		t.Fatalf("expected file limits to replace base limits")
	}
	if got.Version != 2 {
		t.Fatalf("expected version 2, got %d", got.Version)
	}
	if !src.Ready() {
		t.Fatalf("expected ready after successful load")
	}
	if rec.SettingsReloads() != 1 {
		t.Fatalf("expected one recorded reload, got %d", rec.SettingsReloads())
	}
}

func TestFileSourceKeepsLastGoodSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	writeFile(t, path, "limits:\n  new: 10\n")
	src := NewFileSource(path, Default(), nil, nil)
	if err := src.Reload(); err != nil {
		t.Fatalf("unexpected reload error %v", err)
	}

	writeFile(t, path, "limits:\n  bogus: 10\n")
	if err := src.Reload(); err == nil {
		t.Fatalf("expected unknown group to fail reload")
	}
	got := src.Current()
	if limit, _ := got.Limits.LimitFor(matches.GroupNew); limit != 10 {
		t.Fatalf("expected previous snapshot to survive, got %+v", got.Limits)
	}
	if status := src.Status(); status.ConsecutiveFailures != 1 || status.LastError == "" {
		t.Fatalf("expected failure recorded, got %+v", status)
	}
}

func TestFileSourceWatchesForChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	writeFile(t, path, "limits:\n  new: 10\n")
	src := NewFileSource(path, Default(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = src.Stop(context.Background()) }()

	if limit, _ := src.Current().Limits.LimitFor(matches.GroupNew); limit != 10 {
		t.Fatalf("expected initial load on start, got %d", limit)
	}

	writeFile(t, path, "limits:\n  new: 20\n")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if limit, _ := src.Current().Limits.LimitFor(matches.GroupNew); limit == 20 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected watcher to pick up the new limit")
}

func TestFileSourceStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	src := NewFileSource(path, Default(), nil, nil)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := src.Stop(context.Background()); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := src.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
