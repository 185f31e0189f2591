package server

import (
	"context"
	"errors"
	"testing"

	"github.com/preston-bernstein/match-feed-service/internal/config"
	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
	"github.com/preston-bernstein/match-feed-service/internal/testutil"
)

func TestBuildSettingsStaticWithoutFile(t *testing.T) {
	cfg := config.Config{Feed: config.FeedConfig{ParallelFetch: true, GroupLimits: "new=10"}}
	sc, err := buildSettings(cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if sc.watcher != nil {
		t.Fatalf("expected no watcher without a limits file")
	}
	if _, ok := sc.source.(*settings.Static); !ok {
		t.Fatalf("expected static source, got %T", sc.source)
	}
	if limit, ok := sc.source.Current().Limits.LimitFor(matches.GroupNew); !ok || limit != 10 {
		t.Fatalf("expected new limit 10, got %d ok=%v", limit, ok)
	}
}

func TestBuildSettingsFileSourceWithFile(t *testing.T) {
	cfg := config.Config{Feed: config.FeedConfig{LimitsFile: "/etc/match-feed/limits.yaml"}}
	sc, err := buildSettings(cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	fs, ok := sc.source.(*settings.FileSource)
	if !ok || sc.watcher == nil {
		t.Fatalf("expected file source doubling as watcher, got %T", sc.source)
	}
	if fs.Ready() {
		t.Fatalf("expected file source not ready before start")
	}
}

func TestBuildSettingsInvalidLimits(t *testing.T) {
	cfg := config.Config{Feed: config.FeedConfig{GroupLimits: "new"}}
	if _, err := buildSettings(cfg, nil, nil); err == nil {
		t.Fatalf("expected invalid limits error")
	}
}

func TestFallbackWatcherReadiness(t *testing.T) {
	cases := []struct {
		name      string
		startErr  error
		readyVal  bool
		wantReady bool
	}{
		{"waiting for first load", nil, false, false},
		{"loaded", nil, true, true},
		{"watch failed, startup settings in effect", errors.New("no such directory"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &testutil.StubWatcher{StartErr: tc.startErr, ReadyVal: tc.readyVal}
			w := newFallbackWatcher(stub)
			if w.Ready() != tc.readyVal {
				t.Fatalf("expected readiness %v before start, got %v", tc.readyVal, w.Ready())
			}
			if err := w.Start(context.Background()); !errors.Is(err, tc.startErr) {
				t.Fatalf("expected start error %v, got %v", tc.startErr, err)
			}
			if got := w.Ready(); got != tc.wantReady {
				t.Fatalf("expected ready %v, got %v", tc.wantReady, got)
			}
			if err := w.Stop(context.Background()); err != nil || stub.StopCalls != 1 {
				t.Fatalf("expected stop delegated, got err=%v calls=%d", err, stub.StopCalls)
			}
		})
	}
}
