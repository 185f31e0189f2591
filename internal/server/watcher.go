package server

import (
	"context"
	"sync/atomic"
)

// Watcher is the lifecycle of a hot-reloaded settings source.
type Watcher interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ready() bool
}

// fallbackWatcher also reports ready once Start has failed. The startup settings then stay in
// effect for the life of the process.
type fallbackWatcher struct {
	Watcher
	degraded atomic.Bool
}

func newFallbackWatcher(w Watcher) *fallbackWatcher {
	return &fallbackWatcher{Watcher: w}
}

func (f *fallbackWatcher) Start(ctx context.Context) error {
	err := f.Watcher.Start(ctx)
	if err != nil {
		f.degraded.Store(true)
	}
	return err
}

func (f *fallbackWatcher) Ready() bool {
	return f.degraded.Load() || f.Watcher.Ready()
}
