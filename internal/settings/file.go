package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
)

// fileDocument is the YAML layout of the limits file. Absent keys keep the base value.
//
//	parallelFetch: true
//	queryTimeout: 1500ms
//	limits:
//	  new: 100
//	  comm: 250
type fileDocument struct {
	ParallelFetch *bool          `yaml:"parallelFetch"`
	QueryTimeout  string         `yaml:"queryTimeout"`
	Limits        map[string]int `yaml:"limits"`
}

// Status describes the recent health of the file watcher.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// FileSource overlays a YAML file on top of base settings and reloads it whenever the
// file changes. Readers always see a complete snapshot.
type FileSource struct {
	path    string
	base    Settings
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	current atomic.Pointer[Settings]
	version atomic.Int64

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// NewFileSource serves base until the first successful load of path.
func NewFileSource(path string, base Settings, logger *slog.Logger, recorder *metrics.Recorder) *FileSource {
	s := &FileSource{
		path:    path,
		base:    base.Clone(),
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	initial := s.base.Clone()
	s.version.Store(initial.Version)
	s.current.Store(&initial)
	return s
}

func (s *FileSource) Current() Settings {
	return s.current.Load().Clone()
}

// Ready reports whether the file has been loaded at least once.
func (s *FileSource) Ready() bool {
	return !s.Status().LastSuccess.IsZero()
}

// Start loads the file and watches its directory until ctx ends or Stop is called.
// A failed initial load is logged; base settings stay in effect.
func (s *FileSource) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	// Editors and config mounts replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("settings watcher: %w", err)
	}
	s.watcher = watcher
	s.started = true

	_ = s.Reload()

	go s.loop(ctx)
	return nil
}

// Stop halts the watch loop.
func (s *FileSource) Stop(ctx context.Context) error {
	_ = ctx
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

func (s *FileSource) loop(ctx context.Context) {
	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				_ = s.Reload()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn(s.logger, "settings watcher error", logging.FieldError, err)
		}
	}
}

// Reload reads the file once and swaps in a new snapshot on success.
func (s *FileSource) Reload() error {
	start := s.now()
	s.recordAttempt(start)

	next, err := s.load()
	s.metrics.RecordSettingsReload(err)
	if err != nil {
		s.recordFailure(err)
		logging.Warn(s.logger, "settings reload failed", "path", s.path, logging.FieldError, err)
		return err
	}

	next.Version = s.version.Add(1)
	s.current.Store(&next)
	s.recordSuccess(start)
	logging.Info(s.logger, "settings reloaded",
		logging.FieldSettings, next.Version,
		"parallel_fetch", next.ParallelFetch,
		"limits", next.Limits.String(),
	)
	return nil
}

func (s *FileSource) load() (Settings, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}, err
	}
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return overlay(s.base, doc)
}

func overlay(base Settings, doc fileDocument) (Settings, error) {
	next := base.Clone()
	if doc.ParallelFetch != nil {
		next.ParallelFetch = *doc.ParallelFetch
	}
	if doc.QueryTimeout != "" {
		d, err := time.ParseDuration(doc.QueryTimeout)
		if err != nil {
			return Settings{}, fmt.Errorf("queryTimeout: %w", err)
		}
		if d < 0 {
			return Settings{}, errors.New("queryTimeout must not be negative")
		}
		next.QueryTimeout = d
	}
	if doc.Limits != nil {
		limits := LimitPolicy{}
		for name, v := range doc.Limits {
			group, ok := matches.ParseGroup(name)
			if !ok {
				return Settings{}, fmt.Errorf("%w: unknown group %q", ErrInvalidLimits, name)
			}
			limits[group] = v
		}
		next.Limits = limits
	}
	return next, nil
}

// Status returns a snapshot of the watcher's recent health.
func (s *FileSource) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *FileSource) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastAttempt = at
}

func (s *FileSource) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
}

func (s *FileSource) recordFailure(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	s.status.LastError = err.Error()
}
