package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/samruddhi/pipecut/internal/config"
	"github.com/samruddhi/pipecut/internal/db/libsql"
	"github.com/samruddhi/pipecut/internal/db/sqlite"
	"github.com/samruddhi/pipecut/internal/logger"
)

// LocalOpener opens the file-backed database at path
type LocalOpener func(ctx context.Context, path string) (*sql.DB, error)

// RemoteOpener opens the hosted database at url using authToken
type RemoteOpener func(ctx context.Context, url, authToken string) (*sql.DB, error)

// ResolveTarget picks the backend. Remote is chosen only when both the
// URL and the auth token are non-empty; anything else falls back to the
// local file.
func ResolveTarget(cfg config.DatabaseConfig) Target {
	if cfg.URL != "" && cfg.AuthToken != "" {
		return RemoteTarget(cfg.URL, cfg.AuthToken)
	}
	path := cfg.Path
	if path == "" {
		path = config.DefaultDBPath
	}
	return LocalTarget(path)
}

// Selector constructs the process-wide Database once, on first use
type Selector struct {
	target         Target
	connectTimeout time.Duration
	openLocal      LocalOpener
	openRemote     RemoteOpener

	mu     sync.Mutex
	done   bool
	handle Database
	err    error
}

// Option configures a Selector
type Option func(*Selector)

// WithLocalOpener replaces the local constructor
func WithLocalOpener(fn LocalOpener) Option {
	return func(s *Selector) { s.openLocal = fn }
}

// WithRemoteOpener replaces the remote constructor
func WithRemoteOpener(fn RemoteOpener) Option {
	return func(s *Selector) { s.openRemote = fn }
}

// WithConnectTimeout bounds the one-time construction. Zero means no bound.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Selector) { s.connectTimeout = d }
}

// NewSelector creates a selector for target
func NewSelector(target Target, opts ...Option) *Selector {
	s := &Selector{
		target:     target,
		openLocal:  sqlite.Open,
		openRemote: libsql.Open,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig resolves the target from cfg and builds a selector for it
func FromConfig(cfg config.DatabaseConfig, opts ...Option) *Selector {
	opts = append([]Option{WithConnectTimeout(cfg.ConnectTimeout)}, opts...)
	return NewSelector(ResolveTarget(cfg), opts...)
}

// Target returns the resolved target without connecting
func (s *Selector) Target() Target {
	return s.target
}

// Get returns the shared handle, constructing it on the first call.
// Later calls return the same handle, or the same error if construction
// failed; configuration is not re-evaluated.
func (s *Selector) Get(ctx context.Context) (Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.done {
		s.handle, s.err = s.open(ctx)
		s.done = true
	}
	return s.handle, s.err
}

func (s *Selector) open(ctx context.Context) (Database, error) {
	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}

	var (
		pool *sql.DB
		err  error
	)
	switch s.target.Kind {
	case KindRemote:
		logger.Info("Connecting to remote database %s", s.target.URL)
		pool, err = s.openRemote(ctx, s.target.URL, s.target.AuthToken)
	default:
		logger.Info("Opening local database %s", s.target.Path)
		pool, err = s.openLocal(ctx, s.target.Path)
	}
	if err != nil {
		logger.Error("Database construction failed for %s: %v", s.target, err)
		return nil, &UnavailableError{Target: s.target, Err: err}
	}

	logger.Info("Database ready: %s", s.target)
	return Wrap(pool, s.target), nil
}

// Close closes the handle if it was constructed
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return nil
	}
	return s.handle.Close()
}
