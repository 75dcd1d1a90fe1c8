package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Kind names a backend family
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Target is the resolved connection target for the process lifetime.
// Local targets carry Path; remote targets carry URL and AuthToken.
type Target struct {
	Kind      Kind
	Path      string
	URL       string
	AuthToken string
}

// LocalTarget returns a file-backed target
func LocalTarget(path string) Target {
	return Target{Kind: KindLocal, Path: path}
}

// RemoteTarget returns a hosted-database target
func RemoteTarget(url, authToken string) Target {
	return Target{Kind: KindRemote, URL: url, AuthToken: authToken}
}

// String describes the target without exposing the auth token
func (t Target) String() string {
	if t.Kind == KindRemote {
		return fmt.Sprintf("remote(%s)", t.URL)
	}
	return fmt.Sprintf("local(%s)", t.Path)
}

// Database is the capability set shared by both backends. Callers never
// branch on which backend is behind it.
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Ping(ctx context.Context) error
	Close() error

	// Target reports which backend this handle talks to
	Target() Target
	// DB exposes the pool for tooling such as migrations
	DB() *sql.DB
}

// handle adapts a *sql.DB to Database
type handle struct {
	db     *sql.DB
	target Target
}

// Wrap returns a Database for an already opened pool
func Wrap(db *sql.DB, target Target) Database {
	return &handle{db: db, target: target}
}

func (h *handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.db.ExecContext(ctx, query, args...)
}

func (h *handle) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.db.QueryContext(ctx, query, args...)
}

func (h *handle) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return h.db.QueryRowContext(ctx, query, args...)
}

func (h *handle) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return h.db.BeginTx(ctx, opts)
}

func (h *handle) Ping(ctx context.Context) error {
	var one int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (h *handle) Close() error {
	return h.db.Close()
}

func (h *handle) Target() Target {
	return h.target
}

func (h *handle) DB() *sql.DB {
	return h.db
}
