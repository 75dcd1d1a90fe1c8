package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/models"
)

// ErrLeftoverNotFound is returned when deleting an unknown id
var ErrLeftoverNotFound = errors.New("leftover not found")

// LeftoverStore persists leftover pipe pieces
type LeftoverStore struct {
	db db.Database
}

// NewLeftoverStore creates a store over database. The schema must already
// be migrated.
func NewLeftoverStore(database db.Database) *LeftoverStore {
	return &LeftoverStore{db: database}
}

// checkedLength rounds length to storage precision, rejecting values a
// JSON response could not carry.
func checkedLength(length float64) (float64, error) {
	if !cutting.ValidLength(length) {
		return 0, fmt.Errorf("%w: %v mm", cutting.ErrInvalidLength, length)
	}
	return cutting.Round2(length), nil
}

// created_at is rendered as text so both backends scan it the same way.
const selectLeftovers = `
	SELECT id, length, strftime('%Y-%m-%dT%H:%M:%SZ', created_at)
	FROM leftovers
	ORDER BY length DESC, id ASC`

// List returns every leftover, largest first
func (s *LeftoverStore) List(ctx context.Context) ([]*models.Leftover, error) {
	rows, err := s.db.QueryContext(ctx, selectLeftovers)
	if err != nil {
		return nil, fmt.Errorf("failed to query leftovers: %w", err)
	}
	defer rows.Close()

	var leftovers []*models.Leftover
	for rows.Next() {
		var (
			l         models.Leftover
			createdAt sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Length, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan leftover: %w", err)
		}
		if createdAt.Valid {
			if ts, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				l.CreatedAt = ts
			}
		}
		leftovers = append(leftovers, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leftovers: %w", err)
	}

	return leftovers, nil
}

// Count returns the number of stored leftovers
func (s *LeftoverStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leftovers").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count leftovers: %w", err)
	}
	return n, nil
}

// Insert stores a leftover of length mm and returns its id
func (s *LeftoverStore) Insert(ctx context.Context, length float64) (int64, error) {
	length, err := checkedLength(length)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO leftovers (length) VALUES (?)", length)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leftover: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read leftover id: %w", err)
	}
	return id, nil
}

// Delete removes one leftover
func (s *LeftoverStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM leftovers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete leftover: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrLeftoverNotFound, id)
	}
	return nil
}

// DeleteBatch removes ids in one transaction
func (s *LeftoverStore) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteIDs(ctx, tx, ids)
	})
}

// InsertBatch stores lengths in one transaction
func (s *LeftoverStore) InsertBatch(ctx context.Context, lengths []float64) error {
	if len(lengths) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertLengths(ctx, tx, lengths)
	})
}

// Apply performs an inventory change in one transaction
func (s *LeftoverStore) Apply(ctx context.Context, change models.InventoryChange) error {
	if change.Empty() {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteIDs(ctx, tx, change.DeleteIDs); err != nil {
			return err
		}
		return insertLengths(ctx, tx, change.InsertScraps)
	})
}

// Clear deletes every leftover and returns how many were removed
func (s *LeftoverStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM leftovers")
	if err != nil {
		return 0, fmt.Errorf("failed to clear leftovers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

// Stats aggregates the inventory; leftovers of at least usableMin count as usable
func (s *LeftoverStore) Stats(ctx context.Context, usableMin float64) (*models.InventoryStats, error) {
	var st models.InventoryStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(length), 0),
		       COALESCE(MAX(length), 0),
		       COALESCE(MIN(length), 0),
		       COALESCE(SUM(CASE WHEN length >= ? THEN 1 ELSE 0 END), 0)
		FROM leftovers`, usableMin).Scan(&st.Count, &st.TotalLength, &st.Longest, &st.Shortest, &st.Usable)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leftovers: %w", err)
	}
	st.TotalLength = cutting.Round2(st.TotalLength)
	st.NotUsable = st.Count - st.Usable
	return &st, nil
}

func (s *LeftoverStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func deleteIDs(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM leftovers WHERE id IN (%s)", placeholders)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete leftovers: %w", err)
	}
	return nil
}

func insertLengths(ctx context.Context, tx *sql.Tx, lengths []float64) error {
	for _, length := range lengths {
		length, err := checkedLength(length)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO leftovers (length) VALUES (?)", length); err != nil {
			return fmt.Errorf("failed to insert leftover: %w", err)
		}
	}
	return nil
}
