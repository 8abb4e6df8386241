package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// PairedWriteRepository implements [models.PairedWriteLog] on SQLite.
type PairedWriteRepository struct {
	db *sql.DB
}

// NewPairedWriteRepository creates a new [PairedWriteRepository] with the given database connection
func NewPairedWriteRepository(db *sql.DB) *PairedWriteRepository {
	return &PairedWriteRepository{db: db}
}

// Record stores a failed paired write
func (r *PairedWriteRepository) Record(ctx context.Context, w models.PairedWrite) error {
	if w.ID == "" {
		w.ID = shared.GenerateID()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO paired_write_failures (id, operation, target, target_id, ref_id, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, w.ID, w.Operation, w.Target, w.TargetID, w.RefID, w.Error, w.CreatedAt); err != nil {
		return fmt.Errorf("failed to record paired write: %w", err)
	}
	return nil
}

// Pending lists unresolved failures, oldest first
func (r *PairedWriteRepository) Pending(ctx context.Context) ([]models.PairedWrite, error) {
	query := `
		SELECT id, operation, target, target_id, ref_id, error, created_at
		FROM paired_write_failures
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query paired writes: %w", err)
	}
	defer rows.Close()

	writes := []models.PairedWrite{}
	for rows.Next() {
		var w models.PairedWrite
		if err := rows.Scan(&w.ID, &w.Operation, &w.Target, &w.TargetID, &w.RefID, &w.Error, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan paired write: %w", err)
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}

// Resolve marks the given failures as repaired
func (r *PairedWriteRepository) Resolve(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "UPDATE paired_write_failures SET resolved_at = ? WHERE resolved_at IS NULL AND id IN (" + placeholders + ")"
	args := []any{time.Now().UTC()}
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to resolve paired writes: %w", err)
	}
	return nil
}
