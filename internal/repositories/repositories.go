package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers give lists a stable insertion order independent of the random ids.
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// UUIDs is the [models.IDScheme] of the SQLite backend.
type UUIDs struct{}

func (UUIDs) Name() string { return "uuid" }

func (UUIDs) Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode id set: %w", err)
	}
	return string(data), nil
}

func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode id set: %w", err)
	}
	return ids, nil
}

// mutateIDs applies fn to the JSON id set stored in table.column for one live row.
//
// The read and the write share a transaction, so the change is atomic per row
// the same way $addToSet/$pull are per document.
func mutateIDs(ctx context.Context, db *sql.DB, table, column, id string, fn func([]string) []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND deleted_at IS NULL", column, table)
	err = tx.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", singular(table), id, shared.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s.%s: %w", table, column, err)
	}

	ids, err := decodeIDs(raw)
	if err != nil {
		return err
	}

	encoded, err := encodeIDs(fn(ids))
	if err != nil {
		return err
	}
	if encoded == raw {
		return tx.Commit()
	}

	update := fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = ? WHERE id = ?", table, column)
	if _, err := tx.ExecContext(ctx, update, encoded, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to write %s.%s: %w", table, column, err)
	}

	return tx.Commit()
}

// softDelete marks a live row as deleted.
func softDelete(ctx context.Context, db *sql.DB, table, id string) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", table)
	result, err := db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", singular(table), err)
	}
	return expectRow(result, table, id)
}

func expectRow(result sql.Result, table, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", singular(table), id, shared.ErrNotFound)
	}
	return nil
}

// insertError maps UNIQUE violations onto [shared.ErrDuplicateEntity].
func insertError(entity string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", entity, shared.ErrDuplicateEntity)
	}
	return fmt.Errorf("failed to write %s: %w", entity, err)
}

func notFound(entity, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, shared.ErrNotFound)
	}
	return fmt.Errorf("failed to query %s: %w", entity, err)
}

func singular(table string) string {
	if table == "" {
		return table
	}
	return table[:len(table)-1]
}

func stringCriteria(criteria map[string]any, key string) (string, bool) {
	v, ok := criteria[key].(string)
	return v, ok && v != ""
}

// stamp copies the bookkeeping columns onto an entity after a scan.
type stamped interface {
	SetID(string)
	SetSequence(int)
	SetCreatedAt(time.Time)
	SetUpdatedAt(time.Time)
	SetDeletedAt(*time.Time)
}

func stamp(m stamped, id string, sequence int, createdAt, updatedAt time.Time, deletedAt sql.NullTime) {
	m.SetID(id)
	m.SetSequence(sequence)
	m.SetCreatedAt(createdAt)
	m.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		m.SetDeletedAt(&deletedAt.Time)
	}
}

// NewCatalog wires every SQLite store around db.
func NewCatalog(db *sql.DB) *models.Catalog {
	return &models.Catalog{
		Artists:   NewArtistRepository(db),
		Albums:    NewAlbumRepository(db),
		Songs:     NewSongRepository(db),
		Genres:    NewGenreRepository(db),
		Playlists: NewPlaylistRepository(db),
		Users:     NewUserRepository(db),
		Journal:   NewPairedWriteRepository(db),
		IDs:       UUIDs{},
		Backend:   backend{db: db},
	}
}

type backend struct {
	db *sql.DB
}

func (b backend) Ping(ctx context.Context) error { return b.db.PingContext(ctx) }

func (b backend) Close(context.Context) error { return b.db.Close() }
