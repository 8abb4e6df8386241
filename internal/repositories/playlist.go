package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const playlistColumns = "id, sequence, name, owner, songs, created_at, updated_at, deleted_at"

// PlaylistRepository implements [models.PlaylistStore] on SQLite.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new [PlaylistRepository] with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist with generated ID and sequence
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	songs, err := encodeIDs(playlist.Songs())
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO playlists (id, sequence, name, owner, songs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, playlist.Name(), playlist.Owner(), songs, playlist.CreatedAt(), playlist.UpdatedAt())
	if err != nil {
		return insertError("playlist", err)
	}

	playlist.SetID(id)
	playlist.SetSequence(sequence)
	return nil
}

// Get retrieves a live playlist by ID
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE id = ? AND deleted_at IS NULL"
	playlist, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("playlist", id, err)
	}
	return playlist, nil
}

// Update writes name and the ordered song list
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songs, err := encodeIDs(playlist.Songs())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		UPDATE playlists
		SET name = ?, songs = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, playlist.Name(), songs, now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := expectRow(result, "playlists", playlist.ID()); err != nil {
		return err
	}

	playlist.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "playlists", id)
}

// List retrieves live playlists, optionally filtered by "owner"
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE deleted_at IS NULL"
	args := []any{}

	if owner, ok := stringCriteria(criteria, "owner"); ok {
		query += " AND owner = ?"
		args = append(args, owner)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// AddSongs appends songIDs not already present, keeping order
func (r *PlaylistRepository) AddSongs(ctx context.Context, playlistID string, songIDs []string) error {
	return mutateIDs(ctx, r.db, "playlists", "songs", playlistID, func(ids []string) []string {
		for _, id := range songIDs {
			ids = models.AddID(ids, id)
		}
		return ids
	})
}

// RemoveSongs drops every id in songIDs
func (r *PlaylistRepository) RemoveSongs(ctx context.Context, playlistID string, songIDs []string) error {
	return mutateIDs(ctx, r.db, "playlists", "songs", playlistID, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return slices.Contains(songIDs, id) })
	})
}

func (r *PlaylistRepository) scan(row scanner) (*models.Playlist, error) {
	var (
		id        string
		sequence  int
		name      string
		owner     string
		songs     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &owner, &songs, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	songIDs, err := decodeIDs(songs)
	if err != nil {
		return nil, err
	}

	playlist := models.NewPlaylist(name, owner, songIDs)
	stamp(playlist, id, sequence, createdAt, updatedAt, deletedAt)
	return playlist, nil
}
