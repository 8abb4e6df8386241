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

const songColumns = "id, sequence, title, artist, album, duration, created_at, updated_at, deleted_at"

// SongRepository implements [models.SongStore] on SQLite.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new [SongRepository] with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song with generated ID and sequence
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO songs (id, sequence, title, artist, album, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, song.Title(), song.Artist(), nullable(song.Album()), song.Duration(), song.CreatedAt(), song.UpdatedAt())
	if err != nil {
		return insertError("song", err)
	}

	song.SetID(id)
	song.SetSequence(sequence)
	return nil
}

// Get retrieves a live song by ID
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ? AND deleted_at IS NULL"
	song, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("song", id, err)
	}
	return song, nil
}

// FindByTitle retrieves the live song with the given title by artistID
func (r *SongRepository) FindByTitle(ctx context.Context, title, artistID string) (*models.Song, error) {
	title = shared.NormalizeName(title)
	query := "SELECT " + songColumns + " FROM songs WHERE title = ? AND artist = ? AND deleted_at IS NULL"
	song, err := r.scan(r.db.QueryRowContext(ctx, query, title, artistID))
	if err != nil {
		return nil, notFound("song", title, err)
	}
	return song, nil
}

// GetMany returns the live songs among ids in sequence order
func (r *SongRepository) GetMany(ctx context.Context, ids []string) ([]*models.Song, error) {
	ids = models.UniqueIDs(ids)
	songs := []*models.Song{}
	if len(ids) == 0 {
		return songs, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL AND id IN (" + placeholders + ") ORDER BY sequence ASC"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.query(ctx, query, args...)
}

// Update writes title, artist, album and duration
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, duration = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, song.Title(), song.Artist(), nullable(song.Album()), song.Duration(), now, song.ID())
	if err != nil {
		return insertError("song", err)
	}
	if err := expectRow(result, "songs", song.ID()); err != nil {
		return err
	}

	song.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "songs", id)
}

// likeEscaper makes a search term match literally inside a LIKE pattern. SQLite's LIKE
// already ignores ASCII case.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List retrieves live songs, optionally filtered by "artist", "album" or "title_contains",
// and capped by "limit"
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL"
	args := []any{}

	if artist, ok := stringCriteria(criteria, "artist"); ok {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if album, ok := stringCriteria(criteria, "album"); ok {
		query += " AND album = ?"
		args = append(args, album)
	}

	if title, ok := stringCriteria(criteria, "title_contains"); ok {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(title)+"%")
	}

	query += " ORDER BY sequence ASC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// SetAlbum points the song at albumID. An empty albumID unsets it.
func (r *SongRepository) SetAlbum(ctx context.Context, songID, albumID string) error {
	query := "UPDATE songs SET album = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL"
	result, err := r.db.ExecContext(ctx, query, nullable(albumID), time.Now().UTC(), songID)
	if err != nil {
		return fmt.Errorf("failed to set song album: %w", err)
	}
	return expectRow(result, "songs", songID)
}

// ClearAlbum unsets the song's album while it still equals albumID. A song already moved elsewhere is left alone.
func (r *SongRepository) ClearAlbum(ctx context.Context, songID, albumID string) error {
	query := "UPDATE songs SET album = NULL, updated_at = ? WHERE id = ? AND album = ?"
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), songID, albumID); err != nil {
		return fmt.Errorf("failed to clear song album: %w", err)
	}
	return nil
}

func (r *SongRepository) query(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

func (r *SongRepository) scan(row scanner) (*models.Song, error) {
	var (
		id        string
		sequence  int
		title     string
		artist    string
		album     sql.NullString
		duration  int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &title, &artist, &album, &duration, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	song := models.NewSong(title, artist, album.String, duration)
	stamp(song, id, sequence, createdAt, updatedAt, deletedAt)
	return song, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
