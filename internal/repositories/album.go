package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const albumColumns = "id, sequence, title, year, genre, artist, songs, created_at, updated_at, deleted_at"

// AlbumRepository implements [models.AlbumStore] on SQLite.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new [AlbumRepository] with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts a new album with generated ID and sequence
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "albums")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	songs, err := encodeIDs(album.Songs())
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO albums (id, sequence, title, year, genre, artist, songs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, album.Title(), album.Year(), album.Genre(), album.Artist(), songs, album.CreatedAt(), album.UpdatedAt())
	if err != nil {
		return insertError("album", err)
	}

	album.SetID(id)
	album.SetSequence(sequence)
	return nil
}

// Get retrieves a live album by ID
func (r *AlbumRepository) Get(ctx context.Context, id string) (*models.Album, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE id = ? AND deleted_at IS NULL"
	album, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("album", id, err)
	}
	return album, nil
}

// FindByTitle retrieves the live album with the given title by artistID
func (r *AlbumRepository) FindByTitle(ctx context.Context, title, artistID string) (*models.Album, error) {
	title = shared.NormalizeName(title)
	query := "SELECT " + albumColumns + " FROM albums WHERE title = ? AND artist = ? AND deleted_at IS NULL"
	album, err := r.scan(r.db.QueryRowContext(ctx, query, title, artistID))
	if err != nil {
		return nil, notFound("album", title, err)
	}
	return album, nil
}

// Update writes title, year, genre and artist. The songs set is changed through [AlbumRepository.SetSongs].
func (r *AlbumRepository) Update(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE albums
		SET title = ?, year = ?, genre = ?, artist = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, album.Title(), album.Year(), album.Genre(), album.Artist(), now, album.ID())
	if err != nil {
		return insertError("album", err)
	}
	if err := expectRow(result, "albums", album.ID()); err != nil {
		return err
	}

	album.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an album by ID
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "albums", id)
}

// List retrieves live albums, optionally filtered by "artist" or "genre"
func (r *AlbumRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Album, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE deleted_at IS NULL"
	args := []any{}

	if artist, ok := stringCriteria(criteria, "artist"); ok {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if genre, ok := stringCriteria(criteria, "genre"); ok {
		query += " AND genre = ?"
		args = append(args, genre)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := []*models.Album{}
	for rows.Next() {
		album, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// AddSong adds songID to the album's song set
func (r *AlbumRepository) AddSong(ctx context.Context, albumID, songID string) error {
	return mutateIDs(ctx, r.db, "albums", "songs", albumID, func(ids []string) []string {
		return models.AddID(ids, songID)
	})
}

// RemoveSong removes songID from the album's song set
func (r *AlbumRepository) RemoveSong(ctx context.Context, albumID, songID string) error {
	return mutateIDs(ctx, r.db, "albums", "songs", albumID, func(ids []string) []string {
		return models.RemoveID(ids, songID)
	})
}

// SetSongs replaces the album's song set
func (r *AlbumRepository) SetSongs(ctx context.Context, albumID string, songIDs []string) error {
	return mutateIDs(ctx, r.db, "albums", "songs", albumID, func([]string) []string {
		return models.UniqueIDs(songIDs)
	})
}

// CountByArtist groups live albums by their artist reference
func (r *AlbumRepository) CountByArtist(ctx context.Context) ([]models.GroupCount, error) {
	query := `
		SELECT artist, COUNT(*) FROM albums
		WHERE deleted_at IS NULL
		GROUP BY artist
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count albums by artist: %w", err)
	}
	defer rows.Close()

	counts := []models.GroupCount{}
	for rows.Next() {
		var c models.GroupCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan album count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// SongCounts projects every live album onto the size of its song set
func (r *AlbumRepository) SongCounts(ctx context.Context) ([]models.AlbumSongCount, error) {
	query := `
		SELECT id, title, COALESCE(json_array_length(songs), 0) FROM albums
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count album songs: %w", err)
	}
	defer rows.Close()

	counts := []models.AlbumSongCount{}
	for rows.Next() {
		var c models.AlbumSongCount
		if err := rows.Scan(&c.AlbumID, &c.Title, &c.SongCount); err != nil {
			return nil, fmt.Errorf("failed to scan album song count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *AlbumRepository) scan(row scanner) (*models.Album, error) {
	var (
		id        string
		sequence  int
		title     string
		year      int
		genre     string
		artist    string
		songs     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &title, &year, &genre, &artist, &songs, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	songIDs, err := decodeIDs(songs)
	if err != nil {
		return nil, err
	}

	album := models.NewAlbum(title, year, genre, artist, songIDs)
	stamp(album, id, sequence, createdAt, updatedAt, deletedAt)
	return album, nil
}
