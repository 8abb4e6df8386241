package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const artistColumns = "id, sequence, name, country, genres, albums, created_at, updated_at, deleted_at"

// ArtistRepository implements [models.ArtistStore] on SQLite.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new [ArtistRepository] with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new artist with generated ID and sequence
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "artists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	genres, err := encodeIDs(artist.Genres())
	if err != nil {
		return err
	}
	albums, err := encodeIDs(artist.Albums())
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO artists (id, sequence, name, country, genres, albums, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, artist.Name(), artist.Country(), genres, albums, artist.CreatedAt(), artist.UpdatedAt())
	if err != nil {
		return insertError("artist", err)
	}

	artist.SetID(id)
	artist.SetSequence(sequence)
	return nil
}

// Get retrieves a live artist by ID
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE id = ? AND deleted_at IS NULL"
	artist, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("artist", id, err)
	}
	return artist, nil
}

// FindByName retrieves a live artist by exact name
func (r *ArtistRepository) FindByName(ctx context.Context, name string) (*models.Artist, error) {
	name = shared.NormalizeName(name)
	query := "SELECT " + artistColumns + " FROM artists WHERE name = ? AND deleted_at IS NULL"
	artist, err := r.scan(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFound("artist", name, err)
	}
	return artist, nil
}

// Update writes name, country and genres. The albums set is left untouched.
func (r *ArtistRepository) Update(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	genres, err := encodeIDs(artist.Genres())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		UPDATE artists
		SET name = ?, country = ?, genres = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, artist.Name(), artist.Country(), genres, now, artist.ID())
	if err != nil {
		return insertError("artist", err)
	}
	if err := expectRow(result, "artists", artist.ID()); err != nil {
		return err
	}

	artist.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an artist by ID
func (r *ArtistRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "artists", id)
}

// List retrieves live artists, optionally filtered by "genre" or "name"
func (r *ArtistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE deleted_at IS NULL"
	args := []any{}

	if genre, ok := stringCriteria(criteria, "genre"); ok {
		query += " AND EXISTS (SELECT 1 FROM json_each(artists.genres) WHERE json_each.value = ?)"
		args = append(args, genre)
	}

	if name, ok := stringCriteria(criteria, "name"); ok {
		query += " AND name = ?"
		args = append(args, shared.NormalizeName(name))
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := []*models.Artist{}
	for rows.Next() {
		artist, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// CountByGenre counts live artists referencing genreID
func (r *ArtistRepository) CountByGenre(ctx context.Context, genreID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM artists
		WHERE deleted_at IS NULL
		AND EXISTS (SELECT 1 FROM json_each(artists.genres) WHERE json_each.value = ?)
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, genreID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artists by genre: %w", err)
	}
	return count, nil
}

// AddAlbum adds albumID to the artist's album set
func (r *ArtistRepository) AddAlbum(ctx context.Context, artistID, albumID string) error {
	return mutateIDs(ctx, r.db, "artists", "albums", artistID, func(ids []string) []string {
		return models.AddID(ids, albumID)
	})
}

// RemoveAlbum removes albumID from the artist's album set
func (r *ArtistRepository) RemoveAlbum(ctx context.Context, artistID, albumID string) error {
	return mutateIDs(ctx, r.db, "artists", "albums", artistID, func(ids []string) []string {
		return models.RemoveID(ids, albumID)
	})
}

// SetAlbums replaces the artist's album set
func (r *ArtistRepository) SetAlbums(ctx context.Context, artistID string, albumIDs []string) error {
	return mutateIDs(ctx, r.db, "artists", "albums", artistID, func([]string) []string {
		return models.UniqueIDs(albumIDs)
	})
}

func (r *ArtistRepository) scan(row scanner) (*models.Artist, error) {
	var (
		id        string
		sequence  int
		name      string
		country   string
		genres    string
		albums    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &country, &genres, &albums, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	genreIDs, err := decodeIDs(genres)
	if err != nil {
		return nil, err
	}
	albumIDs, err := decodeIDs(albums)
	if err != nil {
		return nil, err
	}

	artist := models.NewArtist(name, country, genreIDs)
	artist.SetAlbums(albumIDs)
	stamp(artist, id, sequence, createdAt, updatedAt, deletedAt)
	return artist, nil
}
