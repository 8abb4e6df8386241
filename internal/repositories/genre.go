package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const genreColumns = "id, sequence, name, active, created_at, updated_at, deleted_at"

// GenreRepository implements [models.GenreStore] on SQLite.
type GenreRepository struct {
	db *sql.DB
}

// NewGenreRepository creates a new [GenreRepository] with the given database connection
func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Create inserts a new genre. The case-folded name is indexed for uniqueness.
func (r *GenreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "genres")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO genres (id, sequence, name, name_key, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, genre.Name(), genre.NameKey(), genre.Active(), genre.CreatedAt(), genre.UpdatedAt())
	if err != nil {
		return insertError("genre", err)
	}

	genre.SetID(id)
	genre.SetSequence(sequence)
	return nil
}

// Get retrieves a live genre by ID
func (r *GenreRepository) Get(ctx context.Context, id string) (*models.Genre, error) {
	query := "SELECT " + genreColumns + " FROM genres WHERE id = ? AND deleted_at IS NULL"
	genre, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("genre", id, err)
	}
	return genre, nil
}

// FindByName retrieves a live genre by case-insensitive name
func (r *GenreRepository) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	query := "SELECT " + genreColumns + " FROM genres WHERE name_key = ? AND deleted_at IS NULL"
	genre, err := r.scan(r.db.QueryRowContext(ctx, query, shared.FoldName(name)))
	if err != nil {
		return nil, notFound("genre", name, err)
	}
	return genre, nil
}

// Update writes name and active flag
func (r *GenreRepository) Update(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE genres
		SET name = ?, name_key = ?, active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, genre.Name(), genre.NameKey(), genre.Active(), now, genre.ID())
	if err != nil {
		return insertError("genre", err)
	}
	if err := expectRow(result, "genres", genre.ID()); err != nil {
		return err
	}

	genre.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a genre by ID
func (r *GenreRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "genres", id)
}

// List retrieves live genres ordered by name. Inactive genres are skipped unless
// criteria["include_inactive"] is true.
func (r *GenreRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Genre, error) {
	query := "SELECT " + genreColumns + " FROM genres WHERE deleted_at IS NULL"

	if all, _ := criteria["include_inactive"].(bool); !all {
		query += " AND active = 1"
	}

	query += " ORDER BY name_key ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	genres := []*models.Genre{}
	for rows.Next() {
		genre, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return genres, nil
}

func (r *GenreRepository) scan(row scanner) (*models.Genre, error) {
	var (
		id        string
		sequence  int
		name      string
		active    bool
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &active, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	genre := models.NewGenre(name)
	genre.SetActive(active)
	stamp(genre, id, sequence, createdAt, updatedAt, deletedAt)
	return genre, nil
}
