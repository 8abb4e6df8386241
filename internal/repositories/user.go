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

const userColumns = "id, sequence, subject, email, first_name, last_name, active, admin, playlists, created_at, updated_at, deleted_at"

// UserRepository implements [models.UserStore] on SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlists, err := encodeIDs(user.Playlists())
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO users (id, sequence, subject, email, first_name, last_name, active, admin, playlists, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, sequence, user.Subject(), user.Email(), user.FirstName(), user.LastName(),
		user.Active(), user.Admin(), playlists, user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return insertError("user", err)
	}

	user.SetID(id)
	user.SetSequence(sequence)
	return nil
}

// Get retrieves a live user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindBySubject retrieves a live user by identity provider subject
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	return r.findOne(ctx, "subject", subject)
}

// FindByEmail retrieves a live user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + column + " = ? AND deleted_at IS NULL"
	user, err := r.scan(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, notFound("user", value, err)
	}
	return user, nil
}

// Update writes identity fields and flags. The playlists set is left untouched.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, active = ?, admin = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, user.Email(), user.FirstName(), user.LastName(), user.Active(), user.Admin(), now, user.ID())
	if err != nil {
		return insertError("user", err)
	}
	if err := expectRow(result, "users", user.ID()); err != nil {
		return err
	}

	user.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "users", id)
}

// List retrieves all live users, optionally filtered by "admin"
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL"
	args := []any{}

	if admin, ok := criteria["admin"].(bool); ok {
		query += " AND admin = ?"
		args = append(args, admin)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// AddPlaylist adds playlistID to the user's playlist set
func (r *UserRepository) AddPlaylist(ctx context.Context, userID, playlistID string) error {
	return mutateIDs(ctx, r.db, "users", "playlists", userID, func(ids []string) []string {
		return models.AddID(ids, playlistID)
	})
}

// RemovePlaylist removes playlistID from the user's playlist set
func (r *UserRepository) RemovePlaylist(ctx context.Context, userID, playlistID string) error {
	return mutateIDs(ctx, r.db, "users", "playlists", userID, func(ids []string) []string {
		return models.RemoveID(ids, playlistID)
	})
}

// SetPlaylists replaces the user's playlist set
func (r *UserRepository) SetPlaylists(ctx context.Context, userID string, playlistIDs []string) error {
	return mutateIDs(ctx, r.db, "users", "playlists", userID, func([]string) []string {
		return models.UniqueIDs(playlistIDs)
	})
}

func (r *UserRepository) scan(row scanner) (*models.User, error) {
	var (
		id        string
		sequence  int
		subject   string
		email     string
		firstName string
		lastName  string
		active    bool
		admin     bool
		playlists string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &subject, &email, &firstName, &lastName, &active, &admin, &playlists, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	playlistIDs, err := decodeIDs(playlists)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(subject, email, firstName, lastName)
	user.SetActive(active)
	user.SetAdmin(admin)
	user.SetPlaylists(playlistIDs)
	stamp(user, id, sequence, createdAt, updatedAt, deletedAt)
	return user, nil
}
