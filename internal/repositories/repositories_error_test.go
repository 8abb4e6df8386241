package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

func TestRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewArtistRepository(setupTestDB(t))
			artist := models.NewArtist("", "Testland", nil)

			if err := repo.Create(ctx, artist); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if artist.ID() != "" {
				t.Error("ID should not be assigned on failed create")
			}
		})

		t.Run("DuplicateArtistName", func(t *testing.T) {
			repo := NewArtistRepository(setupTestDB(t))
			mustCreateArtist(t, repo, "Test")

			err := repo.Create(ctx, models.NewArtist("Test", "Elsewhere", nil))
			if !errors.Is(err, shared.ErrDuplicateEntity) {
				t.Fatalf("expected ErrDuplicateEntity, got %v", err)
			}
		})

		t.Run("DuplicateGenreIgnoresCase", func(t *testing.T) {
			repo := NewGenreRepository(setupTestDB(t))
			if err := repo.Create(ctx, models.NewGenre("Rock")); err != nil {
				t.Fatalf("failed to create genre: %v", err)
			}

			err := repo.Create(ctx, models.NewGenre("rock"))
			if !errors.Is(err, shared.ErrDuplicateEntity) {
				t.Fatalf("expected ErrDuplicateEntity, got %v", err)
			}
		})

		t.Run("DuplicateAlbumTitleArtist", func(t *testing.T) {
			repo := NewAlbumRepository(setupTestDB(t))
			if err := repo.Create(ctx, models.NewAlbum("Demo", 2020, "", "a1", nil)); err != nil {
				t.Fatalf("failed to create album: %v", err)
			}
			if err := repo.Create(ctx, models.NewAlbum("Demo", 2021, "", "a2", nil)); err != nil {
				t.Fatalf("same title for a different artist should succeed: %v", err)
			}

			err := repo.Create(ctx, models.NewAlbum("Demo", 2022, "", "a1", nil))
			if !errors.Is(err, shared.ErrDuplicateEntity) {
				t.Fatalf("expected ErrDuplicateEntity, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)

			if _, err := NewUserRepository(db).Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for user, got %v", err)
			}
			if _, err := NewSongRepository(db).Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for song, got %v", err)
			}
			if _, err := NewGenreRepository(db).FindByName(ctx, "nope"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound for genre, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewAlbumRepository(setupTestDB(t))
			album := models.NewAlbum("Demo", 2020, "", "a1", nil)
			album.SetID("nonexistent-id")

			if err := repo.Update(ctx, album); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("AlreadyDeleted", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			playlist := models.NewPlaylist("Mix", "u1", nil)
			_ = repo.Create(ctx, playlist)
			_ = repo.Delete(ctx, playlist.ID())

			playlist.SetName("Renamed")
			if err := repo.Update(ctx, playlist); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Twice", func(t *testing.T) {
			repo := NewGenreRepository(setupTestDB(t))
			genre := models.NewGenre("Rock")
			_ = repo.Create(ctx, genre)

			if err := repo.Delete(ctx, genre.ID()); err != nil {
				t.Fatalf("first delete failed: %v", err)
			}
			if err := repo.Delete(ctx, genre.ID()); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	})
}
