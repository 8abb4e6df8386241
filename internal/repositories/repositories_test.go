package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateArtist(t *testing.T, repo *ArtistRepository, name string) *models.Artist {
	t.Helper()
	artist := models.NewArtist(name, "Testland", nil)
	if err := repo.Create(context.Background(), artist); err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	return artist
}

func TestArtistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := mustCreateArtist(t, repo, "Test")

		if artist.ID() == "" {
			t.Error("artist ID should be set after creation")
		}
		if artist.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", artist.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := models.NewArtist("Test", "Testland", []string{"g1", "g2"})
		if err := repo.Create(ctx, artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		retrieved, err := repo.Get(ctx, artist.ID())
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}

		if retrieved.Name() != "Test" {
			t.Errorf("expected name Test, got %s", retrieved.Name())
		}
		if len(retrieved.Genres()) != 2 {
			t.Errorf("expected 2 genres, got %v", retrieved.Genres())
		}
		if len(retrieved.Albums()) != 0 {
			t.Errorf("expected no albums, got %v", retrieved.Albums())
		}
	})

	t.Run("FindByName", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := mustCreateArtist(t, repo, "Test")

		found, err := repo.FindByName(ctx, "  Test ")
		if err != nil {
			t.Fatalf("failed to find artist: %v", err)
		}
		if found.ID() != artist.ID() {
			t.Errorf("expected ID %s, got %s", artist.ID(), found.ID())
		}
	})

	t.Run("Update leaves albums alone", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := mustCreateArtist(t, repo, "Test")

		if err := repo.AddAlbum(ctx, artist.ID(), "album-1"); err != nil {
			t.Fatalf("failed to add album: %v", err)
		}

		artist.SetCountry("Elsewhere")
		if err := repo.Update(ctx, artist); err != nil {
			t.Fatalf("failed to update artist: %v", err)
		}

		retrieved, _ := repo.Get(ctx, artist.ID())
		if retrieved.Country() != "Elsewhere" {
			t.Errorf("expected country Elsewhere, got %s", retrieved.Country())
		}
		if !retrieved.HasAlbum("album-1") {
			t.Errorf("stale in-memory albums overwrote the stored set: %v", retrieved.Albums())
		}
	})

	t.Run("Album set primitives", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := mustCreateArtist(t, repo, "Test")

		for i := 0; i < 2; i++ {
			if err := repo.AddAlbum(ctx, artist.ID(), "album-1"); err != nil {
				t.Fatalf("failed to add album: %v", err)
			}
		}
		if err := repo.AddAlbum(ctx, artist.ID(), "album-2"); err != nil {
			t.Fatalf("failed to add album: %v", err)
		}

		retrieved, _ := repo.Get(ctx, artist.ID())
		if len(retrieved.Albums()) != 2 {
			t.Errorf("expected 2 albums after idempotent add, got %v", retrieved.Albums())
		}

		if err := repo.RemoveAlbum(ctx, artist.ID(), "album-1"); err != nil {
			t.Fatalf("failed to remove album: %v", err)
		}
		retrieved, _ = repo.Get(ctx, artist.ID())
		if retrieved.HasAlbum("album-1") || !retrieved.HasAlbum("album-2") {
			t.Errorf("unexpected albums after remove: %v", retrieved.Albums())
		}

		if err := repo.SetAlbums(ctx, artist.ID(), nil); err != nil {
			t.Fatalf("failed to set albums: %v", err)
		}
		retrieved, _ = repo.Get(ctx, artist.ID())
		if len(retrieved.Albums()) != 0 {
			t.Errorf("expected empty albums, got %v", retrieved.Albums())
		}
	})

	t.Run("List and CountByGenre", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		rock := models.NewArtist("Rocker", "Testland", []string{"rock"})
		jazz := models.NewArtist("Jazzer", "Testland", []string{"jazz", "rock"})
		pop := models.NewArtist("Popper", "Testland", []string{"pop"})
		for _, a := range []*models.Artist{rock, jazz, pop} {
			if err := repo.Create(ctx, a); err != nil {
				t.Fatalf("failed to create artist: %v", err)
			}
		}

		all, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 artists, got %d", len(all))
		}

		rockers, err := repo.List(ctx, map[string]any{"genre": "rock"})
		if err != nil {
			t.Fatalf("failed to list artists by genre: %v", err)
		}
		if len(rockers) != 2 {
			t.Errorf("expected 2 rock artists, got %d", len(rockers))
		}

		count, err := repo.CountByGenre(ctx, "rock")
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("expected count 2, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		artist := mustCreateArtist(t, repo, "Test")

		if err := repo.Delete(ctx, artist.ID()); err != nil {
			t.Fatalf("failed to delete artist: %v", err)
		}

		if _, err := repo.Get(ctx, artist.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		recreated := mustCreateArtist(t, repo, "Test")
		if recreated.ID() == artist.ID() {
			t.Error("expected a new id for the recreated artist")
		}
	})
}

func TestAlbumRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and FindByTitle", func(t *testing.T) {
		repo := NewAlbumRepository(setupTestDB(t))
		album := models.NewAlbum("Demo", 2020, "genre-1", "artist-1", nil)
		if err := repo.Create(ctx, album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		found, err := repo.FindByTitle(ctx, "Demo", "artist-1")
		if err != nil {
			t.Fatalf("failed to find album: %v", err)
		}
		if found.ID() != album.ID() || found.Year() != 2020 {
			t.Errorf("unexpected album %s year %d", found.ID(), found.Year())
		}

		if _, err := repo.FindByTitle(ctx, "Demo", "artist-2"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for other artist, got %v", err)
		}
	})

	t.Run("Song set primitives", func(t *testing.T) {
		repo := NewAlbumRepository(setupTestDB(t))
		album := models.NewAlbum("Demo", 2020, "", "artist-1", nil)
		if err := repo.Create(ctx, album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		_ = repo.AddSong(ctx, album.ID(), "s1")
		_ = repo.AddSong(ctx, album.ID(), "s2")
		_ = repo.AddSong(ctx, album.ID(), "s1")
		_ = repo.RemoveSong(ctx, album.ID(), "s2")

		retrieved, _ := repo.Get(ctx, album.ID())
		if songs := retrieved.Songs(); len(songs) != 1 || songs[0] != "s1" {
			t.Errorf("expected [s1], got %v", songs)
		}

		if err := repo.SetSongs(ctx, album.ID(), []string{"s3", "s4"}); err != nil {
			t.Fatalf("failed to set songs: %v", err)
		}
		retrieved, _ = repo.Get(ctx, album.ID())
		if len(retrieved.Songs()) != 2 {
			t.Errorf("expected 2 songs, got %v", retrieved.Songs())
		}
	})

	t.Run("Missing album set primitive", func(t *testing.T) {
		repo := NewAlbumRepository(setupTestDB(t))
		if err := repo.AddSong(ctx, "nope", "s1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Aggregations", func(t *testing.T) {
		repo := NewAlbumRepository(setupTestDB(t))
		a1 := models.NewAlbum("One", 2000, "", "artist-1", []string{"s1", "s2"})
		a2 := models.NewAlbum("Two", 2001, "", "artist-1", nil)
		a3 := models.NewAlbum("Three", 2002, "", "artist-2", []string{"s3"})
		for _, a := range []*models.Album{a1, a2, a3} {
			if err := repo.Create(ctx, a); err != nil {
				t.Fatalf("failed to create album: %v", err)
			}
		}
		deleted := models.NewAlbum("Gone", 2003, "", "artist-2", nil)
		_ = repo.Create(ctx, deleted)
		_ = repo.Delete(ctx, deleted.ID())

		counts, err := repo.CountByArtist(ctx)
		if err != nil {
			t.Fatalf("failed to count by artist: %v", err)
		}
		byArtist := map[string]int{}
		for _, c := range counts {
			byArtist[c.Key] = c.Count
		}
		if byArtist["artist-1"] != 2 || byArtist["artist-2"] != 1 {
			t.Errorf("unexpected counts %v", byArtist)
		}

		songCounts, err := repo.SongCounts(ctx)
		if err != nil {
			t.Fatalf("failed to count songs: %v", err)
		}
		if len(songCounts) != 3 {
			t.Fatalf("expected 3 live albums, got %d", len(songCounts))
		}
		if songCounts[0].SongCount != 2 || songCounts[1].SongCount != 0 || songCounts[2].SongCount != 1 {
			t.Errorf("unexpected song counts %+v", songCounts)
		}
	})
}

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create without album", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewSong("T1", "artist-1", "", 180)
		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.Get(ctx, song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.HasAlbum() {
			t.Errorf("expected no album, got %s", retrieved.Album())
		}
	})

	t.Run("SetAlbum and ClearAlbum", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewSong("T1", "artist-1", "", 180)
		_ = repo.Create(ctx, song)

		if err := repo.SetAlbum(ctx, song.ID(), "album-a"); err != nil {
			t.Fatalf("failed to set album: %v", err)
		}

		if err := repo.ClearAlbum(ctx, song.ID(), "album-b"); err != nil {
			t.Fatalf("failed to clear album: %v", err)
		}
		retrieved, _ := repo.Get(ctx, song.ID())
		if retrieved.Album() != "album-a" {
			t.Errorf("clearing a different album should be a no-op, got %q", retrieved.Album())
		}

		if err := repo.ClearAlbum(ctx, song.ID(), "album-a"); err != nil {
			t.Fatalf("failed to clear album: %v", err)
		}
		retrieved, _ = repo.Get(ctx, song.ID())
		if retrieved.HasAlbum() {
			t.Errorf("expected album cleared, got %q", retrieved.Album())
		}
	})

	t.Run("GetMany skips deleted and missing", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		s1 := models.NewSong("One", "artist-1", "", 1)
		s2 := models.NewSong("Two", "artist-1", "", 2)
		_ = repo.Create(ctx, s1)
		_ = repo.Create(ctx, s2)
		_ = repo.Delete(ctx, s2.ID())

		songs, err := repo.GetMany(ctx, []string{s1.ID(), s2.ID(), "missing", s1.ID()})
		if err != nil {
			t.Fatalf("failed to get songs: %v", err)
		}
		if len(songs) != 1 || songs[0].ID() != s1.ID() {
			t.Errorf("expected only the live song, got %d songs", len(songs))
		}
	})

	t.Run("List by artist and album", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		_ = repo.Create(ctx, models.NewSong("One", "artist-1", "album-1", 1))
		_ = repo.Create(ctx, models.NewSong("Two", "artist-1", "", 2))
		_ = repo.Create(ctx, models.NewSong("Three", "artist-2", "album-2", 3))

		byArtist, _ := repo.List(ctx, map[string]any{"artist": "artist-1"})
		if len(byArtist) != 2 {
			t.Errorf("expected 2 songs by artist-1, got %d", len(byArtist))
		}

		byAlbum, _ := repo.List(ctx, map[string]any{"album": "album-2"})
		if len(byAlbum) != 1 || byAlbum[0].Title() != "Three" {
			t.Errorf("expected song Three on album-2, got %d songs", len(byAlbum))
		}
	})
}

func TestGenreRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("FindByName is case-insensitive", func(t *testing.T) {
		repo := NewGenreRepository(setupTestDB(t))
		genre := models.NewGenre("Rock")
		if err := repo.Create(ctx, genre); err != nil {
			t.Fatalf("failed to create genre: %v", err)
		}

		found, err := repo.FindByName(ctx, "  ROCK ")
		if err != nil {
			t.Fatalf("failed to find genre: %v", err)
		}
		if found.ID() != genre.ID() {
			t.Errorf("expected ID %s, got %s", genre.ID(), found.ID())
		}
	})

	t.Run("List hides inactive by default", func(t *testing.T) {
		repo := NewGenreRepository(setupTestDB(t))
		active := models.NewGenre("Rock")
		inactive := models.NewGenre("Disco")
		inactive.SetActive(false)
		_ = repo.Create(ctx, active)
		_ = repo.Create(ctx, inactive)

		visible, _ := repo.List(ctx, nil)
		if len(visible) != 1 {
			t.Errorf("expected 1 active genre, got %d", len(visible))
		}

		all, _ := repo.List(ctx, map[string]any{"include_inactive": true})
		if len(all) != 2 {
			t.Errorf("expected 2 genres, got %d", len(all))
		}
		if all[0].Name() != "Disco" {
			t.Errorf("expected genres ordered by name, got %s first", all[0].Name())
		}
	})
}

func TestPlaylistAndUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Playlist song primitives keep order", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := models.NewPlaylist("Mix", "user-1", []string{"s1"})
		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		_ = repo.AddSongs(ctx, playlist.ID(), []string{"s2", "s1", "s3"})
		_ = repo.RemoveSongs(ctx, playlist.ID(), []string{"s2"})

		retrieved, _ := repo.Get(ctx, playlist.ID())
		songs := retrieved.Songs()
		if len(songs) != 2 || songs[0] != "s1" || songs[1] != "s3" {
			t.Errorf("expected [s1 s3], got %v", songs)
		}

		owned, _ := repo.List(ctx, map[string]any{"owner": "user-1"})
		if len(owned) != 1 {
			t.Errorf("expected 1 playlist for owner, got %d", len(owned))
		}
	})

	t.Run("User lookups and playlists", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("sub-1", "ada@example.com", "Ada", "Lovelace")
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		bySubject, err := repo.FindBySubject(ctx, "sub-1")
		if err != nil || bySubject.ID() != user.ID() {
			t.Fatalf("failed to find by subject: %v", err)
		}

		byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
		if err != nil || byEmail.ID() != user.ID() {
			t.Fatalf("failed to find by email: %v", err)
		}

		_ = repo.AddPlaylist(ctx, user.ID(), "p1")
		_ = repo.AddPlaylist(ctx, user.ID(), "p2")
		_ = repo.RemovePlaylist(ctx, user.ID(), "p1")

		retrieved, _ := repo.Get(ctx, user.ID())
		if p := retrieved.Playlists(); len(p) != 1 || p[0] != "p2" {
			t.Errorf("expected [p2], got %v", p)
		}
	})
}

func TestPairedWriteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPairedWriteRepository(setupTestDB(t))

	w := models.PairedWrite{Operation: "create_album", Target: "artist", TargetID: "a1", RefID: "al1", Error: "boom"}
	if err := repo.Record(ctx, w); err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	pending, err := repo.Pending(ctx)
	if err != nil {
		t.Fatalf("failed to list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].TargetID != "a1" {
		t.Fatalf("expected 1 pending write for a1, got %+v", pending)
	}

	if err := repo.Resolve(ctx, pending[0].ID); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	pending, _ = repo.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("expected no pending writes, got %d", len(pending))
	}
}

func TestUUIDs(t *testing.T) {
	ids := UUIDs{}
	if !ids.Valid(shared.GenerateID()) {
		t.Error("generated id should be valid")
	}
	if ids.Valid("507f1f77bcf86cd799439011") {
		t.Error("object id should not be a valid uuid")
	}
}
