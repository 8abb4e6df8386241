package integrity

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
	tu "github.com/desertthunder/discography/internal/testing"
)

type fixture struct {
	ctx     context.Context
	catalog *models.Catalog
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := tu.NewCatalog(t)
	return &fixture{ctx: context.Background(), catalog: catalog, engine: NewEngine(catalog, log.New(io.Discard))}
}

func (f *fixture) artist(t *testing.T, name string, genres ...string) *models.Artist {
	t.Helper()
	artist := models.NewArtist(name, "Testland", genres)
	if err := f.engine.CreateArtist(f.ctx, artist); err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	return artist
}

func (f *fixture) genre(t *testing.T, name string) *models.Genre {
	t.Helper()
	genre := models.NewGenre(name)
	if err := f.catalog.Genres.Create(f.ctx, genre); err != nil {
		t.Fatalf("failed to create genre: %v", err)
	}
	return genre
}

func (f *fixture) album(t *testing.T, title, artist string, songs ...string) *models.Album {
	t.Helper()
	album := models.NewAlbum(title, 2020, "", artist, songs)
	if err := f.engine.CreateAlbum(f.ctx, album); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	return album
}

func (f *fixture) song(t *testing.T, title, artist, album string) *models.Song {
	t.Helper()
	song := models.NewSong(title, artist, album, 180)
	if err := f.engine.CreateSong(f.ctx, song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}
	return song
}

func (f *fixture) getArtist(t *testing.T, id string) *models.Artist {
	t.Helper()
	a, err := f.catalog.Artists.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("failed to get artist: %v", err)
	}
	return a
}

func (f *fixture) getAlbum(t *testing.T, id string) *models.Album {
	t.Helper()
	a, err := f.catalog.Albums.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("failed to get album: %v", err)
	}
	return a
}

func (f *fixture) getSong(t *testing.T, id string) *models.Song {
	t.Helper()
	s, err := f.catalog.Songs.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("failed to get song: %v", err)
	}
	return s
}

func TestCatalogScenario(t *testing.T) {
	f := newFixture(t)
	artist := f.artist(t, "Test")
	f.genre(t, "Rock")

	album := models.NewAlbum("Demo", 2020, "Rock", artist.ID(), nil)
	if err := f.engine.CreateAlbum(f.ctx, album); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	if got := f.getArtist(t, artist.ID()).Albums(); !models.SameIDs(got, []string{album.ID()}) {
		t.Fatalf("expected artist albums [%s], got %v", album.ID(), got)
	}

	song := f.song(t, "T1", artist.ID(), album.ID())
	if got := f.getAlbum(t, album.ID()).Songs(); !models.SameIDs(got, []string{song.ID()}) {
		t.Fatalf("expected album songs [%s], got %v", song.ID(), got)
	}

	if err := f.engine.DeleteAlbum(f.ctx, album.ID()); err != nil {
		t.Fatalf("failed to delete album: %v", err)
	}
	if f.getSong(t, song.ID()).HasAlbum() {
		t.Error("expected song album to be unset")
	}
	if got := f.getArtist(t, artist.ID()).Albums(); len(got) != 0 {
		t.Errorf("expected no artist albums, got %v", got)
	}
}

func TestCreateAlbum(t *testing.T) {
	t.Run("resolves genre name and artist name", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		genre := f.genre(t, "Rock")

		album := models.NewAlbum("Demo", 2020, "rock", "Test", nil)
		if err := f.engine.CreateAlbum(f.ctx, album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}
		stored := f.getAlbum(t, album.ID())
		if stored.Genre() != genre.ID() || stored.Artist() != artist.ID() {
			t.Errorf("expected canonical ids, got genre %q artist %q", stored.Genre(), stored.Artist())
		}
	})

	t.Run("claims songs", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		single := f.song(t, "Single", artist.ID(), "")

		album := f.album(t, "Demo", artist.ID(), single.ID())
		if f.getSong(t, single.ID()).Album() != album.ID() {
			t.Error("expected song to point at the new album")
		}
	})

	t.Run("duplicate title and artist", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		f.album(t, "Demo", artist.ID())

		err := f.engine.CreateAlbum(f.ctx, models.NewAlbum("Demo", 2021, "", artist.ID(), nil))
		if !errors.Is(err, shared.ErrDuplicateEntity) {
			t.Errorf("expected ErrDuplicateEntity, got %v", err)
		}
	})

	t.Run("invalid references write nothing", func(t *testing.T) {
		tests := []struct {
			name  string
			songs func(t *testing.T, f *fixture) []string
			want  error
		}{
			{"malformed song", func(*testing.T, *fixture) []string { return []string{"nope"} }, shared.ErrMalformedReference},
			{"missing song", func(*testing.T, *fixture) []string { return []string{uuid.NewString()} }, shared.ErrReferenceNotFound},
			{"foreign song", func(t *testing.T, f *fixture) []string {
				other := f.artist(t, "Other")
				return []string{f.song(t, "Theirs", other.ID(), "").ID()}
			}, shared.ErrArtistMismatch},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				artist := f.artist(t, "Test")

				err := f.engine.CreateAlbum(f.ctx, models.NewAlbum("Demo", 2020, "", artist.ID(), tt.songs(t, f)))
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}

				albums, _ := f.catalog.Albums.List(f.ctx, nil)
				if len(albums) != 0 {
					t.Errorf("expected no albums, got %d", len(albums))
				}
				if got := f.getArtist(t, artist.ID()).Albums(); len(got) != 0 {
					t.Errorf("expected no artist albums, got %v", got)
				}
			})
		}
	})

	t.Run("missing artist", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.CreateAlbum(f.ctx, models.NewAlbum("Demo", 2020, "", uuid.NewString(), nil))
		if !errors.Is(err, shared.ErrReferenceNotFound) {
			t.Errorf("expected ErrReferenceNotFound, got %v", err)
		}
	})

	t.Run("bounds", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		err := f.engine.CreateAlbum(f.ctx, models.NewAlbum("Demo", -1, "", artist.ID(), nil))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestUpdateAlbum(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		album := f.album(t, "Demo", artist.ID())

		if _, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{}); !errors.Is(err, shared.ErrNothingToUpdate) {
			t.Errorf("expected ErrNothingToUpdate, got %v", err)
		}
	})

	t.Run("moves between artists", func(t *testing.T) {
		f := newFixture(t)
		first := f.artist(t, "First")
		second := f.artist(t, "Second")
		album := f.album(t, "Demo", first.ID())

		to := second.ID()
		updated, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{Artist: &to})
		if err != nil {
			t.Fatalf("failed to update album: %v", err)
		}
		if updated.Artist() != second.ID() {
			t.Errorf("expected artist %s, got %s", second.ID(), updated.Artist())
		}
		if f.getArtist(t, first.ID()).HasAlbum(album.ID()) {
			t.Error("old artist still lists the album")
		}
		if !f.getArtist(t, second.ID()).HasAlbum(album.ID()) {
			t.Error("new artist does not list the album")
		}
	})

	t.Run("artist change with songs of the old artist", func(t *testing.T) {
		f := newFixture(t)
		first := f.artist(t, "First")
		second := f.artist(t, "Second")
		album := f.album(t, "Demo", first.ID())
		f.song(t, "T1", first.ID(), album.ID())

		to := second.ID()
		if _, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{Artist: &to}); !errors.Is(err, shared.ErrArtistMismatch) {
			t.Errorf("expected ErrArtistMismatch, got %v", err)
		}
		if f.getAlbum(t, album.ID()).Artist() != first.ID() {
			t.Error("rejected update changed the album")
		}
	})

	t.Run("genre by name and cleared", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		rock := f.genre(t, "Rock")
		album := f.album(t, "Demo", artist.ID())

		name := "rock"
		updated, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{Genre: &name})
		if err != nil {
			t.Fatalf("failed to set genre: %v", err)
		}
		if updated.Genre() != rock.ID() {
			t.Errorf("expected genre %s, got %q", rock.ID(), updated.Genre())
		}

		empty := "  "
		if _, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{Genre: &empty}); err != nil {
			t.Fatalf("expected the genre to clear, got %v", err)
		}
		if got := f.getAlbum(t, album.ID()).Genre(); got != "" {
			t.Errorf("expected no genre, got %q", got)
		}
	})

	t.Run("replaces songs", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		album := f.album(t, "Demo", artist.ID())
		other := f.album(t, "Other", artist.ID())
		kept := f.song(t, "Kept", artist.ID(), album.ID())
		dropped := f.song(t, "Dropped", artist.ID(), album.ID())
		taken := f.song(t, "Taken", artist.ID(), other.ID())

		songs := []string{kept.ID(), taken.ID()}
		if _, err := f.engine.UpdateAlbum(f.ctx, album.ID(), models.AlbumPatch{Songs: &songs}); err != nil {
			t.Fatalf("failed to update album: %v", err)
		}

		if got := f.getAlbum(t, album.ID()).Songs(); !models.SameIDs(got, songs) {
			t.Errorf("expected album songs %v, got %v", songs, got)
		}
		if f.getSong(t, dropped.ID()).HasAlbum() {
			t.Error("dropped song still points at the album")
		}
		if f.getSong(t, taken.ID()).Album() != album.ID() {
			t.Error("taken song does not point at the album")
		}
		if f.getAlbum(t, other.ID()).HasSong(taken.ID()) {
			t.Error("taken song still listed on its previous album")
		}
	})
}

func TestSongs(t *testing.T) {
	t.Run("artist mismatch creates nothing", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		other := f.artist(t, "Other")
		album := f.album(t, "Demo", artist.ID())

		err := f.engine.CreateSong(f.ctx, models.NewSong("T1", other.ID(), album.ID(), 100))
		if !errors.Is(err, shared.ErrArtistMismatch) {
			t.Fatalf("expected ErrArtistMismatch, got %v", err)
		}
		songs, _ := f.catalog.Songs.List(f.ctx, nil)
		if len(songs) != 0 {
			t.Errorf("expected no songs, got %d", len(songs))
		}
	})

	t.Run("moves between albums", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		a := f.album(t, "A", artist.ID())
		b := f.album(t, "B", artist.ID())
		song := f.song(t, "T1", artist.ID(), a.ID())

		to := b.ID()
		if _, err := f.engine.UpdateSong(f.ctx, song.ID(), models.SongPatch{Album: &to}); err != nil {
			t.Fatalf("failed to move song: %v", err)
		}
		if f.getAlbum(t, a.ID()).HasSong(song.ID()) {
			t.Error("song still listed on A")
		}
		if !f.getAlbum(t, b.ID()).HasSong(song.ID()) {
			t.Error("song not listed on B")
		}
	})

	t.Run("update re-checks album artist", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		other := f.artist(t, "Other")
		album := f.album(t, "Demo", artist.ID())
		song := f.song(t, "T1", artist.ID(), album.ID())

		to := other.ID()
		if _, err := f.engine.UpdateSong(f.ctx, song.ID(), models.SongPatch{Artist: &to}); !errors.Is(err, shared.ErrArtistMismatch) {
			t.Errorf("expected ErrArtistMismatch, got %v", err)
		}
	})

	t.Run("detach and delete", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		album := f.album(t, "Demo", artist.ID())
		first := f.song(t, "T1", artist.ID(), album.ID())
		second := f.song(t, "T2", artist.ID(), album.ID())

		none := ""
		if _, err := f.engine.UpdateSong(f.ctx, first.ID(), models.SongPatch{Album: &none}); err != nil {
			t.Fatalf("failed to detach song: %v", err)
		}
		if err := f.engine.DeleteSong(f.ctx, second.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if got := f.getAlbum(t, album.ID()).Songs(); len(got) != 0 {
			t.Errorf("expected empty album, got %v", got)
		}
	})

	t.Run("duplicate title and artist", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		f.song(t, "T1", artist.ID(), "")

		if err := f.engine.CreateSong(f.ctx, models.NewSong("T1", artist.ID(), "", 1)); !errors.Is(err, shared.ErrDuplicateEntity) {
			t.Errorf("expected ErrDuplicateEntity, got %v", err)
		}
	})
}

func TestDeleteGuards(t *testing.T) {
	t.Run("artist with albums", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")
		f.album(t, "Demo", artist.ID())

		if err := f.engine.DeleteArtist(f.ctx, artist.ID()); !errors.Is(err, shared.ErrReferentialConflict) {
			t.Fatalf("expected ErrReferentialConflict, got %v", err)
		}
		f.getArtist(t, artist.ID())
	})

	t.Run("artist without albums", func(t *testing.T) {
		f := newFixture(t)
		artist := f.artist(t, "Test")

		if err := f.engine.DeleteArtist(f.ctx, artist.ID()); err != nil {
			t.Fatalf("failed to delete artist: %v", err)
		}
		if _, err := f.catalog.Artists.Get(f.ctx, artist.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("genre", func(t *testing.T) {
		f := newFixture(t)
		used := f.genre(t, "Rock")
		unused := f.genre(t, "Jazz")
		f.artist(t, "Test", used.ID())

		if err := f.engine.DeleteGenre(f.ctx, used.ID()); !errors.Is(err, shared.ErrReferentialConflict) {
			t.Errorf("expected ErrReferentialConflict, got %v", err)
		}
		if err := f.engine.DeleteGenre(f.ctx, unused.ID()); err != nil {
			t.Fatalf("failed to delete genre: %v", err)
		}
		if _, err := f.catalog.Genres.Get(f.ctx, unused.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPairedWriteFailure(t *testing.T) {
	f := newFixture(t)
	artist := f.artist(t, "Test")
	f.catalog.Artists = tu.BrokenArtists{ArtistStore: f.catalog.Artists}

	album := models.NewAlbum("Demo", 2020, "", artist.ID(), nil)
	if err := f.engine.CreateAlbum(f.ctx, album); err != nil {
		t.Fatalf("paired write failure surfaced: %v", err)
	}
	f.getAlbum(t, album.ID())

	pending, err := f.catalog.Journal.Pending(f.ctx)
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 journaled write, got %d", len(pending))
	}
	w := pending[0]
	if w.Operation != "album.create" || w.Target != TargetArtistAlbums || w.TargetID != artist.ID() || w.RefID != album.ID() {
		t.Errorf("unexpected journal entry: %+v", w)
	}
}

func TestPlaylists(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *models.User, *models.Song) {
		f := newFixture(t)
		user := models.NewUser("sub-1", "user@example.com", "Some", "One")
		if err := f.catalog.Users.Create(f.ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		artist := f.artist(t, "Test")
		return f, user, f.song(t, "T1", artist.ID(), "")
	}

	t.Run("create and delete maintain user playlists", func(t *testing.T) {
		f, user, song := setup(t)
		playlist := models.NewPlaylist("Mix", user.ID(), []string{song.ID()})
		if err := f.engine.CreatePlaylist(f.ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		stored, _ := f.catalog.Users.Get(f.ctx, user.ID())
		if !models.SameIDs(stored.Playlists(), []string{playlist.ID()}) {
			t.Errorf("expected user playlists [%s], got %v", playlist.ID(), stored.Playlists())
		}

		if err := f.engine.DeletePlaylist(f.ctx, playlist.ID(), user.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		stored, _ = f.catalog.Users.Get(f.ctx, user.ID())
		if len(stored.Playlists()) != 0 {
			t.Errorf("expected no user playlists, got %v", stored.Playlists())
		}
	})

	t.Run("deleted songs are rejected", func(t *testing.T) {
		f, user, song := setup(t)
		if err := f.engine.DeleteSong(f.ctx, song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		err := f.engine.CreatePlaylist(f.ctx, models.NewPlaylist("Mix", user.ID(), []string{song.ID()}))
		if !errors.Is(err, shared.ErrReferenceNotFound) {
			t.Errorf("expected ErrReferenceNotFound, got %v", err)
		}
	})

	t.Run("only the owner mutates", func(t *testing.T) {
		f, user, song := setup(t)
		playlist := models.NewPlaylist("Mix", user.ID(), nil)
		if err := f.engine.CreatePlaylist(f.ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		stranger := uuid.NewString()
		if _, err := f.engine.AddPlaylistSongs(f.ctx, playlist.ID(), stranger, []string{song.ID()}); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if err := f.engine.DeletePlaylist(f.ctx, playlist.ID(), stranger); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}

		updated, err := f.engine.AddPlaylistSongs(f.ctx, playlist.ID(), user.ID(), []string{song.ID()})
		if err != nil {
			t.Fatalf("failed to add songs: %v", err)
		}
		if !models.SameIDs(updated.Songs(), []string{song.ID()}) {
			t.Errorf("expected [%s], got %v", song.ID(), updated.Songs())
		}

		updated, err = f.engine.RemovePlaylistSongs(f.ctx, playlist.ID(), user.ID(), []string{song.ID()})
		if err != nil {
			t.Fatalf("failed to remove songs: %v", err)
		}
		if len(updated.Songs()) != 0 {
			t.Errorf("expected empty playlist, got %v", updated.Songs())
		}
	})
}
