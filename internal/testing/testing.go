// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/repositories"
	"github.com/desertthunder/discography/internal/shared"
)

// ErrInjected is returned by the Broken* store wrappers.
var ErrInjected = errors.New("injected store failure")

// NewCatalog opens an in-memory SQLite catalog with migrations applied.
func NewCatalog(t *testing.T) *models.Catalog {
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
	return repositories.NewCatalog(db)
}

// BrokenArtists fails every change to Artist.albums.
type BrokenArtists struct{ models.ArtistStore }

func (BrokenArtists) AddAlbum(context.Context, string, string) error { return ErrInjected }
func (BrokenArtists) RemoveAlbum(context.Context, string, string) error { return ErrInjected }
func (BrokenArtists) SetAlbums(context.Context, string, []string) error { return ErrInjected }

// BrokenAlbums fails every change to Album.songs.
type BrokenAlbums struct{ models.AlbumStore }

func (BrokenAlbums) AddSong(context.Context, string, string) error { return ErrInjected }
func (BrokenAlbums) RemoveSong(context.Context, string, string) error { return ErrInjected }
func (BrokenAlbums) SetSongs(context.Context, string, []string) error { return ErrInjected }

// BrokenSongs fails every change to Song.album made outside Update.
type BrokenSongs struct{ models.SongStore }

func (BrokenSongs) SetAlbum(context.Context, string, string) error { return ErrInjected }
func (BrokenSongs) ClearAlbum(context.Context, string, string) error { return ErrInjected }

// BrokenUsers fails every change to User.playlists.
type BrokenUsers struct{ models.UserStore }

func (BrokenUsers) AddPlaylist(context.Context, string, string) error { return ErrInjected }
func (BrokenUsers) RemovePlaylist(context.Context, string, string) error { return ErrInjected }
func (BrokenUsers) SetPlaylists(context.Context, string, []string) error { return ErrInjected }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
