package models

import (
	"context"
	"time"
)

// ArtistStore persists artists and maintains Artist.albums.
type ArtistStore interface {
	Repository[*Artist]
	FindByName(ctx context.Context, name string) (*Artist, error)
	CountByGenre(ctx context.Context, genreID string) (int, error)
	AddAlbum(ctx context.Context, artistID, albumID string) error
	RemoveAlbum(ctx context.Context, artistID, albumID string) error
	SetAlbums(ctx context.Context, artistID string, albumIDs []string) error
}

// AlbumStore persists albums and maintains Album.songs.
type AlbumStore interface {
	Repository[*Album]
	FindByTitle(ctx context.Context, title, artistID string) (*Album, error)
	AddSong(ctx context.Context, albumID, songID string) error
	RemoveSong(ctx context.Context, albumID, songID string) error
	SetSongs(ctx context.Context, albumID string, songIDs []string) error
	CountByArtist(ctx context.Context) ([]GroupCount, error)
	SongCounts(ctx context.Context) ([]AlbumSongCount, error)
}

// SongStore persists songs. Song.album is the forward reference the album sets are derived from.
//
// List accepts "artist" and "album" ids, "title_contains" for a case-insensitive partial
// title match, and an int "limit".
type SongStore interface {
	Repository[*Song]
	FindByTitle(ctx context.Context, title, artistID string) (*Song, error)
	// GetMany returns the live songs among ids. Missing and soft-deleted ids are omitted.
	GetMany(ctx context.Context, ids []string) ([]*Song, error)
	SetAlbum(ctx context.Context, songID, albumID string) error
	// ClearAlbum unsets Song.album only while it still points at albumID.
	ClearAlbum(ctx context.Context, songID, albumID string) error
}

// GenreStore persists genres.
type GenreStore interface {
	Repository[*Genre]
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*Genre, error)
}

// PlaylistStore persists playlists.
type PlaylistStore interface {
	Repository[*Playlist]
	AddSongs(ctx context.Context, playlistID string, songIDs []string) error
	RemoveSongs(ctx context.Context, playlistID string, songIDs []string) error
}

// UserStore persists local user mirrors and maintains User.playlists.
type UserStore interface {
	Repository[*User]
	FindBySubject(ctx context.Context, subject string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	AddPlaylist(ctx context.Context, userID, playlistID string) error
	RemovePlaylist(ctx context.Context, userID, playlistID string) error
	SetPlaylists(ctx context.Context, userID string, playlistIDs []string) error
}

// PairedWrite is one back-reference write that failed after its primary write succeeded.
type PairedWrite struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"`
	Target     string     `json:"target"`
	TargetID   string     `json:"target_id"`
	RefID      string     `json:"ref_id"`
	Error      string     `json:"error"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// PairedWriteLog records drift so a later reconciliation knows where to look.
type PairedWriteLog interface {
	Record(ctx context.Context, w PairedWrite) error
	Pending(ctx context.Context) ([]PairedWrite, error)
	Resolve(ctx context.Context, ids ...string) error
}

// IDScheme describes the identifier shape of a backend.
type IDScheme interface {
	Name() string
	Valid(id string) bool
}

// Backend is the connection behind a [Catalog].
type Backend interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Catalog bundles the stores of one storage backend.
type Catalog struct {
	Artists   ArtistStore
	Albums    AlbumStore
	Songs     SongStore
	Genres    GenreStore
	Playlists PlaylistStore
	Users     UserStore
	Journal   PairedWriteLog
	IDs       IDScheme
	Backend   Backend
}
