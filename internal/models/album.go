package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/discography/internal/shared"
)

// Album belongs to exactly one artist. Every id in songs should name a song whose album is this album.
type Album struct {
	record
	title  string
	year   int
	genre  string
	artist string
	songs  []string
}

// NewAlbum creates an [Album]. genre and artist are canonical ids.
func NewAlbum(title string, year int, genre, artist string, songs []string) *Album {
	return &Album{
		record: newRecord(),
		title:  shared.NormalizeName(title),
		year:   year,
		genre:  genre,
		artist: artist,
		songs:  UniqueIDs(songs),
	}
}

func (a *Album) Title() string { return a.title }
func (a *Album) Year() int { return a.year }
func (a *Album) Genre() string { return a.genre }
func (a *Album) Artist() string { return a.artist }
func (a *Album) Songs() []string { return slices.Clone(a.songs) }
func (a *Album) HasSong(id string) bool { return slices.Contains(a.songs, id) }

func (a *Album) SetTitle(title string) { a.title = shared.NormalizeName(title) }
func (a *Album) SetYear(year int) { a.year = year }
func (a *Album) SetGenre(id string) { a.genre = id }
func (a *Album) SetArtist(id string) { a.artist = id }
func (a *Album) SetSongs(ids []string) { a.songs = UniqueIDs(ids) }

// Validate checks title length, year and the artist reference.
func (a *Album) Validate() error {
	if err := validateLength("album title", a.title, 1, 200); err != nil {
		return err
	}
	if a.year < 0 {
		return fmt.Errorf("%w: album year must not be negative", shared.ErrInvalidInput)
	}
	if a.artist == "" {
		return fmt.Errorf("%w: album artist is required", shared.ErrInvalidInput)
	}
	return nil
}

type albumJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Genre     string    `json:"genre,omitempty"`
	Artist    string    `json:"artist"`
	Songs     []string  `json:"songs"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON implements [json.Marshaler].
func (a *Album) MarshalJSON() ([]byte, error) {
	return json.Marshal(albumJSON{
		ID:        a.id,
		Title:     a.title,
		Year:      a.year,
		Genre:     a.genre,
		Artist:    a.artist,
		Songs:     nonNil(a.songs),
		CreatedAt: a.createdAt,
		UpdatedAt: a.updatedAt,
	})
}
