package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/discography/internal/shared"
)

// Song is a track. Its artist must equal the artist of the album it points to.
type Song struct {
	record
	title    string
	artist   string
	album    string
	duration int
}

// NewSong creates a [Song]. album may be empty for a song outside any album.
func NewSong(title, artist, album string, duration int) *Song {
	return &Song{
		record:   newRecord(),
		title:    shared.NormalizeName(title),
		artist:   artist,
		album:    album,
		duration: duration,
	}
}

func (s *Song) Title() string { return s.title }
func (s *Song) Artist() string { return s.artist }
func (s *Song) Album() string { return s.album }
func (s *Song) HasAlbum() bool { return s.album != "" }

// Duration is the length in seconds.
func (s *Song) Duration() int { return s.duration }

func (s *Song) SetTitle(title string) { s.title = shared.NormalizeName(title) }
func (s *Song) SetArtist(id string) { s.artist = id }
func (s *Song) SetAlbum(id string) { s.album = id }
func (s *Song) SetDuration(seconds int) { s.duration = seconds }

// Validate checks title length, duration and the artist reference.
func (s *Song) Validate() error {
	if err := validateLength("song title", s.title, 1, 200); err != nil {
		return err
	}
	if s.duration < 0 {
		return fmt.Errorf("%w: song duration must not be negative", shared.ErrInvalidInput)
	}
	if s.artist == "" {
		return fmt.Errorf("%w: song artist is required", shared.ErrInvalidInput)
	}
	return nil
}

type songJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     *string   `json:"album"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON implements [json.Marshaler]. An unset album is written as null.
func (s *Song) MarshalJSON() ([]byte, error) {
	v := songJSON{
		ID:        s.id,
		Title:     s.title,
		Artist:    s.artist,
		Duration:  s.duration,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.album != "" {
		album := s.album
		v.Album = &album
	}
	return json.Marshal(v)
}
