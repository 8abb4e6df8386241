package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/desertthunder/discography/internal/shared"
)

// Artist is a performer. Albums is derived from Album.artist.
type Artist struct {
	record
	name    string
	country string
	genres  []string
	albums  []string
}

// NewArtist creates an [Artist] with no albums.
func NewArtist(name, country string, genres []string) *Artist {
	return &Artist{
		record:  newRecord(),
		name:    shared.NormalizeName(name),
		country: shared.NormalizeName(country),
		genres:  UniqueIDs(genres),
		albums:  []string{},
	}
}

func (a *Artist) Name() string { return a.name }
func (a *Artist) Country() string { return a.country }
func (a *Artist) Genres() []string { return slices.Clone(a.genres) }
func (a *Artist) Albums() []string { return slices.Clone(a.albums) }
func (a *Artist) HasAlbum(id string) bool { return slices.Contains(a.albums, id) }

func (a *Artist) SetName(name string) { a.name = shared.NormalizeName(name) }
func (a *Artist) SetCountry(country string) { a.country = shared.NormalizeName(country) }
func (a *Artist) SetGenres(ids []string) { a.genres = UniqueIDs(ids) }
func (a *Artist) SetAlbums(ids []string) { a.albums = UniqueIDs(ids) }

// Validate checks name and country: letters and spaces only, 1-100 and 2-100 characters.
func (a *Artist) Validate() error {
	if err := validateWords("artist name", a.name, 1, 100); err != nil {
		return err
	}
	if err := validateWords("artist country", a.country, 2, 100); err != nil {
		return err
	}
	return nil
}

func validateWords(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return fmt.Errorf("%w: %s must be %d-%d characters", shared.ErrInvalidInput, field, min, max)
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && r != ' ' {
			return fmt.Errorf("%w: %s may only contain letters and spaces", shared.ErrInvalidInput, field)
		}
	}
	return nil
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return fmt.Errorf("%w: %s must be %d-%d characters", shared.ErrInvalidInput, field, min, max)
	}
	return nil
}

type artistJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Genres    []string  `json:"genres"`
	Albums    []string  `json:"albums"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON implements [json.Marshaler].
func (a *Artist) MarshalJSON() ([]byte, error) {
	return json.Marshal(artistJSON{
		ID:        a.id,
		Name:      a.name,
		Country:   a.country,
		Genres:    nonNil(a.genres),
		Albums:    nonNil(a.albums),
		CreatedAt: a.createdAt,
		UpdatedAt: a.updatedAt,
	})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
