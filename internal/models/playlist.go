package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/discography/internal/shared"
)

// Playlist is an ordered set of songs owned by one user.
type Playlist struct {
	record
	name  string
	owner string
	songs []string
}

// NewPlaylist creates a [Playlist] owned by the given user id.
func NewPlaylist(name, owner string, songs []string) *Playlist {
	return &Playlist{
		record: newRecord(),
		name:   shared.NormalizeName(name),
		owner:  owner,
		songs:  UniqueIDs(songs),
	}
}

func (p *Playlist) Name() string { return p.name }
func (p *Playlist) Owner() string { return p.owner }
func (p *Playlist) Songs() []string { return slices.Clone(p.songs) }

// OwnedBy reports whether userID owns the playlist.
func (p *Playlist) OwnedBy(userID string) bool { return userID != "" && p.owner == userID }

func (p *Playlist) SetName(name string) { p.name = shared.NormalizeName(name) }
func (p *Playlist) SetOwner(id string) { p.owner = id }
func (p *Playlist) SetSongs(ids []string) { p.songs = UniqueIDs(ids) }

func (p *Playlist) Validate() error {
	if err := validateLength("playlist name", p.name, 1, 200); err != nil {
		return err
	}
	if p.owner == "" {
		return fmt.Errorf("%w: playlist owner is required", shared.ErrInvalidInput)
	}
	return nil
}

// MarshalJSON implements [json.Marshaler].
func (p *Playlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Owner     string    `json:"owner"`
		Songs     []string  `json:"songs"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{p.id, p.name, p.owner, nonNil(p.songs), p.createdAt, p.updatedAt})
}
