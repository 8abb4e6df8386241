package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// SongInput creates a song. Album is optional; Artist accepts an id or a name.
type SongInput struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"`
}

// SongFilter selects songs-by-artist or songs-by-album. Empty fields do not filter.
type SongFilter struct {
	Artist string
	Album  string
}

// SongSearch matches songs by partial title, case-insensitively, optionally within one
// artist. Limit defaults to 10 and may not exceed 50.
type SongSearch struct {
	Name   string
	Artist string
	Limit  int
}

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type SongService struct {
	catalog *models.Catalog
	engine  *integrity.Engine
}

func (s *SongService) Create(ctx context.Context, in SongInput) (*models.Song, error) {
	song := models.NewSong(in.Title, in.Artist, in.Album, in.Duration)
	if err := s.engine.CreateSong(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *SongService) Get(ctx context.Context, id string) (*models.Song, error) {
	return s.catalog.Songs.Get(ctx, id)
}

func (s *SongService) List(ctx context.Context, filter SongFilter) ([]*models.Song, error) {
	criteria := map[string]any{}
	if filter.Artist != "" {
		id, err := filterID(s.engine.Validator().Artist(ctx, filter.Artist))
		if err != nil {
			return nil, err
		}
		criteria["artist"] = id
	}
	if filter.Album != "" {
		id, err := filterID(s.engine.Validator().Album(ctx, filter.Album))
		if err != nil {
			return nil, err
		}
		criteria["album"] = id
	}
	return s.catalog.Songs.List(ctx, criteria)
}

func (s *SongService) Search(ctx context.Context, search SongSearch) ([]*models.Song, error) {
	limit := search.Limit
	switch {
	case limit == 0:
		limit = defaultSearchLimit
	case limit < 1 || limit > maxSearchLimit:
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", shared.ErrInvalidInput, maxSearchLimit)
	}

	criteria := map[string]any{"limit": limit}
	if name := strings.TrimSpace(search.Name); name != "" {
		criteria["title_contains"] = name
	}
	if search.Artist != "" {
		id, err := filterID(s.engine.Validator().Artist(ctx, search.Artist))
		if err != nil {
			return nil, err
		}
		criteria["artist"] = id
	}
	return s.catalog.Songs.List(ctx, criteria)
}

func (s *SongService) Update(ctx context.Context, id string, patch models.SongPatch) (*models.Song, error) {
	return s.engine.UpdateSong(ctx, id, patch)
}

func (s *SongService) Delete(ctx context.Context, id string) error {
	return s.engine.DeleteSong(ctx, id)
}
