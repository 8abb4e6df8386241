package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// AlbumInput creates an album. Artist and Genre accept an id or a name.
type AlbumInput struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genre  string   `json:"genre"`
	Artist string   `json:"artist"`
	Songs  []string `json:"songs"`
}

// AlbumFilter narrows an album listing. Empty fields do not filter.
type AlbumFilter struct {
	Artist string
	Genre  string
}

type AlbumService struct {
	catalog *models.Catalog
	engine  *integrity.Engine
}

func (s *AlbumService) Create(ctx context.Context, in AlbumInput) (*models.Album, error) {
	if strings.TrimSpace(in.Genre) == "" {
		return nil, fmt.Errorf("%w: album genre is required", shared.ErrInvalidInput)
	}

	album := models.NewAlbum(in.Title, in.Year, in.Genre, in.Artist, in.Songs)
	if err := s.engine.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *AlbumService) Get(ctx context.Context, id string) (*models.Album, error) {
	return s.catalog.Albums.Get(ctx, id)
}

func (s *AlbumService) List(ctx context.Context, filter AlbumFilter) ([]*models.Album, error) {
	criteria := map[string]any{}
	if filter.Artist != "" {
		id, err := filterID(s.engine.Validator().Artist(ctx, filter.Artist))
		if err != nil {
			return nil, err
		}
		criteria["artist"] = id
	}
	if filter.Genre != "" {
		id, err := filterID(s.engine.Validator().Genre(ctx, filter.Genre))
		if err != nil {
			return nil, err
		}
		criteria["genre"] = id
	}
	return s.catalog.Albums.List(ctx, criteria)
}

// Update applies patch. Albums created here always carry a genre, so clearing it is refused.
func (s *AlbumService) Update(ctx context.Context, id string, patch models.AlbumPatch) (*models.Album, error) {
	if patch.Genre != nil && strings.TrimSpace(*patch.Genre) == "" {
		return nil, fmt.Errorf("%w: album genre is required", shared.ErrInvalidInput)
	}
	return s.engine.UpdateAlbum(ctx, id, patch)
}

func (s *AlbumService) Delete(ctx context.Context, id string) error {
	return s.engine.DeleteAlbum(ctx, id)
}
