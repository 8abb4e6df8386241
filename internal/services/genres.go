package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

type GenreInput struct {
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

// GenreService manages genres. Names are unique ignoring case.
type GenreService struct {
	catalog *models.Catalog
	engine  *integrity.Engine
}

func (s *GenreService) Create(ctx context.Context, in GenreInput) (*models.Genre, error) {
	genre := models.NewGenre(in.Name)
	if in.Active != nil {
		genre.SetActive(*in.Active)
	}
	if err := genre.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.unique(ctx, genre.Name(), ""); err != nil {
		return nil, err
	}

	if err := s.catalog.Genres.Create(ctx, genre); err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}
	return genre, nil
}

func (s *GenreService) Get(ctx context.Context, id string) (*models.Genre, error) {
	return s.catalog.Genres.Get(ctx, id)
}

// List returns active genres, or every live genre when includeInactive is set.
func (s *GenreService) List(ctx context.Context, includeInactive bool) ([]*models.Genre, error) {
	return s.catalog.Genres.List(ctx, map[string]any{"include_inactive": includeInactive})
}

func (s *GenreService) Update(ctx context.Context, id string, patch models.GenrePatch) (*models.Genre, error) {
	if patch.IsEmpty() {
		return nil, shared.ErrNothingToUpdate
	}

	genre, err := s.catalog.Genres.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := genre.NameKey()
	patch.Apply(genre)
	if err := genre.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if genre.NameKey() != before {
		if err := s.unique(ctx, genre.Name(), id); err != nil {
			return nil, err
		}
	}

	genre.Touch()
	if err := s.catalog.Genres.Update(ctx, genre); err != nil {
		return nil, fmt.Errorf("failed to update genre: %w", err)
	}
	return genre, nil
}

// Delete refuses while an artist or album references the genre.
func (s *GenreService) Delete(ctx context.Context, id string) error {
	return s.engine.DeleteGenre(ctx, id)
}

func (s *GenreService) unique(ctx context.Context, name, self string) error {
	found, err := s.catalog.Genres.FindByName(ctx, name)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check genre uniqueness: %w", err)
	case found.ID() == self:
		return nil
	}
	return fmt.Errorf("genre %q already exists: %w", found.Name(), shared.ErrDuplicateEntity)
}
