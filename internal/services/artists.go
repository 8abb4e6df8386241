package services

import (
	"context"
	"time"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
)

type ArtistInput struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Genres  []string `json:"genres"`
}

// ArtistAlbums is the albums-by-artist view.
type ArtistAlbums struct {
	Artist *models.Artist  `json:"artist"`
	Albums []*models.Album `json:"albums"`
}

// GenreRef names a genre an artist is tagged with.
type GenreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistView is an artist with its genre ids resolved to names.
type ArtistView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Country   string     `json:"country"`
	Genres    []GenreRef `json:"genres"`
	Albums    []string   `json:"albums"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ArtistService struct {
	catalog *models.Catalog
	engine  *integrity.Engine
}

func (s *ArtistService) Create(ctx context.Context, in ArtistInput) (*models.Artist, error) {
	artist := models.NewArtist(in.Name, in.Country, in.Genres)
	if err := s.engine.CreateArtist(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}

func (s *ArtistService) Get(ctx context.Context, id string) (*models.Artist, error) {
	return s.catalog.Artists.Get(ctx, id)
}

// List returns live artists, optionally only those tagged with genre (id or name).
func (s *ArtistService) List(ctx context.Context, genre string) ([]*models.Artist, error) {
	criteria := map[string]any{}
	if genre != "" {
		id, err := filterID(s.engine.Validator().Genre(ctx, genre))
		if err != nil {
			return nil, err
		}
		criteria["genre"] = id
	}
	return s.catalog.Artists.List(ctx, criteria)
}

func (s *ArtistService) Update(ctx context.Context, id string, patch models.ArtistPatch) (*models.Artist, error) {
	return s.engine.UpdateArtist(ctx, id, patch)
}

// SetGenres replaces the artist's genre set.
func (s *ArtistService) SetGenres(ctx context.Context, id string, genres []string) (*models.Artist, error) {
	if genres == nil {
		genres = []string{}
	}
	return s.engine.UpdateArtist(ctx, id, models.ArtistPatch{Genres: &genres})
}

func (s *ArtistService) Delete(ctx context.Context, id string) error {
	return s.engine.DeleteArtist(ctx, id)
}

// Albums returns the artist with its live albums, read through Album.artist.
func (s *ArtistService) Albums(ctx context.Context, id string) (*ArtistAlbums, error) {
	artist, err := s.catalog.Artists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	albums, err := s.catalog.Albums.List(ctx, map[string]any{"artist": artist.ID()})
	if err != nil {
		return nil, err
	}
	return &ArtistAlbums{Artist: artist, Albums: albums}, nil
}

// View returns the artist with its genres resolved.
func (s *ArtistService) View(ctx context.Context, id string) (*ArtistView, error) {
	artist, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []*models.Artist{artist})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Views is [ArtistService.List] with genres resolved.
func (s *ArtistService) Views(ctx context.Context, genre string) ([]*ArtistView, error) {
	artists, err := s.List(ctx, genre)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, artists)
}

// views resolves genre ids with one genre listing. Ids with no live genre are dropped;
// inactive genres still resolve.
func (s *ArtistService) views(ctx context.Context, artists []*models.Artist) ([]*ArtistView, error) {
	genres, err := s.catalog.Genres.List(ctx, map[string]any{"include_inactive": true})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(genres))
	for _, g := range genres {
		names[g.ID()] = g.Name()
	}

	views := make([]*ArtistView, 0, len(artists))
	for _, a := range artists {
		refs := []GenreRef{}
		for _, id := range a.Genres() {
			if name, ok := names[id]; ok {
				refs = append(refs, GenreRef{ID: id, Name: name})
			}
		}
		albums := a.Albums()
		if albums == nil {
			albums = []string{}
		}
		views = append(views, &ArtistView{
			ID:        a.ID(),
			Name:      a.Name(),
			Country:   a.Country(),
			Genres:    refs,
			Albums:    albums,
			CreatedAt: a.CreatedAt(),
			UpdatedAt: a.UpdatedAt(),
		})
	}
	return views, nil
}
