// Package stats computes read-only derived views over the catalog.
//
// Counting happens in the store (a grouped query or aggregation pipeline); this package
// ranks the counts and resolves artist names. Nothing here writes, and dangling artist
// references are dropped rather than reported.
//
// Ties are broken by whichever row the store yielded first, which is not a stable order.
package stats

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// DefaultLeastAlbumsLimit bounds [Engine.LeastAlbums] when no limit is configured.
const DefaultLeastAlbumsLimit = 5

type Engine struct {
	artists models.ArtistStore
	albums  models.AlbumStore
	limit   int
}

// New creates an [Engine]. A non-positive limit falls back to [DefaultLeastAlbumsLimit].
func New(catalog *models.Catalog, leastAlbumsLimit int) *Engine {
	if leastAlbumsLimit <= 0 {
		leastAlbumsLimit = DefaultLeastAlbumsLimit
	}
	return &Engine{artists: catalog.Artists, albums: catalog.Albums, limit: leastAlbumsLimit}
}

// MostAlbums returns the artist with the most albums, or nil when there are none.
func (e *Engine) MostAlbums(ctx context.Context) (*models.ArtistAlbumCount, error) {
	counts, err := e.artistCounts(ctx)
	if err != nil || len(counts) == 0 {
		return nil, err
	}

	best := counts[0]
	for _, c := range counts[1:] {
		if c.AlbumCount > best.AlbumCount {
			best = c
		}
	}
	return &best, nil
}

// LeastAlbums returns up to limit artists in ascending album count. A non-positive limit
// uses the configured one.
func (e *Engine) LeastAlbums(ctx context.Context, limit int) ([]models.ArtistAlbumCount, error) {
	if limit <= 0 {
		limit = e.limit
	}

	counts, err := e.artistCounts(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(counts, func(a, b models.ArtistAlbumCount) int {
		return cmp.Compare(a.AlbumCount, b.AlbumCount)
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// MostSongs returns the album with the largest song set, or nil when there are no albums.
func (e *Engine) MostSongs(ctx context.Context) (*models.AlbumSongsResult, error) {
	counts, err := e.albums.SongCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count album songs: %w", err)
	}
	if len(counts) == 0 {
		return nil, nil
	}

	best := counts[0]
	for _, c := range counts[1:] {
		if c.SongCount > best.SongCount {
			best = c
		}
	}
	return &models.AlbumSongsResult{AlbumID: best.AlbumID, Title: best.Title, SongCount: best.SongCount}, nil
}

// LeastSongs returns every album tied at the smallest song count, or nil when there are no albums.
func (e *Engine) LeastSongs(ctx context.Context) (*models.LeastSongsResult, error) {
	counts, err := e.albums.SongCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count album songs: %w", err)
	}
	if len(counts) == 0 {
		return nil, nil
	}

	least := slices.MinFunc(counts, func(a, b models.AlbumSongCount) int {
		return cmp.Compare(a.SongCount, b.SongCount)
	}).SongCount

	result := &models.LeastSongsResult{SongCount: least, Albums: []string{}}
	for _, c := range counts {
		if c.SongCount == least {
			result.Albums = append(result.Albums, c.Title)
		}
	}
	return result, nil
}

// All computes the four views, using the configured limit for LeastAlbums.
func (e *Engine) All(ctx context.Context) (*models.Statistics, error) {
	var (
		s   models.Statistics
		err error
	)
	if s.MostAlbums, err = e.MostAlbums(ctx); err != nil {
		return nil, err
	}
	if s.LeastAlbums, err = e.LeastAlbums(ctx, 0); err != nil {
		return nil, err
	}
	if s.MostSongs, err = e.MostSongs(ctx); err != nil {
		return nil, err
	}
	if s.LeastSongs, err = e.LeastSongs(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// artistCounts groups live albums by artist and attaches artist names. Groups whose
// artist cannot be resolved are skipped.
func (e *Engine) artistCounts(ctx context.Context) ([]models.ArtistAlbumCount, error) {
	groups, err := e.albums.CountByArtist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count albums by artist: %w", err)
	}

	counts := make([]models.ArtistAlbumCount, 0, len(groups))
	for _, g := range groups {
		artist, err := e.artists.Get(ctx, g.Key)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve artist %s: %w", g.Key, err)
		}
		counts = append(counts, models.ArtistAlbumCount{ArtistID: artist.ID(), Name: artist.Name(), AlbumCount: g.Count})
	}
	return counts, nil
}
