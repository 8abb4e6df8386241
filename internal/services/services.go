// Package services orchestrates catalog requests: input shape, reference resolution for
// filters, and hand-off to the consistency engine for anything that writes.
package services

import (
	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/stats"
)

// Services bundles every service the HTTP layer and the CLI use.
type Services struct {
	Artists   *ArtistService
	Albums    *AlbumService
	Songs     *SongService
	Genres    *GenreService
	Playlists *PlaylistService
	Stats     *stats.Engine
	Auth      *AuthService
}

// New wires the catalog services around one engine. auth may be nil for commands that
// never authenticate.
func New(catalog *models.Catalog, leastAlbumsLimit int, auth *AuthService, logger *log.Logger) *Services {
	engine := integrity.NewEngine(catalog, logger)
	return &Services{
		Artists:   &ArtistService{catalog: catalog, engine: engine},
		Albums:    &AlbumService{catalog: catalog, engine: engine},
		Songs:     &SongService{catalog: catalog, engine: engine},
		Genres:    &GenreService{catalog: catalog, engine: engine},
		Playlists: &PlaylistService{catalog: catalog, engine: engine},
		Stats:     stats.New(catalog, leastAlbumsLimit),
		Auth:      auth,
	}
}

// filterID resolves an optional list filter to a canonical id. An empty ref means no filter.
func filterID[T models.Model](res integrity.Result[T], err error) (string, error) {
	doc, err := integrity.Require(res, err)
	if err != nil {
		return "", err
	}
	return doc.ID(), nil
}
