package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/stats"
)

// StatsHandler serves the four statistics views.
type StatsHandler struct {
	stats  *stats.Engine
	logger *log.Logger
}

func (h *StatsHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/stats", Handler: h.all},
		{Method: http.MethodGet, Path: "/stats/artists/most-albums", Handler: h.mostAlbums},
		{Method: http.MethodGet, Path: "/stats/artists/least-albums", Handler: h.leastAlbums},
		{Method: http.MethodGet, Path: "/stats/albums/most-songs", Handler: h.mostSongs},
		{Method: http.MethodGet, Path: "/stats/albums/least-songs", Handler: h.leastSongs},
	}
}

func (h *StatsHandler) all(w http.ResponseWriter, r *http.Request) {
	all, err := h.stats.All(r.Context())
	reply(w, h.logger, http.StatusOK, all, err)
}

// orEmpty answers {} for a view with no result so clients always receive an object.
func orEmpty[T any](v *T) any {
	if v == nil {
		return struct{}{}
	}
	return v
}

func (h *StatsHandler) mostAlbums(w http.ResponseWriter, r *http.Request) {
	most, err := h.stats.MostAlbums(r.Context())
	reply(w, h.logger, http.StatusOK, orEmpty(most), err)
}

func (h *StatsHandler) leastAlbums(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	least, err := h.stats.LeastAlbums(r.Context(), limit)
	if least == nil {
		least = []models.ArtistAlbumCount{}
	}
	reply(w, h.logger, http.StatusOK, least, err)
}

func (h *StatsHandler) mostSongs(w http.ResponseWriter, r *http.Request) {
	most, err := h.stats.MostSongs(r.Context())
	reply(w, h.logger, http.StatusOK, orEmpty(most), err)
}

func (h *StatsHandler) leastSongs(w http.ResponseWriter, r *http.Request) {
	least, err := h.stats.LeastSongs(r.Context())
	reply(w, h.logger, http.StatusOK, orEmpty(least), err)
}
