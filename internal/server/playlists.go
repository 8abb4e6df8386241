package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
)

// PlaylistHandler serves the session user's playlists.
type PlaylistHandler struct {
	playlists *services.PlaylistService
	logger    *log.Logger
}

type playlistSongs struct {
	Songs []string `json:"songs"`
}

func (h *PlaylistHandler) Routes() []Route {
	write := services.CapPlaylistWrite
	return []Route{
		{Method: http.MethodGet, Path: "/playlists", Handler: h.list, Auth: true},
		{Method: http.MethodPost, Path: "/playlists", Handler: h.create, Capability: write},
		{Method: http.MethodGet, Path: "/playlists/{id}", Handler: h.get},
		{Method: http.MethodPatch, Path: "/playlists/{id}", Handler: h.update, Capability: write},
		{Method: http.MethodDelete, Path: "/playlists/{id}", Handler: h.delete, Capability: write},
		{Method: http.MethodPost, Path: "/playlists/{id}/songs", Handler: h.addSongs, Capability: write},
		{Method: http.MethodDelete, Path: "/playlists/{id}/songs", Handler: h.removeSongs, Capability: write},
	}
}

// owner returns the session user. Only called behind the guard.
func owner(r *http.Request) string {
	claims, _ := ClaimsFrom(r.Context())
	return claims.UserID()
}

func (h *PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(r.Context(), owner(r))
	reply(w, h.logger, http.StatusOK, playlists, err)
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	var in services.PlaylistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	playlist, err := h.playlists.Create(r.Context(), owner(r), in)
	reply(w, h.logger, http.StatusCreated, playlist, err)
}

func (h *PlaylistHandler) get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, playlist, err)
}

func (h *PlaylistHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch models.PlaylistPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	playlist, err := h.playlists.Update(r.Context(), r.PathValue("id"), owner(r), patch)
	reply(w, h.logger, http.StatusOK, playlist, err)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.playlists.Delete(r.Context(), r.PathValue("id"), owner(r))
	reply(w, h.logger, http.StatusNoContent, nil, err)
}

func (h *PlaylistHandler) addSongs(w http.ResponseWriter, r *http.Request) {
	var body playlistSongs
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	playlist, err := h.playlists.AddSongs(r.Context(), r.PathValue("id"), owner(r), body.Songs)
	reply(w, h.logger, http.StatusOK, playlist, err)
}

func (h *PlaylistHandler) removeSongs(w http.ResponseWriter, r *http.Request) {
	var body playlistSongs
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	playlist, err := h.playlists.RemoveSongs(r.Context(), r.PathValue("id"), owner(r), body.Songs)
	reply(w, h.logger, http.StatusOK, playlist, err)
}
