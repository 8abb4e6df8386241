package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
)

// CatalogHandler serves genres, artists, albums and songs.
type CatalogHandler struct {
	svc    *services.Services
	logger *log.Logger
}

func (h *CatalogHandler) Routes() []Route {
	write := services.CapCatalogWrite
	return []Route{
		{Method: http.MethodGet, Path: "/genres", Handler: h.listGenres},
		{Method: http.MethodPost, Path: "/genres", Handler: h.createGenre, Capability: write},
		{Method: http.MethodGet, Path: "/genres/{id}", Handler: h.getGenre},
		{Method: http.MethodPatch, Path: "/genres/{id}", Handler: h.updateGenre, Capability: write},
		{Method: http.MethodDelete, Path: "/genres/{id}", Handler: h.deleteGenre, Capability: write},

		{Method: http.MethodGet, Path: "/artists", Handler: h.listArtists},
		{Method: http.MethodPost, Path: "/artists", Handler: h.createArtist, Capability: write},
		{Method: http.MethodGet, Path: "/artists/{id}", Handler: h.getArtist},
		{Method: http.MethodPatch, Path: "/artists/{id}", Handler: h.updateArtist, Capability: write},
		{Method: http.MethodDelete, Path: "/artists/{id}", Handler: h.deleteArtist, Capability: write},
		{Method: http.MethodGet, Path: "/artists/{id}/albums", Handler: h.artistAlbums},
		{Method: http.MethodPut, Path: "/artists/{id}/genres", Handler: h.setArtistGenres, Capability: write},

		{Method: http.MethodGet, Path: "/albums", Handler: h.listAlbums},
		{Method: http.MethodPost, Path: "/albums", Handler: h.createAlbum, Capability: write},
		{Method: http.MethodGet, Path: "/albums/{id}", Handler: h.getAlbum},
		{Method: http.MethodPatch, Path: "/albums/{id}", Handler: h.updateAlbum, Capability: write},
		{Method: http.MethodDelete, Path: "/albums/{id}", Handler: h.deleteAlbum, Capability: write},

		{Method: http.MethodGet, Path: "/songs", Handler: h.listSongs},
		{Method: http.MethodGet, Path: "/songs/search", Handler: h.searchSongs},
		{Method: http.MethodPost, Path: "/songs", Handler: h.createSong, Capability: write},
		{Method: http.MethodGet, Path: "/songs/{id}", Handler: h.getSong},
		{Method: http.MethodPatch, Path: "/songs/{id}", Handler: h.updateSong, Capability: write},
		{Method: http.MethodDelete, Path: "/songs/{id}", Handler: h.deleteSong, Capability: write},
	}
}

func (h *CatalogHandler) listGenres(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "include_inactive")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	genres, err := h.svc.Genres.List(r.Context(), all)
	reply(w, h.logger, http.StatusOK, genres, err)
}

func (h *CatalogHandler) createGenre(w http.ResponseWriter, r *http.Request) {
	var in services.GenreInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	genre, err := h.svc.Genres.Create(r.Context(), in)
	reply(w, h.logger, http.StatusCreated, genre, err)
}

func (h *CatalogHandler) getGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := h.svc.Genres.Get(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, genre, err)
}

func (h *CatalogHandler) updateGenre(w http.ResponseWriter, r *http.Request) {
	var patch models.GenrePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	genre, err := h.svc.Genres.Update(r.Context(), r.PathValue("id"), patch)
	reply(w, h.logger, http.StatusOK, genre, err)
}

func (h *CatalogHandler) deleteGenre(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Genres.Delete(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusNoContent, nil, err)
}

func (h *CatalogHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.svc.Artists.Views(r.Context(), r.URL.Query().Get("genre"))
	reply(w, h.logger, http.StatusOK, artists, err)
}

func (h *CatalogHandler) createArtist(w http.ResponseWriter, r *http.Request) {
	var in services.ArtistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	artist, err := h.svc.Artists.Create(r.Context(), in)
	reply(w, h.logger, http.StatusCreated, artist, err)
}

func (h *CatalogHandler) getArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.svc.Artists.View(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, artist, err)
}

func (h *CatalogHandler) updateArtist(w http.ResponseWriter, r *http.Request) {
	var patch models.ArtistPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	artist, err := h.svc.Artists.Update(r.Context(), r.PathValue("id"), patch)
	reply(w, h.logger, http.StatusOK, artist, err)
}

func (h *CatalogHandler) deleteArtist(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Artists.Delete(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusNoContent, nil, err)
}

func (h *CatalogHandler) artistAlbums(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Artists.Albums(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, view, err)
}

func (h *CatalogHandler) setArtistGenres(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Genres []string `json:"genres"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	artist, err := h.svc.Artists.SetGenres(r.Context(), r.PathValue("id"), body.Genres)
	reply(w, h.logger, http.StatusOK, artist, err)
}

func (h *CatalogHandler) listAlbums(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	albums, err := h.svc.Albums.List(r.Context(), services.AlbumFilter{Artist: q.Get("artist"), Genre: q.Get("genre")})
	reply(w, h.logger, http.StatusOK, albums, err)
}

func (h *CatalogHandler) createAlbum(w http.ResponseWriter, r *http.Request) {
	var in services.AlbumInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	album, err := h.svc.Albums.Create(r.Context(), in)
	reply(w, h.logger, http.StatusCreated, album, err)
}

func (h *CatalogHandler) getAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.svc.Albums.Get(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, album, err)
}

func (h *CatalogHandler) updateAlbum(w http.ResponseWriter, r *http.Request) {
	var patch models.AlbumPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	album, err := h.svc.Albums.Update(r.Context(), r.PathValue("id"), patch)
	reply(w, h.logger, http.StatusOK, album, err)
}

func (h *CatalogHandler) deleteAlbum(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Albums.Delete(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusNoContent, nil, err)
}

func (h *CatalogHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	songs, err := h.svc.Songs.List(r.Context(), services.SongFilter{Artist: q.Get("artist"), Album: q.Get("album")})
	reply(w, h.logger, http.StatusOK, songs, err)
}

func (h *CatalogHandler) searchSongs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	q := r.URL.Query()
	songs, err := h.svc.Songs.Search(r.Context(), services.SongSearch{Name: q.Get("name"), Artist: q.Get("artist"), Limit: limit})
	reply(w, h.logger, http.StatusOK, songs, err)
}

func (h *CatalogHandler) createSong(w http.ResponseWriter, r *http.Request) {
	var in services.SongInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	song, err := h.svc.Songs.Create(r.Context(), in)
	reply(w, h.logger, http.StatusCreated, song, err)
}

func (h *CatalogHandler) getSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.svc.Songs.Get(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusOK, song, err)
}

func (h *CatalogHandler) updateSong(w http.ResponseWriter, r *http.Request) {
	var patch models.SongPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	song, err := h.svc.Songs.Update(r.Context(), r.PathValue("id"), patch)
	reply(w, h.logger, http.StatusOK, song, err)
}

func (h *CatalogHandler) deleteSong(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Songs.Delete(r.Context(), r.PathValue("id"))
	reply(w, h.logger, http.StatusNoContent, nil, err)
}
