package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtistsFetched MsgKind = iota
	MsgAlbumsFetched
	MsgSongsFetched
	MsgStatsFetched
)

// artistsFetchedMsg is the constructor for [MsgArtistsFetched]
func artistsFetchedMsg(artists []*models.Artist, err error) Msg {
	return Msg{kind: MsgArtistsFetched, data: artists, err: err}
}

// albumsFetchedMsg is the constructor for [MsgAlbumsFetched]
func albumsFetchedMsg(view *services.ArtistAlbums, err error) Msg {
	return Msg{kind: MsgAlbumsFetched, data: view, err: err}
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(album *models.Album, songs []*models.Song, err error) Msg {
	return Msg{
		kind: MsgSongsFetched,
		data: struct {
			album *models.Album
			songs []*models.Song
		}{album, songs},
		err: err,
	}
}

// statsFetchedMsg is the constructor for [MsgStatsFetched]
func statsFetchedMsg(stats *models.Statistics, err error) Msg {
	return Msg{kind: MsgStatsFetched, data: stats, err: err}
}
