package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
	tu "github.com/desertthunder/discography/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *services.Services) {
	t.Helper()
	ctx := context.Background()
	svc := services.New(tu.NewCatalog(t), 0, nil, log.New(io.Discard))

	if _, err := svc.Genres.Create(ctx, services.GenreInput{Name: "Rock"}); err != nil {
		t.Fatalf("failed to create genre: %v", err)
	}
	artist, err := svc.Artists.Create(ctx, services.ArtistInput{Name: "Band", Country: "Testland"})
	if err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	album, err := svc.Albums.Create(ctx, services.AlbumInput{Title: "Debut", Year: 2001, Genre: "Rock", Artist: artist.ID()})
	if err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	if _, err := svc.Songs.Create(ctx, services.SongInput{Title: "Opener", Artist: artist.ID(), Album: album.ID(), Duration: 200}); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}

	m := NewModel(ctx, svc)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, svc
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	m.Update(cmd())
}

func TestModel(t *testing.T) {
	t.Run("drills down from artists to songs", func(t *testing.T) {
		m, _ := newTestModel(t)
		run(t, m, m.Init())

		if m.view != ArtistListView {
			t.Fatalf("expected ArtistListView, got %v", m.view)
		}
		if len(m.artists.Items()) != 1 {
			t.Fatalf("expected 1 artist, got %d", len(m.artists.Items()))
		}

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)
		if m.view != AlbumListView {
			t.Fatalf("expected AlbumListView, got %v", m.view)
		}
		if m.artist == nil || m.artist.Name() != "Band" {
			t.Errorf("expected selected artist Band, got %v", m.artist)
		}

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)
		if m.view != SongListView {
			t.Fatalf("expected SongListView, got %v", m.view)
		}
		if len(m.songs.Items()) != 1 {
			t.Errorf("expected 1 song, got %d", len(m.songs.Items()))
		}
		if !strings.Contains(m.View(), "Opener") {
			t.Errorf("expected song title in view, got %q", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != AlbumListView {
			t.Errorf("expected AlbumListView after back, got %v", m.view)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != ArtistListView {
			t.Errorf("expected ArtistListView after back, got %v", m.view)
		}
	})

	t.Run("stats view returns to previous view", func(t *testing.T) {
		m, _ := newTestModel(t)
		run(t, m, m.Init())

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
		run(t, m, cmd)
		if m.view != StatsView {
			t.Fatalf("expected StatsView, got %v", m.view)
		}
		if m.stats == nil || m.stats.MostAlbums == nil || m.stats.MostAlbums.Name != "Band" {
			t.Errorf("expected Band to have the most albums, got %+v", m.stats)
		}
		if !strings.Contains(m.View(), "Catalog Statistics") {
			t.Errorf("expected stats title in view, got %q", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != ArtistListView {
			t.Errorf("expected ArtistListView, got %v", m.view)
		}
	})

	t.Run("refresh picks up new artists", func(t *testing.T) {
		m, svc := newTestModel(t)
		run(t, m, m.Init())

		if _, err := svc.Artists.Create(context.Background(), services.ArtistInput{Name: "Second", Country: "Testland"}); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		run(t, m, cmd)
		if len(m.artists.Items()) != 2 {
			t.Errorf("expected 2 artists, got %d", len(m.artists.Items()))
		}
	})

	t.Run("errors are shown and keep the view", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.Update(artistsFetchedMsg(nil, errors.New("boom")))

		if m.view != ArtistListView {
			t.Errorf("expected ArtistListView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "boom") {
			t.Errorf("expected error in view, got %q", m.View())
		}

		m.Update(artistsFetchedMsg([]*models.Artist{}, nil))
		if m.err != nil {
			t.Errorf("expected error to clear, got %v", m.err)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd == nil {
			t.Fatal("expected quit command, got nil")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg, got %T", cmd())
		}
	})
}

func TestRendering(t *testing.T) {
	t.Run("statistics fields share one column", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.stats = &models.Statistics{}

		out := m.renderStats()
		for _, label := range []string{"Most albums:", "Least albums:", "Most songs:"} {
			idx := strings.Index(out, label)
			if idx < 0 {
				t.Fatalf("expected %q in %q", label, out)
			}
			line := out[idx:]
			if end := strings.IndexByte(line, '\n'); end >= 0 {
				line = line[:end]
			}
			if got := lipgloss.Width(line); got <= fieldWidth {
				t.Errorf("expected %q to be padded past %d columns, got %d", label, fieldWidth, got)
			}
		}
		if got := lipgloss.Width(styles.field.Render("Most albums:")); got != fieldWidth {
			t.Errorf("expected field width %d, got %d", fieldWidth, got)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.Update(artistsFetchedMsg([]*models.Artist{}, nil))
		if !strings.Contains(m.View(), "Artists: nothing here yet") {
			t.Errorf("expected empty placeholder, got %q", m.View())
		}
	})
}
