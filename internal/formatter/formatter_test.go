package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
	"github.com/desertthunder/discography/internal/tasks"
)

func sampleStats() *models.Statistics {
	return &models.Statistics{
		MostAlbums: &models.ArtistAlbumCount{ArtistID: "a1", Name: "Prolific", AlbumCount: 3},
		LeastAlbums: []models.ArtistAlbumCount{
			{ArtistID: "a2", Name: "Newcomer", AlbumCount: 0},
			{ArtistID: "a1", Name: "Prolific", AlbumCount: 3},
		},
		MostSongs:  &models.AlbumSongsResult{AlbumID: "b1", Title: "Double LP", SongCount: 12},
		LeastSongs: &models.LeastSongsResult{SongCount: 0, Albums: []string{"Empty", "Also Empty"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		data, err := Statistics(sampleStats(), FormatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		most := decoded["most_albums"].(map[string]any)
		if most["albumCount"] != float64(3) {
			t.Errorf("expected albumCount 3, got %v", most["albumCount"])
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := Statistics(sampleStats(), FormatCSV)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "View,ID,Name,Count" {
			t.Errorf("expected header row, got %q", lines[0])
		}
		if len(lines) != 7 {
			t.Errorf("expected 7 lines, got %d: %s", len(lines), data)
		}
		if !strings.Contains(string(data), "least_songs,,Also Empty,0") {
			t.Errorf("expected tied least_songs rows, got %s", data)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		data, _ := Statistics(sampleStats(), FormatMarkdown)
		output := string(data)
		for _, want := range []string{"# Catalog Statistics", "**Prolific** (3 albums)", "| Newcomer | 0 |", "0 songs: Empty, Also Empty"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in markdown, got:\n%s", want, output)
			}
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		data, _ := Statistics(&models.Statistics{}, FormatText)
		output := string(data)
		if !strings.Contains(output, "Most albums:  -") || !strings.Contains(output, "Least songs:  -") {
			t.Errorf("expected placeholders, got:\n%s", output)
		}
	})
}

func TestListings(t *testing.T) {
	artists := []*models.Artist{
		models.NewArtist("First Artist", "Testland", []string{"g1", "g2"}),
		models.NewArtist("Second", "Elsewhere", nil),
	}

	t.Run("CSV", func(t *testing.T) {
		data, err := Artists(artists, FormatCSV)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(string(data), "ID,Name,Country,Genres,Albums\n") {
			t.Errorf("expected CSV header, got %s", data)
		}
		if !strings.Contains(string(data), "First Artist,Testland,g1;g2,0") {
			t.Errorf("expected artist row, got %s", data)
		}
	})

	t.Run("text aligns columns", func(t *testing.T) {
		data, _ := Artists(artists, FormatText)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		col := strings.Index(lines[0], "Country")
		if strings.Index(lines[1], "Testland") != col || strings.Index(lines[2], "Elsewhere") != col {
			t.Errorf("expected aligned Country column:\n%s", data)
		}
	})

	t.Run("markdown escapes pipes", func(t *testing.T) {
		songs := []*models.Song{models.NewSong("This | That", "a1", "", 185)}
		data, _ := Songs(songs, FormatMarkdown)
		if !strings.Contains(string(data), `This \| That`) || !strings.Contains(string(data), "3:05") {
			t.Errorf("unexpected markdown:\n%s", data)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{185, "3:05"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d): expected %q, got %q", tt.seconds, tt.want, got)
		}
	}
}

func TestReports(t *testing.T) {
	t.Run("Reconcile", func(t *testing.T) {
		report := &tasks.ReconcileReport{
			DryRun:  true,
			Scanned: 4,
			Drift: []tasks.Drift{
				{Target: "artist.albums", DocumentID: "a1", Missing: []string{"b1"}, Expected: []string{"b1"}},
			},
			Journal: []models.PairedWrite{{ID: "j1"}},
		}
		data, _ := Reconcile(report, FormatText)
		output := string(data)
		for _, want := range []string{"dry run", "4 documents scanned, 1 drifted", "missing: b1", "Journal: 1 pending"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in report, got:\n%s", want, output)
			}
		}
	})

	t.Run("Import", func(t *testing.T) {
		result := &tasks.ImportResult{Root: "/music", Files: 2, SongsCreated: 1,
			Failed: []tasks.FileResult{{Path: "/music/x.mp3", Error: "bad artist"}}}
		data, _ := Import(result, FormatText)
		if !strings.Contains(string(data), "✗ /music/x.mp3: bad artist") {
			t.Errorf("expected failure line, got:\n%s", data)
		}
	})
}
