package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
)

// Drift is one back-reference set that disagrees with the forward references pointing at its document.
type Drift struct {
	Target     string   `json:"target"`
	DocumentID string   `json:"document_id"`
	Missing    []string `json:"missing,omitempty"`
	Extra      []string `json:"extra,omitempty"`
	Expected   []string `json:"expected"`
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	DryRun   bool                 `json:"dry_run"`
	Scanned  int                  `json:"scanned"`
	Drift    []Drift              `json:"drift"`
	Repaired int                  `json:"repaired"`
	Journal  []models.PairedWrite `json:"journal"`
	Resolved int                  `json:"resolved"`
}

// Reconciler recomputes back-reference sets from forward references.
type Reconciler struct {
	catalog *models.Catalog
	logger  *log.Logger
}

func NewReconciler(catalog *models.Catalog, logger *log.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, logger: logger}
}

// backRefs is one kind of back-reference set: the current set per owning document and the
// set the forward references imply.
type backRefs struct {
	target   string
	phase    Phase
	entity   string
	current  map[string][]string
	order    []string
	expected map[string][]string
	write    func(ctx context.Context, id string, ids []string) error
}

type repair struct {
	refs  *backRefs
	drift Drift
}

// Run scans every back-reference set and, unless dryRun, rewrites the drifted ones and
// resolves the pending journal entries.
func (r *Reconciler) Run(ctx context.Context, progress chan<- ProgressUpdate, dryRun bool) (*ReconcileReport, error) {
	report := &ReconcileReport{DryRun: dryRun, Drift: []Drift{}}

	scans := []func(context.Context) (*backRefs, error){r.artistAlbums, r.albumSongs, r.userPlaylists}
	sets := make([]*backRefs, 0, len(scans))
	for i, scan := range scans {
		refs, err := scan(ctx)
		if err != nil {
			return nil, err
		}
		sendProgress(progress, scanUpdate(refs.phase, i+1, len(scans), refs.entity))
		report.Scanned += len(refs.order)
		sets = append(sets, refs)
	}

	var drifted []repair
	for _, refs := range sets {
		for _, id := range refs.order {
			d, ok := diff(refs.target, id, refs.current[id], refs.expected[id])
			if !ok {
				continue
			}
			report.Drift = append(report.Drift, d)
			drifted = append(drifted, repair{refs: refs, drift: d})
		}
	}

	for i, item := range drifted {
		sendProgress(progress, driftUpdate(i+1, len(drifted), item.drift))
		r.logger.Info("back-reference drift",
			"target", item.drift.Target, "id", item.drift.DocumentID,
			"missing", len(item.drift.Missing), "extra", len(item.drift.Extra), "dry_run", dryRun)
		if dryRun {
			continue
		}
		if err := item.refs.write(ctx, item.drift.DocumentID, item.drift.Expected); err != nil {
			return report, fmt.Errorf("failed to repair %s %s: %w", item.drift.Target, item.drift.DocumentID, err)
		}
		report.Repaired++
	}

	pending, err := r.catalog.Journal.Pending(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read paired-write journal: %w", err)
	}
	report.Journal = pending
	if !dryRun && len(pending) > 0 {
		sendProgress(progress, resolveUpdate(len(pending)))
		ids := make([]string, len(pending))
		for i, w := range pending {
			ids[i] = w.ID
		}
		if err := r.catalog.Journal.Resolve(ctx, ids...); err != nil {
			return report, fmt.Errorf("failed to resolve paired-write journal: %w", err)
		}
		report.Resolved = len(ids)
	}

	sendProgress(progress, reconcileCompleteUpdate(report))
	return report, nil
}

func (r *Reconciler) artistAlbums(ctx context.Context) (*backRefs, error) {
	artists, err := r.catalog.Artists.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	albums, err := r.catalog.Albums.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	refs := &backRefs{
		target: integrity.TargetArtistAlbums, phase: ScanArtists, entity: "artist",
		current: map[string][]string{}, expected: map[string][]string{},
		write: r.catalog.Artists.SetAlbums,
	}
	for _, artist := range artists {
		refs.order = append(refs.order, artist.ID())
		refs.current[artist.ID()] = artist.Albums()
	}
	for _, album := range albums {
		refs.expected[album.Artist()] = append(refs.expected[album.Artist()], album.ID())
	}
	return refs, nil
}

func (r *Reconciler) albumSongs(ctx context.Context) (*backRefs, error) {
	albums, err := r.catalog.Albums.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	songs, err := r.catalog.Songs.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	refs := &backRefs{
		target: integrity.TargetAlbumSongs, phase: ScanAlbums, entity: "album",
		current: map[string][]string{}, expected: map[string][]string{},
		write: r.catalog.Albums.SetSongs,
	}
	for _, album := range albums {
		refs.order = append(refs.order, album.ID())
		refs.current[album.ID()] = album.Songs()
	}
	for _, song := range songs {
		if song.HasAlbum() {
			refs.expected[song.Album()] = append(refs.expected[song.Album()], song.ID())
		}
	}
	return refs, nil
}

func (r *Reconciler) userPlaylists(ctx context.Context) (*backRefs, error) {
	users, err := r.catalog.Users.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	playlists, err := r.catalog.Playlists.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	refs := &backRefs{
		target: integrity.TargetUserPlaylists, phase: ScanUsers, entity: "user",
		current: map[string][]string{}, expected: map[string][]string{},
		write: r.catalog.Users.SetPlaylists,
	}
	for _, user := range users {
		refs.order = append(refs.order, user.ID())
		refs.current[user.ID()] = user.Playlists()
	}
	for _, playlist := range playlists {
		refs.expected[playlist.Owner()] = append(refs.expected[playlist.Owner()], playlist.ID())
	}
	return refs, nil
}

// diff compares a stored set with the expected one. Order is not significant.
func diff(target, id string, current, expected []string) (Drift, bool) {
	d := Drift{Target: target, DocumentID: id, Expected: expected}
	if d.Expected == nil {
		d.Expected = []string{}
	}
	for _, ref := range expected {
		if !slices.Contains(current, ref) {
			d.Missing = append(d.Missing, ref)
		}
	}
	for _, ref := range current {
		if !slices.Contains(expected, ref) {
			d.Extra = append(d.Extra, ref)
		}
	}
	return d, len(d.Missing) > 0 || len(d.Extra) > 0
}
