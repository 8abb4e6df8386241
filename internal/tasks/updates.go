package tasks

import (
	"fmt"
	"path/filepath"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanArtists Phase = iota
	ScanAlbums
	ScanUsers
	Repair
	ResolveJournal
	Complete
	ScanFiles
	ReadTags
	ImportTracks
)

func (p Phase) String() string {
	switch p {
	case ScanArtists:
		return "scan_artists"
	case ScanAlbums:
		return "scan_albums"
	case ScanUsers:
		return "scan_users"
	case Repair:
		return "repair"
	case ResolveJournal:
		return "resolve_journal"
	case Complete:
		return "complete"
	case ScanFiles:
		return "scan_files"
	case ReadTags:
		return "read_tags"
	case ImportTracks:
		return "import_tracks"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking. A nil or full channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func scanUpdate(phase Phase, step, total int, entity string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Scanning %s back-references...", entity),
	}
}

func driftUpdate(step, total int, d Drift) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Repair,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s: %d missing, %d extra", step, total, d.Target, d.DocumentID, len(d.Missing), len(d.Extra)),
		Data:    d,
	}
}

func resolveUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveJournal,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %d journal entries...", count),
	}
}

func reconcileCompleteUpdate(report *ReconcileReport) ProgressUpdate {
	verb := "repaired"
	if report.DryRun {
		verb = "found"
	}
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Reconciled %d documents, %s %d drifted", report.Scanned, verb, len(report.Drift)),
		Data:    report,
	}
}

func scanFilesUpdate(found int, root string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d audio files in %s", found, root),
	}
}

func readTagsUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadTags,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s...", step, total, filepath.Base(path)),
	}
}

func importedUpdate(step, total int, t track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, t.Artist, t.Title),
	}
}

func importFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(path), err),
	}
}
