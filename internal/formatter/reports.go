package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/discography/internal/tasks"
)

// Reconcile renders a reconciliation report. Only JSON and text are supported; other formats fall back to text.
func Reconcile(report *tasks.ReconcileReport, format string) ([]byte, error) {
	if format == FormatJSON {
		return ToJSON(report)
	}

	var buf bytes.Buffer
	mode := "repair"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&buf, "Reconciliation (%s): %d documents scanned, %d drifted\n", mode, report.Scanned, len(report.Drift))
	for _, d := range report.Drift {
		fmt.Fprintf(&buf, "  %s %s\n", d.Target, d.DocumentID)
		if len(d.Missing) > 0 {
			fmt.Fprintf(&buf, "    missing: %s\n", strings.Join(d.Missing, ", "))
		}
		if len(d.Extra) > 0 {
			fmt.Fprintf(&buf, "    extra:   %s\n", strings.Join(d.Extra, ", "))
		}
	}

	fmt.Fprintf(&buf, "Journal: %d pending", len(report.Journal))
	if !report.DryRun {
		fmt.Fprintf(&buf, ", %d resolved; %d sets repaired", report.Resolved, report.Repaired)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Import renders a library import summary. Only JSON and text are supported; other formats fall back to text.
func Import(result *tasks.ImportResult, format string) ([]byte, error) {
	if format == FormatJSON {
		return ToJSON(result)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Imported %s: %d files\n", result.Root, result.Files)
	fmt.Fprintf(&buf, "  artists created: %d\n", result.ArtistsCreated)
	fmt.Fprintf(&buf, "  albums created:  %d\n", result.AlbumsCreated)
	fmt.Fprintf(&buf, "  songs created:   %d\n", result.SongsCreated)
	fmt.Fprintf(&buf, "  skipped:         %d\n", result.Skipped)
	if len(result.Failed) > 0 {
		fmt.Fprintf(&buf, "  failed:          %d\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(&buf, "    ✗ %s: %s\n", f.Path, f.Error)
		}
	}
	return buf.Bytes(), nil
}
