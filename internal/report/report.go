// Package report renders a leaderboard as a fixed-width text table.
package report

import (
	"fmt"
	"io"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/raidrank/internal/engine"
)

// EliteMarker is appended to moves that came from the elite sets.
const EliteMarker = "^"

// DefaultLimit is the number of rows rendered when no limit is given.
const DefaultLimit = 100

// Row is one rendered leaderboard line.
type Row struct {
	Rank    int
	Name    string
	Fast    string
	Charged string
	Score   float64
}

// Rows sorts a copy of entries by descending score and converts the first limit
// of them. limit <= 0 converts all entries.
func Rows(entries []engine.Entry, limit int) []Row {
	sorted := slices.Clone(entries)
	engine.SortEntries(sorted)
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	rows := make([]Row, len(sorted))
	for i, e := range sorted {
		m := e.Metrics
		rows[i] = Row{
			Rank:    i + 1,
			Name:    Title(m.Name()),
			Fast:    MoveLabel(m.FastMove().Move.Name, m.EliteFast()),
			Charged: MoveLabel(m.ChargedMove().Move.Name, m.EliteCharged()),
			Score:   e.Score,
		}
	}
	return rows
}

// Title upper-cases the first letter of every word in name.
func Title(name string) string {
	return cases.Title(language.English).String(name)
}

// MoveLabel title-cases a move name and marks it when elite.
func MoveLabel(name string, elite bool) string {
	if elite {
		return Title(name) + EliteMarker
	}
	return Title(name)
}

// Render writes the header and up to limit rows to w.
func Render(w io.Writer, entries []engine.Entry, sort engine.SortMetric, limit int) error {
	return RenderRows(w, sort.String(), Rows(entries, limit))
}

// RenderRows writes a header with the given score column label followed by rows.
func RenderRows(w io.Writer, scoreLabel string, rows []Row) error {
	if _, err := fmt.Fprintf(w, "%3s %-32s | %-22s | %-22s | %s\n", "X.", "Attacker", "Fast Move", "Charged Move", scoreLabel); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%3s %-32s | %-22s | %-22s | %.4f\n",
			fmt.Sprintf("%d.", r.Rank), r.Name, r.Fast, r.Charged, r.Score); err != nil {
			return err
		}
	}
	return nil
}
