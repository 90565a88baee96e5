// Package storage defines the persisted form of a ranking run shared by the
// storage backends.
package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("ranking run not found")

// ErrRunExists is returned when saving a run whose id is already stored.
var ErrRunExists = errors.New("ranking run already exists")

// Run is one persisted leaderboard.
type Run struct {
	ID             uuid.UUID
	QueryType      string
	SortMetric     string
	SnapshotDigest string
	Level          int
	CreatedAt      time.Time
	Entries        []RunEntry
}

// RunEntry is one leaderboard row. Rank starts at 1.
type RunEntry struct {
	Rank         int
	Attacker     string
	TemplateID   string
	Shadow       bool
	FastMove     string
	ChargedMove  string
	EliteFast    bool
	EliteCharged bool
	Score        float64
	DPS          float64
	TDO          float64
	ER           float64
}

// EntryColumns names the entry columns in the order every backend writes them.
var EntryColumns = []string{
	"rank", "attacker", "template_id", "shadow", "fast_move", "charged_move",
	"elite_fast", "elite_charged", "score", "dps", "tdo", "er",
}

// Values returns e's column values in EntryColumns order.
func (e RunEntry) Values() []any {
	return []any{
		e.Rank, e.Attacker, e.TemplateID, e.Shadow, e.FastMove, e.ChargedMove,
		e.EliteFast, e.EliteCharged, e.Score, e.DPS, e.TDO, e.ER,
	}
}

// Targets returns pointers to e's fields in EntryColumns order for row scanning.
func (e *RunEntry) Targets() []any {
	return []any{
		&e.Rank, &e.Attacker, &e.TemplateID, &e.Shadow, &e.FastMove, &e.ChargedMove,
		&e.EliteFast, &e.EliteCharged, &e.Score, &e.DPS, &e.TDO, &e.ER,
	}
}
