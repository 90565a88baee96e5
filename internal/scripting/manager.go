package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidrank/internal/game/patch"
)

// Manager runs patch script directories against a patch set.
type Manager struct {
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil; instLimit >= 0.
func NewManager(instLimit int, logger *zap.Logger) *Manager {
	return &Manager{instLimit: instLimit, logger: logger}
}

// ApplyDir executes every *.lua file in scriptDir in lexicographic order inside a
// single sandboxed VM whose patch module writes into set.
//
// Precondition: scriptDir must be a readable directory; set must be non-nil.
// Postcondition: Returns the number of scripts run. On error set may hold the
// patches of the scripts that ran before the failing one.
func (m *Manager) ApplyDir(scriptDir string, set *patch.Set) (int, error) {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return 0, fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	sb := NewSandbox(m.instLimit)
	defer sb.Close()
	m.RegisterModules(sb.L, set)

	for _, path := range luaFiles {
		if err := sb.L.DoFile(path); err != nil {
			if sb.Exhausted() {
				return 0, fmt.Errorf("scripting: running %q after %d opcodes: %w", path, sb.Spent(), ErrInstructionLimit)
			}
			return 0, fmt.Errorf("scripting: running %q: %w", path, err)
		}
		m.logger.Debug("patch script applied", zap.String("path", path))
	}
	m.logger.Info("patch scripts applied",
		zap.String("dir", scriptDir),
		zap.Int("scripts", len(luaFiles)),
		zap.Int64("opcodes", sb.Spent()),
		zap.Int("elite_grants", len(set.EliteGrants)),
		zap.Int("roster_previews", len(set.RosterPreviews)),
	)
	return len(luaFiles), nil
}
