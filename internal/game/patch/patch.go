// Package patch is the data-patch layer: hand-maintained corrections, exclusion
// lists, and roster previews applied to the parsed catalog, kept apart from the
// combat formulas.
package patch

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/move"
)

// Exclusions lists template ids that are dropped or never used as raid defenders.
type Exclusions struct {
	// Skip entries are dropped from the catalog entirely.
	Skip []string `yaml:"skip"`
	// ReleasedNonRaid entries exist in game but never appear as raid bosses.
	ReleasedNonRaid []string `yaml:"released_non_raid"`
	// Unreleased entries are not yet obtainable.
	Unreleased []string `yaml:"unreleased"`
	// RaidMythical is the allow-list of mythicals that have been raid bosses.
	RaidMythical []string `yaml:"raid_mythical"`
}

// Skipped reports whether templateID is dropped from the catalog.
func (e Exclusions) Skipped(templateID string) bool {
	return slices.Contains(e.Skip, templateID)
}

// RaidEligible reports whether c may be selected as a raid defender.
// Only the exclusion lists are consulted; class flags are the caller's concern.
func (e Exclusions) RaidEligible(c *combatant.Combatant) bool {
	if slices.Contains(e.ReleasedNonRaid, c.TemplateID) || slices.Contains(e.Unreleased, c.TemplateID) {
		return false
	}
	return !c.Mythical || slices.Contains(e.RaidMythical, c.TemplateID)
}

// ShadowRules restricts charged moves to one side of the shadow flag.
type ShadowRules struct {
	PurifiedOnly []string `yaml:"purified_only"`
	ShadowOnly   []string `yaml:"shadow_only"`
}

// Allowed reports whether charged may be used with the given shadow flag.
func (s ShadowRules) Allowed(charged string, shadow bool) bool {
	if shadow {
		return !slices.Contains(s.PurifiedOnly, charged)
	}
	return !slices.Contains(s.ShadowOnly, charged)
}

// Grant adds elite moves to every combatant it matches.
type Grant struct {
	// Names matches combatants by exact name.
	Names []string `yaml:"names"`
	// NameContains matches combatants whose name contains the substring.
	NameContains string   `yaml:"name_contains"`
	EliteFast    []string `yaml:"elite_fast"`
	EliteCharged []string `yaml:"elite_charged"`
}

// Matches reports whether the grant applies to c.
func (g Grant) Matches(c *combatant.Combatant) bool {
	if slices.Contains(g.Names, c.Name) {
		return true
	}
	return g.NameContains != "" && strings.Contains(c.Name, g.NameContains)
}

// Rule converts the grant into a patch Rule.
func (g Grant) Rule() Rule {
	name := g.NameContains
	if len(g.Names) > 0 {
		name = strings.Join(g.Names, ",")
	}
	return Rule{
		Name:      "grant:" + name,
		Predicate: g.Matches,
		Apply: func(c *combatant.Combatant, moves MoveResolver) error {
			for _, n := range g.EliteFast {
				m, err := moves.Move(n)
				if err != nil {
					return err
				}
				c.EliteFastMoves = appendMissing(c.EliteFastMoves, m)
			}
			for _, n := range g.EliteCharged {
				m, err := moves.Move(n)
				if err != nil {
					return err
				}
				c.EliteChargedMoves = appendMissing(c.EliteChargedMoves, m)
			}
			return nil
		},
	}
}

func appendMissing(list []move.Move, m move.Move) []move.Move {
	for _, have := range list {
		if have.Name == m.Name {
			return list
		}
	}
	return append(list, m)
}

// Set is the full collection of patches for one snapshot.
type Set struct {
	Exclusions Exclusions `yaml:"exclusions"`
	// StatOverrides supplies base stats for template ids the snapshot lacks them for.
	StatOverrides map[string]combatant.Stats `yaml:"stat_overrides"`
	// MoveNames names moves the snapshot only identifies by number.
	MoveNames map[int]string `yaml:"move_names"`
	// UnusedMoves are dropped from the move catalog.
	UnusedMoves []string `yaml:"unused_moves"`
	// ForcedDistinct template ids are always kept as separate catalog entries.
	ForcedDistinct []string    `yaml:"forced_distinct"`
	ShadowRules    ShadowRules `yaml:"shadow_rules"`
	// EliteGrants are applied once while the catalog is built.
	EliteGrants []Grant `yaml:"elite_grants"`
	// RosterPreviews are applied by the engine before each enumeration.
	RosterPreviews []Grant `yaml:"roster_previews"`
}

// IsUnused reports whether the move name is dropped from the catalog.
func (s *Set) IsUnused(name string) bool { return slices.Contains(s.UnusedMoves, name) }

// IsForcedDistinct reports whether templateID is always kept as its own entry.
func (s *Set) IsForcedDistinct(templateID string) bool {
	return slices.Contains(s.ForcedDistinct, templateID)
}

// CatalogRules returns the rules applied while the catalog is built.
func (s *Set) CatalogRules() []Rule { return grantRules(s.EliteGrants) }

// RosterRules returns the rules the engine applies before enumeration.
func (s *Set) RosterRules() []Rule { return grantRules(s.RosterPreviews) }

func grantRules(grants []Grant) []Rule {
	rules := make([]Rule, 0, len(grants))
	for _, g := range grants {
		rules = append(rules, g.Rule())
	}
	return rules
}

// Load reads a patch set from a YAML file.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns the parsed Set or a non-nil error.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patch file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a patch set from YAML.
func LoadFromBytes(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing patch YAML: %w", err)
	}
	for i, g := range s.EliteGrants {
		if len(g.Names) == 0 && g.NameContains == "" {
			return nil, fmt.Errorf("elite_grants[%d]: names or name_contains required", i)
		}
	}
	for i, g := range s.RosterPreviews {
		if len(g.Names) == 0 && g.NameContains == "" {
			return nil, fmt.Errorf("roster_previews[%d]: names or name_contains required", i)
		}
	}
	return &s, nil
}

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in patch set.
//
// Postcondition: Returns a fresh Set on every call.
func Default() *Set {
	s, err := LoadFromBytes(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("patch: embedded default.yaml is invalid: %v", err))
	}
	return s
}

// AddEliteGrant appends a catalog-time grant.
func (s *Set) AddEliteGrant(g Grant) { s.EliteGrants = append(s.EliteGrants, g) }

// AddRosterPreview appends an enumeration-time grant.
func (s *Set) AddRosterPreview(g Grant) { s.RosterPreviews = append(s.RosterPreviews, g) }

// AddUnreleased marks templateID as never eligible as a raid defender.
func (s *Set) AddUnreleased(templateID string) {
	if !slices.Contains(s.Exclusions.Unreleased, templateID) {
		s.Exclusions.Unreleased = append(s.Exclusions.Unreleased, templateID)
	}
}
