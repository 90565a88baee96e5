// Package gamemaster parses PokeMiners game master snapshots into a catalog and
// refreshes the local snapshot from its remote source.
package gamemaster

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidrank/internal/game/catalog"
	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/move"
	"github.com/cory-johannsen/raidrank/internal/game/patch"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// ErrDataIntegrity is returned when the snapshot contradicts itself in a way the
// patch layer does not account for.
var ErrDataIntegrity = errors.New("game master data integrity violation")

var (
	moveTemplate    = regexp.MustCompile(`^V\d{4}_MOVE_`)
	pokemonTemplate = regexp.MustCompile(`^V\d{4}_POKEMON_`)
)

const (
	pokemonInfix      = "_POKEMON_"
	normalSuffix      = "_NORMAL"
	tempEvoPrefix     = "TEMP_EVOLUTION_"
	hiddenPower       = "hidden power"
	returnMove        = "return"
	missingEnergy     = 33
	classLegendary    = "LEGENDARY"
	classMythical     = "MYTHIC"
	classUltraBeast   = "ULTRA_BEAST"
	settingsPath      = "data.pokemonSettings"
	moveSettingsPath  = "data.moveSettings"
	templateIDPath    = "templateId"
	quickMovesPath    = "quickMoves"
	chargedMovesPath  = "cinematicMoves"
	eliteQuickPath    = "eliteQuickMove"
	eliteChargedPath  = "eliteCinematicMove"
	tempOverridesPath = "tempEvoOverrides"
)

// comparedFields decide whether a form variant is a distinct catalog entry.
var comparedFields = []string{"stats", quickMovesPath, chargedMovesPath, "type", "type2", eliteChargedPath, eliteQuickPath}

// Options tunes parsing.
type Options struct {
	// HiddenPower expands hidden power into one typed copy per type except normal and fairy.
	HiddenPower bool
}

// Parser converts a snapshot into a catalog using a patch set.
type Parser struct {
	patches *patch.Set
	opts    Options
	logger  *zap.Logger
}

// NewParser creates a Parser.
//
// Precondition: patches and logger must be non-nil.
func NewParser(patches *patch.Set, opts Options, logger *zap.Logger) *Parser {
	return &Parser{patches: patches, opts: opts, logger: logger}
}

// ParseFile reads and parses the snapshot at path.
func (p *Parser) ParseFile(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game master %s: %w", path, err)
	}
	return p.Parse(data)
}

type record struct {
	templateID string
	settings   gjson.Result
}

func (r record) suffix() string {
	_, after, _ := strings.Cut(r.templateID, pokemonInfix)
	return after
}

// Parse builds a catalog from snapshot JSON.
//
// Precondition: data must be a JSON array of template records.
// Postcondition: Returns a catalog with the patch set's catalog rules applied, or
// an error wrapping ErrDataIntegrity or catalog.ErrMoveNotFound.
func (p *Parser) Parse(data []byte) (*catalog.Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("game master is not valid JSON: %w", ErrDataIntegrity)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("game master root must be an array: %w", ErrDataIntegrity)
	}
	entries := root.Array()

	moves, err := p.parseMoves(entries)
	if err != nil {
		return nil, err
	}
	moveCatalog, err := catalog.New(moves, nil)
	if err != nil {
		return nil, err
	}

	records, err := p.selectRecords(entries)
	if err != nil {
		return nil, err
	}
	var combatants []*combatant.Combatant
	for _, rec := range records {
		built, err := p.build(rec, moveCatalog)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", rec.templateID, err)
		}
		combatants = append(combatants, built...)
	}
	if err := patch.Apply(p.patches.CatalogRules(), combatants, moveCatalog); err != nil {
		return nil, err
	}

	cat, err := catalog.New(moves, combatants)
	if err != nil {
		return nil, err
	}
	p.logger.Info("parsed game master",
		zap.Int("records", len(entries)),
		zap.Int("moves", cat.MoveCount()),
		zap.Int("combatants", cat.CombatantCount()),
	)
	return cat, nil
}

func (p *Parser) parseMoves(entries []gjson.Result) ([]move.Move, error) {
	var moves []move.Move
	seen := make(map[string]bool)
	for _, e := range entries {
		tid := e.Get(templateIDPath).String()
		if !moveTemplate.MatchString(tid) {
			continue
		}
		s := e.Get(moveSettingsPath)
		name, err := p.moveName(s.Get("movementId"))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tid, err)
		}
		if p.patches.IsUnused(name) {
			continue
		}
		if seen[name] {
			p.logger.Warn("duplicate move template ignored", zap.String("template", tid), zap.String("move", name))
			continue
		}
		t, err := typing.Parse(s.Get("pokemonType").String())
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tid, err)
		}
		energy := missingEnergy
		if v := s.Get("energyDelta"); v.Exists() {
			energy = int(v.Int())
			if energy < 0 {
				energy = -energy
			}
		}
		seen[name] = true
		moves = append(moves, move.Move{
			Name:                name,
			Type:                t,
			Power:               s.Get("power").Float(),
			EnergyDelta:         energy,
			DamageWindowStartMs: int(s.Get("damageWindowStartMs").Int()),
			DamageWindowEndMs:   int(s.Get("damageWindowEndMs").Int()),
			DurationMs:          int(s.Get("durationMs").Int()),
		})
	}
	return moves, nil
}

// moveName resolves a move identifier, which is either an enum string such as
// DRAGON_BREATH_FAST or a bare number the snapshot has not named yet.
func (p *Parser) moveName(v gjson.Result) (string, error) {
	if v.Type == gjson.Number {
		id := int(v.Int())
		name, ok := p.patches.MoveNames[id]
		if !ok {
			return "", fmt.Errorf("move id %d has no name: %w", id, ErrDataIntegrity)
		}
		return name, nil
	}
	name := strings.ToLower(v.String())
	name = strings.ReplaceAll(name, "_fast", "")
	return strings.ReplaceAll(name, "_", " "), nil
}

// selectRecords keeps every base form plus each variant that differs from all
// entries kept so far.
func (p *Parser) selectRecords(entries []gjson.Result) ([]record, error) {
	var kept []record
	for _, e := range entries {
		tid := e.Get(templateIDPath).String()
		settings := e.Get(settingsPath)
		if !settings.Exists() || !pokemonTemplate.MatchString(tid) {
			continue
		}
		if p.patches.Exclusions.Skipped(tid) {
			continue
		}
		rec := record{templateID: tid, settings: settings}
		id := settings.Get("pokemonId").String()
		id = strings.ReplaceAll(id, "_MALE", "")
		id = strings.ReplaceAll(id, "_FEMALE", "")
		if id == rec.suffix() {
			kept = append(kept, rec)
			continue
		}
		if !p.distinctFromAll(rec, kept) {
			continue
		}
		if base, ok := strings.CutSuffix(tid, normalSuffix); ok && !p.patches.Exclusions.Skipped(base) {
			return nil, fmt.Errorf("template %s differs from %s: %w", tid, base, ErrDataIntegrity)
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

func (p *Parser) distinctFromAll(rec record, kept []record) bool {
	forced := p.patches.IsForcedDistinct(rec.templateID)
	for _, k := range kept {
		if !forced && !differs(rec.settings, k.settings) {
			return false
		}
	}
	return true
}

func differs(a, b gjson.Result) bool {
	for _, f := range comparedFields {
		x, y := a.Get(f), b.Get(f)
		if x.Exists() != y.Exists() || !reflect.DeepEqual(x.Value(), y.Value()) {
			return true
		}
	}
	return false
}

// build returns the combatant for rec preceded by its mega variants. Records
// without fast moves yield nothing.
func (p *Parser) build(rec record, moves *catalog.Catalog) ([]*combatant.Combatant, error) {
	s := rec.settings
	if !s.Get(quickMovesPath).Exists() {
		return nil, nil
	}
	stats, ok := p.patches.StatOverrides[rec.templateID]
	if !ok {
		stats = parseStats(s.Get("stats"))
	}
	if stats.Attack <= 0 || stats.Defense <= 0 || stats.Stamina <= 0 {
		return nil, fmt.Errorf("missing base stats: %w", ErrDataIntegrity)
	}
	t1, err := typing.Parse(s.Get("type").String())
	if err != nil {
		return nil, err
	}
	t2, err := typing.Parse(s.Get("type2").String())
	if err != nil {
		return nil, err
	}

	c := &combatant.Combatant{
		TemplateID: rec.templateID,
		Name:       strings.ToLower(strings.ReplaceAll(rec.suffix(), "_", " ")),
		Type1:      t1,
		Type2:      t2,
	}
	c.SetStats(stats)

	if c.FastMoves, err = p.resolveAll(s.Get(quickMovesPath), moves); err != nil {
		return nil, err
	}
	if c.ChargedMoves, err = p.resolveAll(s.Get(chargedMovesPath), moves); err != nil {
		return nil, err
	}
	if c.EliteFastMoves, err = p.resolveAll(s.Get(eliteQuickPath), moves); err != nil {
		return nil, err
	}

	var elite []gjson.Result
	if shadow := s.Get("shadow"); shadow.Exists() {
		c.ShadowAvailable = true
		elite = append(elite, shadow.Get("shadowChargeMove"), shadow.Get("purifiedChargeMove"))
	}
	elite = append(elite, s.Get(eliteChargedPath).Array()...)
	for _, v := range elite {
		if err := p.resolveInto(&c.EliteChargedMoves, v, moves); err != nil {
			return nil, err
		}
	}
	if !c.ShadowAvailable {
		m, err := moves.Move(returnMove)
		if err != nil {
			return nil, err
		}
		c.EliteChargedMoves = appendUnique(c.EliteChargedMoves, m)
	}

	class := s.Get("pokemonClass").String()
	c.Legendary = strings.Contains(class, classLegendary)
	c.Mythical = strings.Contains(class, classMythical)
	c.UltraBeast = strings.Contains(class, classUltraBeast)

	var out []*combatant.Combatant
	for _, o := range s.Get(tempOverridesPath).Array() {
		evo := o.Get("tempEvoId")
		if !evo.Exists() {
			continue
		}
		mega, err := megaVariant(c, o, evo.String())
		if err != nil {
			return nil, err
		}
		out = append(out, mega)
	}
	return append(out, c), nil
}

func megaVariant(c *combatant.Combatant, o gjson.Result, evoID string) (*combatant.Combatant, error) {
	stats := parseStats(o.Get("stats"))
	if stats.Attack <= 0 || stats.Defense <= 0 || stats.Stamina <= 0 {
		return nil, fmt.Errorf("%s: missing base stats: %w", evoID, ErrDataIntegrity)
	}
	t1, err := typing.Parse(o.Get("typeOverride1").String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", evoID, err)
	}
	t2, err := typing.Parse(o.Get("typeOverride2").String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", evoID, err)
	}
	prefix := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(evoID, tempEvoPrefix), "_", " "))
	return c.MegaVariant(prefix, stats, t1, t2), nil
}

func parseStats(v gjson.Result) combatant.Stats {
	return combatant.Stats{
		Attack:  int(v.Get("baseAttack").Int()),
		Defense: int(v.Get("baseDefense").Int()),
		Stamina: int(v.Get("baseStamina").Int()),
	}
}

func (p *Parser) resolveAll(list gjson.Result, moves *catalog.Catalog) ([]move.Move, error) {
	var out []move.Move
	for _, v := range list.Array() {
		if err := p.resolveInto(&out, v, moves); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveInto appends the move v names to dst. Hidden power expands into its
// typed copies when enabled and unused moves are dropped.
func (p *Parser) resolveInto(dst *[]move.Move, v gjson.Result, moves *catalog.Catalog) error {
	name, err := p.moveName(v)
	if err != nil {
		return err
	}
	if p.patches.IsUnused(name) {
		return nil
	}
	m, err := moves.Move(name)
	if err != nil {
		return err
	}
	if name == hiddenPower && p.opts.HiddenPower {
		for _, t := range typing.All() {
			if t == typing.Normal || t == typing.Fairy {
				continue
			}
			*dst = appendUnique(*dst, m.WithType(t))
		}
		return nil
	}
	*dst = appendUnique(*dst, m)
	return nil
}

func appendUnique(list []move.Move, m move.Move) []move.Move {
	for _, have := range list {
		if have.Name == m.Name {
			return list
		}
	}
	return append(list, m)
}
