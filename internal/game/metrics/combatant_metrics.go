package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/typing"
)

// ErrDataIntegrity is returned when the inputs violate the positivity guarantees
// the formulas rely on.
var ErrDataIntegrity = errors.New("data integrity violation")

const (
	// ShadowAttackBonus multiplies a shadow attacker's attack.
	ShadowAttackBonus = 1.2
	// ShadowDefensePenalty multiplies a shadow attacker's defense.
	ShadowDefensePenalty = 0.8333333

	// DefaultIV is the IV used for every stat unless overridden.
	DefaultIV = 15
	// DefaultLevel is the attacker level unless overridden.
	DefaultLevel = 40

	// defenderMoveLockout is added to every defender move duration.
	defenderMoveLockout = 2.0
	// nukeEnergy is the charged energy cost at which the single-bar adjustment applies.
	nukeEnergy = 100
)

// Stats holds the per-instance IVs, level, and shadow flag.
type Stats struct {
	AtkIV  int
	DefnIV int
	HPIV   int
	Level  int
	Shadow bool
}

// DefaultStats returns 15/15/15 IVs at level 40, non-shadow.
func DefaultStats() Stats {
	return Stats{AtkIV: DefaultIV, DefnIV: DefaultIV, HPIV: DefaultIV, Level: DefaultLevel}
}

func (s Stats) validate() error {
	for _, iv := range []int{s.AtkIV, s.DefnIV, s.HPIV} {
		if iv < 0 || iv > 15 {
			return fmt.Errorf("IV %d must be within 0-15", iv)
		}
	}
	return nil
}

// Calculator owns the immutable tables the formulas read. A Calculator is safe
// for concurrent use.
type Calculator struct {
	chart *typing.Chart
	cpm   *CPMTable
}

// NewCalculator binds a type chart and a CPM table.
//
// Precondition: chart and cpm must be non-nil.
func NewCalculator(chart *typing.Chart, cpm *CPMTable) *Calculator {
	return &Calculator{chart: chart, cpm: cpm}
}

// Chart returns the type chart.
func (c *Calculator) Chart() *typing.Chart { return c.chart }

// Attributes selects the moves and defender of a CombatantMetrics. Nil fields
// keep the current value in SetAttributes.
type Attributes struct {
	Fast     *combatant.SourcedMove
	Charged  *combatant.SourcedMove
	Defender *combatant.Defender
}

type inputs struct {
	fast     combatant.SourcedMove
	charged  combatant.SourcedMove
	stats    Stats
	defender *combatant.Defender
}

type derived struct {
	atk, defn, stm float64
	dps, tdo, er   float64
}

// CombatantMetrics binds one attacker configuration to one defender and holds the
// derived stats and metrics. Derived values always reflect the current inputs:
// every setter recomputes before returning and leaves the instance unchanged on error.
type CombatantMetrics struct {
	calc *Calculator
	base *combatant.Combatant
	in   inputs
	out  derived
}

// New computes the metrics of base using fast and charged against defender.
//
// Precondition: calc, base, and defender must be non-nil.
// Postcondition: Returns a fully computed instance, or an error wrapping
// ErrDataIntegrity or ErrLevelOutOfRange.
func (c *Calculator) New(
	base *combatant.Combatant,
	fast, charged combatant.SourcedMove,
	stats Stats,
	defender *combatant.Defender,
) (*CombatantMetrics, error) {
	cm := &CombatantMetrics{calc: c, base: base}
	in := inputs{fast: fast, charged: charged, stats: stats, defender: defender}
	if err := cm.apply(in); err != nil {
		return nil, err
	}
	return cm, nil
}

// SetStats replaces IVs, level, and shadow flag and recomputes everything.
//
// Postcondition: on success all derived values match s; on error nothing changes.
func (cm *CombatantMetrics) SetStats(s Stats) error {
	in := cm.in
	in.stats = s
	return cm.apply(in)
}

// SetAttributes swaps moves and/or defender and recomputes everything.
//
// Postcondition: on success all derived values match the new inputs; on error
// nothing changes.
func (cm *CombatantMetrics) SetAttributes(a Attributes) error {
	in := cm.in
	if a.Fast != nil {
		in.fast = *a.Fast
	}
	if a.Charged != nil {
		in.charged = *a.Charged
	}
	if a.Defender != nil {
		in.defender = a.Defender
	}
	return cm.apply(in)
}

func (cm *CombatantMetrics) apply(in inputs) error {
	out, err := cm.calc.compute(cm.base, in)
	if err != nil {
		return fmt.Errorf("%s (%s/%s vs %s): %w",
			cm.base.Name, in.fast.Move.Name, in.charged.Move.Name, in.defender.Name(), err)
	}
	cm.in = in
	cm.out = out
	return nil
}

// Base returns the underlying catalog entry.
func (cm *CombatantMetrics) Base() *combatant.Combatant { return cm.base }

// Name returns the display name, prefixed "shadow " for shadow instances.
func (cm *CombatantMetrics) Name() string {
	if cm.in.stats.Shadow {
		return "shadow " + cm.base.Name
	}
	return cm.base.Name
}

// Types returns the attacker's typing pair.
func (cm *CombatantMetrics) Types() (typing.Type, typing.Type) { return cm.base.Types() }

// FastMove returns the fast move with its source tag.
func (cm *CombatantMetrics) FastMove() combatant.SourcedMove { return cm.in.fast }

// ChargedMove returns the charged move with its source tag.
func (cm *CombatantMetrics) ChargedMove() combatant.SourcedMove { return cm.in.charged }

// Stats returns the level, IVs and shadow flag the metrics were computed for.
func (cm *CombatantMetrics) Stats() Stats { return cm.in.stats }

// Shadow reports whether the shadow multipliers apply.
func (cm *CombatantMetrics) Shadow() bool { return cm.in.stats.Shadow }

// Defender returns the opponent the metrics were computed against.
func (cm *CombatantMetrics) Defender() *combatant.Defender { return cm.in.defender }

// EliteFast reports whether the fast move came from the elite set.
func (cm *CombatantMetrics) EliteFast() bool { return cm.in.fast.Source == combatant.Elite }

// EliteCharged reports whether the charged move came from the elite set.
func (cm *CombatantMetrics) EliteCharged() bool { return cm.in.charged.Source == combatant.Elite }

// Atk, Defn and Stm return the effective stats after level, IV and shadow
// adjustment.
func (cm *CombatantMetrics) Atk() float64 { return cm.out.atk }

// Defn is the effective defense.
func (cm *CombatantMetrics) Defn() float64 { return cm.out.defn }

// Stm is the effective stamina.
func (cm *CombatantMetrics) Stm() float64 { return cm.out.stm }

// DPS is damage per second against the defender.
func (cm *CombatantMetrics) DPS() float64 { return cm.out.dps }

// TDO is total damage output before fainting.
func (cm *CombatantMetrics) TDO() float64 { return cm.out.tdo }

// ER is the equivalent rating, (DPS^3 * TDO)^(1/4).
func (cm *CombatantMetrics) ER() float64 { return cm.out.er }

// CP returns the combat power, floored at 10.
func (cm *CombatantMetrics) CP() int {
	cp := int(cm.out.atk * math.Sqrt(cm.out.defn*cm.out.stm) / 10)
	if cp < 10 {
		return 10
	}
	return cp
}

func (c *Calculator) compute(base *combatant.Combatant, in inputs) (derived, error) {
	var out derived
	if err := in.stats.validate(); err != nil {
		return out, err
	}
	cpm, err := c.cpm.At(in.stats.Level)
	if err != nil {
		return out, err
	}
	out.atk = float64(base.BaseAttack+in.stats.AtkIV) * cpm
	out.defn = float64(base.BaseDefense+in.stats.DefnIV) * cpm
	out.stm = float64(base.BaseStamina+in.stats.HPIV) * cpm
	if in.stats.Shadow {
		out.atk *= ShadowAttackBonus
		out.defn *= ShadowDefensePenalty
	}

	x, y, err := c.intake(base, in, out.defn)
	if err != nil {
		return out, err
	}

	d := in.defender
	fast, charged := in.fast.Move, in.charged.Move
	if d.Defense <= 0 {
		return out, fmt.Errorf("defender defense %v: %w", d.Defense, ErrDataIntegrity)
	}
	fdmg := Damage(c.chart, fast, base, d, out.atk, d.Defense)
	cdmg := Damage(c.chart, charged, base, d, out.atk, d.Defense)
	fe := float64(fast.EnergyDelta)
	ce := float64(charged.EnergyDelta)
	fdur := fast.DurationS()
	cdur := charged.DurationS()
	if fdur <= 0 || cdur <= 0 {
		return out, fmt.Errorf("non-positive move duration: %w", ErrDataIntegrity)
	}

	if ce >= nukeEnergy {
		ce += 0.5*fe + 0.5*y*charged.DamageWindowStartS()
	}

	fdps := fdmg / fdur
	feps := fe / fdur
	cdps := cdmg / cdur
	ceps := ce / cdur
	if ceps+feps <= 0 || y <= 0 || out.stm <= 0 {
		return out, fmt.Errorf("zero energy rate or intake: %w", ErrDataIntegrity)
	}

	// Survival time is fixed before clamping; the clamped dps reuses it.
	st := out.stm / y
	dps0 := (fdps*ceps + cdps*feps) / (ceps + feps)
	dps := dps0 + ((cdps-fdps)/(ceps+feps))*(0.5-x/out.stm)*y
	tdo := dps * st

	if dps > cdps {
		dps = cdps
		tdo = dps * st
	} else if dps < fdps {
		dps = fdps
		tdo = dps * st
	}

	out.dps = dps
	out.tdo = tdo
	out.er = math.Pow(math.Pow(dps, 3)*tdo, 0.25)
	for _, v := range []float64{out.dps, out.tdo, out.er} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("non-finite metric: %w", ErrDataIntegrity)
		}
	}
	return out, nil
}

// intake estimates the energy/damage exposure per cycle (x) and the incoming
// DPS (y) the attacker faces.
func (c *Calculator) intake(base *combatant.Combatant, in inputs, attackerDefn float64) (x, y float64, err error) {
	fe := float64(in.fast.Move.EnergyDelta)
	ce := float64(in.charged.Move.EnergyDelta)
	d := in.defender
	if d.IsGeneric() {
		if attackerDefn <= 0 {
			return 0, 0, fmt.Errorf("attacker defense %v: %w", attackerDefn, ErrDataIntegrity)
		}
		return 0.5*ce + 0.5*fe, d.ReferenceDPS / attackerDefn, nil
	}

	fastMoves, chargedMoves := d.MoveCombinations()
	total := len(fastMoves) * len(chargedMoves)
	if total == 0 {
		return 0, 0, fmt.Errorf("defender %s has no usable moves: %w", d.Name(), ErrDataIntegrity)
	}

	var sumX, sumY float64
	for _, df := range fastMoves {
		for _, dc := range chargedMoves {
			fdmg := Damage(c.chart, df, d, base, d.Attack, attackerDefn)
			cdmg := Damage(c.chart, dc, d, base, d.Attack, attackerDefn)
			n := math.Max(1, 3*float64(dc.EnergyDelta)/100)
			fdur := df.DurationS() + defenderMoveLockout
			cdur := dc.DurationS() + defenderMoveLockout
			t := (n*fdmg + cdmg) / (n + 1)
			sumX += 0.5*ce + 0.5*fe + 0.5*t
			sumY += (n*fdmg + cdmg) / (n*fdur + cdur)
		}
	}
	return sumX / float64(total), sumY / float64(total), nil
}
