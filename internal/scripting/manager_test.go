package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/raidrank/internal/game/combatant"
	"github.com/cory-johannsen/raidrank/internal/game/patch"
	"github.com/cory-johannsen/raidrank/internal/scripting"
)

func newTestManager(t testing.TB, limit int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewManager(limit, zap.New(core)), logs
}

func writeScripts(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	return dir
}

func TestApplyDir_RegistersPatches(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := writeScripts(t, map[string]string{
		"10_grants.lua": `
			patch.grant_elite_charged("kyogre", "origin pulse")
			patch.grant_elite_fast("groudon", "mud shot")
			patch.preview_charged("inteleon", "hydro cannon")
			patch.exclude("V0382_POKEMON_KYOGRE_PRIMAL")
		`,
		"README.md": "not a script",
	})
	set := &patch.Set{}
	n, err := mgr.ApplyDir(dir, set)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, set.EliteGrants, 2)
	assert.Equal(t, patch.Grant{Names: []string{"kyogre"}, EliteCharged: []string{"origin pulse"}}, set.EliteGrants[0])
	assert.Equal(t, patch.Grant{Names: []string{"groudon"}, EliteFast: []string{"mud shot"}}, set.EliteGrants[1])
	require.Len(t, set.RosterPreviews, 1)
	assert.Equal(t, []string{"hydro cannon"}, set.RosterPreviews[0].EliteCharged)
	assert.False(t, set.Exclusions.RaidEligible(&combatant.Combatant{TemplateID: "V0382_POKEMON_KYOGRE_PRIMAL"}))
}

func TestApplyDir_LexicographicOrder(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := writeScripts(t, map[string]string{
		"b.lua": `patch.grant_elite_charged(target, "second")`,
		"a.lua": `target = "mewtwo"; patch.grant_elite_charged(target, "first")`,
	})
	set := &patch.Set{}
	_, err := mgr.ApplyDir(dir, set)
	require.NoError(t, err)
	require.Len(t, set.EliteGrants, 2)
	assert.Equal(t, []string{"first"}, set.EliteGrants[0].EliteCharged)
	assert.Equal(t, []string{"mewtwo"}, set.EliteGrants[1].Names)
}

func TestApplyDir_Errors(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := writeScripts(t, map[string]string{"bad.lua": `patch.exclude()`})
	_, err := mgr.ApplyDir(dir, &patch.Set{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lua")

	_, err = mgr.ApplyDir(filepath.Join(t.TempDir(), "missing"), &patch.Set{})
	assert.Error(t, err)

	dir = writeScripts(t, map[string]string{"escape.lua": `os.exit(1)`})
	_, err = mgr.ApplyDir(dir, &patch.Set{})
	assert.Error(t, err)
}

func TestApplyDir_InstructionLimit(t *testing.T) {
	mgr, _ := newTestManager(t, 1000)
	dir := writeScripts(t, map[string]string{"loop.lua": `while true do end`})
	_, err := mgr.ApplyDir(dir, &patch.Set{})
	assert.ErrorIs(t, err, scripting.ErrInstructionLimit)

	dir = writeScripts(t, map[string]string{"bad.lua": `error("boom")`})
	_, err = mgr.ApplyDir(dir, &patch.Set{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, scripting.ErrInstructionLimit)
}

func TestApplyDir_LogModule(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	dir := writeScripts(t, map[string]string{"log.lua": `log.info("hello"); log.warn("careful")`})
	_, err := mgr.ApplyDir(dir, &patch.Set{})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("lua").FilterField(zap.String("msg", "hello")).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestApplyDir_BundledScripts(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	set := patch.Default()
	n, err := mgr.ApplyDir("../../content/scripts/patches", set)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, patch.Default(), set, "bundled scripts leave the built-in set unchanged")
}
