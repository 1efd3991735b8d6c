package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Trace(level logger.Severity, module string, message string) {}

func writeCatalog(t *testing.T, dir string, file string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	writeCatalog(t, dir, "resources.json", `[
		{"id": "basaltic_ore", "name": "Basaltic Ore", "resource_type": "ore", "refinement_level": "raw"},
		{"id": "metal_bars", "name": "Metal Bars", "resource_type": "ore", "refinement_level": "processed", "inputs": {"basaltic_ore": 1}, "yield": 1.0},
		{"id": "organifera", "name": "Organifera", "resource_type": "organics", "refinement_level": "raw"}
	]`)
	writeCatalog(t, dir, "buildings.json", `[
		{"id": "extraction_rig", "name": "Extraction Rig", "slot_type": "mine", "cost": {"industry": 1000}}
	]`)
	writeCatalog(t, dir, "defense_units.json", `[
		{"id": "orbital_battery", "name": "Orbital Battery", "layer": "ORBITAL", "defense_value": 90}
	]`)
	writeCatalog(t, dir, "planet_types.json", `[
		{"id": "barren", "name": "Barren World", "rarity": "common", "possible_climates": ["drought"]}
	]`)

	reg, err := LoadRegistry(dir, testLogger{})
	require.NoError(t, err)

	assert.Len(t, reg.Resources, 3)
	assert.Len(t, reg.Buildings, 1)
	assert.Len(t, reg.DefenseUnits, 1)
	assert.Len(t, reg.Planets, 1)

	// Missing catalog files only warn.
	assert.Empty(t, reg.Ships)
	assert.Empty(t, reg.PlanetFeatures)

	entry, ok := reg.Item("metal_bars")
	require.True(t, ok)
	res, ok := entry.(*ResourceDesc)
	require.True(t, ok)
	assert.True(t, res.Refinable())
}

func TestLoadRegistryMissingIDFails(t *testing.T) {
	dir := t.TempDir()

	writeCatalog(t, dir, "resources.json", `[
		{"name": "Nameless Ore", "resource_type": "ore"}
	]`)

	_, err := LoadRegistry(dir, testLogger{})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoadRegistryInvalidEnumFails(t *testing.T) {
	dir := t.TempDir()

	writeCatalog(t, dir, "defense_units.json", `[
		{"id": "weird_unit", "name": "Weird Unit", "layer": "UNDERGROUND"}
	]`)

	_, err := LoadRegistry(dir, testLogger{})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestFarmResource(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "zymogel",
		Name:         "Zymogel",
		ResourceType: "organics",
	}, nil))
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "algafiber",
		Name:         "Algafiber",
		ResourceType: "organics",
	}, nil))
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "basaltic_ore",
		Name:         "Basaltic Ore",
		ResourceType: "ore",
	}, nil))

	// First raw organics resource in identifier order.
	assert.Equal(t, "algafiber", reg.FarmResource())
}

func TestFarmResourceFallback(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "basaltic_ore",
		Name:         "Basaltic Ore",
		ResourceType: "ore",
	}, nil))

	assert.Equal(t, DefaultFarmResource, reg.FarmResource())
}

func TestFarmResourceSkipsRefinable(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "alga_paste",
		Name:         "Alga Paste",
		ResourceType: "organics",
		Inputs:       map[string]float64{"algafiber": 1},
	}, nil))
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:           "zymogel",
		Name:         "Zymogel",
		ResourceType: "organics",
	}, nil))

	assert.Equal(t, "zymogel", reg.FarmResource())
}

func TestSerializeRoundTrip(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddResource(&ResourceDesc{
		ID:              "metal_bars",
		Name:            "Metal Bars",
		ResourceType:    "ore",
		RefinementLevel: "processed",
		Inputs:          map[string]float64{"basaltic_ore": 1},
		Yield:           1.2,
	}, nil))
	require.NoError(t, reg.AddBuilding(&BuildingDesc{
		ID:       "extraction_rig",
		Name:     "Extraction Rig",
		SlotType: "mine",
		Cost:     Cost{Industry: 1000},
	}, nil))

	wire := reg.Serialize()
	require.Contains(t, wire, "resources")
	require.Contains(t, wire, "buildings")
	assert.NotContains(t, wire, "all")

	rebuilt, err := FromSerialized(wire)
	require.NoError(t, err)

	res, ok := rebuilt.Resources["metal_bars"]
	require.True(t, ok)
	assert.Equal(t, 1.2, res.Yield)
	assert.Equal(t, map[string]float64{"basaltic_ore": 1}, res.Inputs)

	b, ok := rebuilt.Buildings["extraction_rig"]
	require.True(t, ok)
	assert.Equal(t, "mine", b.SlotType)

	// Aggregate lookup is rebuilt too.
	_, ok = rebuilt.Item("extraction_rig")
	assert.True(t, ok)
}
