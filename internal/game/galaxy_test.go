package game

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() GenerationParams {
	return GenerationParams{
		Width:         8,
		Height:        8,
		StarDensity:   50,
		NebulaDensity: 20,
	}
}

func TestFeatureWeights(t *testing.T) {
	weights := featureWeights(testParams())
	require.Len(t, weights, 5)

	assert.InDelta(t, 0.30*0.7, weights[StarSystemFeature], 1e-9)
	assert.InDelta(t, 0.12*0.4, weights[Nebula], 1e-9)
	assert.InDelta(t, 0.14, weights[AsteroidField], 1e-9)
	assert.InDelta(t, 0.04, weights[BlackHole], 1e-9)
	assert.InDelta(t, 0.10*(1.0-0.4*0.35), weights[EmptySpace], 1e-9)
}

func TestFeatureWeightsEmptyFloor(t *testing.T) {
	params := testParams()
	params.StarDensity = 100
	params.NebulaDensity = 100

	weights := featureWeights(params)
	assert.GreaterOrEqual(t, weights[EmptySpace], 0.02)
}

func TestNewGalaxyGrid(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(7))
	params := testParams()

	g := NewGalaxy(params, reg, rng)

	assert.Len(t, g.Grid, params.Width*params.Height)

	for _, h := range g.Grid {
		assert.Equal(t, -h.Q-h.R, h.S)
		assert.GreaterOrEqual(t, h.Q, 0)
		assert.Less(t, h.Q, params.Width)

		if h.Feature == StarSystemFeature {
			require.NotNil(t, h.Contents)
			count := len(h.Contents.Planets)
			assert.GreaterOrEqual(t, count, 1)
			assert.LessOrEqual(t, count, 4)
		} else {
			assert.Nil(t, h.Contents)
		}
	}
}

func TestGenerateForPlayer(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(13))

	g := GenerateForPlayer("player-1", testParams(), reg, rng)

	assert.Equal(t, "player-1", g.OwnerID)
	assert.True(t, g.Protected)

	owned := 0
	stars := 0
	for _, h := range g.Grid {
		assert.Equal(t, "player-1", h.ReservedID)
		if h.Feature == StarSystemFeature {
			stars++
		}
		if len(h.OwnerID) > 0 {
			owned++
			assert.Equal(t, "player-1", h.OwnerID)
			assert.Equal(t, [2]int{h.Q, h.R}, g.StartingHex)
		}
	}

	assert.GreaterOrEqual(t, stars, 1)
	assert.Equal(t, 1, owned)

	start := g.StartingSystem()
	require.NotNil(t, start)
	for _, p := range start.Planets {
		assert.True(t, p.IsColonized)
	}
}

func TestColonizedPlanetsStartAtHome(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(21))

	g := GenerateForPlayer("player-1", testParams(), reg, rng)

	start := g.StartingSystem()
	require.NotNil(t, start)

	colonized := g.ColonizedPlanets()
	assert.Len(t, colonized, len(start.Planets))
}

func TestPlanetByGlobalID(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(34))

	g := GenerateForPlayer("player-1", testParams(), reg, rng)

	target := g.StartingSystem().Planets[0]
	found := g.PlanetByGlobalID(target.GlobalID)
	assert.Same(t, target, found)

	assert.Nil(t, g.PlanetByGlobalID(-1))
}

func TestGalaxySnapshotRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(55))

	g := GenerateForPlayer("player-1", testParams(), reg, rng)
	rebuilt := GalaxyFromSnapshot(g.ToSnapshot())

	assert.Equal(t, g.ID, rebuilt.ID)
	assert.Equal(t, g.OwnerID, rebuilt.OwnerID)
	assert.Equal(t, g.StartingHex, rebuilt.StartingHex)
	require.Len(t, rebuilt.Grid, len(g.Grid))

	for i, h := range g.Grid {
		r := rebuilt.Grid[i]
		assert.Equal(t, h.Q, r.Q)
		assert.Equal(t, h.R, r.R)
		assert.Equal(t, h.Feature, r.Feature)
		assert.Equal(t, h.OwnerID, r.OwnerID)
		assert.Equal(t, h.ReservedID, r.ReservedID)
	}

	start := rebuilt.StartingSystem()
	require.NotNil(t, start)
	assert.Equal(t, g.StartingSystem().ID, start.ID)
	assert.Len(t, start.Planets, len(g.StartingSystem().Planets))
}

func TestGalaxyFileRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(89))
	path := filepath.Join(t.TempDir(), "galaxies", "player-1.json")

	g := GenerateForPlayer("player-1", testParams(), reg, rng)
	require.NoError(t, g.SaveToFile(path))

	loaded, err := GalaxyFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, g.ID, loaded.ID)
	assert.Equal(t, g.OwnerID, loaded.OwnerID)
	assert.Len(t, loaded.Grid, len(g.Grid))

	// Planet state survives persistence.
	original := g.StartingSystem().Planets[0]
	restored := loaded.PlanetByGlobalID(original.GlobalID)
	require.NotNil(t, restored)
	assert.Equal(t, original.Name, restored.Name)
	assert.True(t, restored.IsColonized)
}

func TestGalaxyFromFileMissing(t *testing.T) {
	_, err := GalaxyFromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestFeatureWireValues(t *testing.T) {
	assert.Equal(t, Feature(0), StarSystemFeature)
	assert.Equal(t, Feature(4), EmptySpace)

	assert.Equal(t, Nebula, FeatureFromInt(1))
	assert.Equal(t, EmptySpace, FeatureFromInt(42))
	assert.Equal(t, EmptySpace, FeatureFromInt(-1))
}
