package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/google/uuid"
)

// GenerationParams :
// The knobs driving galaxy generation. Densities are percent
// values in the [0; 100] range.
type GenerationParams struct {
	Width         int
	Height        int
	StarDensity   int
	NebulaDensity int
}

// Galaxy :
// The hex grid owned by a single player. Tiles are laid out
// using pointy-topped axial coordinates. The galaxy owns its
// tiles which own their star systems; lookups walk the grid
// linearly since per-player counts are small.
//
// The `StartingHex` references the first star-system tile of
// a generated galaxy by its axial coordinates.
type Galaxy struct {
	ID          string
	Width       int
	Height      int
	Grid        []*Hex
	OwnerID     string
	Protected   bool
	StartingHex [2]int
}

// GalaxySnapshot : Persisted form of a galaxy, one JSON
// document per player.
type GalaxySnapshot struct {
	ID          string         `json:"id" msgpack:"id"`
	Width       int            `json:"width" msgpack:"width"`
	Height      int            `json:"height" msgpack:"height"`
	Grid        []*HexSnapshot `json:"grid" msgpack:"grid"`
	Owner       string         `json:"owner" msgpack:"owner"`
	Protected   bool           `json:"protected" msgpack:"protected"`
	StartingHex [2]int         `json:"starting_hex" msgpack:"starting_hex"`
}

// featureWeights :
// Derives the five feature draw weights from the density
// parameters. Star and nebula weights scale with their
// densities; the empty weight shrinks as density grows but
// never drops below a floor.
func featureWeights(params GenerationParams) []float64 {
	const (
		baseStar      = 0.30
		baseNebula    = 0.12
		baseAsteroid  = 0.14
		baseBlackHole = 0.04
		baseEmpty     = 0.10
	)

	starScale := 0.2 + float64(params.StarDensity)/100.0
	nebulaScale := 0.2 + float64(params.NebulaDensity)/100.0

	densityFactor := float64(params.StarDensity+params.NebulaDensity) / 200.0
	wEmpty := baseEmpty * (1.0 - 0.4*densityFactor)
	if wEmpty < 0.02 {
		wEmpty = 0.02
	}

	return []float64{
		baseStar * starScale,
		baseNebula * nebulaScale,
		baseAsteroid,
		baseBlackHole,
		wEmpty,
	}
}

// NewGalaxy :
// Generates a galaxy grid from the provided parameters. Tiles
// are unowned and unreserved; ownership assignment happens in
// `GenerateForPlayer`.
//
// The `params` define the generation knobs.
//
// The `reg` defines the content registry.
//
// The `rng` defines the random source to draw from.
//
// Returns the generated galaxy.
func NewGalaxy(params GenerationParams, reg *model.Registry, rng *rand.Rand) *Galaxy {
	g := &Galaxy{
		ID:     uuid.New().String(),
		Width:  params.Width,
		Height: params.Height,
	}

	weights := featureWeights(params)
	for q := 0; q < params.Width; q++ {
		qOffset := q / 2
		for r := -qOffset; r < params.Height-qOffset; r++ {
			g.Grid = append(g.Grid, NewHex(q, r, weights, reg, rng))
		}
	}

	return g
}

// GenerateForPlayer :
// Generates a galaxy for a player, retrying until the grid
// contains at least one star-system tile. The first such tile
// becomes the starting hex: it is owned by the player and all
// planets of its system start colonized. Every other tile is
// reserved for the player but unowned.
//
// The `playerID` defines the owning player identifier.
//
// The `params` define the generation knobs.
//
// The `reg` defines the content registry.
//
// The `rng` defines the random source to draw from.
//
// Returns the generated galaxy.
func GenerateForPlayer(playerID string, params GenerationParams, reg *model.Registry, rng *rand.Rand) *Galaxy {
	var galaxy *Galaxy
	var start *Hex

	for start == nil {
		galaxy = NewGalaxy(params, reg, rng)
		for _, h := range galaxy.Grid {
			if h.Feature == StarSystemFeature {
				start = h
				break
			}
		}
	}

	for _, h := range galaxy.Grid {
		if h == start {
			h.OwnerID = playerID
			h.ReservedID = playerID
			for _, planet := range h.Contents.Planets {
				planet.IsColonized = true
			}
		} else {
			h.OwnerID = ""
			h.ReservedID = playerID
		}
	}

	galaxy.OwnerID = playerID
	galaxy.Protected = true
	galaxy.StartingHex = [2]int{start.Q, start.R}

	return galaxy
}

// StartingSystem :
// Resolves the star system sitting on the starting hex.
//
// Returns the system or `nil` when the starting hex does not
// reference a star-system tile.
func (g *Galaxy) StartingSystem() *StarSystem {
	for _, h := range g.Grid {
		if h.Q == g.StartingHex[0] && h.R == g.StartingHex[1] && h.Contents != nil {
			return h.Contents
		}
	}
	return nil
}

// PlanetByGlobalID :
// Walks the grid looking for a planet with the provided
// global identifier.
//
// Returns the planet or `nil`.
func (g *Galaxy) PlanetByGlobalID(globalID int64) *Planet {
	for _, h := range g.Grid {
		if h.Contents == nil {
			continue
		}
		for _, p := range h.Contents.Planets {
			if p.GlobalID == globalID {
				return p
			}
		}
	}
	return nil
}

// ColonizedPlanets :
// Collects every colonized planet of the galaxy, in grid
// order.
func (g *Galaxy) ColonizedPlanets() []*Planet {
	planets := make([]*Planet, 0)
	for _, h := range g.Grid {
		if h.Contents == nil {
			continue
		}
		for _, p := range h.Contents.Planets {
			if p.IsColonized {
				planets = append(planets, p)
			}
		}
	}
	return planets
}

// ToSnapshot : Produces the persisted form of the galaxy.
func (g *Galaxy) ToSnapshot() *GalaxySnapshot {
	grid := make([]*HexSnapshot, len(g.Grid))
	for i, h := range g.Grid {
		grid[i] = h.ToSnapshot()
	}

	return &GalaxySnapshot{
		ID:          g.ID,
		Width:       g.Width,
		Height:      g.Height,
		Grid:        grid,
		Owner:       g.OwnerID,
		Protected:   g.Protected,
		StartingHex: g.StartingHex,
	}
}

// GalaxyFromSnapshot : Rebuilds a galaxy from its snapshot.
func GalaxyFromSnapshot(snap *GalaxySnapshot) *Galaxy {
	g := &Galaxy{
		ID:          snap.ID,
		Width:       snap.Width,
		Height:      snap.Height,
		OwnerID:     snap.Owner,
		Protected:   snap.Protected,
		StartingHex: snap.StartingHex,
	}

	for _, hs := range snap.Grid {
		g.Grid = append(g.Grid, HexFromSnapshot(hs))
	}

	return g
}

// SaveToFile :
// Writes the snapshot as an indented JSON document, creating
// parent directories as needed. Snapshots are detached from
// the live galaxy so callers may write them without holding
// the owning player's lock.
//
// The `path` defines the destination file.
//
// Returns any error.
func (s *GalaxySnapshot) SaveToFile(path string) error {
	if dir := filepath.Dir(path); len(dir) > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory for galaxy file (err: %v)", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize galaxy (err: %v)", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write galaxy file (err: %v)", err)
	}

	return nil
}

// SaveToFile :
// Snapshots the galaxy and writes it as an indented JSON
// document.
//
// The `path` defines the destination file.
//
// Returns any error.
func (g *Galaxy) SaveToFile(path string) error {
	return g.ToSnapshot().SaveToFile(path)
}

// GalaxyFromFile :
// Loads a galaxy snapshot from a JSON document.
//
// The `path` defines the file to read.
//
// Returns the rebuilt galaxy along with any error.
func GalaxyFromFile(path string) (*Galaxy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap GalaxySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("cannot parse galaxy file %s (err: %v)", path, err)
	}

	return GalaxyFromSnapshot(&snap), nil
}
