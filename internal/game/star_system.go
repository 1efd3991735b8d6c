package game

import (
	"fmt"
	"math/rand"

	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/google/uuid"
)

// StarSystem :
// The container of planets owned by a star-system tile. The
// back-reference from planet to system is not persisted and
// gets rebuilt on hydration.
//
// The `ID` identifies the system; it serves as the home
// system id handed to a player at creation.
type StarSystem struct {
	ID      string
	Name    string
	Planets []*Planet
}

// StarSystemSnapshot : Persisted form of a star system.
type StarSystemSnapshot struct {
	ID      string            `json:"id" msgpack:"id"`
	Name    string            `json:"name" msgpack:"name"`
	Planets []*PlanetSnapshot `json:"planets" msgpack:"planets"`
}

// NewStarSystem :
// Generates a star system with one to four planets.
//
// The `reg` defines the content registry.
//
// The `rng` defines the random source to draw from.
//
// Returns the generated system.
func NewStarSystem(reg *model.Registry, rng *rand.Rand) *StarSystem {
	sys := &StarSystem{
		ID:   uuid.New().String(),
		Name: fmt.Sprintf("System-%d", 100+rng.Intn(900)),
	}

	count := 1 + rng.Intn(4)
	for i := 0; i < count; i++ {
		planet := NewPlanet(reg, rng)
		planet.ID = i
		sys.Planets = append(sys.Planets, planet)
	}

	return sys
}

// ToSnapshot : Produces the persisted form of the system.
func (s *StarSystem) ToSnapshot() *StarSystemSnapshot {
	planets := make([]*PlanetSnapshot, len(s.Planets))
	for i, p := range s.Planets {
		planets[i] = p.ToSnapshot()
	}

	return &StarSystemSnapshot{
		ID:      s.ID,
		Name:    s.Name,
		Planets: planets,
	}
}

// StarSystemFromSnapshot :
// Rebuilds a star system and its planets from a snapshot.
func StarSystemFromSnapshot(snap *StarSystemSnapshot) *StarSystem {
	sys := &StarSystem{
		ID:   snap.ID,
		Name: snap.Name,
	}

	for _, ps := range snap.Planets {
		sys.Planets = append(sys.Planets, PlanetFromSnapshot(ps))
	}

	return sys
}
