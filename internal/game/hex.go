package game

import (
	"math/rand"

	"github.com/Andromalius22/Nexora/internal/model"
)

// Hex :
// One cell of the galaxy grid, addressed by axial coordinates
// with the derived third component `s = -q - r`. Ownership and
// reservation carry player identifiers; the empty string means
// unowned or unreserved.
//
// Invariant: an owned tile is either reserved by its owner or
// not reserved at all.
type Hex struct {
	Q          int
	R          int
	S          int
	Feature    Feature
	Contents   *StarSystem
	OwnerID    string
	ReservedID string
	Protected  bool
}

// HexSnapshot : Persisted and over-the-wire form of a tile.
// The feature travels as its wire integer.
type HexSnapshot struct {
	Q          int                 `json:"q" msgpack:"q"`
	R          int                 `json:"r" msgpack:"r"`
	S          int                 `json:"s" msgpack:"s"`
	Feature    int                 `json:"feature" msgpack:"feature"`
	OwnerID    string              `json:"owner_id" msgpack:"owner_id"`
	Protected  bool                `json:"protected" msgpack:"protected"`
	ReservedID string              `json:"reserved_id" msgpack:"reserved_id"`
	Contents   *StarSystemSnapshot `json:"contents,omitempty" msgpack:"contents,omitempty"`
}

// NewHex :
// Generates a tile at the provided axial coordinates, drawing
// its feature from the weights and populating a star system
// when the draw lands on one.
//
// The `q` and `r` define the axial coordinates.
//
// The `weights` define the draw weights for the five features
// in wire order.
//
// The `reg` defines the content registry.
//
// The `rng` defines the random source to draw from.
//
// Returns the generated tile.
func NewHex(q int, r int, weights []float64, reg *model.Registry, rng *rand.Rand) *Hex {
	h := &Hex{
		Q: q,
		R: r,
		S: -q - r,
	}

	h.Feature = drawFeature(weights, rng)
	if h.Feature == StarSystemFeature {
		h.Contents = NewStarSystem(reg, rng)
	}

	return h
}

// drawFeature : Weighted draw among the five tile features.
func drawFeature(weights []float64, rng *rand.Rand) Feature {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	pick := rng.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return Feature(i)
		}
	}

	return EmptySpace
}

// ToSnapshot : Produces the persisted form of the tile.
func (h *Hex) ToSnapshot() *HexSnapshot {
	snap := &HexSnapshot{
		Q:          h.Q,
		R:          h.R,
		S:          h.S,
		Feature:    int(h.Feature),
		OwnerID:    h.OwnerID,
		Protected:  h.Protected,
		ReservedID: h.ReservedID,
	}

	if h.Contents != nil {
		snap.Contents = h.Contents.ToSnapshot()
	}

	return snap
}

// HexFromSnapshot :
// Rebuilds a tile from its snapshot, hydrating the contained
// star system when the tile carries one.
func HexFromSnapshot(snap *HexSnapshot) *Hex {
	h := &Hex{
		Q:          snap.Q,
		R:          snap.R,
		S:          snap.S,
		Feature:    FeatureFromInt(snap.Feature),
		OwnerID:    snap.OwnerID,
		Protected:  snap.Protected,
		ReservedID: snap.ReservedID,
	}

	if h.Feature == StarSystemFeature && snap.Contents != nil {
		h.Contents = StarSystemFromSnapshot(snap.Contents)
	}

	return h
}
