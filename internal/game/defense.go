package game

import (
	"github.com/Andromalius22/Nexora/internal/model"
)

// Defense layers, from the outermost to the ground. The
// content catalogs reference them by name.
const (
	LayerDeepSpace    = "DEEP_SPACE"
	LayerOrbital      = "ORBITAL"
	LayerHighAltitude = "HIGH_ALTITUDE"
	LayerLowAltitude  = "LOW_ALTITUDE"
	LayerGround       = "GROUND"
)

// DefenseLayers : The ordered list of layers, used when a
// deterministic traversal of the bag is needed.
var DefenseLayers = []string{
	LayerDeepSpace,
	LayerOrbital,
	LayerHighAltitude,
	LayerLowAltitude,
	LayerGround,
}

// PlanetDefense :
// The layered bag of defense units deployed on a planet. The
// bag stores unit identifiers only; unit characteristics are
// always resolved against the content registry so that the
// persisted form stays small.
//
// The `Units` maps a layer name to the multiset of deployed
// unit identifiers.
type PlanetDefense struct {
	Units map[string][]string `json:"units" msgpack:"units"`
}

// NewPlanetDefense :
// Creates an empty defense bag.
//
// Returns the built-in bag.
func NewPlanetDefense() *PlanetDefense {
	return &PlanetDefense{
		Units: make(map[string][]string),
	}
}

// AddUnit :
// Deploys one unit of the provided catalog entry at its
// layer.
//
// The `unit` defines the catalog entry to deploy.
func (d *PlanetDefense) AddUnit(unit *model.DefenseUnitDesc) {
	d.Units[unit.Layer] = append(d.Units[unit.Layer], unit.ID)
}

// RemoveUnit :
// Removes one unit with the provided identifier from the
// first layer containing it.
//
// The `unitID` defines the identifier of the unit to remove.
//
// Returns whether a unit was removed.
func (d *PlanetDefense) RemoveUnit(unitID string) bool {
	for _, layer := range DefenseLayers {
		ids := d.Units[layer]
		for i, id := range ids {
			if id == unitID {
				d.Units[layer] = append(ids[:i], ids[i+1:]...)
				return true
			}
		}
	}

	return false
}

// TotalDefenseValue :
// Sums the defense value of the deployed units, resolved
// against the registry. An empty layer name sums the whole
// bag; otherwise only the requested layer is considered.
//
// The `reg` defines the content registry to resolve units.
//
// The `layer` defines the optional layer to restrict to.
//
// Returns the total defense value.
func (d *PlanetDefense) TotalDefenseValue(reg *model.Registry, layer string) float64 {
	total := 0.0

	sum := func(ids []string) {
		for _, id := range ids {
			if unit, ok := reg.DefenseUnits[id]; ok {
				total += unit.DefenseValue
			}
		}
	}

	if len(layer) > 0 {
		sum(d.Units[layer])
		return total
	}

	for _, ids := range d.Units {
		sum(ids)
	}

	return total
}

// UnitCounts :
// Counts the deployed units per layer.
//
// Returns the layer to count mapping.
func (d *PlanetDefense) UnitCounts() map[string]int {
	counts := make(map[string]int)
	for layer, ids := range d.Units {
		counts[layer] = len(ids)
	}
	return counts
}
