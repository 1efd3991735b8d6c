package game

// Patent :
// A transferable production bonus owned by a player. A patent
// multiplies yields of a production category when its filters
// match the resource being produced. Patents are provided to
// the production step by the caller; a planet never owns them.
//
// The `ID` defines the identifier of the patent.
//
// The `TargetBuildingType` defines the production category the
// patent applies to (`mine`, `refine`, `organics`).
//
// The `ResourceTypes` restricts the patent to resources whose
// `resource_type` is listed; empty means no restriction.
//
// The `RefinementLevels` restricts the patent to resources of
// the listed refinement levels; empty means no restriction.
//
// The `Multiplier` scales the yield when the patent applies.
type Patent struct {
	ID                 string   `json:"id" msgpack:"id"`
	TargetBuildingType string   `json:"target_building_type" msgpack:"target_building_type"`
	ResourceTypes      []string `json:"resource_types,omitempty" msgpack:"resource_types,omitempty"`
	RefinementLevels   []string `json:"refinement_levels,omitempty" msgpack:"refinement_levels,omitempty"`
	Multiplier         float64  `json:"multiplier" msgpack:"multiplier"`
}

// appliesTo :
// Checks whether the patent matches a production of the given
// category for a resource with the provided characteristics.
func (p *Patent) appliesTo(target string, resourceType string, refinementLevel string) bool {
	if p.TargetBuildingType != target {
		return false
	}

	if len(p.ResourceTypes) > 0 {
		found := false
		for _, rt := range p.ResourceTypes {
			if rt == resourceType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(p.RefinementLevels) > 0 {
		found := false
		for _, rl := range p.RefinementLevels {
			if rl == refinementLevel {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// ApplyPatents :
// Applies the matching patents to a yield amount.
//
// The `amount` defines the yield before bonuses.
//
// The `patents` defines the collection to filter.
//
// The `target` defines the production category.
//
// The `resourceType` and `refinementLevel` describe the
// resource being produced.
//
// Returns the boosted yield.
func ApplyPatents(amount float64, patents []*Patent, target string, resourceType string, refinementLevel string) float64 {
	for _, p := range patents {
		if p.appliesTo(target, resourceType, refinementLevel) && p.Multiplier > 0 {
			amount *= p.Multiplier
		}
	}
	return amount
}
