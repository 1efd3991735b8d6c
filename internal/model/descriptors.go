package model

// Cost :
// Describes the price of an item from the content catalogs. The
// recognized keys of the catalog documents are mapped to typed
// fields; resources are keyed by resource identifier.
//
// The `Credits` defines the flat monetary part of the cost.
//
// The `Industry` defines the amount of industry points needed
// to produce the item. It drives the build time derivation.
//
// The `Resources` defines the per-resource part of the cost.
type Cost struct {
	Credits   float64            `json:"credits,omitempty" msgpack:"credits,omitempty"`
	Industry  float64            `json:"industry,omitempty" msgpack:"industry,omitempty"`
	Resources map[string]float64 `json:"resources,omitempty" msgpack:"resources,omitempty"`
}

// IndustryOrDefault :
// Returns the industry part of the cost, falling back to the
// conventional default of `1000` when the document does not
// define one.
func (c Cost) IndustryOrDefault() float64 {
	if c.Industry <= 0 {
		return 1000
	}
	return c.Industry
}

// PlanetTypeDesc :
// Describes a planet type as defined in the content catalogs.
//
// The `ID` defines the identifier of the planet type, unique
// across all categories.
//
// The `Name` defines the display name of the planet type.
//
// The `Rarity` defines how often this type of planet appears
// when generating star systems.
//
// The `PossibleClimates` defines the climates a planet of this
// type can be assigned at generation time.
//
// The `DefenseBaseBonus` defines the base multiplier applied
// to the defense value of planets of this type.
//
// The `Habitability` defines how suited the planet is for a
// population, in the [0; 1] range.
//
// The `ColonizationCost` defines the price to pay to colonize
// a planet of this type.
type PlanetTypeDesc struct {
	ID               string   `json:"id" msgpack:"id" validate:"required"`
	Name             string   `json:"name" msgpack:"name"`
	Description      string   `json:"description,omitempty" msgpack:"description,omitempty"`
	Rarity           string   `json:"rarity,omitempty" msgpack:"rarity,omitempty" validate:"omitempty,oneof=common uncommon rare very_rare"`
	PossibleClimates []string `json:"possible_climates,omitempty" msgpack:"possible_climates,omitempty"`
	DefenseBaseBonus float64  `json:"defense_base_bonus,omitempty" msgpack:"defense_base_bonus,omitempty"`
	Habitability     float64  `json:"habitability,omitempty" msgpack:"habitability,omitempty"`
	ColonizationCost Cost     `json:"colonization_cost,omitempty" msgpack:"colonization_cost,omitempty"`
}

// ResourceDesc :
// Describes a resource as defined in the content catalogs. A
// resource with no `Inputs` is extractable (mined) while a
// resource with inputs is refinable: the production step routes
// on this distinction alone.
//
// The `ResourceType` defines the free-form family of the
// resource (e.g. `ore`, `gas`, `liquid`, `organics`).
//
// The `RefinementLevel` scales the extraction yield through the
// refinement multipliers table.
//
// The `Inputs` maps input resource identifiers to the ratio of
// input consumed per unit of raw refine yield.
//
// The `Yield` defines the per-unit output factor of the
// resource. A missing value is treated as `1.0`.
//
// The `PlanetTypes` lists the planet types on which the
// resource can receive a generation-time bonus.
type ResourceDesc struct {
	ID              string             `json:"id" msgpack:"id" validate:"required"`
	Name            string             `json:"name" msgpack:"name"`
	Description     string             `json:"description,omitempty" msgpack:"description,omitempty"`
	ResourceType    string             `json:"resource_type,omitempty" msgpack:"resource_type,omitempty"`
	RefinementLevel string             `json:"refinement_level,omitempty" msgpack:"refinement_level,omitempty" validate:"omitempty,oneof=raw processed advanced"`
	Inputs          map[string]float64 `json:"inputs,omitempty" msgpack:"inputs,omitempty"`
	Yield           float64            `json:"yield,omitempty" msgpack:"yield,omitempty"`
	PlanetTypes     []string           `json:"planet_types,omitempty" msgpack:"planet_types,omitempty"`
}

// YieldOrDefault :
// Returns the yield factor of the resource, defaulting to `1.0`
// when the document does not define one.
func (r *ResourceDesc) YieldOrDefault() float64 {
	if r.Yield <= 0 {
		return 1.0
	}
	return r.Yield
}

// Refinable :
// A resource is refinable when producing it consumes inputs.
func (r *ResourceDesc) Refinable() bool {
	return len(r.Inputs) > 0
}

// BuildingDesc :
// Describes a building as defined in the content catalogs.
//
// The `SlotType` defines the type assigned to the slot hosting
// the building (e.g. `farm`, `mine`, `refine`, `industry`).
//
// The `BaseYield` defines the per-slot production factor used
// by the production step. A missing value is treated as `1.0`.
//
// The `Upkeep` maps resource identifiers to the periodic cost
// of keeping the building running.
type BuildingDesc struct {
	ID          string             `json:"id" msgpack:"id" validate:"required"`
	Name        string             `json:"name" msgpack:"name"`
	Description string             `json:"description,omitempty" msgpack:"description,omitempty"`
	SlotType    string             `json:"slot_type,omitempty" msgpack:"slot_type,omitempty"`
	Cost        Cost               `json:"cost,omitempty" msgpack:"cost,omitempty"`
	BaseYield   float64            `json:"base_yield,omitempty" msgpack:"base_yield,omitempty"`
	Upkeep      map[string]float64 `json:"upkeep,omitempty" msgpack:"upkeep,omitempty"`
}

// BaseYieldOrDefault :
// Returns the base yield of the building, defaulting to `1.0`
// when the document does not define one.
func (b *BuildingDesc) BaseYieldOrDefault() float64 {
	if b.BaseYield <= 0 {
		return 1.0
	}
	return b.BaseYield
}

// DefenseUnitDesc :
// Describes a defense unit as defined in the content catalogs.
//
// The `Layer` defines at which altitude layer the unit operates
// once deployed on a planet.
//
// The `DefenseValue` defines the contribution of one unit to
// the total defense value of its planet.
//
// The `PowerUse` defines the energy drained by one unit.
type DefenseUnitDesc struct {
	ID           string             `json:"id" msgpack:"id" validate:"required"`
	Name         string             `json:"name" msgpack:"name"`
	Description  string             `json:"description,omitempty" msgpack:"description,omitempty"`
	Layer        string             `json:"layer,omitempty" msgpack:"layer,omitempty" validate:"omitempty,oneof=DEEP_SPACE ORBITAL HIGH_ALTITUDE LOW_ALTITUDE GROUND"`
	DefenseValue float64            `json:"defense_value,omitempty" msgpack:"defense_value,omitempty"`
	PowerUse     float64            `json:"power_use,omitempty" msgpack:"power_use,omitempty"`
	Cost         Cost               `json:"cost,omitempty" msgpack:"cost,omitempty"`
	Upkeep       map[string]float64 `json:"upkeep,omitempty" msgpack:"upkeep,omitempty"`
}

// PlanetFeatureDesc :
// Describes a planet feature as defined in the content catalogs.
// Features are drawn at planet generation time among the entries
// whose `PlanetType` matches the generated planet.
//
// The `Effects` maps statistic names to additive modifiers.
type PlanetFeatureDesc struct {
	ID          string             `json:"id" msgpack:"id" validate:"required"`
	Name        string             `json:"name" msgpack:"name"`
	Description string             `json:"description,omitempty" msgpack:"description,omitempty"`
	PlanetType  string             `json:"planet_type,omitempty" msgpack:"planet_type,omitempty"`
	Effects     map[string]float64 `json:"effects,omitempty" msgpack:"effects,omitempty"`
}

// OffenseUnitDesc :
// Describes an offense unit as defined in the content catalogs.
// Offense units are catalog-only in the simulation core: combat
// resolution is not part of the server.
type OffenseUnitDesc struct {
	ID          string  `json:"id" msgpack:"id" validate:"required"`
	Name        string  `json:"name" msgpack:"name"`
	Description string  `json:"description,omitempty" msgpack:"description,omitempty"`
	AttackValue float64 `json:"attack_value,omitempty" msgpack:"attack_value,omitempty"`
	Cost        Cost    `json:"cost,omitempty" msgpack:"cost,omitempty"`
}

// ShipDesc :
// Describes a ship as defined in the content catalogs. Ships are
// catalog-only in the simulation core.
type ShipDesc struct {
	ID            string  `json:"id" msgpack:"id" validate:"required"`
	Name          string  `json:"name" msgpack:"name"`
	Description   string  `json:"description,omitempty" msgpack:"description,omitempty"`
	Speed         float64 `json:"speed,omitempty" msgpack:"speed,omitempty"`
	CargoCapacity float64 `json:"cargo_capacity,omitempty" msgpack:"cargo_capacity,omitempty"`
	Cost          Cost    `json:"cost,omitempty" msgpack:"cost,omitempty"`
}
