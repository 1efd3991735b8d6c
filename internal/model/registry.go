package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// Registry :
// In-memory catalog of every content item known to the game:
// planet types, resources, buildings, defense units, offense
// units, ships and planet features. The registry is loaded from
// a directory of JSON documents at startup and is immutable
// afterwards, which allows every task of the server to read it
// without locking.
//
// Each category maps the item identifier to its descriptor. The
// `all` aggregate provides a lookup across categories; it is
// rebuilt on load and never serialized.
type Registry struct {
	Planets        map[string]*PlanetTypeDesc
	Resources      map[string]*ResourceDesc
	Buildings      map[string]*BuildingDesc
	DefenseUnits   map[string]*DefenseUnitDesc
	PlanetFeatures map[string]*PlanetFeatureDesc
	OffenseUnits   map[string]*OffenseUnitDesc
	Ships          map[string]*ShipDesc

	all map[string]interface{}
}

// ErrInvalidCatalog : Indicates that a content catalog could not
// be loaded, typically because an entry misses its identifier.
var ErrInvalidCatalog = fmt.Errorf("invalid content catalog")

// catalogFiles : Fixed mapping from the file names expected in
// the content directory to the category they populate.
var catalogFiles = []struct {
	file     string
	category string
}{
	{"buildings.json", "buildings"},
	{"defense_units.json", "defense_units"},
	{"planet_types.json", "planets"},
	{"planet_features.json", "planet_features"},
	{"resources.json", "resources"},
	{"offense_units.json", "offense_units"},
	{"ships.json", "ships"},
}

// DefaultFarmResource : Fallback identifier of the resource
// produced by farm slots when the catalog does not define a raw
// resource of type `organics`.
const DefaultFarmResource = "organifera"

// NewRegistry :
// Creates an empty registry with every category initialized.
// Mostly useful for tests and for the deserialization path; the
// server uses `LoadRegistry`.
//
// Returns the built-in registry.
func NewRegistry() *Registry {
	return &Registry{
		Planets:        make(map[string]*PlanetTypeDesc),
		Resources:      make(map[string]*ResourceDesc),
		Buildings:      make(map[string]*BuildingDesc),
		DefenseUnits:   make(map[string]*DefenseUnitDesc),
		PlanetFeatures: make(map[string]*PlanetFeatureDesc),
		OffenseUnits:   make(map[string]*OffenseUnitDesc),
		Ships:          make(map[string]*ShipDesc),

		all: make(map[string]interface{}),
	}
}

// LoadRegistry :
// Loads all catalog files from the provided content directory.
// The file-to-category mapping is fixed; missing files produce
// a warning and leave the category empty. Every entry must have
// a unique non-empty `id`: a missing identifier fails the load
// loudly while a collision across categories only warns, as it
// can be legitimate for mirrored content.
//
// The `dir` defines the content directory to load from.
//
// The `log` defines a way to notify from the loading process.
//
// Returns the loaded registry along with any error.
func LoadRegistry(dir string, log logger.Logger) (*Registry, error) {
	reg := NewRegistry()
	validate := validator.New()

	for _, desc := range catalogFiles {
		path := filepath.Join(dir, desc.file)

		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Trace(logger.Warning, "registry", fmt.Sprintf("Missing catalog file %s", desc.file))
				continue
			}
			return nil, fmt.Errorf("%w: cannot read %s (err: %v)", ErrInvalidCatalog, desc.file, err)
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s must contain a list of entries (err: %v)", ErrInvalidCatalog, desc.file, err)
		}

		for _, entry := range entries {
			if err := reg.addRaw(desc.category, entry, validate, log); err != nil {
				return nil, fmt.Errorf("%w: in %s: %v", ErrInvalidCatalog, desc.file, err)
			}
		}
	}

	reg.validate(log)
	log.Trace(logger.Info, "registry", fmt.Sprintf("Loaded registry with %d total entries", len(reg.all)))

	return reg, nil
}

// addRaw :
// Decodes a single raw catalog entry into the typed descriptor
// of the provided category and registers it.
func (r *Registry) addRaw(category string, raw json.RawMessage, validate *validator.Validate, log logger.Logger) error {
	decode := func(dst interface{}) error {
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
		if err := validate.Struct(dst); err != nil {
			return err
		}
		return nil
	}

	switch category {
	case "planets":
		desc := &PlanetTypeDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddPlanetType(desc, log)
	case "resources":
		desc := &ResourceDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddResource(desc, log)
	case "buildings":
		desc := &BuildingDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddBuilding(desc, log)
	case "defense_units":
		desc := &DefenseUnitDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddDefenseUnit(desc, log)
	case "planet_features":
		desc := &PlanetFeatureDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddPlanetFeature(desc, log)
	case "offense_units":
		desc := &OffenseUnitDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddOffenseUnit(desc, log)
	case "ships":
		desc := &ShipDesc{}
		if err := decode(desc); err != nil {
			return err
		}
		return r.AddShip(desc, log)
	}

	return fmt.Errorf("unknown category \"%s\"", category)
}

// register :
// Registers the entry in the `all` aggregate, warning on a
// collision with an entry of another category.
func (r *Registry) register(id string, entry interface{}, log logger.Logger) {
	if _, ok := r.all[id]; ok && log != nil {
		log.Trace(logger.Warning, "registry", fmt.Sprintf("Duplicate identifier \"%s\" across categories", id))
	}
	r.all[id] = entry
}

// AddPlanetType : Registers a planet type descriptor.
func (r *Registry) AddPlanetType(desc *PlanetTypeDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("planet type entry missing identifier")
	}
	r.Planets[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddResource : Registers a resource descriptor.
func (r *Registry) AddResource(desc *ResourceDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("resource entry missing identifier")
	}
	r.Resources[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddBuilding : Registers a building descriptor.
func (r *Registry) AddBuilding(desc *BuildingDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("building entry missing identifier")
	}
	r.Buildings[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddDefenseUnit : Registers a defense unit descriptor.
func (r *Registry) AddDefenseUnit(desc *DefenseUnitDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("defense unit entry missing identifier")
	}
	r.DefenseUnits[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddPlanetFeature : Registers a planet feature descriptor.
func (r *Registry) AddPlanetFeature(desc *PlanetFeatureDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("planet feature entry missing identifier")
	}
	r.PlanetFeatures[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddOffenseUnit : Registers an offense unit descriptor.
func (r *Registry) AddOffenseUnit(desc *OffenseUnitDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("offense unit entry missing identifier")
	}
	r.OffenseUnits[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// AddShip : Registers a ship descriptor.
func (r *Registry) AddShip(desc *ShipDesc, log logger.Logger) error {
	if len(desc.ID) == 0 {
		return fmt.Errorf("ship entry missing identifier")
	}
	r.Ships[desc.ID] = desc
	r.register(desc.ID, desc, log)
	return nil
}

// validate :
// Performs the post-load consistency pass: warns on entries
// missing their display name.
func (r *Registry) validate(log logger.Logger) {
	type named struct {
		category string
		id       string
		name     string
	}

	entries := make([]named, 0)
	for id, d := range r.Planets {
		entries = append(entries, named{"planets", id, d.Name})
	}
	for id, d := range r.Resources {
		entries = append(entries, named{"resources", id, d.Name})
	}
	for id, d := range r.Buildings {
		entries = append(entries, named{"buildings", id, d.Name})
	}
	for id, d := range r.DefenseUnits {
		entries = append(entries, named{"defense_units", id, d.Name})
	}
	for id, d := range r.PlanetFeatures {
		entries = append(entries, named{"planet_features", id, d.Name})
	}
	for id, d := range r.OffenseUnits {
		entries = append(entries, named{"offense_units", id, d.Name})
	}
	for id, d := range r.Ships {
		entries = append(entries, named{"ships", id, d.Name})
	}

	for _, e := range entries {
		if len(e.name) == 0 {
			log.Trace(logger.Warning, "registry", fmt.Sprintf("%s:%s missing \"name\" field", e.category, e.id))
		}
	}
}

// Item :
// Looks up an entry by identifier across all categories.
//
// Returns the entry along with a boolean indicating whether it
// exists.
func (r *Registry) Item(id string) (interface{}, bool) {
	entry, ok := r.all[id]
	return entry, ok
}

// FarmResource :
// Resolves the resource produced by farm slots: the first raw
// resource of type `organics` in identifier order. Falls back
// to the conventional default when the catalog defines none.
//
// Returns the identifier of the farm output resource.
func (r *Registry) FarmResource() string {
	ids := make([]string, 0, len(r.Resources))
	for id := range r.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := r.Resources[id]
		if res.ResourceType == "organics" && !res.Refinable() {
			return id
		}
	}

	return DefaultFarmResource
}

// Serialize :
// Produces the over-the-wire representation of the registry: a
// mapping of category to a mapping of identifier to entry. The
// `all` aggregate is excluded; the reverse operation rebuilds
// it.
//
// Returns the serializable mapping.
func (r *Registry) Serialize() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{})

	planets := make(map[string]interface{}, len(r.Planets))
	for id, d := range r.Planets {
		planets[id] = d
	}
	out["planets"] = planets

	resources := make(map[string]interface{}, len(r.Resources))
	for id, d := range r.Resources {
		resources[id] = d
	}
	out["resources"] = resources

	buildings := make(map[string]interface{}, len(r.Buildings))
	for id, d := range r.Buildings {
		buildings[id] = d
	}
	out["buildings"] = buildings

	defenses := make(map[string]interface{}, len(r.DefenseUnits))
	for id, d := range r.DefenseUnits {
		defenses[id] = d
	}
	out["defense_units"] = defenses

	features := make(map[string]interface{}, len(r.PlanetFeatures))
	for id, d := range r.PlanetFeatures {
		features[id] = d
	}
	out["planet_features"] = features

	offenses := make(map[string]interface{}, len(r.OffenseUnits))
	for id, d := range r.OffenseUnits {
		offenses[id] = d
	}
	out["offense_units"] = offenses

	ships := make(map[string]interface{}, len(r.Ships))
	for id, d := range r.Ships {
		ships[id] = d
	}
	out["ships"] = ships

	return out
}

// FromSerialized :
// Reconstructs a registry from its over-the-wire representation,
// rebuilding the `all` aggregate. Entries are converted through
// their JSON form so that both generic maps (as decoded from
// MessagePack) and typed descriptors are accepted.
//
// The `data` defines the category to entries mapping.
//
// Returns the rebuilt registry along with any error.
func FromSerialized(data map[string]map[string]interface{}) (*Registry, error) {
	reg := NewRegistry()
	validate := validator.New()

	for category, entries := range data {
		for id, entry := range entries {
			raw, err := json.Marshal(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: cannot convert %s:%s (err: %v)", ErrInvalidCatalog, category, id, err)
			}
			if err := reg.addRaw(category, raw, validate, nil); err != nil {
				return nil, fmt.Errorf("%w: in %s: %v", ErrInvalidCatalog, category, err)
			}
		}
	}

	return reg, nil
}
