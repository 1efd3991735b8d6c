package game

// PlanetBonuses :
// Generation-time bonuses of a planet as carried by its
// snapshot.
type PlanetBonuses struct {
	Resources map[string]float64 `json:"resources" msgpack:"resources"`
	Defense   float64            `json:"defense" msgpack:"defense"`
}

// PlanetSnapshot :
// The persisted and over-the-wire form of a planet. It holds
// no back-reference to its star system; owners rebuild the
// chain when hydrating. All values come from the snapshot:
// hydration never draws random state.
type PlanetSnapshot struct {
	GlobalID        int64              `json:"global_id" msgpack:"global_id"`
	ID              int                `json:"id" msgpack:"id"`
	Name            string             `json:"name" msgpack:"name"`
	PopulationMax   int                `json:"population_max" msgpack:"population_max"`
	Population      int                `json:"population" msgpack:"population"`
	Slots           []*Slot            `json:"slots" msgpack:"slots"`
	Mode            string             `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Resources       map[string]float64 `json:"resources" msgpack:"resources"`
	CurrentResource string             `json:"current_resource,omitempty" msgpack:"current_resource,omitempty"`
	PlanetType      string             `json:"planet_type" msgpack:"planet_type"`
	IsColonized     bool               `json:"is_colonized" msgpack:"is_colonized"`
	Bonuses         PlanetBonuses      `json:"bonuses" msgpack:"bonuses"`
	GifPath         string             `json:"gif_path,omitempty" msgpack:"gif_path,omitempty"`
	Statistics      map[string]float64 `json:"statistics" msgpack:"statistics"`
	Climate         string             `json:"climate,omitempty" msgpack:"climate,omitempty"`
	Features        []string           `json:"features,omitempty" msgpack:"features,omitempty"`
	Defense         *PlanetDefense     `json:"defense" msgpack:"defense"`
	BuildQueue      []*BuildOrder      `json:"build_queue,omitempty" msgpack:"build_queue,omitempty"`
	IndustryPoints  float64            `json:"industry_points" msgpack:"industry_points"`
}

// ToSnapshot :
// Produces the snapshot of the planet, suitable both for
// transmission and for persistence. Slots are copied so that
// later mutations do not leak into an in-flight snapshot.
//
// Returns the built-in snapshot.
func (p *Planet) ToSnapshot() *PlanetSnapshot {
	slots := make([]*Slot, len(p.Slots))
	for i, s := range p.Slots {
		copied := *s
		copied.lastSentActive = nil
		slots[i] = &copied
	}

	resources := make(map[string]float64, len(p.Resources))
	for id, amount := range p.Resources {
		resources[id] = amount
	}

	stats := make(map[string]float64, len(p.Statistics))
	for k, v := range p.Statistics {
		stats[k] = v
	}

	bonuses := make(map[string]float64, len(p.ResourceBonus))
	for id, mult := range p.ResourceBonus {
		bonuses[id] = mult
	}

	queue := make([]*BuildOrder, len(p.Queue.Orders))
	for i, o := range p.Queue.Orders {
		copied := *o
		queue[i] = &copied
	}

	defense := NewPlanetDefense()
	for layer, ids := range p.Defense.Units {
		defense.Units[layer] = append([]string(nil), ids...)
	}

	return &PlanetSnapshot{
		GlobalID:        p.GlobalID,
		ID:              p.ID,
		Name:            p.Name,
		PopulationMax:   p.PopulationMax,
		Population:      p.Population,
		Slots:           slots,
		Mode:            p.Mode,
		Resources:       resources,
		CurrentResource: p.CurrentResource,
		PlanetType:      p.PlanetTypeID,
		IsColonized:     p.IsColonized,
		Bonuses: PlanetBonuses{
			Resources: bonuses,
			Defense:   p.DefenseBonus,
		},
		GifPath:        p.GifHint,
		Statistics:     stats,
		Climate:        p.Climate,
		Features:       append([]string(nil), p.Features...),
		Defense:        defense,
		BuildQueue:     queue,
		IndustryPoints: p.IndustryPoints,
	}
}

// PlanetFromSnapshot :
// Rebuilds a planet from its snapshot. The global id counter
// is advanced past the loaded id so that newly generated
// planets never collide with persisted ones.
//
// The `snap` defines the snapshot to hydrate from.
//
// Returns the rebuilt planet.
func PlanetFromSnapshot(snap *PlanetSnapshot) *Planet {
	AdvanceGlobalIDCounter(snap.GlobalID)

	p := &Planet{
		GlobalID:        snap.GlobalID,
		ID:              snap.ID,
		Name:            snap.Name,
		PlanetTypeID:    snap.PlanetType,
		Climate:         snap.Climate,
		Features:        append([]string(nil), snap.Features...),
		ResourceBonus:   make(map[string]float64),
		DefenseBonus:    snap.Bonuses.Defense,
		PopulationMax:   snap.PopulationMax,
		Population:      snap.Population,
		IsColonized:     snap.IsColonized,
		Mode:            snap.Mode,
		CurrentResource: snap.CurrentResource,
		Resources:       make(map[string]float64),
		IndustryPoints:  snap.IndustryPoints,
		Defense:         NewPlanetDefense(),
		Queue:           NewBuildQueue(),
		Statistics:      make(map[string]float64),
		GifHint:         snap.GifPath,
		caches:          newCaches(),
	}

	if p.IndustryPoints <= 0 {
		p.IndustryPoints = 1000
	}

	for id, mult := range snap.Bonuses.Resources {
		p.ResourceBonus[id] = mult
	}
	for id, amount := range snap.Resources {
		p.Resources[id] = amount
	}
	for k, v := range snap.Statistics {
		p.Statistics[k] = v
	}

	p.Slots = make([]*Slot, 0, len(snap.Slots))
	for _, s := range snap.Slots {
		copied := *s
		copied.lastSentActive = nil
		p.Slots = append(p.Slots, &copied)
	}

	if snap.Defense != nil {
		for layer, ids := range snap.Defense.Units {
			p.Defense.Units[layer] = append([]string(nil), ids...)
		}
	}

	for _, o := range snap.BuildQueue {
		copied := *o
		p.Queue.Enqueue(&copied)
	}

	return p
}
