package game

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/Andromalius22/Nexora/internal/model"
	"lukechampine.com/blake3"
)

// Planet modes. The mode records the player's choice; the
// production step routes on the current resource's inputs.
const (
	ModeMine   = "mine"
	ModeRefine = "refine"
)

// ErrUnknownItem : Indicates that a build command references
// an item absent from both the buildings and the defense
// units catalogs.
var ErrUnknownItem = fmt.Errorf("unknown build item")

// ErrNoSlotAvailable : Indicates that a building cannot be
// queued because every slot of the planet is occupied.
var ErrNoSlotAvailable = fmt.Errorf("no building slot available")

// nextGlobalID : Process-wide monotonic counter for planet
// global identifiers.
var nextGlobalID int64

// allocateGlobalID : Reserves the next planet global id.
func allocateGlobalID() int64 {
	return atomic.AddInt64(&nextGlobalID, 1)
}

// AdvanceGlobalIDCounter :
// Pushes the global id counter past the provided value. Called
// when planets are rebuilt from snapshots so that new planets
// never collide with persisted ones.
//
// The `id` defines the highest identifier seen so far.
func AdvanceGlobalIDCounter(id int64) {
	for {
		current := atomic.LoadInt64(&nextGlobalID)
		if current >= id {
			return
		}
		if atomic.CompareAndSwapInt64(&nextGlobalID, current, id) {
			return
		}
	}
}

// productionCache :
// One cached production category. The signature is a blake3
// hash of the projection of the inputs influencing the
// category; a matching signature allows reusing the cached
// yield without recomputation.
type productionCache struct {
	valid     bool
	signature [32]byte
	yield     float64
}

// Planet :
// The simulation unit of the game. A planet lives inside a
// star system, carries a fixed number of build slots and
// produces resources according to its mode and its current
// resource. Planets are created with their galaxy and are
// never deleted.
//
// The `GlobalID` uniquely identifies the planet within its
// player's world, monotonic within the process.
//
// The `ID` is the local index within the star system.
//
// The `Mode` is the player's mine-or-refine choice; the
// production step routes on the current resource's inputs
// and not on this field.
//
// The `ResourceBonus` maps resource identifiers to the
// generation-time multiplier of this planet.
//
// The `Statistics` exposes the last per-category production
// rates.
//
// The `GifHint` is an opaque rotation-art variant hint that
// the server carries for clients without interpreting it.
type Planet struct {
	GlobalID      int64
	ID            int
	Name          string
	PlanetTypeID  string
	Climate       string
	Features      []string
	ResourceBonus map[string]float64
	DefenseBonus  float64

	PopulationMax int
	Population    int
	IsColonized   bool

	Mode            string
	CurrentResource string

	Slots          []*Slot
	Resources      map[string]float64
	IndustryPoints float64
	Defense        *PlanetDefense
	Queue          *BuildQueue
	Statistics     map[string]float64
	GifHint        string

	caches map[string]*productionCache
}

// NewPlanet :
// Generates a planet: type drawn from the catalog weighted
// by rarity, climate from the type's possible climates, one
// to three matching features, per-resource bonuses scaled by
// rarity and a derived defense bonus. Slots are created empty
// and active, one per unit of maximum population.
//
// The `reg` defines the content registry.
//
// The `rng` defines the random source to draw from.
//
// Returns the generated planet.
func NewPlanet(reg *model.Registry, rng *rand.Rand) *Planet {
	p := &Planet{
		GlobalID:       allocateGlobalID(),
		Name:           fmt.Sprintf("Planet-%d", 1000+rng.Intn(9000)),
		ResourceBonus:  make(map[string]float64),
		PopulationMax:  1 + rng.Intn(20),
		Resources:      make(map[string]float64),
		IndustryPoints: 1000,
		Defense:        NewPlanetDefense(),
		Queue:          NewBuildQueue(),
		Statistics:     make(map[string]float64),
		caches:         newCaches(),
	}

	p.PlanetTypeID = drawPlanetType(reg, rng)
	ptype := reg.Planets[p.PlanetTypeID]

	if ptype != nil && len(ptype.PossibleClimates) > 0 {
		p.Climate = ptype.PossibleClimates[rng.Intn(len(ptype.PossibleClimates))]
	} else {
		p.Climate = "unknown"
	}

	p.Features = drawFeatures(reg, p.PlanetTypeID, rng)
	p.assignResourceBonuses(reg, rng)
	p.DefenseBonus = p.computeDefenseBonus(reg)
	p.GifHint = fmt.Sprintf("%s_%02d", p.PlanetTypeID, rng.Intn(4))

	p.Slots = make([]*Slot, p.PopulationMax)
	for i := range p.Slots {
		p.Slots[i] = NewSlot()
	}

	return p
}

// drawPlanetType :
// Weighted draw of a planet type, weights derived from the
// rarity of each catalog entry.
func drawPlanetType(reg *model.Registry, rng *rand.Rand) string {
	if len(reg.Planets) == 0 {
		return "terrestrial"
	}

	ids := make([]string, 0, len(reg.Planets))
	weights := make([]float64, 0, len(reg.Planets))
	total := 0.0

	for id, ptype := range reg.Planets {
		w := RarityWeight(ptype.Rarity)
		ids = append(ids, id)
		weights = append(weights, w)
		total += w
	}

	pick := rng.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return ids[i]
		}
	}

	return ids[len(ids)-1]
}

// drawFeatures :
// Draws one to three features among the catalog entries whose
// planet type matches, without replacement.
func drawFeatures(reg *model.Registry, planetType string, rng *rand.Rand) []string {
	eligible := make([]string, 0)
	for id, feat := range reg.PlanetFeatures {
		if feat.PlanetType == planetType {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	count := 1 + rng.Intn(3)
	if count > len(eligible) {
		count = len(eligible)
	}

	return eligible[:count]
}

// assignResourceBonuses :
// Rolls the per-resource multipliers of the planet among the
// resources listing its type as eligible, scaled by the
// rarity bonus of the planet type.
func (p *Planet) assignResourceBonuses(reg *model.Registry, rng *rand.Rand) {
	rarity := "common"
	if ptype, ok := reg.Planets[p.PlanetTypeID]; ok {
		rarity = ptype.Rarity
	}
	rarityMult := RarityBonusMultiplier(rarity)

	for id, res := range reg.Resources {
		eligible := false
		for _, pt := range res.PlanetTypes {
			if pt == p.PlanetTypeID {
				eligible = true
				break
			}
		}
		if !eligible {
			continue
		}

		base := 1.1 + 0.4*rng.Float64()
		p.ResourceBonus[id] = base * rarityMult
	}
}

// computeDefenseBonus :
// Derives the defense bonus of the planet from its type's
// base bonus and the climate defense modifier.
func (p *Planet) computeDefenseBonus(reg *model.Registry) float64 {
	typeBonus := 1.0
	if ptype, ok := reg.Planets[p.PlanetTypeID]; ok && ptype.DefenseBaseBonus > 0 {
		typeBonus = ptype.DefenseBaseBonus
	}
	return typeBonus * ClimateDefense(p.Climate)
}

func newCaches() map[string]*productionCache {
	return map[string]*productionCache{
		"farm":   {},
		"mine":   {},
		"refine": {},
	}
}

// ---------------- Slots ----------------

// AvailableSlots : Slots free for a new construction.
func (p *Planet) AvailableSlots() []*Slot {
	available := make([]*Slot, 0)
	for _, s := range p.Slots {
		if s.IsEmpty() && s.Status == SlotEmpty {
			available = append(available, s)
		}
	}
	return available
}

// UsedSlots : Slots hosting a building, built or not.
func (p *Planet) UsedSlots() []*Slot {
	used := make([]*Slot, 0)
	for _, s := range p.Slots {
		if !s.IsEmpty() {
			used = append(used, s)
		}
	}
	return used
}

// RemoveBuildingFromSlot :
// Frees the first non-empty slot matching the provided type.
// An empty type frees the first non-empty slot of any type.
//
// The `slotType` defines the optional type to match.
//
// Returns the freed slot type along with whether a slot was
// freed.
func (p *Planet) RemoveBuildingFromSlot(slotType string) (string, bool) {
	for _, s := range p.Slots {
		if s.IsEmpty() {
			continue
		}
		if len(slotType) == 0 || s.Type == slotType {
			freed := s.Type
			s.Clear()
			p.OnSlotsChanged(freed)
			return freed, true
		}
	}
	return "", false
}

// TotalIndustryPoints :
// The planet's base industry plus 100 points per built
// industry slot.
func (p *Planet) TotalIndustryPoints() float64 {
	total := p.IndustryPoints
	for _, s := range p.Slots {
		if s.Type == "industry" && s.Status == SlotBuilt {
			total += 100
		}
	}
	return total
}

// countSlots : Built slots of a type, optionally requiring
// the active flag.
func (p *Planet) countSlots(slotType string, requireActive bool) int {
	count := 0
	for _, s := range p.Slots {
		if s.Type != slotType || s.Status != SlotBuilt {
			continue
		}
		if requireActive && !s.Active {
			continue
		}
		count++
	}
	return count
}

// slotBaseYield : Base yield of the first building hosted in
// a slot of the given type, defaulting to `1.0`.
func (p *Planet) slotBaseYield(reg *model.Registry, slotType string) float64 {
	for _, s := range p.Slots {
		if s.Type == slotType && len(s.BuildingID) > 0 {
			if b, ok := reg.Buildings[s.BuildingID]; ok {
				return b.BaseYieldOrDefault()
			}
		}
	}
	return 1.0
}

// ---------------- Caching ----------------

// categorySignature :
// Hashes the projection of the inputs influencing one cache
// category: the mode, the current resource and the ordered
// `(type, status, active)` triples of the slots of that type.
func (p *Planet) categorySignature(slotType string) [32]byte {
	h := blake3.New(32, nil)

	h.Write([]byte(p.Mode))
	h.Write([]byte{0})
	h.Write([]byte(p.CurrentResource))
	h.Write([]byte{0})

	var idx [4]byte
	for i, s := range p.Slots {
		if s.Type != slotType {
			continue
		}
		binary.BigEndian.PutUint32(idx[:], uint32(i))
		h.Write(idx[:])
		h.Write([]byte(s.Type))
		h.Write([]byte{0})
		h.Write([]byte(s.Status))
		h.Write([]byte{0})
		if s.Active {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	var sig [32]byte
	copy(sig[:], h.Sum(nil))
	return sig
}

// OnSlotsChanged :
// Invalidates the cache entry matching the changed slot type.
// Unknown types invalidate every entry.
//
// The `slotType` defines the type of the mutated slot.
func (p *Planet) OnSlotsChanged(slotType string) {
	if cache, ok := p.caches[slotType]; ok {
		cache.valid = false
		cache.yield = 0
		return
	}

	for _, cache := range p.caches {
		cache.valid = false
		cache.yield = 0
	}
}

// ---------------- Production ----------------

// resourceYieldBonus : Extraction multiplier combining the
// planet's bonus for its current resource with the climate.
func (p *Planet) resourceYieldBonus() float64 {
	bonus, ok := p.ResourceBonus[p.CurrentResource]
	if !ok {
		bonus = 1.0
	}
	return bonus * ClimateResourceYield(p.Climate)
}

// refineBonus : Refining multiplier combining the planet's
// bonus for its current resource with the climate.
func (p *Planet) refineBonus() float64 {
	bonus, ok := p.ResourceBonus[p.CurrentResource]
	if !ok {
		bonus = 1.0
	}
	return bonus * ClimateRefiningSpeed(p.Climate)
}

// ExtractResources :
// Runs one production step for the planet. Farming always
// applies; mining or refining is then selected by inspecting
// the inputs of the current resource: a resource without
// inputs is extracted, a resource with inputs is refined.
// Refining is atomic: if any input falls short of the
// requirement nothing is consumed and nothing is produced.
//
// The `reg` defines the content registry.
//
// The `patents` defines the owning player's patents.
//
// The `force` forces recomputation of cached yields.
//
// Returns whether any resource amount changed.
func (p *Planet) ExtractResources(reg *model.Registry, patents []*Patent, force bool) bool {
	if !p.IsColonized {
		return false
	}

	techLevel := 1.0
	changed := false

	// Farming.
	farmYield := p.computeFarming(reg, patents, techLevel, force)
	if farmYield > 0 {
		farmRes := reg.FarmResource()
		p.Resources[farmRes] += farmYield
		p.Statistics["farm"] = farmYield
		changed = true
	} else {
		p.Statistics["farm"] = 0
	}

	// Mining or refining, routed on the resource's inputs.
	if res, ok := reg.Resources[p.CurrentResource]; ok {
		if res.Refinable() {
			if p.computeRefining(reg, res, patents, techLevel, force) > 0 {
				changed = true
			}
		} else {
			if p.computeMining(reg, res, patents, techLevel, force) > 0 {
				changed = true
			}
		}
	}

	return changed
}

// computeFarming :
// Farm yield: built, active farm slots times base yield and
// tech level, boosted by patents targeting organics.
func (p *Planet) computeFarming(reg *model.Registry, patents []*Patent, techLevel float64, force bool) float64 {
	cache := p.caches["farm"]
	sig := p.categorySignature("farm")

	if !force && cache.valid && cache.signature == sig {
		return cache.yield
	}

	total := 0.0
	farmCount := p.countSlots("farm", true)
	if farmCount > 0 {
		base := p.slotBaseYield(reg, "farm")
		total = float64(farmCount) * base * techLevel

		farmRes := reg.FarmResource()
		resourceType := "organics"
		level := "raw"
		if res, ok := reg.Resources[farmRes]; ok {
			resourceType = res.ResourceType
			level = res.RefinementLevel
		}
		total = ApplyPatents(total, patents, "organics", resourceType, level)
	}

	cache.valid = true
	cache.signature = sig
	cache.yield = total

	return total
}

// computeMining :
// Mining yield: built mine slots times tech level, resource
// yield bonus, slot base yield, refinement multiplier and the
// resource's own yield factor, boosted by patents targeting
// mining. The output is added to the current resource.
func (p *Planet) computeMining(reg *model.Registry, res *model.ResourceDesc, patents []*Patent, techLevel float64, force bool) float64 {
	cache := p.caches["mine"]
	sig := p.categorySignature("mine")

	var total float64
	if !force && cache.valid && cache.signature == sig {
		total = cache.yield
	} else {
		mineCount := p.countSlots("mine", false)
		if mineCount > 0 {
			base := p.slotBaseYield(reg, "mine")
			refineMult := RefinementMultiplier(res.RefinementLevel)

			total = float64(mineCount) * techLevel * p.resourceYieldBonus() * base * refineMult * res.YieldOrDefault()
			total = ApplyPatents(total, patents, "mine", res.ResourceType, res.RefinementLevel)
		}

		cache.valid = true
		cache.signature = sig
		cache.yield = total
	}

	p.Statistics["mine"] = total
	if total > 0 {
		p.Resources[p.CurrentResource] += total
	}

	return total
}

// computeRefining :
// Refining: the raw yield is built refine slots times tech
// level and refine bonus, boosted by patents. Each input must
// cover `raw_yield x ratio`; a shortfall on any input makes
// the whole step a no-op for this tick. Otherwise inputs are
// consumed and `raw_yield x yield` units of the output are
// produced.
func (p *Planet) computeRefining(reg *model.Registry, res *model.ResourceDesc, patents []*Patent, techLevel float64, force bool) float64 {
	cache := p.caches["refine"]
	sig := p.categorySignature("refine")

	var rawYield float64
	if !force && cache.valid && cache.signature == sig {
		rawYield = cache.yield
	} else {
		refineCount := p.countSlots("refine", false)
		if refineCount > 0 {
			rawYield = float64(refineCount) * techLevel * p.refineBonus()
			rawYield = ApplyPatents(rawYield, patents, "refine", res.ResourceType, res.RefinementLevel)
		}

		cache.valid = true
		cache.signature = sig
		cache.yield = rawYield
	}

	if rawYield <= 0 {
		p.Statistics["refine"] = 0
		return 0
	}

	// Atomicity: check every input before consuming any.
	for input, ratio := range res.Inputs {
		required := rawYield * ratio
		if p.Resources[input] < required {
			p.Statistics["refine"] = 0
			return 0
		}
	}

	for input, ratio := range res.Inputs {
		p.Resources[input] -= rawYield * ratio
	}

	refined := rawYield * res.YieldOrDefault()
	p.Resources[p.CurrentResource] += refined
	p.Statistics["refine"] = refined

	return refined
}

// ---------------- Build queue ----------------

// StartBuild :
// Queues the construction of a building or a defense unit.
// The build time derives from the item's industry cost and
// the planet's total industry, with the denominator clamped
// to a minimum of one point. Buildings pin a free slot at
// enqueue time; defense orders carry no slot.
//
// The `reg` defines the content registry.
//
// The `itemID` defines the catalog entry to build.
//
// Returns the queued order along with any error.
func (p *Planet) StartBuild(reg *model.Registry, itemID string) (*BuildOrder, error) {
	industry := p.TotalIndustryPoints()
	if industry < 1 {
		industry = 1
	}

	if building, ok := reg.Buildings[itemID]; ok {
		available := p.AvailableSlots()
		if len(available) == 0 {
			return nil, ErrNoSlotAvailable
		}

		slot := available[0]
		slotIndex := -1
		for i, s := range p.Slots {
			if s == slot {
				slotIndex = i
				break
			}
		}

		slot.Type = building.SlotType
		slot.Status = SlotUnderConstruction
		slot.BuildingID = building.ID

		order := &BuildOrder{
			ItemID:    building.ID,
			ItemName:  building.Name,
			BuildTime: building.Cost.IndustryOrDefault() / industry * 60,
			Category:  CategoryBuilding,
			SlotIndex: slotIndex,
		}
		p.Queue.Enqueue(order)
		p.OnSlotsChanged(slot.Type)

		return order, nil
	}

	if unit, ok := reg.DefenseUnits[itemID]; ok {
		order := &BuildOrder{
			ItemID:    unit.ID,
			ItemName:  unit.Name,
			BuildTime: unit.Cost.IndustryOrDefault() / industry * 60,
			Category:  CategoryDefense,
			SlotIndex: -1,
		}
		p.Queue.Enqueue(order)

		return order, nil
	}

	return nil, fmt.Errorf("%w: \"%s\"", ErrUnknownItem, itemID)
}

// AdvanceBuild :
// Advances the head build order and finalizes it when done:
// the pinned slot becomes built for buildings, a unit joins
// the defense bag for defense orders.
//
// The `reg` defines the content registry.
//
// The `deltaSeconds` defines the elapsed time to apply.
//
// Returns the completed order or `nil`.
func (p *Planet) AdvanceBuild(reg *model.Registry, deltaSeconds float64) *BuildOrder {
	order := p.Queue.Advance(deltaSeconds)
	if order == nil {
		return nil
	}

	switch order.Category {
	case CategoryBuilding:
		if order.SlotIndex >= 0 && order.SlotIndex < len(p.Slots) {
			slot := p.Slots[order.SlotIndex]
			slot.Status = SlotBuilt
			p.OnSlotsChanged(slot.Type)
		}
	case CategoryDefense:
		if unit, ok := reg.DefenseUnits[order.ItemID]; ok {
			p.Defense.AddUnit(unit)
		}
	}

	return order
}

// ---------------- Deltas ----------------

// SlotDelta :
// One slot-active change detected since the last delta
// computation.
type SlotDelta struct {
	GlobalID  int64  `json:"global_id" msgpack:"global_id"`
	PlanetID  int    `json:"planet_id" msgpack:"planet_id"`
	SlotIndex int    `json:"slot_index" msgpack:"slot_index"`
	Type      string `json:"type" msgpack:"type"`
	Active    bool   `json:"active" msgpack:"active"`
}

// ComputeDeltas :
// Compares the active flag of every slot to the value sent
// last time and returns the changed entries, updating the
// last-sent values as it goes.
//
// Returns the list of changed slots.
func (p *Planet) ComputeDeltas() []SlotDelta {
	deltas := make([]SlotDelta, 0)

	for i, s := range p.Slots {
		if s.lastSentActive != nil && *s.lastSentActive == s.Active {
			continue
		}

		deltas = append(deltas, SlotDelta{
			GlobalID:  p.GlobalID,
			PlanetID:  p.ID,
			SlotIndex: i,
			Type:      s.Type,
			Active:    s.Active,
		})

		sent := s.Active
		s.lastSentActive = &sent
	}

	return deltas
}
