package game

import (
	"math/rand"
	"testing"

	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *model.Registry {
	t.Helper()

	reg := model.NewRegistry()

	require.NoError(t, reg.AddResource(&model.ResourceDesc{
		ID: "organifera", Name: "Organifera",
		ResourceType: "organics", RefinementLevel: "raw",
	}, nil))
	require.NoError(t, reg.AddResource(&model.ResourceDesc{
		ID: "basaltic_ore", Name: "Basaltic Ore",
		ResourceType: "ore", RefinementLevel: "raw", Yield: 1.0,
	}, nil))
	require.NoError(t, reg.AddResource(&model.ResourceDesc{
		ID: "metal_bars", Name: "Metal Bars",
		ResourceType: "ore", RefinementLevel: "processed",
		Inputs: map[string]float64{"basaltic_ore": 1}, Yield: 1.5,
	}, nil))

	require.NoError(t, reg.AddBuilding(&model.BuildingDesc{
		ID: "hydroponic_dome", Name: "Hydroponic Dome",
		SlotType: "farm", Cost: model.Cost{Industry: 500}, BaseYield: 1.0,
	}, nil))
	require.NoError(t, reg.AddBuilding(&model.BuildingDesc{
		ID: "extraction_rig", Name: "Extraction Rig",
		SlotType: "mine", Cost: model.Cost{Industry: 1000}, BaseYield: 1.0,
	}, nil))
	require.NoError(t, reg.AddBuilding(&model.BuildingDesc{
		ID: "refinery_complex", Name: "Refinery Complex",
		SlotType: "refine", Cost: model.Cost{Industry: 1500}, BaseYield: 1.0,
	}, nil))
	require.NoError(t, reg.AddBuilding(&model.BuildingDesc{
		ID: "fabricator_hall", Name: "Fabricator Hall",
		SlotType: "industry", Cost: model.Cost{Industry: 2000}, BaseYield: 1.0,
	}, nil))

	require.NoError(t, reg.AddDefenseUnit(&model.DefenseUnitDesc{
		ID: "orbital_battery", Name: "Orbital Battery",
		Layer: LayerOrbital, DefenseValue: 90, Cost: model.Cost{Industry: 1000},
	}, nil))

	require.NoError(t, reg.AddPlanetType(&model.PlanetTypeDesc{
		ID: "barren", Name: "Barren World", Rarity: "common",
		PossibleClimates: []string{"drought"},
	}, nil))

	return reg
}

func testPlanet(slots int) *Planet {
	p := &Planet{
		GlobalID:       allocateGlobalID(),
		Name:           "Testworld",
		PlanetTypeID:   "barren",
		ResourceBonus:  make(map[string]float64),
		PopulationMax:  slots,
		IsColonized:    true,
		Resources:      make(map[string]float64),
		IndustryPoints: 1000,
		Defense:        NewPlanetDefense(),
		Queue:          NewBuildQueue(),
		Statistics:     make(map[string]float64),
		caches:         newCaches(),
	}

	p.Slots = make([]*Slot, slots)
	for i := range p.Slots {
		p.Slots[i] = NewSlot()
	}

	return p
}

func buildSlot(p *Planet, index int, slotType string, buildingID string) {
	p.Slots[index].Type = slotType
	p.Slots[index].Status = SlotBuilt
	p.Slots[index].BuildingID = buildingID
	p.OnSlotsChanged(slotType)
}

func TestSlotInvariants(t *testing.T) {
	reg := testRegistry(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		p := NewPlanet(reg, rng)

		assert.Len(t, p.Slots, p.PopulationMax)
		for _, s := range p.Slots {
			assert.Equal(t, s.Type == SlotEmpty, s.Status == SlotEmpty)
			assert.True(t, s.Active)
		}
	}
}

func TestSlotAccounting(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(5)

	buildSlot(p, 0, "mine", "extraction_rig")
	_, err := p.StartBuild(reg, "hydroponic_dome")
	require.NoError(t, err)

	used := len(p.UsedSlots())
	available := len(p.AvailableSlots())
	assert.Equal(t, 2, used)
	assert.Equal(t, 3, available)
	assert.Equal(t, p.PopulationMax, used+available)
}

func TestRemoveBuildingFromSlot(t *testing.T) {
	p := testPlanet(3)
	buildSlot(p, 0, "mine", "extraction_rig")
	buildSlot(p, 1, "farm", "hydroponic_dome")

	freed, ok := p.RemoveBuildingFromSlot("farm")
	require.True(t, ok)
	assert.Equal(t, "farm", freed)
	assert.Equal(t, SlotEmpty, p.Slots[1].Type)
	assert.Equal(t, SlotEmpty, p.Slots[1].Status)

	// No type frees the first non-empty slot.
	freed, ok = p.RemoveBuildingFromSlot("")
	require.True(t, ok)
	assert.Equal(t, "mine", freed)

	_, ok = p.RemoveBuildingFromSlot("")
	assert.False(t, ok)
}

func TestProductionCacheReuse(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeMine
	p.CurrentResource = "basaltic_ore"
	buildSlot(p, 0, "mine", "extraction_rig")
	buildSlot(p, 1, "mine", "extraction_rig")

	p.ExtractResources(reg, nil, false)
	firstRate := p.Statistics["mine"]
	require.Greater(t, firstRate, 0.0)
	require.True(t, p.caches["mine"].valid)

	// Unchanged slots and mode reuse the cached yield.
	p.ExtractResources(reg, nil, false)
	assert.Equal(t, firstRate, p.Statistics["mine"])
	assert.Equal(t, 2*firstRate, p.Resources["basaltic_ore"])
}

func TestCacheInvalidationIsScoped(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeMine
	p.CurrentResource = "basaltic_ore"
	buildSlot(p, 0, "mine", "extraction_rig")
	buildSlot(p, 1, "farm", "hydroponic_dome")

	p.ExtractResources(reg, nil, false)
	require.True(t, p.caches["mine"].valid)
	require.True(t, p.caches["farm"].valid)

	p.OnSlotsChanged("mine")
	assert.False(t, p.caches["mine"].valid)
	assert.True(t, p.caches["farm"].valid)

	p.OnSlotsChanged("unknown_type")
	assert.False(t, p.caches["farm"].valid)
}

func TestCacheSignatureTracksSlotState(t *testing.T) {
	p := testPlanet(3)
	buildSlot(p, 0, "mine", "extraction_rig")

	before := p.categorySignature("mine")
	p.Slots[0].Active = false
	after := p.categorySignature("mine")

	assert.NotEqual(t, before, after)

	// Farm projection ignores mine slots.
	farmBefore := p.categorySignature("farm")
	p.Slots[0].Active = true
	assert.Equal(t, farmBefore, p.categorySignature("farm"))
}

func TestFarmProduction(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	buildSlot(p, 0, "farm", "hydroponic_dome")
	buildSlot(p, 1, "farm", "hydroponic_dome")

	changed := p.ExtractResources(reg, nil, false)
	require.True(t, changed)

	assert.Equal(t, 2.0, p.Statistics["farm"])
	assert.Equal(t, 2.0, p.Resources["organifera"])
}

func TestFarmIgnoresInactiveSlots(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	buildSlot(p, 0, "farm", "hydroponic_dome")
	buildSlot(p, 1, "farm", "hydroponic_dome")
	p.Slots[1].Active = false
	p.OnSlotsChanged("farm")

	p.ExtractResources(reg, nil, false)
	assert.Equal(t, 1.0, p.Statistics["farm"])
}

func TestRefiningShortfallIsAtomic(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeRefine
	p.CurrentResource = "metal_bars"
	buildSlot(p, 0, "refine", "refinery_complex")
	buildSlot(p, 1, "refine", "refinery_complex")

	// No ore at all: nothing consumed, nothing produced.
	p.ExtractResources(reg, nil, false)

	assert.Equal(t, 0.0, p.Resources["basaltic_ore"])
	assert.Equal(t, 0.0, p.Resources["metal_bars"])
	assert.Equal(t, 0.0, p.Statistics["refine"])
}

func TestRefiningSuccess(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeRefine
	p.CurrentResource = "metal_bars"
	p.Resources["basaltic_ore"] = 100
	buildSlot(p, 0, "refine", "refinery_complex")
	buildSlot(p, 1, "refine", "refinery_complex")

	p.ExtractResources(reg, nil, false)

	// Raw yield is 2 (two refine slots, neutral bonuses); the
	// single input consumes raw x 1 and the output applies the
	// resource yield factor of 1.5.
	assert.Equal(t, 98.0, p.Resources["basaltic_ore"])
	assert.Equal(t, 3.0, p.Resources["metal_bars"])
	assert.Equal(t, 3.0, p.Statistics["refine"])
}

func TestModeRoutingFollowsInputs(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	// Mode says refine but the resource has no inputs: the
	// production step must mine it.
	p.Mode = ModeRefine
	p.CurrentResource = "basaltic_ore"
	p.Resources["basaltic_ore"] = 0
	buildSlot(p, 0, "mine", "extraction_rig")

	p.ExtractResources(reg, nil, false)

	assert.Greater(t, p.Resources["basaltic_ore"], 0.0)
	assert.Greater(t, p.Statistics["mine"], 0.0)
	assert.Equal(t, 0.0, p.Statistics["refine"])
}

func TestPatentsBoostYield(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeMine
	p.CurrentResource = "basaltic_ore"
	buildSlot(p, 0, "mine", "extraction_rig")

	patents := []*Patent{
		{ID: "deep_bore", TargetBuildingType: "mine", Multiplier: 2.0},
		{ID: "gas_scrubbers", TargetBuildingType: "mine", ResourceTypes: []string{"gas"}, Multiplier: 10.0},
	}

	p.ExtractResources(reg, nil, true)
	base := p.Statistics["mine"]

	p.ExtractResources(reg, patents, true)
	// Only the type-matching patent applies.
	assert.Equal(t, 2*base, p.Statistics["mine"])
}

func TestBuildQueueFIFO(t *testing.T) {
	q := NewBuildQueue()
	q.Enqueue(&BuildOrder{ItemID: "a", BuildTime: 1, SlotIndex: -1, Category: CategoryDefense})
	q.Enqueue(&BuildOrder{ItemID: "b", BuildTime: 2, SlotIndex: -1, Category: CategoryDefense})
	q.Enqueue(&BuildOrder{ItemID: "c", BuildTime: 3, SlotIndex: -1, Category: CategoryDefense})

	completions := make(map[string]int)
	for tick := 1; tick <= 10; tick++ {
		if done := q.Advance(1); done != nil {
			completions[done.ItemID] = tick
		}
	}

	assert.Equal(t, 1, completions["a"])
	assert.Equal(t, 3, completions["b"])
	assert.Equal(t, 6, completions["c"])
	assert.Zero(t, q.Len())
}

func TestStartBuildPinsSlot(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(3)

	order, err := p.StartBuild(reg, "extraction_rig")
	require.NoError(t, err)

	require.GreaterOrEqual(t, order.SlotIndex, 0)
	slot := p.Slots[order.SlotIndex]
	assert.Equal(t, "mine", slot.Type)
	assert.Equal(t, SlotUnderConstruction, slot.Status)
	assert.Equal(t, "extraction_rig", slot.BuildingID)

	// Industry 1000 and cost 1000 derive a one minute build.
	assert.Equal(t, 60.0, order.BuildTime)
}

func TestStartBuildNoSlotAvailable(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(1)
	buildSlot(p, 0, "mine", "extraction_rig")

	_, err := p.StartBuild(reg, "extraction_rig")
	assert.ErrorIs(t, err, ErrNoSlotAvailable)
}

func TestStartBuildUnknownItem(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(3)

	_, err := p.StartBuild(reg, "orbital_palace")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestStartBuildClampsIndustry(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(3)
	p.IndustryPoints = 0

	order, err := p.StartBuild(reg, "extraction_rig")
	require.NoError(t, err)

	// Zero industry clamps the denominator instead of dividing
	// by zero.
	assert.Equal(t, 1000.0*60, order.BuildTime)
}

func TestBuildCompletionFinalizesSlot(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(3)

	order, err := p.StartBuild(reg, "extraction_rig")
	require.NoError(t, err)

	var done *BuildOrder
	for i := 0.0; i < order.BuildTime; i++ {
		done = p.AdvanceBuild(reg, 1)
	}

	require.NotNil(t, done)
	assert.Equal(t, "extraction_rig", done.ItemID)
	assert.Equal(t, SlotBuilt, p.Slots[order.SlotIndex].Status)
}

func TestBuildDefenseUnit(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(3)

	order, err := p.StartBuild(reg, "orbital_battery")
	require.NoError(t, err)
	assert.Equal(t, CategoryDefense, order.Category)
	assert.Equal(t, -1, order.SlotIndex)

	// No slot is consumed by defense orders.
	assert.Len(t, p.AvailableSlots(), 3)

	done := p.AdvanceBuild(reg, order.BuildTime)
	require.NotNil(t, done)

	assert.Equal(t, 90.0, p.Defense.TotalDefenseValue(reg, ""))
	assert.Equal(t, 90.0, p.Defense.TotalDefenseValue(reg, LayerOrbital))
	assert.Equal(t, 0.0, p.Defense.TotalDefenseValue(reg, LayerGround))
}

func TestSecondOrderWaitsForHead(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)

	first, err := p.StartBuild(reg, "orbital_battery")
	require.NoError(t, err)
	second, err := p.StartBuild(reg, "orbital_battery")
	require.NoError(t, err)

	p.AdvanceBuild(reg, first.BuildTime/2)
	assert.Greater(t, first.Progress, 0.0)
	assert.Equal(t, 0.0, second.Progress)
}

func TestTotalIndustryPoints(t *testing.T) {
	p := testPlanet(4)
	assert.Equal(t, 1000.0, p.TotalIndustryPoints())

	buildSlot(p, 0, "industry", "fabricator_hall")
	buildSlot(p, 1, "industry", "fabricator_hall")
	assert.Equal(t, 1200.0, p.TotalIndustryPoints())

	// Under-construction slots do not count.
	p.Slots[2].Type = "industry"
	p.Slots[2].Status = SlotUnderConstruction
	assert.Equal(t, 1200.0, p.TotalIndustryPoints())
}

func TestComputeDeltas(t *testing.T) {
	p := testPlanet(3)
	buildSlot(p, 0, "mine", "extraction_rig")

	// First computation reports every slot once.
	deltas := p.ComputeDeltas()
	assert.Len(t, deltas, 3)

	// Nothing changed: nothing to report.
	assert.Empty(t, p.ComputeDeltas())

	p.Slots[0].ToggleActive()
	deltas = p.ComputeDeltas()
	require.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].SlotIndex)
	assert.False(t, deltas[0].Active)
	assert.Equal(t, "mine", deltas[0].Type)
}

func TestPlanetSnapshotRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	p := testPlanet(4)
	p.Mode = ModeMine
	p.CurrentResource = "basaltic_ore"
	p.Climate = "drought"
	p.Features = []string{"ore_veins"}
	p.ResourceBonus["basaltic_ore"] = 1.4
	p.DefenseBonus = 1.1
	p.Resources["basaltic_ore"] = 12.5
	buildSlot(p, 0, "mine", "extraction_rig")
	p.Slots[0].Active = false

	_, err := p.StartBuild(reg, "orbital_battery")
	require.NoError(t, err)
	unit := reg.DefenseUnits["orbital_battery"]
	p.Defense.AddUnit(unit)

	snap := p.ToSnapshot()
	rebuilt := PlanetFromSnapshot(snap)

	assert.Equal(t, p.GlobalID, rebuilt.GlobalID)
	assert.Equal(t, p.Name, rebuilt.Name)
	assert.Equal(t, p.PlanetTypeID, rebuilt.PlanetTypeID)
	assert.Equal(t, p.Climate, rebuilt.Climate)
	assert.Equal(t, p.Features, rebuilt.Features)
	assert.Equal(t, p.Mode, rebuilt.Mode)
	assert.Equal(t, p.CurrentResource, rebuilt.CurrentResource)
	assert.Equal(t, p.ResourceBonus, rebuilt.ResourceBonus)
	assert.Equal(t, p.DefenseBonus, rebuilt.DefenseBonus)
	assert.Equal(t, p.Resources, rebuilt.Resources)
	assert.Equal(t, p.PopulationMax, rebuilt.PopulationMax)

	require.Len(t, rebuilt.Slots, 4)
	assert.Equal(t, "mine", rebuilt.Slots[0].Type)
	assert.False(t, rebuilt.Slots[0].Active)

	// Build queue progress survives the round trip.
	require.Equal(t, 1, rebuilt.Queue.Len())
	assert.Equal(t, "orbital_battery", rebuilt.Queue.Orders[0].ItemID)

	assert.Equal(t, 90.0, rebuilt.Defense.TotalDefenseValue(reg, ""))

	// Snapshots are detached from the live planet.
	p.Resources["basaltic_ore"] = 999
	assert.Equal(t, 12.5, snap.Resources["basaltic_ore"])
}

func TestSnapshotAdvancesGlobalIDCounter(t *testing.T) {
	snap := testPlanet(1).ToSnapshot()
	snap.GlobalID = allocateGlobalID() + 500

	PlanetFromSnapshot(snap)

	assert.Greater(t, allocateGlobalID(), snap.GlobalID)
}
