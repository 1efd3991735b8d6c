package game

// ClimateEffect :
// Regroups the modifiers applied by a climate to the planets
// living under it. Any modifier left at zero in the table is
// interpreted as neutral (multiplier of `1`).
//
// The `ResourceYield` scales extraction output.
//
// The `RefiningSpeed` scales refining output.
//
// The `Defense` scales the defense bonus of the planet.
type ClimateEffect struct {
	ResourceYield float64
	RefiningSpeed float64
	Defense       float64
}

// climateEffects : Enumerated configuration of the modifiers
// attached to each climate. Climates absent from this table
// are neutral.
var climateEffects = map[string]ClimateEffect{
	"sandstorm": {
		ResourceYield: 0.85,
		RefiningSpeed: 1.0,
		Defense:       1.1,
	},
	"drought": {
		ResourceYield: 0.8,
		RefiningSpeed: 1.0,
		Defense:       1.0,
	},
	"dry_winds": {
		ResourceYield: 0.9,
		Defense:       1.05,
	},
	"temperate": {
		ResourceYield: 1.0,
		RefiningSpeed: 1.0,
		Defense:       1.0,
	},
	"seasonal_storms": {
		ResourceYield: 0.95,
		Defense:       1.1,
	},
	"dry_spell": {
		ResourceYield: 0.9,
	},
	"lava_rain": {
		ResourceYield: 0.9,
		Defense:       1.3,
	},
	"toxic_fumes": {
		RefiningSpeed: 0.9,
	},
	"acid_storms": {
		ResourceYield: 0.85,
		Defense:       1.2,
	},
	"megastorms": {
		ResourceYield: 0.9,
		Defense:       1.1,
	},
	"ion_winds": {
		RefiningSpeed: 1.1,
	},
	"gas_turbulence": {
		ResourceYield: 0.8,
	},
	"plasma_storms": {
		Defense: 1.3,
	},
	"magnetic_turbulence": {
		RefiningSpeed: 0.9,
	},
	"quantum_flux": {
		ResourceYield: 1.2,
		RefiningSpeed: 0.8,
	},
	"reality_distortion": {
		ResourceYield: 0.9,
		Defense:       1.5,
	},
	"monsoon": {
		ResourceYield: 1.1,
		Defense:       0.9,
	},
	"hurricane_season": {
		ResourceYield: 0.8,
		Defense:       1.2,
	},
	"calm_currents": {
		ResourceYield: 1.05,
	},
	"humid": {
		ResourceYield: 1.1,
	},
	"dense_fog": {
		RefiningSpeed: 0.95,
		Defense:       1.15,
	},
	"biospheric_balance": {
		ResourceYield: 1.2,
		Defense:       1.0,
	},
	"mutual_growth": {
		ResourceYield: 1.15,
	},
	"spore_clouds": {
		RefiningSpeed: 0.9,
		Defense:       1.1,
	},
}

// climateModifier :
// Fetches the requested modifier for a climate, treating
// both unknown climates and unset modifiers as neutral.
func climateModifier(climate string, pick func(ClimateEffect) float64) float64 {
	effect, ok := climateEffects[climate]
	if !ok {
		return 1.0
	}
	mod := pick(effect)
	if mod <= 0 {
		return 1.0
	}
	return mod
}

// ClimateResourceYield : Extraction modifier of a climate.
func ClimateResourceYield(climate string) float64 {
	return climateModifier(climate, func(e ClimateEffect) float64 { return e.ResourceYield })
}

// ClimateRefiningSpeed : Refining modifier of a climate.
func ClimateRefiningSpeed(climate string) float64 {
	return climateModifier(climate, func(e ClimateEffect) float64 { return e.RefiningSpeed })
}

// ClimateDefense : Defense modifier of a climate.
func ClimateDefense(climate string) float64 {
	return climateModifier(climate, func(e ClimateEffect) float64 { return e.Defense })
}

// refinementYieldMultipliers : Scaling applied to extraction
// depending on the refinement level of the mined resource.
var refinementYieldMultipliers = map[string]float64{
	"raw":       1.0,
	"processed": 1.25,
	"advanced":  1.5,
}

// RefinementMultiplier :
// Resolves the extraction multiplier of a refinement level,
// defaulting to `1.0` for unknown levels.
func RefinementMultiplier(level string) float64 {
	mult, ok := refinementYieldMultipliers[level]
	if !ok {
		return 1.0
	}
	return mult
}

// rarityWeights : Generation weights of planet types grouped
// by rarity. Unknown rarities use a low default so that bogus
// catalog entries stay uncommon rather than vanishing.
var rarityWeights = map[string]float64{
	"common":    0.25,
	"uncommon":  0.15,
	"rare":      0.05,
	"very_rare": 0.02,
}

// RarityWeight :
// Resolves the generation weight of a planet rarity.
func RarityWeight(rarity string) float64 {
	weight, ok := rarityWeights[rarity]
	if !ok {
		return 0.1
	}
	return weight
}

// rarityBonusMultipliers : Scaling applied to the per-resource
// generation bonuses of a planet depending on its rarity.
var rarityBonusMultipliers = map[string]float64{
	"common":    1.0,
	"uncommon":  1.3,
	"rare":      1.7,
	"very_rare": 2.2,
}

// RarityBonusMultiplier :
// Resolves the bonus multiplier attached to a planet rarity.
func RarityBonusMultiplier(rarity string) float64 {
	mult, ok := rarityBonusMultipliers[rarity]
	if !ok {
		return 1.0
	}
	return mult
}
