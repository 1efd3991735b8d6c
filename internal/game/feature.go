package game

// Feature :
// Defines the kind of object occupying a tile of the galaxy
// grid. The wire protocol carries features as small integers
// so the numeric values of this enumeration are part of the
// protocol and must not be reordered.
type Feature int

// Fixed wire identifiers for tile features.
const (
	StarSystemFeature Feature = 0
	Nebula            Feature = 1
	AsteroidField     Feature = 2
	BlackHole         Feature = 3
	EmptySpace        Feature = 4
)

// String :
// Implements the `Stringer` interface for a feature.
//
// Returns the name of the feature.
func (f Feature) String() string {
	switch f {
	case StarSystemFeature:
		return "star_system"
	case Nebula:
		return "nebula"
	case AsteroidField:
		return "asteroid_field"
	case BlackHole:
		return "black_hole"
	case EmptySpace:
		return "empty"
	}

	return "unknown"
}

// FeatureFromInt :
// Converts a wire integer into its feature, defaulting to
// `EmptySpace` for out-of-range values.
//
// The `value` defines the wire integer to convert.
//
// Returns the corresponding feature.
func FeatureFromInt(value int) Feature {
	if value < int(StarSystemFeature) || value > int(EmptySpace) {
		return EmptySpace
	}
	return Feature(value)
}
