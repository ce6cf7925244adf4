package domain

// LayerStrategy determines the rendering topology of one build.
type LayerStrategy string

const (
	// StrategyPerSpecies renders one toggleable, independently clustered
	// layer per species.
	StrategyPerSpecies LayerStrategy = "per_species"
	// StrategyCombined renders every sighting into a single cluster,
	// chosen when a toggle per species would overwhelm the layer control.
	StrategyCombined LayerStrategy = "combined"
)

// SelectLayerStrategy picks the rendering topology from the distinct
// species count. Strictly more species than the threshold selects
// StrategyCombined; at or below it, StrategyPerSpecies. Stateless, no
// hysteresis: re-evaluated fresh on every build.
func SelectLayerStrategy(speciesCount, threshold int) LayerStrategy {
	if speciesCount > threshold {
		return StrategyCombined
	}
	return StrategyPerSpecies
}
