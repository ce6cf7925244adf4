package domain

import (
	"crypto/sha1"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// Marker colors use fixed saturation and lightness; only the hue varies
// per species.
const (
	colorSaturation = 0.70
	colorLightness  = 0.45
)

var hueModulus = big.NewInt(360)

// SpeciesColor pairs a species name with its display color.
type SpeciesColor struct {
	Name string
	Hex  string
}

// ColorTable is the legend-ordered species → color assignment.
type ColorTable []SpeciesColor

// Hex returns the color assigned to name, or fallback when the table does
// not contain it.
func (t ColorTable) Hex(name, fallback string) string {
	for _, sc := range t {
		if sc.Name == name {
			return sc.Hex
		}
	}
	return fallback
}

// ColorForSpecies deterministically assigns a display color to a species
// name. The full SHA-1 digest of the name, taken as a big-endian integer
// modulo 360, selects a hue; the hue converts to an RGB hex triplet at
// fixed saturation and lightness. Same name, same color, on every run and
// every machine. An empty name colors as UnknownSpecies.
func ColorForSpecies(name string) string {
	if name == "" {
		name = UnknownSpecies
	}
	sum := sha1.Sum([]byte(name))
	hue := new(big.Int).Mod(new(big.Int).SetBytes(sum[:]), hueModulus).Int64()
	return hslToHex(float64(hue), colorSaturation, colorLightness)
}

// BuildColorTable assigns colors to every distinct species name, ordered
// lexicographically. Ordering affects only legend display; each color is a
// pure function of the name alone.
func BuildColorTable(species []string) ColorTable {
	table := make(ColorTable, 0, len(species))
	for _, name := range sortedCopy(species) {
		table = append(table, SpeciesColor{Name: name, Hex: ColorForSpecies(name)})
	}
	return table
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

// hslToHex converts an HSL color (hue in degrees, s and l in [0, 1]) to a
// lowercase #rrggbb string.
func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return fmt.Sprintf("#%02x%02x%02x",
		int((r+m)*255), int((g+m)*255), int((b+m)*255))
}
