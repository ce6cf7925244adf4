package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestColorForSpecies_KnownValues(t *testing.T) {
	// Values pinned so the encoding never drifts between releases; the
	// archive relies on a species keeping its color across rebuilds.
	tests := []struct {
		name string
		want string
	}{
		{"Blue Jay", "#a0c322"},
		{"Snowy Owl", "#c36222"},
		{"Painted Bunting", "#8222c3"},
		{"Northern Cardinal", "#95c322"},
		{"American Robin", "#c34722"},
		{"Unknown", "#c33222"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorForSpecies(tt.name))
		})
	}
}

func TestColorForSpecies_StableAcrossCalls(t *testing.T) {
	first := ColorForSpecies("Kirtland's Warbler")
	for range 10 {
		assert.Equal(t, first, ColorForSpecies("Kirtland's Warbler"))
	}
}

func TestColorForSpecies_EmptyNameColorsAsUnknown(t *testing.T) {
	assert.Equal(t, ColorForSpecies(UnknownSpecies), ColorForSpecies(""))
}

func TestColorForSpecies_WellFormedHex(t *testing.T) {
	for _, name := range []string{"Blue Jay", "Común Potoo", "ハシブトガラス", ""} {
		assert.Regexp(t, hexColorRe, ColorForSpecies(name))
	}
}

func TestBuildColorTable_SortedAndOrderIndependent(t *testing.T) {
	a := BuildColorTable([]string{"Snowy Owl", "Blue Jay", "American Robin"})
	b := BuildColorTable([]string{"American Robin", "Snowy Owl", "Blue Jay"})

	require.Len(t, a, 3)
	assert.Equal(t, a, b)
	assert.Equal(t, "American Robin", a[0].Name)
	assert.Equal(t, "Blue Jay", a[1].Name)
	assert.Equal(t, "Snowy Owl", a[2].Name)

	// Sorting affects legend order only; colors stay pure functions of the name.
	assert.Equal(t, ColorForSpecies("Blue Jay"), a.Hex("Blue Jay", "#444444"))
}

func TestColorTable_HexFallback(t *testing.T) {
	table := BuildColorTable([]string{"Blue Jay"})
	assert.Equal(t, "#444444", table.Hex("Dodo", "#444444"))
}
