package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLayerStrategy(t *testing.T) {
	tests := []struct {
		name      string
		species   int
		threshold int
		want      LayerStrategy
	}{
		{"below threshold", 3, 25, StrategyPerSpecies},
		{"at threshold stays per-species", 25, 25, StrategyPerSpecies},
		{"one over threshold combines", 26, 25, StrategyCombined},
		{"large count combines", 201, 200, StrategyCombined},
		{"zero species", 0, 25, StrategyPerSpecies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLayerStrategy(tt.species, tt.threshold))
		})
	}
}
