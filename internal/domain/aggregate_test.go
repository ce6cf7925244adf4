package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestAggregateObservations_GroupsByExactLocationAndSpecies(t *testing.T) {
	records := []ObservationRecord{
		{CommonName: "Blue Jay", Lat: 42.0, Lon: -71.0, LocName: "Park", ObsDate: "2026-08-30 07:15", HowMany: intPtr(2), ChecklistID: "S111"},
		{CommonName: "Blue Jay", Lat: 42.0, Lon: -71.0, LocName: "Park", ObsDate: "2026-08-30 08:40", HowMany: intPtr(1), ChecklistID: "S222"},
	}

	agg := AggregateObservations(records)

	require.Len(t, agg.Locations, 1)
	key := LocationKey{Lat: 42.0, Lon: -71.0}
	require.Contains(t, agg.Locations, key)
	require.Len(t, agg.Locations[key], 1)

	details := agg.Locations[key]["Blue Jay"]
	want := []SightingDetail{
		{LocationName: "Park", ObservedAt: "2026-08-30 07:15", Count: "2", ChecklistURL: "https://ebird.org/checklist/S111"},
		{LocationName: "Park", ObservedAt: "2026-08-30 08:40", Count: "1", ChecklistURL: "https://ebird.org/checklist/S222"},
	}
	if diff := cmp.Diff(want, details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"Blue Jay"}, agg.Species)
}

func TestAggregateObservations_NeverDropsRecords(t *testing.T) {
	records := []ObservationRecord{
		{CommonName: "Snowy Owl", Lat: 42.1, Lon: -71.1},
		{CommonName: "Snowy Owl", Lat: 42.1, Lon: -71.1}, // duplicate surfaced, not hidden
		{CommonName: "Blue Jay", Lat: 42.1, Lon: -71.1},
		{CommonName: "Blue Jay", Lat: 42.2, Lon: -71.2},
		{CommonName: "Painted Bunting", Lat: 42.3, Lon: -71.3},
	}

	agg := AggregateObservations(records)

	assert.Equal(t, len(records), agg.TotalSightings())
}

func TestAggregateObservations_CoordinatesMatchExactlyOrNotAtAll(t *testing.T) {
	// Differ only in the final bits: still two distinct locations.
	records := []ObservationRecord{
		{CommonName: "Blue Jay", Lat: 42.0000001, Lon: -71.0},
		{CommonName: "Blue Jay", Lat: 42.0000002, Lon: -71.0},
	}

	agg := AggregateObservations(records)

	assert.Len(t, agg.Locations, 2)
}

func TestAggregateObservations_Defaults(t *testing.T) {
	records := []ObservationRecord{
		{Lat: 42.0, Lon: -71.0}, // no name, no location, no count, no checklist
	}

	agg := AggregateObservations(records)

	details := agg.Locations[LocationKey{Lat: 42.0, Lon: -71.0}][UnknownSpecies]
	require.Len(t, details, 1)
	assert.Equal(t, UnknownLocation, details[0].LocationName)
	assert.Equal(t, UnknownCount, details[0].Count)
	assert.Empty(t, details[0].ChecklistURL)
	assert.Equal(t, []string{UnknownSpecies}, agg.Species)
}

func TestAggregateObservations_SpeciesSortedLexically(t *testing.T) {
	records := []ObservationRecord{
		{CommonName: "Snowy Owl", Lat: 1, Lon: 1},
		{CommonName: "American Robin", Lat: 2, Lon: 2},
		{CommonName: "Blue Jay", Lat: 3, Lon: 3},
	}

	agg := AggregateObservations(records)

	assert.Equal(t, []string{"American Robin", "Blue Jay", "Snowy Owl"}, agg.Species)
}

func TestAggregateObservations_EmptyInput(t *testing.T) {
	agg := AggregateObservations(nil)

	assert.True(t, agg.Empty())
	assert.Zero(t, agg.TotalSightings())
	assert.Empty(t, agg.Species)
}
