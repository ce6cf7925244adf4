package domain

import "sort"

// Aggregate is the grouped view of one build's observations: per exact
// location, per species, the sightings in feed arrival order.
type Aggregate struct {
	Locations map[LocationKey]map[string][]SightingDetail
	// Species holds the distinct species names encountered, sorted
	// lexicographically for stable legend order.
	Species []string
}

// Empty reports whether the aggregate contains no sightings.
func (a Aggregate) Empty() bool {
	return len(a.Locations) == 0
}

// TotalSightings counts every detail entry across all locations and species.
// Aggregation never drops records, so this equals the input record count.
func (a Aggregate) TotalSightings() int {
	total := 0
	for _, species := range a.Locations {
		for _, details := range species {
			total += len(details)
		}
	}
	return total
}

// AggregateObservations groups records by exact coordinates and species.
// Accumulation is append-only with no deduplication: if the feed carries the
// same sighting twice it appears twice, surfaced rather than hidden.
func AggregateObservations(records []ObservationRecord) Aggregate {
	agg := Aggregate{
		Locations: make(map[LocationKey]map[string][]SightingDetail),
	}
	seen := make(map[string]struct{})

	for _, rec := range records {
		key := LocationKey{Lat: rec.Lat, Lon: rec.Lon}
		species := rec.Species()

		if _, ok := agg.Locations[key]; !ok {
			agg.Locations[key] = make(map[string][]SightingDetail)
		}
		agg.Locations[key][species] = append(agg.Locations[key][species], SightingDetail{
			LocationName: rec.Location(),
			ObservedAt:   rec.ObsDate,
			Count:        rec.CountLabel(),
			ChecklistURL: rec.ChecklistURL(),
		})

		if _, ok := seen[species]; !ok {
			seen[species] = struct{}{}
			agg.Species = append(agg.Species, species)
		}
	}

	sort.Strings(agg.Species)
	return agg
}
