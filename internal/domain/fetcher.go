package domain

import "context"

// Query describes one notable-observations lookup. RadiusKm accepts
// fractional input but the eBird API and the fetch cache both coerce it to
// whole kilometers.
type Query struct {
	Lat        float64
	Lon        float64
	RadiusKm   float64
	BackDays   int
	MaxResults int
}

// ObservationFetcher retrieves recent notable observations around a point.
type ObservationFetcher interface {
	// RecentNotable performs a single fetch attempt. No retries; the
	// caller decides how to degrade on error.
	RecentNotable(ctx context.Context, q Query) ([]ObservationRecord, error)
}
