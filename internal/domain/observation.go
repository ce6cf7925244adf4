package domain

import "fmt"

const (
	// UnknownSpecies is the display name for records missing a common name.
	UnknownSpecies = "Unknown"
	// UnknownLocation is the display name for records missing a location name.
	UnknownLocation = "Unknown location"
	// UnknownCount renders in place of an absent howMany value.
	UnknownCount = "Unknown"

	checklistURLFormat = "https://ebird.org/checklist/%s"
)

// ObservationRecord is one reported sighting as returned by the eBird API.
// Records are immutable once received.
type ObservationRecord struct {
	SpeciesCode string  `json:"speciesCode,omitempty"`
	CommonName  string  `json:"comName,omitempty"`
	SciName     string  `json:"sciName,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lng"`
	LocName     string  `json:"locName,omitempty"`
	ObsDate     string  `json:"obsDt,omitempty"`
	HowMany     *int    `json:"howMany,omitempty"`
	ChecklistID string  `json:"subId,omitempty"`
}

// Species returns the record's common name, or UnknownSpecies when absent.
func (r ObservationRecord) Species() string {
	if r.CommonName == "" {
		return UnknownSpecies
	}
	return r.CommonName
}

// Location returns the record's location name, or UnknownLocation when absent.
func (r ObservationRecord) Location() string {
	if r.LocName == "" {
		return UnknownLocation
	}
	return r.LocName
}

// CountLabel returns the observed count as display text, UnknownCount when
// the observer reported presence without a number.
func (r ObservationRecord) CountLabel() string {
	if r.HowMany == nil {
		return UnknownCount
	}
	return fmt.Sprintf("%d", *r.HowMany)
}

// ChecklistURL returns the verification link derived from the checklist
// identifier, or "" when the record carries none.
func (r ObservationRecord) ChecklistURL() string {
	if r.ChecklistID == "" {
		return ""
	}
	return fmt.Sprintf(checklistURLFormat, r.ChecklistID)
}

// LocationKey groups sightings by their exact reported coordinates.
// Comparison is bit-identical; no rounding or proximity tolerance.
type LocationKey struct {
	Lat float64
	Lon float64
}

// SightingDetail is one entry in a location/species popup list.
type SightingDetail struct {
	LocationName string
	ObservedAt   string
	Count        string
	ChecklistURL string // empty when the record has no checklist id
}
