// Package domain models eBird notable-observation data and the pure logic
// of one map build: grouping, coloring, layer selection, and run timestamps.
//
// # Data Source
//
// Observations come from the eBird API 2.0 "recent notable observations"
// endpoint (https://api.ebird.org/v2/data/obs/geo/recent/notable), queried
// by center coordinate, radius, and lookback window. A notable observation
// is one the eBird review process flags as locally rare or out of season.
// The feed is a flat JSON array; field names follow the eBird schema
// (comName, locName, obsDt, howMany, subId).
//
// # Field Conventions
//
// Missing common name resolves to "Unknown"; missing location name to
// "Unknown location". The observation date (obsDt, e.g. "2026-08-30 07:15")
// is an opaque display string and is never parsed. howMany is absent when
// the observer reported presence without a count; that renders as
// "Unknown". subId identifies the checklist the sighting belongs to and,
// when present, derives a verification link
// https://ebird.org/checklist/{subId}.
//
// # Grouping
//
// Sightings group by the exact (lat, lon) pair as reported. Two records
// merge only when their coordinates are bit-identical; no proximity
// tolerance is applied. eBird hotspot records share exact coordinates, so
// in practice this groups by hotspot.
//
// # Species Colors
//
// Each species gets a stable display color: SHA-1 of the common name
// reduced to a hue in [0, 360), converted to RGB at fixed saturation 0.70
// and lightness 0.45. The color depends on nothing but the name, so legends
// and markers stay consistent across builds and across machines.
package domain
