// Package render turns one build's aggregated observations into a
// self-contained interactive Leaflet map document.
package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/mmcgee/ebird-notable-maps/internal/domain"
)

//go:embed map.tmpl
var mapTemplateText string

// fallbackColor marks a species somehow missing from the color table.
const fallbackColor = "#444444"

// MapData is everything one build hands to the rendering sink.
type MapData struct {
	CenterLat float64
	CenterLon float64
	RadiusKm  int
	BackDays  int
	ZoomStart int
	BuiltAt   string // display timestamp from the run stamp
	Notice    string // center-screen notice, empty for none
	Strategy  domain.LayerStrategy
	Colors    domain.ColorTable
	Aggregate domain.Aggregate
}

// Renderer produces map artifacts from build data.
type Renderer struct {
	tmpl *template.Template
}

// New parses the map template. Panics only on a programmer error in the
// embedded template, never on input data.
func New() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("map").Parse(mapTemplateText)),
	}
}

// layerView is one toggleable marker group in the rendered document.
type layerView struct {
	Name    string       `json:"name"`
	Markers []markerView `json:"markers"`
}

type markerView struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Species string  `json:"species"`
	Color   string  `json:"color"`
	Popup   string  `json:"popup"`
}

type templateData struct {
	Title      string
	BuiltAt    string
	Notice     string
	CenterLat  float64
	CenterLon  float64
	RadiusKm   int
	ZoomStart  int
	Legend     domain.ColorTable
	PerSpecies template.JS // pre-encoded "true"/"false"; the JS escaper pads raw booleans
	LayersJSON template.JS
}

// Render produces the complete HTML artifact for one build.
func (r *Renderer) Render(data MapData) ([]byte, error) {
	layers, err := buildLayers(data)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	err = r.tmpl.Execute(&buf, templateData{
		Title:      fmt.Sprintf("eBird Notable - %d km radius - last %d day(s)", data.RadiusKm, data.BackDays),
		BuiltAt:    data.BuiltAt,
		Notice:     data.Notice,
		CenterLat:  data.CenterLat,
		CenterLon:  data.CenterLon,
		RadiusKm:   data.RadiusKm,
		ZoomStart:  data.ZoomStart,
		Legend:     data.Colors,
		PerSpecies: template.JS(strconv.FormatBool(data.Strategy == domain.StrategyPerSpecies)),
		LayersJSON: layers,
	})
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	return []byte(buf.String()), nil
}

// buildLayers shapes the aggregate into marker layers and serializes them
// for the map script. Per-species strategy yields one layer per species in
// legend order; combined yields a single layer holding everything.
func buildLayers(data MapData) (template.JS, error) {
	perSpecies := make(map[string][]markerView)

	for _, key := range sortedKeys(data.Aggregate.Locations) {
		species := data.Aggregate.Locations[key]
		for _, sp := range sortedSpecies(species) {
			details := species[sp]
			perSpecies[sp] = append(perSpecies[sp], markerView{
				Lat:     key.Lat,
				Lon:     key.Lon,
				Species: sp,
				Color:   data.Colors.Hex(sp, fallbackColor),
				Popup:   popupHTML(sp, details),
			})
		}
	}

	var layers []layerView
	if data.Strategy == domain.StrategyPerSpecies {
		for _, sc := range data.Colors {
			layers = append(layers, layerView{Name: sc.Name, Markers: markersOrEmpty(perSpecies[sc.Name])})
		}
	} else {
		combined := layerView{Name: "Notable sightings", Markers: []markerView{}}
		for _, sc := range data.Colors {
			combined.Markers = append(combined.Markers, perSpecies[sc.Name]...)
		}
		layers = []layerView{combined}
	}
	if layers == nil {
		layers = []layerView{}
	}

	encoded, err := json.Marshal(layers)
	if err != nil {
		return "", fmt.Errorf("encode layers: %w", err)
	}
	// json.Marshal escapes <, > and & inside strings, so the payload is
	// safe to inline in a script element.
	return template.JS(encoded), nil
}

// popupHTML lists every sighting at one location for one species. All
// record-derived text is escaped; only markup produced here is trusted.
func popupHTML(species string, details []domain.SightingDetail) string {
	entries := make([]string, 0, len(details))
	for _, d := range details {
		entry := fmt.Sprintf("<b>%s</b> (%s) on %s",
			html.EscapeString(species), html.EscapeString(d.Count), html.EscapeString(d.ObservedAt))
		if d.ChecklistURL != "" {
			entry += fmt.Sprintf(" [<a href='%s' target='_blank' rel='noopener'>Checklist</a>]",
				html.EscapeString(d.ChecklistURL))
		}
		entries = append(entries, entry)
	}

	locName := domain.UnknownLocation
	if len(details) > 0 {
		locName = details[0].LocationName
	}

	return fmt.Sprintf(
		`<div style="font-size:13px;"><div><b>Location:</b> %s</div><hr style="margin:6px 0;"><div>%s</div></div>`,
		html.EscapeString(locName), strings.Join(entries, "<br>"))
}

func markersOrEmpty(m []markerView) []markerView {
	if m == nil {
		return []markerView{}
	}
	return m
}

func sortedKeys(locations map[domain.LocationKey]map[string][]domain.SightingDetail) []domain.LocationKey {
	keys := make([]domain.LocationKey, 0, len(locations))
	for k := range locations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lat != keys[j].Lat {
			return keys[i].Lat < keys[j].Lat
		}
		return keys[i].Lon < keys[j].Lon
	})
	return keys
}

func sortedSpecies(species map[string][]domain.SightingDetail) []string {
	names := make([]string, 0, len(species))
	for sp := range species {
		names = append(names, sp)
	}
	sort.Strings(names)
	return names
}
