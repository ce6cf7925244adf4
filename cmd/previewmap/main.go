// Command previewmap renders a map artifact from a JSON fixture of eBird
// observation records, without touching the live API. It drives the actual
// aggregation, coloring, and rendering code, so a preview looks exactly like
// a production build of the same feed.
//
// Usage:
//
//	go run ./cmd/previewmap \
//	  -in data/mock/notable_sample.json \
//	  -out /tmp/preview.html \
//	  -date 2026-08-31 -slot noon
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mmcgee/ebird-notable-maps/internal/domain"
	"github.com/mmcgee/ebird-notable-maps/internal/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to a JSON array of eBird observation records")
	out := flag.String("out", "", "output path for the rendered HTML map")
	lat := flag.Float64("lat", 42.3974042, "map center latitude")
	lon := flag.Float64("lon", -71.1366337, "map center longitude")
	radius := flag.Float64("radius", 10, "search radius in km, shown in the title and rings")
	back := flag.Int("back", 2, "lookback window in days, shown in the title")
	zoom := flag.Int("zoom", 11, "initial zoom level")
	threshold := flag.Int("threshold", 25, "species count above which layers collapse to one")
	date := flag.String("date", "", "run date override, YYYY-MM-DD")
	slot := flag.String("slot", "", "run slot override, noon or evening")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	records, err := loadRecords(*in)
	if err != nil {
		return fmt.Errorf("loading %s: %w", *in, err)
	}

	stamp := domain.ResolveRunStamp(*date, *slot)
	agg := domain.AggregateObservations(records)
	colors := domain.BuildColorTable(agg.Species)
	strategy := domain.SelectLayerStrategy(len(agg.Species), *threshold)

	var notice string
	if agg.Empty() {
		notice = "No current notable birds for the selected window."
	}

	doc, err := render.New().Render(render.MapData{
		CenterLat: *lat,
		CenterLon: *lon,
		RadiusKm:  int(*radius),
		BackDays:  *back,
		ZoomStart: *zoom,
		BuiltAt:   stamp.Display,
		Notice:    notice,
		Strategy:  strategy,
		Colors:    colors,
		Aggregate: agg,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, doc, 0o600); err != nil {
		return err
	}

	log.Printf("wrote %s", *out)
	printStats(agg, colors, strategy)
	return nil
}

func loadRecords(path string) ([]domain.ObservationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.ObservationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return records, nil
}

func printStats(agg domain.Aggregate, colors domain.ColorTable, strategy domain.LayerStrategy) {
	fmt.Println("\n=== Preview stats ===")
	fmt.Printf("Sightings: %d\n", agg.TotalSightings())
	fmt.Printf("Locations: %d\n", len(agg.Locations))
	fmt.Printf("Species: %d (strategy: %s)\n", len(agg.Species), strategy)
	for _, sc := range colors {
		fmt.Printf("  %s %s\n", sc.Hex, sc.Name)
	}
}
