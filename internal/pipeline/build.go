// Package pipeline orchestrates one map build end to end: resolve the run
// stamp, fetch observations, aggregate, color, select the layer topology,
// render, publish, and prune the archive.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mmcgee/ebird-notable-maps/internal/archive"
	"github.com/mmcgee/ebird-notable-maps/internal/config"
	"github.com/mmcgee/ebird-notable-maps/internal/domain"
	"github.com/mmcgee/ebird-notable-maps/internal/observability"
	"github.com/mmcgee/ebird-notable-maps/internal/render"
)

// emptyNotice is shown on the published map when the window has no records,
// whether the feed was legitimately empty or the fetch failed.
const emptyNotice = "No current notable birds for the selected window."

// Renderer turns build data into an artifact document.
type Renderer interface {
	Render(data render.MapData) ([]byte, error)
}

// Notifier publishes a summary after a successful build. Best effort: a
// notification failure never fails the build.
type Notifier interface {
	NotifyBuild(ctx context.Context, result BuildResult) error
}

// BuildResult summarizes one published build.
type BuildResult struct {
	ArtifactPath string               `json:"artifact_path"`
	BuiltAt      time.Time            `json:"built_at"`
	Observations int                  `json:"observations"`
	Species      int                  `json:"species"`
	Strategy     domain.LayerStrategy `json:"strategy"`
	RadiusKm     int                  `json:"radius_km"`
	Pruned       int                  `json:"pruned"`
}

// Builder runs map builds. Safe for sequential use only; builds never
// overlap within one process.
type Builder struct {
	cfg        *config.Config
	newFetcher func() domain.ObservationFetcher
	renderer   Renderer
	notifier   Notifier // nil when notification is disabled
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	last       atomic.Pointer[BuildResult]
}

// New creates a Builder. newFetcher is invoked once per build so the fetch
// cache's lifetime stays tied to one build invocation, not to the process.
// Pass a nil notifier to disable build summaries.
func New(cfg *config.Config, newFetcher func() domain.ObservationFetcher, renderer Renderer, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		cfg:        cfg,
		newFetcher: newFetcher,
		renderer:   renderer,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once at least one artifact has been published.
func (b *Builder) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("no artifact published yet")
	}
	return nil
}

// LastBuild returns the most recent build summary, if any.
func (b *Builder) LastBuild() (BuildResult, bool) {
	if r := b.last.Load(); r != nil {
		return *r, true
	}
	return BuildResult{}, false
}

// Build produces and publishes one map artifact.
//
// A fetch failure does not fail the build: the pipeline degrades to an
// empty record set and still publishes a valid artifact carrying the
// empty-window notice. Only a render or publish failure is returned.
func (b *Builder) Build(ctx context.Context) (BuildResult, error) {
	start := time.Now()

	stamp := domain.ResolveRunStamp(b.cfg.RunDate, b.cfg.RunSlot)

	fetcher := b.newFetcher()
	records, err := fetcher.RecentNotable(ctx, domain.Query{
		Lat:        b.cfg.CenterLat,
		Lon:        b.cfg.CenterLon,
		RadiusKm:   b.cfg.RadiusKm,
		BackDays:   b.cfg.BackDays,
		MaxResults: b.cfg.MaxResults,
	})
	if err != nil {
		// Degrade to an empty map rather than halting; the notice on
		// the artifact tells the viewer the window is empty.
		b.logger.Warn("fetch failed, publishing empty map", "error", err)
		records = nil
	}

	agg := domain.AggregateObservations(records)
	colors := domain.BuildColorTable(agg.Species)
	strategy := domain.SelectLayerStrategy(len(agg.Species), b.cfg.SpeciesLayerThreshold)

	notice := ""
	if agg.Empty() {
		notice = emptyNotice
	}

	doc, err := b.renderer.Render(render.MapData{
		CenterLat: b.cfg.CenterLat,
		CenterLon: b.cfg.CenterLon,
		RadiusKm:  int(b.cfg.RadiusKm),
		BackDays:  b.cfg.BackDays,
		ZoomStart: b.cfg.ZoomStart,
		BuiltAt:   stamp.Display,
		Notice:    notice,
		Strategy:  strategy,
		Colors:    colors,
		Aggregate: agg,
	})
	if err != nil {
		b.metrics.BuildsTotal.WithLabelValues("failed").Inc()
		return BuildResult{}, err
	}

	name := archive.ArtifactName(stamp.FileSafe, int(b.cfg.RadiusKm))
	path, err := archive.Publish(b.cfg.OutputDir, name, doc)
	if err != nil {
		b.metrics.BuildsTotal.WithLabelValues("failed").Inc()
		return BuildResult{}, err
	}

	pruned, err := archive.Prune(b.cfg.OutputDir, b.cfg.KeepCount, b.logger)
	if err != nil {
		// Retention is advisory; a failed listing never unpublishes
		// the artifact we just wrote.
		b.logger.Warn("archive prune failed", "error", err)
	}

	result := BuildResult{
		ArtifactPath: path,
		BuiltAt:      stamp.Instant,
		Observations: agg.TotalSightings(),
		Species:      len(agg.Species),
		Strategy:     strategy,
		RadiusKm:     int(b.cfg.RadiusKm),
		Pruned:       pruned,
	}

	b.ready.Store(true)
	b.last.Store(&result)
	b.metrics.BuildsTotal.WithLabelValues("published").Inc()
	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.metrics.LastBuildUnix.Set(float64(stamp.Instant.Unix()))
	b.metrics.ObservationsPer.Observe(float64(result.Observations))
	b.metrics.SpeciesPer.Observe(float64(result.Species))
	b.metrics.ArtifactsPruned.Add(float64(pruned))

	b.logger.Info("map published",
		"artifact", path,
		"observations", result.Observations,
		"species", result.Species,
		"strategy", result.Strategy,
		"pruned", pruned,
	)

	if b.notifier != nil {
		if err := b.notifier.NotifyBuild(ctx, result); err != nil {
			b.logger.Warn("build notification failed", "error", err)
		}
	}

	return result, nil
}
