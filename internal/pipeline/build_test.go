package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcgee/ebird-notable-maps/internal/archive"
	"github.com/mmcgee/ebird-notable-maps/internal/config"
	"github.com/mmcgee/ebird-notable-maps/internal/domain"
	"github.com/mmcgee/ebird-notable-maps/internal/observability"
	"github.com/mmcgee/ebird-notable-maps/internal/pipeline"
	"github.com/mmcgee/ebird-notable-maps/internal/render"
)

// --- mocks ---

type mockFetcher struct {
	records []domain.ObservationRecord
	err     error
	calls   int
}

func (m *mockFetcher) RecentNotable(_ context.Context, _ domain.Query) ([]domain.ObservationRecord, error) {
	m.calls++
	return m.records, m.err
}

type mockNotifier struct {
	results []pipeline.BuildResult
	err     error
}

func (m *mockNotifier) NotifyBuild(_ context.Context, r pipeline.BuildResult) error {
	m.results = append(m.results, r)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OutputDir:             filepath.Join(t.TempDir(), "bird_maps"),
		KeepCount:             30,
		CenterLat:             42.3974042,
		CenterLon:             -71.1366337,
		RadiusKm:              10,
		BackDays:              2,
		MaxResults:            200,
		ZoomStart:             11,
		SpeciesLayerThreshold: 25,
		RunDate:               "2026-08-31",
		RunSlot:               "noon",
	}
}

func newBuilder(cfg *config.Config, fetcher domain.ObservationFetcher, notifier pipeline.Notifier) *pipeline.Builder {
	newFetcher := func() domain.ObservationFetcher { return fetcher }
	return pipeline.New(cfg, newFetcher, render.New(), notifier, discardLogger(), observability.NewMetricsForTesting())
}

// --- tests ---

func TestBuild_PublishesArtifactAndLatest(t *testing.T) {
	cfg := testConfig(t)
	howMany := 2
	fetcher := &mockFetcher{records: []domain.ObservationRecord{
		{CommonName: "Blue Jay", Lat: 42.0, Lon: -71.0, LocName: "Park", ObsDate: "2026-08-30 07:15", HowMany: &howMany},
		{CommonName: "Snowy Owl", Lat: 42.1, Lon: -71.1, LocName: "Beach", ObsDate: "2026-08-30 09:00"},
	}}
	b := newBuilder(cfg, fetcher, nil)

	result, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Observations)
	assert.Equal(t, 2, result.Species)
	assert.Equal(t, domain.StrategyPerSpecies, result.Strategy)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "ebird_radius_map_2026-08-31_12-00-00_10km.html"), result.ArtifactPath)

	doc, err := os.ReadFile(result.ArtifactPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Blue Jay")

	latest, err := os.ReadFile(filepath.Join(cfg.OutputDir, archive.LatestName))
	require.NoError(t, err)
	assert.Equal(t, doc, latest)

	assert.NoError(t, b.CheckReadiness(context.Background()))
}

func TestBuild_EmptyFeedStillPublishes(t *testing.T) {
	cfg := testConfig(t)
	b := newBuilder(cfg, &mockFetcher{}, nil)

	result, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Observations)
	doc, err := os.ReadFile(result.ArtifactPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "No current notable birds")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, archive.LatestName))
	assert.NoError(t, err)
}

func TestBuild_FetchFailureDegradesToEmptyMap(t *testing.T) {
	cfg := testConfig(t)
	b := newBuilder(cfg, &mockFetcher{err: errors.New("ebird down")}, nil)

	result, err := b.Build(context.Background())
	require.NoError(t, err, "fetch failure must not fail the build")

	doc, err := os.ReadFile(result.ArtifactPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "No current notable birds")
}

func TestBuild_CombinedStrategyAboveThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.SpeciesLayerThreshold = 2

	records := []domain.ObservationRecord{
		{CommonName: "Blue Jay", Lat: 42.0, Lon: -71.0},
		{CommonName: "Snowy Owl", Lat: 42.1, Lon: -71.1},
		{CommonName: "American Robin", Lat: 42.2, Lon: -71.2},
	}
	b := newBuilder(cfg, &mockFetcher{records: records}, nil)

	result, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyCombined, result.Strategy)
}

func TestBuild_PrunesBeyondKeepCount(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeepCount = 2
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	for _, s := range []string{"2026-08-27_12-00-00", "2026-08-28_12-00-00", "2026-08-29_12-00-00"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, archive.ArtifactName(s, 10)), []byte("old"), 0o644))
	}

	b := newBuilder(cfg, &mockFetcher{}, nil)
	result, err := b.Build(context.Background())
	require.NoError(t, err)

	// Four timestamped artifacts existed after publishing; two survive.
	assert.Equal(t, 2, result.Pruned)
	_, err = os.Stat(result.ArtifactPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, archive.ArtifactName("2026-08-27_12-00-00", 10)))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_NotifierReceivesSummary(t *testing.T) {
	cfg := testConfig(t)
	notifier := &mockNotifier{}
	b := newBuilder(cfg, &mockFetcher{records: []domain.ObservationRecord{{CommonName: "Blue Jay", Lat: 42, Lon: -71}}}, notifier)

	result, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, notifier.results, 1)
	assert.Equal(t, result, notifier.results[0])
}

func TestBuild_NotifierFailureIsSwallowed(t *testing.T) {
	cfg := testConfig(t)
	notifier := &mockNotifier{err: errors.New("broker unreachable")}
	b := newBuilder(cfg, &mockFetcher{}, notifier)

	_, err := b.Build(context.Background())
	assert.NoError(t, err)
}

func TestCheckReadiness_BeforeFirstBuild(t *testing.T) {
	b := newBuilder(testConfig(t), &mockFetcher{}, nil)
	assert.Error(t, b.CheckReadiness(context.Background()))
}
