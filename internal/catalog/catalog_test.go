package catalog

import (
	"context"
	"errors"
	"testing"

	"volcano-platform/internal/models"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// One collector for the whole package; promauto panics on duplicate
// registration.
var testMetrics = metrics.NewCollector("catalog_test")

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("catalog-test", "0.0.0", logging.ErrorLevel)
}

func intPtr(v int) *int { return &v }

// fakeLoader serves in-memory tables, with per-table error injection
type fakeLoader struct {
	shortAliases     map[string]string
	canonicalAliases map[string]string
	events           []models.EruptionEvent
	samples          []models.Sample
	failOn           string
}

func (f *fakeLoader) LoadShortNameAliases(ctx context.Context) (map[string]string, error) {
	if f.failOn == "short" {
		return nil, errors.New("injected failure")
	}
	return f.shortAliases, nil
}

func (f *fakeLoader) LoadCanonicalNameAliases(ctx context.Context) (map[string]string, error) {
	if f.failOn == "canonical" {
		return nil, errors.New("injected failure")
	}
	return f.canonicalAliases, nil
}

func (f *fakeLoader) LoadEruptionEvents(ctx context.Context) ([]models.EruptionEvent, error) {
	if f.failOn == "events" {
		return nil, errors.New("injected failure")
	}
	return f.events, nil
}

func (f *fakeLoader) LoadSamples(ctx context.Context) ([]models.Sample, error) {
	if f.failOn == "samples" {
		return nil, errors.New("injected failure")
	}
	return f.samples, nil
}

func populatedLoader() *fakeLoader {
	return &fakeLoader{
		shortAliases:     map[string]string{"krakatau 1883 deposit": "krakatau"},
		canonicalAliases: map[string]string{"krakatau": "Krakatau"},
		events: []models.EruptionEvent{
			{VolcanoName: "Krakatau", StartYear: 1883, EndYear: intPtr(1883)},
			{VolcanoName: "Krakatau", StartYear: 1927, EndYear: intPtr(1930)},
			{VolcanoName: "Etna", StartYear: 1669},
		},
		samples: []models.Sample{
			{VolcanoNameRaw: "krakatau", EruptionYear: intPtr(1883), Oxides: map[string]float64{}},
			{VolcanoNameRaw: "etna", EruptionYear: intPtr(1669), Oxides: map[string]float64{}},
			{VolcanoNameRaw: "krakatau", EruptionYear: intPtr(1927), Oxides: map[string]float64{}},
		},
	}
}

// TestLoad tests the startup load and its indexing
func TestLoad(t *testing.T) {
	cat, err := Load(context.Background(), populatedLoader(), testLogger(), testMetrics)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cat.Samples("krakatau"); len(got) != 2 {
		t.Errorf("Samples(krakatau) has %d rows, want 2", len(got))
	}
	if got := cat.Samples("unknown"); len(got) != 0 {
		t.Errorf("Samples(unknown) has %d rows, want 0", len(got))
	}

	events := cat.Events("Krakatau")
	if len(events) != 2 {
		t.Fatalf("Events(Krakatau) has %d rows, want 2", len(events))
	}
	// Table order is the tie-break order and must survive indexing
	if events[0].StartYear != 1883 || events[1].StartYear != 1927 {
		t.Errorf("Events(Krakatau) order = (%d, %d), want (1883, 1927)", events[0].StartYear, events[1].StartYear)
	}

	names := cat.VolcanoNames()
	if len(names) != 2 || names[0] != "etna" || names[1] != "krakatau" {
		t.Errorf("VolcanoNames() = %v, want [etna krakatau]", names)
	}

	if cat.RawToShort()["krakatau 1883 deposit"] != "krakatau" {
		t.Error("RawToShort() should expose the short-name alias table")
	}
	if cat.ShortToCanonical()["krakatau"] != "Krakatau" {
		t.Error("ShortToCanonical() should expose the canonical alias table")
	}
}

// TestLoad_Failures tests that load errors and empty tables abort
// initialization
func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeLoader)
	}{
		{"short alias load error", func(f *fakeLoader) { f.failOn = "short" }},
		{"canonical alias load error", func(f *fakeLoader) { f.failOn = "canonical" }},
		{"event load error", func(f *fakeLoader) { f.failOn = "events" }},
		{"sample load error", func(f *fakeLoader) { f.failOn = "samples" }},
		{"empty canonical alias table", func(f *fakeLoader) { f.canonicalAliases = nil }},
		{"empty event table", func(f *fakeLoader) { f.events = nil }},
		{"empty sample table", func(f *fakeLoader) { f.samples = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := populatedLoader()
			tt.mutate(loader)

			if _, err := Load(context.Background(), loader, testLogger(), testMetrics); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}
