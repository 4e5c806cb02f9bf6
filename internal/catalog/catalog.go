// Package catalog holds the process-wide reference tables: both alias
// maps and the two source datasets, loaded once at startup and treated as
// immutable for the lifetime of the process. Concurrent requests share
// the catalog by reference; no locking is needed because no writes occur
// after Load.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"volcano-platform/internal/models"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// Loader supplies the reference tables, typically from PostgreSQL.
type Loader interface {
	LoadShortNameAliases(ctx context.Context) (map[string]string, error)
	LoadCanonicalNameAliases(ctx context.Context) (map[string]string, error)
	LoadEruptionEvents(ctx context.Context) ([]models.EruptionEvent, error)
	LoadSamples(ctx context.Context) ([]models.Sample, error)
}

// Catalog indexes the reference tables for the matching pipeline.
type Catalog struct {
	rawToShort       map[string]string
	shortToCanonical map[string]string
	samplesByVolcano map[string][]models.Sample
	eventsByVolcano  map[string][]models.EruptionEvent
	volcanoNames     []string
}

// New builds a catalog from in-memory tables. Event table order is
// preserved per volcano; it is the deterministic tie-break order for
// ambiguous matches.
func New(rawToShort, shortToCanonical map[string]string, samples []models.Sample, events []models.EruptionEvent) *Catalog {
	c := &Catalog{
		rawToShort:       rawToShort,
		shortToCanonical: shortToCanonical,
		samplesByVolcano: make(map[string][]models.Sample),
		eventsByVolcano:  make(map[string][]models.EruptionEvent),
	}

	for _, s := range samples {
		c.samplesByVolcano[s.VolcanoNameRaw] = append(c.samplesByVolcano[s.VolcanoNameRaw], s)
	}
	for _, e := range events {
		c.eventsByVolcano[e.VolcanoName] = append(c.eventsByVolcano[e.VolcanoName], e)
	}

	c.volcanoNames = make([]string, 0, len(c.samplesByVolcano))
	for name := range c.samplesByVolcano {
		c.volcanoNames = append(c.volcanoNames, name)
	}
	sort.Strings(c.volcanoNames)

	return c
}

// Load reads every reference table through the loader and builds the
// catalog. A missing or empty table is a programming-contract violation
// and aborts initialization; per-request processing never fails on data.
func Load(ctx context.Context, loader Loader, logger *logging.StructuredLogger, collector *metrics.Collector) (*Catalog, error) {
	start := time.Now()

	rawToShort, err := loader.LoadShortNameAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load short-name aliases: %w", err)
	}

	shortToCanonical, err := loader.LoadCanonicalNameAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical-name aliases: %w", err)
	}
	if len(shortToCanonical) == 0 {
		return nil, fmt.Errorf("canonical-name alias table is empty")
	}

	events, err := loader.LoadEruptionEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load eruption events: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("eruption event table is empty")
	}

	samples, err := loader.LoadSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("sample table is empty")
	}

	c := New(rawToShort, shortToCanonical, samples, events)

	duration := time.Since(start)
	collector.CatalogLoadDuration.Observe(duration.Seconds())
	collector.SetCatalogEntries(len(samples), len(events), len(rawToShort)+len(shortToCanonical))

	logger.Info(ctx, "[CATALOG_LOADED] Reference tables loaded", logging.Fields{
		"samples":         len(samples),
		"eruption_events": len(events),
		"short_aliases":   len(rawToShort),
		"gvp_aliases":     len(shortToCanonical),
		"volcanoes":       len(c.volcanoNames),
		"duration_ms":     duration.Milliseconds(),
	})

	return c, nil
}

// RawToShort returns the long name -> short form alias table.
func (c *Catalog) RawToShort() map[string]string {
	return c.rawToShort
}

// ShortToCanonical returns the short form -> GVP name alias table.
func (c *Catalog) ShortToCanonical() map[string]string {
	return c.shortToCanonical
}

// Samples returns the sample rows for a raw volcano name.
func (c *Catalog) Samples(rawName string) []models.Sample {
	return c.samplesByVolcano[rawName]
}

// Events returns the eruption events for a canonical volcano name, in
// original table order.
func (c *Catalog) Events(canonical string) []models.EruptionEvent {
	return c.eventsByVolcano[canonical]
}

// EventsByVolcano returns the full event index for the matcher and joiner.
func (c *Catalog) EventsByVolcano() map[string][]models.EruptionEvent {
	return c.eventsByVolcano
}

// VolcanoNames returns the sorted raw sample names, for the name dropdown.
func (c *Catalog) VolcanoNames() []string {
	return c.volcanoNames
}
