package repository

import (
	"context"
	"fmt"
	"time"

	"volcano-platform/internal/models"
	"volcano-platform/pkg/database"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// VolcanoRepository provides data access for the two geoscience datasets
// and the name alias tables. The read side loads whole tables: the
// pipeline works against an in-memory catalog built once at startup, so
// there are no per-request queries.
type VolcanoRepository interface {
	// Reference-table loads (satisfies catalog.Loader)
	LoadShortNameAliases(ctx context.Context) (map[string]string, error)
	LoadCanonicalNameAliases(ctx context.Context) (map[string]string, error)
	LoadEruptionEvents(ctx context.Context) ([]models.EruptionEvent, error)
	LoadSamples(ctx context.Context) ([]models.Sample, error)

	// Ingestion operations
	UpsertShortNameAlias(ctx context.Context, rawName, shortName string) error
	UpsertCanonicalNameAlias(ctx context.Context, shortName, canonicalName string) error
	CreateEruptionEventsBatch(ctx context.Context, events []*models.EruptionEvent) error
	CreateSamplesBatch(ctx context.Context, samples []*models.Sample) error

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// volcanoRepository implements VolcanoRepository
type volcanoRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewVolcanoRepository creates a new volcano repository
func NewVolcanoRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) VolcanoRepository {
	return &volcanoRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// aliasRow is one alias mapping, read with column aliases so both tables
// share the scan target.
type aliasRow struct {
	Source string `db:"source"`
	Target string `db:"target"`
}

// sampleRow maps the rock_samples columns; oxides are nullable because
// GEOROC measurements are sparse.
type sampleRow struct {
	VolcanoName   string   `db:"volcano_name"`
	EruptionYear  *int     `db:"eruption_year"`
	EruptionMonth *int     `db:"eruption_month"`
	EruptionDay   *int     `db:"eruption_day"`
	SiO2          *float64 `db:"sio2"`
	Na2O          *float64 `db:"na2o"`
	K2O           *float64 `db:"k2o"`
	FeO           *float64 `db:"feo"`
	CaO           *float64 `db:"cao"`
	MgO           *float64 `db:"mgo"`
	RockClass     string   `db:"rock_class"`
}

// LoadShortNameAliases loads the long name -> short form table
func (r *volcanoRepository) LoadShortNameAliases(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT raw_name AS source, short_name AS target
		FROM name_aliases_short
	`
	return r.loadAliases(ctx, "load_short_aliases", query)
}

// LoadCanonicalNameAliases loads the short form -> GVP name table
func (r *volcanoRepository) LoadCanonicalNameAliases(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT short_name AS source, canonical_name AS target
		FROM name_aliases_canonical
	`
	return r.loadAliases(ctx, "load_canonical_aliases", query)
}

func (r *volcanoRepository) loadAliases(ctx context.Context, queryType, query string) (map[string]string, error) {
	var rows []aliasRow
	if err := r.db.SelectContext(ctx, queryType, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		aliases[row.Source] = row.Target
	}

	return aliases, nil
}

// LoadEruptionEvents loads the full GVP event table. The id ordering
// preserves original table order, which the joiner relies on for its
// deterministic first-row tie-break.
func (r *volcanoRepository) LoadEruptionEvents(ctx context.Context) ([]models.EruptionEvent, error) {
	query := `
		SELECT volcano_name, start_year, end_year, start_month, end_month, vei
		FROM eruption_events
		ORDER BY id
	`

	var events []models.EruptionEvent
	if err := r.db.SelectContext(ctx, "load_eruption_events", &events, query); err != nil {
		return nil, fmt.Errorf("failed to load eruption events: %w", err)
	}

	return events, nil
}

// LoadSamples loads the full GEOROC sample table
func (r *volcanoRepository) LoadSamples(ctx context.Context) ([]models.Sample, error) {
	query := `
		SELECT volcano_name, eruption_year, eruption_month, eruption_day,
		       sio2, na2o, k2o, feo, cao, mgo, rock_class
		FROM rock_samples
		ORDER BY id
	`

	var rows []sampleRow
	if err := r.db.SelectContext(ctx, "load_samples", &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}

	samples := make([]models.Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, row.toSample())
	}

	return samples, nil
}

func (row *sampleRow) toSample() models.Sample {
	sample := models.Sample{
		VolcanoNameRaw: row.VolcanoName,
		EruptionYear:   row.EruptionYear,
		EruptionMonth:  row.EruptionMonth,
		EruptionDay:    row.EruptionDay,
		Oxides:         make(map[string]float64, 6),
		RockClass:      row.RockClass,
	}

	oxides := []struct {
		name  string
		value *float64
	}{
		{models.OxideSiO2, row.SiO2},
		{models.OxideNa2O, row.Na2O},
		{models.OxideK2O, row.K2O},
		{models.OxideFeO, row.FeO},
		{models.OxideCaO, row.CaO},
		{models.OxideMgO, row.MgO},
	}
	for _, oxide := range oxides {
		if oxide.value != nil {
			sample.Oxides[oxide.name] = *oxide.value
		}
	}

	return sample
}

// UpsertShortNameAlias creates or replaces one long name -> short form mapping
func (r *volcanoRepository) UpsertShortNameAlias(ctx context.Context, rawName, shortName string) error {
	query := `
		INSERT INTO name_aliases_short (raw_name, short_name)
		VALUES ($1, $2)
		ON CONFLICT (raw_name) DO UPDATE SET short_name = EXCLUDED.short_name
	`

	if _, err := r.db.ExecContext(ctx, "upsert_short_alias", query, rawName, shortName); err != nil {
		return fmt.Errorf("failed to upsert short-name alias: %w", err)
	}

	return nil
}

// UpsertCanonicalNameAlias creates or replaces one short form -> GVP name mapping
func (r *volcanoRepository) UpsertCanonicalNameAlias(ctx context.Context, shortName, canonicalName string) error {
	query := `
		INSERT INTO name_aliases_canonical (short_name, canonical_name)
		VALUES ($1, $2)
		ON CONFLICT (short_name) DO UPDATE SET canonical_name = EXCLUDED.canonical_name
	`

	if _, err := r.db.ExecContext(ctx, "upsert_canonical_alias", query, shortName, canonicalName); err != nil {
		return fmt.Errorf("failed to upsert canonical-name alias: %w", err)
	}

	return nil
}

// CreateEruptionEventsBatch inserts eruption events in a single transaction
func (r *volcanoRepository) CreateEruptionEventsBatch(ctx context.Context, events []*models.EruptionEvent) error {
	if len(events) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(events)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Eruption event batch inserted", logging.Fields{
			"count":       len(events),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO eruption_events (
			volcano_name, start_year, end_year, start_month, end_month, vei
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.ExecContext(ctx,
			event.VolcanoName,
			event.StartYear,
			event.EndYear,
			event.StartMonth,
			event.EndMonth,
			event.VEI,
		)
		if err != nil {
			return fmt.Errorf("failed to insert eruption event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(events)))

	return nil
}

// CreateSamplesBatch inserts rock samples in a single transaction
func (r *volcanoRepository) CreateSamplesBatch(ctx context.Context, samples []*models.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(samples)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Sample batch inserted", logging.Fields{
			"count":       len(samples),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rock_samples (
			volcano_name, eruption_year, eruption_month, eruption_day,
			sio2, na2o, k2o, feo, cao, mgo, rock_class
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		_, err := stmt.ExecContext(ctx,
			sample.VolcanoNameRaw,
			sample.EruptionYear,
			sample.EruptionMonth,
			sample.EruptionDay,
			oxideArg(sample, models.OxideSiO2),
			oxideArg(sample, models.OxideNa2O),
			oxideArg(sample, models.OxideK2O),
			oxideArg(sample, models.OxideFeO),
			oxideArg(sample, models.OxideCaO),
			oxideArg(sample, models.OxideMgO),
			sample.RockClass,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(samples)))

	return nil
}

// oxideArg returns a nullable insert argument for one oxide column
func oxideArg(sample *models.Sample, name string) *float64 {
	if v, ok := sample.Oxides[name]; ok {
		return &v
	}
	return nil
}

// HealthCheck performs a repository health check
func (r *volcanoRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
