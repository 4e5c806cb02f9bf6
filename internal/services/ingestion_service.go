package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"volcano-platform/internal/models"
	"volcano-platform/internal/repository"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// GVP eruption CSV column headers.
const (
	gvpColVolcanoName = "Volcano Name"
	gvpColStartYear   = "Start Year"
	gvpColStartMonth  = "Start Month"
	gvpColEndYear     = "End Year"
	gvpColEndMonth    = "End Month"
	gvpColVEI         = "VEI"
)

// GEOROC sample CSV column headers.
const (
	georocColYear  = "ERUPTION YEAR"
	georocColMonth = "ERUPTION MONTH"
	georocColDay   = "ERUPTION DAY"
	georocColSiO2  = "SIO2(WT%)"
	georocColNa2O  = "NA2O(WT%)"
	georocColK2O   = "K2O(WT%)"
	georocColFeO   = "FEO(WT%)"
	georocColCaO   = "CAO(WT%)"
	georocColMgO   = "MGO(WT%)"
	georocColClass = "MATERIAL"
)

// IngestionService loads the GVP and GEOROC source files into PostgreSQL
type IngestionService struct {
	repo    repository.VolcanoRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.VolcanoRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestEruptionEvents ingests the GVP eruption CSV. Rows that fail
// validation are counted and skipped, never fatal.
func (s *IngestionService) IngestEruptionEvents(ctx context.Context, filePath string, batchSize int) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_GVP_START] Starting eruption event ingestion", logging.Fields{
		"file_path":  filePath,
		"batch_size": batchSize,
	})

	result := &IngestionResult{TotalFiles: 1, Errors: make([]string, 0)}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open eruption file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read eruption header: %w", err)
	}
	columns := headerIndex(header)

	batch := make([]*models.EruptionEvent, 0, batchSize)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}
		result.TotalRecords++

		raw := models.RawEruptionRecord{
			VolcanoName: field(row, columns, gvpColVolcanoName),
			StartYear:   field(row, columns, gvpColStartYear),
			EndYear:     field(row, columns, gvpColEndYear),
			StartMonth:  field(row, columns, gvpColStartMonth),
			EndMonth:    field(row, columns, gvpColEndMonth),
			VEI:         field(row, columns, gvpColVEI),
		}

		event, err := raw.ToEvent()
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			continue
		}

		batch = append(batch, event)
		if len(batch) >= batchSize {
			if err := s.repo.CreateEruptionEventsBatch(ctx, batch); err != nil {
				return nil, fmt.Errorf("failed to insert eruption batch: %w", err)
			}
			result.SuccessfulRecords += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.repo.CreateEruptionEventsBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final eruption batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_GVP_COMPLETE] Eruption event ingestion completed", logging.Fields{
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})

	return result, nil
}

// IngestSampleDirectory ingests every GEOROC sample CSV in a directory.
// The file name (minus extension) is the raw volcano name, matching how
// GEOROC distributes per-volcano precompiled files.
func (s *IngestionService) IngestSampleDirectory(ctx context.Context, dataDir string, batchSize int) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_GEOROC_START] Starting sample ingestion", logging.Fields{
		"data_dir":   dataDir,
		"batch_size": batchSize,
	})

	result := &IngestionResult{Errors: make([]string, 0)}

	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sample files found in %s", dataDir)
	}
	result.TotalFiles = len(files)

	for _, filePath := range files {
		fileResult, err := s.ingestSampleFile(ctx, filePath, batchSize)
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] Sample file ingestion failed", logging.Fields{
				"file_path": filePath,
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_GEOROC_COMPLETE] Sample ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
	})

	return result, nil
}

// ingestSampleFile ingests one per-volcano GEOROC CSV
func (s *IngestionService) ingestSampleFile(ctx context.Context, filePath string, batchSize int) (*IngestionResult, error) {
	fileName := filepath.Base(filePath)
	volcanoName := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := headerIndex(header)

	result := &IngestionResult{TotalFiles: 1}
	batch := make([]*models.Sample, 0, batchSize)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}
		result.TotalRecords++

		raw := models.RawSampleRecord{
			EruptionYear:  field(row, columns, georocColYear),
			EruptionMonth: field(row, columns, georocColMonth),
			EruptionDay:   field(row, columns, georocColDay),
			SiO2:          field(row, columns, georocColSiO2),
			Na2O:          field(row, columns, georocColNa2O),
			K2O:           field(row, columns, georocColK2O),
			FeO:           field(row, columns, georocColFeO),
			CaO:           field(row, columns, georocColCaO),
			MgO:           field(row, columns, georocColMgO),
			RockClass:     field(row, columns, georocColClass),
		}

		sample, err := raw.ToSample(volcanoName)
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			continue
		}

		batch = append(batch, sample)
		if len(batch) >= batchSize {
			if err := s.repo.CreateSamplesBatch(ctx, batch); err != nil {
				return nil, fmt.Errorf("failed to insert batch: %w", err)
			}
			result.SuccessfulRecords += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.repo.CreateSamplesBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
	}

	s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] Sample file ingested", logging.Fields{
		"file_path":          filePath,
		"volcano":            volcanoName,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
	})

	return result, nil
}

// IngestAliasFile ingests one two-column alias CSV (no header). The
// upsert callback decides which alias table the pair lands in.
func (s *IngestionService) IngestAliasFile(ctx context.Context, filePath string, upsert func(context.Context, string, string) error) (*IngestionResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open alias file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	result := &IngestionResult{TotalFiles: 1}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}
		result.TotalRecords++

		if len(row) < 2 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			continue
		}

		if err := upsert(ctx, strings.TrimSpace(row[0]), strings.TrimSpace(row[1])); err != nil {
			return nil, fmt.Errorf("failed to upsert alias: %w", err)
		}
		result.SuccessfulRecords++
	}

	s.logger.Info(ctx, "[INGEST_ALIASES] Alias file ingested", logging.Fields{
		"file_path":          filePath,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
	})

	return result, nil
}

// IngestShortNameAliases loads the long name -> short form alias CSV
func (s *IngestionService) IngestShortNameAliases(ctx context.Context, filePath string) (*IngestionResult, error) {
	return s.IngestAliasFile(ctx, filePath, s.repo.UpsertShortNameAlias)
}

// IngestCanonicalNameAliases loads the short form -> GVP name alias CSV
func (s *IngestionService) IngestCanonicalNameAliases(ctx context.Context, filePath string) (*IngestionResult, error) {
	return s.IngestAliasFile(ctx, filePath, s.repo.UpsertCanonicalNameAlias)
}

// headerIndex maps trimmed column names to their positions
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

// field returns a named column from a row, empty when absent
func field(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
