package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"volcano-platform/internal/catalog"
	"volcano-platform/internal/matching"
	"volcano-platform/internal/models"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// VolcanoNone is the dropdown placeholder for "no volcano selected".
const VolcanoNone = "start"

// Overlay series names on the chronogram.
const (
	overlayAlkaliName = "NA2O+K2O"
	overlaySilicaName = "SIO2"
)

// overlayOffset parks the chemistry markers below the VEI scale on the
// shared chronogram axis.
const overlayOffset = 0.4

// ChartService runs the full matching pipeline for one request:
// Name Resolver -> Date Matcher -> Record Joiner -> Period Classifier.
// It reads only the immutable catalog, so concurrent requests need no
// synchronization.
type ChartService struct {
	catalog  *catalog.Catalog
	resolver *matching.Resolver
	matcher  *matching.DateMatcher
	joiner   *matching.Joiner
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewChartService creates a chart service over a loaded catalog
func NewChartService(cat *catalog.Catalog, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ChartService {
	return &ChartService{
		catalog:  cat,
		resolver: matching.NewResolver(cat.RawToShort(), cat.ShortToCanonical()),
		matcher:  matching.NewDateMatcher(cat.EventsByVolcano()),
		joiner:   matching.NewJoiner(cat.EventsByVolcano()),
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// BuildCharts produces the three chart-ready outputs for one user
// interaction: the full chemistry scatter, the joined/filtered chemistry
// scatter, and the chronogram with optional sample overlay. Missing or
// ambiguous data never fails the request; it only shrinks the output.
func (s *ChartService) BuildCharts(ctx context.Context, volcanoName, dateSelector string, period models.Period, includeOverlay bool) *models.ChartData {
	timer := s.metrics.NewTimer(s.metrics.ChartBuildDuration.WithLabelValues(period.String()))
	defer timer.ObserveDuration()

	data := &models.ChartData{
		FullChemistry:   []models.ChemistrySeries{},
		JoinedChemistry: []models.ChemistrySeries{},
		Chronogram: models.Chronogram{
			Period:    period.String(),
			Axis:      axisName(period),
			VEISeries: []models.VEIPoint{},
		},
	}

	// No selection: empty default charts with no data-dependent content.
	if volcanoName == "" || volcanoName == VolcanoNone {
		return data
	}

	samples := s.catalog.Samples(volcanoName)
	data.FullChemistry = chemistrySeries(samples)

	canonical := s.resolver.Resolve(volcanoName)

	var joined []models.JoinedRecord
	if s.resolver.Aliased(volcanoName) {
		joinTimer := s.metrics.NewTimer(s.metrics.JoinDuration)
		pairs := s.matcher.MatchDates(dateSelector, canonical)
		joined = s.joiner.Join(canonical, pairs, samples)
		joinTimer.ObserveDuration()
		s.metrics.JoinedRecordsTotal.Observe(float64(len(joined)))
	} else {
		// Fallback-resolved names join to zero events; the samples
		// still render on the chemistry chart.
		s.metrics.UnresolvedNames.Inc()
	}

	data.JoinedChemistry = joinedChemistrySeries(joined)
	data.Chronogram.VEISeries = veiSeries(s.catalog.Events(canonical), period)

	if includeOverlay {
		projected := ClassifyAndProject(samplesForSelector(samples, dateSelector), period)
		data.Chronogram.Overlays = projected.Series
	}

	s.logger.Debug(ctx, "[CHARTS_BUILT] Pipeline run complete", logging.Fields{
		"volcano":        volcanoName,
		"canonical":      canonical,
		"date_selector":  dateSelector,
		"period":         period.String(),
		"samples":        len(samples),
		"joined_records": len(joined),
	})

	return data
}

// ListVolcanoes returns the sorted raw sample names for the name dropdown
func (s *ChartService) ListVolcanoes() []string {
	return s.catalog.VolcanoNames()
}

// EruptionDates returns the date-selector options for one volcano:
// distinct "year-month" (or bare "year") strings derived from its
// samples, ascending. An unknown name yields an empty list.
func (s *ChartService) EruptionDates(volcanoName string) []string {
	if volcanoName == "" || volcanoName == VolcanoNone {
		return nil
	}

	type yearMonth struct {
		year  int
		month int
	}

	seen := make(map[yearMonth]struct{})
	var keys []yearMonth
	for _, sample := range s.catalog.Samples(volcanoName) {
		if sample.EruptionYear == nil {
			continue
		}
		key := yearMonth{year: *sample.EruptionYear}
		if sample.HasValidMonth() && *sample.EruptionMonth <= 12 {
			key.month = *sample.EruptionMonth
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.month > 0 {
			dates = append(dates, fmt.Sprintf("%d-%02d", key.year, key.month))
		} else {
			dates = append(dates, strconv.Itoa(key.year))
		}
	}

	return dates
}

// ClassifyAndProject partitions samples into the active period and
// derives the two overlay series per rock class: alkalinity (NA2O+K2O)
// and silica (SIO2), each divided by 100, rounded to 2 decimals, then
// offset by -0.4. For the post-1679 period the horizontal value is a
// calendar date with malformed month/day fields clamped; for the other
// periods it is the raw year.
func ClassifyAndProject(samples []models.Sample, period models.Period) models.ProjectedSeries {
	projected := models.ProjectedSeries{
		Period: period,
		Series: []models.OverlaySeries{},
	}

	filtered := filterByPeriod(samples, period)
	if len(filtered) == 0 {
		return projected
	}

	for _, class := range rockClasses(filtered) {
		alkali := models.OverlaySeries{RockClass: class, Name: overlayAlkaliName}
		silica := models.OverlaySeries{RockClass: class, Name: overlaySilicaName}

		for i := range filtered {
			sample := &filtered[i]
			if sample.RockClass != class {
				continue
			}

			alkaliPoint := models.OverlayPoint{Value: overlayValue(sample.TotalAlkali())}
			silicaPoint := models.OverlayPoint{Value: overlayValue(sample.Oxide(models.OxideSiO2))}

			if period.UsesCalendarAxis() {
				date := sample.ProjectedDate().Format("2006-01-02")
				alkaliPoint.Date = date
				silicaPoint.Date = date
			} else {
				alkaliPoint.Year = *sample.EruptionYear
				silicaPoint.Year = *sample.EruptionYear
			}

			alkali.Points = append(alkali.Points, alkaliPoint)
			silica.Points = append(silica.Points, silicaPoint)
		}

		projected.Series = append(projected.Series, alkali, silica)
	}

	return projected
}

// samplesForSelector narrows the sample set to one eruption date when a
// specific selector is active; "all" (or an unparsable selector) keeps
// the full set. The overlay follows the date dropdown, so selecting one
// eruption superimposes only that eruption's samples.
func samplesForSelector(samples []models.Sample, selector string) []models.Sample {
	if selector == "" || selector == matching.SelectorAll {
		return samples
	}

	year, month, hasMonth, ok := matching.ParseSelector(selector)
	if !ok {
		return samples
	}

	var filtered []models.Sample
	for i := range samples {
		if samples[i].EruptionYear == nil || *samples[i].EruptionYear != year {
			continue
		}
		if hasMonth && (samples[i].EruptionMonth == nil || *samples[i].EruptionMonth != month) {
			continue
		}
		filtered = append(filtered, samples[i])
	}
	return filtered
}

// filterByPeriod keeps the samples whose eruption year falls in the
// period; samples with no year are excluded from the chronogram.
func filterByPeriod(samples []models.Sample, period models.Period) []models.Sample {
	var filtered []models.Sample
	for i := range samples {
		if samples[i].EruptionYear == nil {
			continue
		}
		if period.Contains(*samples[i].EruptionYear) {
			filtered = append(filtered, samples[i])
		}
	}
	return filtered
}

// rockClasses returns the distinct rock-class labels in sorted order
func rockClasses(samples []models.Sample) []string {
	seen := make(map[string]struct{})
	var classes []string
	for i := range samples {
		if _, dup := seen[samples[i].RockClass]; dup {
			continue
		}
		seen[samples[i].RockClass] = struct{}{}
		classes = append(classes, samples[i].RockClass)
	}
	sort.Strings(classes)
	return classes
}

// chemistrySeries groups the full sample set into TAS scatter series by
// rock class.
func chemistrySeries(samples []models.Sample) []models.ChemistrySeries {
	series := []models.ChemistrySeries{}
	for _, class := range rockClasses(samples) {
		entry := models.ChemistrySeries{RockClass: class}
		for i := range samples {
			if samples[i].RockClass != class {
				continue
			}
			entry.Points = append(entry.Points, models.ChemistryPoint{
				Silica:      samples[i].Oxide(models.OxideSiO2),
				TotalAlkali: samples[i].TotalAlkali(),
			})
		}
		series = append(series, entry)
	}
	return series
}

// joinedChemistrySeries groups joined records into TAS scatter series by
// rock class, carrying each matched eruption's VEI onto the points.
func joinedChemistrySeries(joined []models.JoinedRecord) []models.ChemistrySeries {
	byClass := make(map[string][]models.ChemistryPoint)
	for i := range joined {
		record := &joined[i]
		byClass[record.RockClass] = append(byClass[record.RockClass], models.ChemistryPoint{
			Silica:      record.Oxide(models.OxideSiO2),
			TotalAlkali: record.TotalAlkali(),
			VEI:         record.VEI,
		})
	}

	classes := make([]string, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	series := []models.ChemistrySeries{}
	for _, class := range classes {
		series = append(series, models.ChemistrySeries{
			RockClass: class,
			Points:    byClass[class],
		})
	}
	return series
}

// veiSeries builds the explosivity points for the eruptions of one
// canonical volcano within the active period. Events with no recorded
// VEI are emitted at zero with Known=false.
func veiSeries(events []models.EruptionEvent, period models.Period) []models.VEIPoint {
	points := []models.VEIPoint{}
	for i := range events {
		event := &events[i]
		if !period.Contains(event.StartYear) {
			continue
		}

		point := models.VEIPoint{}
		if event.VEI != nil {
			point.VEI = *event.VEI
			point.Known = true
		}

		if period.UsesCalendarAxis() {
			point.Date = eventDate(event).Format("2006-01-02")
		} else {
			point.Year = event.StartYear
		}

		points = append(points, point)
	}
	return points
}

// eventDate projects an eruption start onto the calendar axis, clamping
// a missing or out-of-range start month to January.
func eventDate(event *models.EruptionEvent) time.Time {
	month := 1
	if event.StartMonth != nil && *event.StartMonth >= 1 && *event.StartMonth <= 12 {
		month = int(*event.StartMonth)
	}
	return time.Date(event.StartYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// overlayValue scales one weight-percent measurement onto the chronogram
// axis: divide by 100, round to 2 decimals, then apply the fixed offset.
func overlayValue(wtPercent float64) float64 {
	return round2(wtPercent/100) - overlayOffset
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func axisName(period models.Period) string {
	if period.UsesCalendarAxis() {
		return "date"
	}
	return "year"
}
