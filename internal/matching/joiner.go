package matching

import (
	"volcano-platform/internal/models"
)

// Joiner builds the combined record set pairing matched eruption events
// with the petrology samples that share their year and month.
type Joiner struct {
	eventsByVolcano map[string][]models.EruptionEvent
}

// NewJoiner creates a joiner over the event table, indexed by canonical
// name with original table order preserved.
func NewJoiner(eventsByVolcano map[string][]models.EruptionEvent) *Joiner {
	return &Joiner{eventsByVolcano: eventsByVolcano}
}

// monthSpan is one event's (start month, end month) bounds.
type monthSpan struct {
	start float64
	end   float64
}

// Join produces one JoinedRecord per (matched event, sample) combination.
// For each date pair it selects the events whose year bounds string-equal
// the pair and every year-matched sample, narrows both sides by month
// reconciliation when possible, then crosses the surviving samples with
// the first surviving event. Samples without a valid month survive only
// the unreconciled path: a successful reconciliation keeps just the
// matched months, while a failed one widens back to the full year set,
// month-less samples included. When several event rows remain after
// filtering, the first row in table order is the representative; this
// arbitrary tie-break is a documented limitation of the source data, not
// something to second-guess here.
func (j *Joiner) Join(canonical string, pairs []DatePair, samples []models.Sample) []models.JoinedRecord {
	var joined []models.JoinedRecord

	for _, pair := range pairs {
		events := j.eventsMatching(canonical, pair)
		if len(events) == 0 {
			continue
		}

		candidates := samplesForYear(samples, pair.Year)
		if len(candidates) == 0 {
			continue
		}

		// Month reconciliation only makes sense for single-year
		// eruptions. Zero combinations widen back to the full
		// year-matched sets: a fallback, not a failure.
		if pair.Start == pair.End {
			if narrowedEvents, narrowedSamples, ok := reconcileMonths(events, candidates); ok {
				events = narrowedEvents
				candidates = narrowedSamples
			}
		}

		representative := events[0]
		for i := range candidates {
			joined = append(joined, models.JoinedRecord{
				VolcanoName: representative.VolcanoName,
				StartYear:   representative.StartYear,
				EndYear:     representative.EndYearOrStart(),
				VEI:         representative.VEI,
				Sample:      candidates[i],
			})
		}
	}

	return joined
}

// eventsMatching selects the events whose year bounds string-equal the
// date pair. The comparison is textual on purpose: the bounds come from
// mixed-type source columns and numeric coercion must not reintroduce
// mismatches.
func (j *Joiner) eventsMatching(canonical string, pair DatePair) []models.EruptionEvent {
	var matched []models.EruptionEvent
	for _, event := range j.eventsByVolcano[canonical] {
		if event.StartText() == pair.Start && event.EndText() == pair.End {
			matched = append(matched, event)
		}
	}
	return matched
}

// samplesForYear selects the samples of one eruption year. Month quality
// is not checked here: month-less samples stay joinable through the
// widening fallback.
func samplesForYear(samples []models.Sample, year int) []models.Sample {
	var matched []models.Sample
	for i := range samples {
		if samples[i].EruptionYear != nil && *samples[i].EruptionYear == year {
			matched = append(matched, samples[i])
		}
	}
	return matched
}

// reconcileMonths narrows events and samples to the (sample month, event
// month range) combinations where the range contains the month. Only
// samples with a valid (non-nil, positive) month participate in the
// search, and event rows with a missing or nonpositive month bound are
// excluded from it. Returns ok=false when no valid sample month exists or
// no combination is found, in which case the caller keeps the unnarrowed
// sets.
func reconcileMonths(events []models.EruptionEvent, samples []models.Sample) ([]models.EruptionEvent, []models.Sample, bool) {
	var months []int
	for i := range samples {
		if samples[i].HasValidMonth() {
			months = append(months, *samples[i].EruptionMonth)
		}
	}
	if len(months) == 0 {
		return nil, nil, false
	}

	var spans []monthSpan
	for i := range events {
		if start, end, ok := events[i].MonthRange(); ok {
			spans = append(spans, monthSpan{start: start, end: end})
		}
	}
	if len(spans) == 0 {
		return nil, nil, false
	}

	matchedMonths := make(map[int]struct{})
	matchedStarts := make(map[float64]struct{})
	matchedEnds := make(map[float64]struct{})
	for _, span := range spans {
		for _, month := range months {
			if span.start <= float64(month) && float64(month) <= span.end {
				matchedMonths[month] = struct{}{}
				matchedStarts[span.start] = struct{}{}
				matchedEnds[span.end] = struct{}{}
			}
		}
	}
	if len(matchedMonths) == 0 {
		return nil, nil, false
	}

	var narrowedEvents []models.EruptionEvent
	for i := range events {
		start, end, ok := events[i].MonthRange()
		if !ok {
			continue
		}
		if _, okStart := matchedStarts[start]; !okStart {
			continue
		}
		if _, okEnd := matchedEnds[end]; !okEnd {
			continue
		}
		narrowedEvents = append(narrowedEvents, events[i])
	}

	var narrowedSamples []models.Sample
	for i := range samples {
		if !samples[i].HasValidMonth() {
			continue
		}
		if _, ok := matchedMonths[*samples[i].EruptionMonth]; ok {
			narrowedSamples = append(narrowedSamples, samples[i])
		}
	}

	if len(narrowedEvents) == 0 || len(narrowedSamples) == 0 {
		return nil, nil, false
	}

	return narrowedEvents, narrowedSamples, true
}
