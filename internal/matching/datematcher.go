package matching

import (
	"strconv"
	"strings"

	"volcano-platform/internal/models"
)

// SelectorAll asks for every eruption of a volcano.
const SelectorAll = "all"

// DatePair is one eruption's year bounds. Start and End carry the bounds
// as text tokens; joining compares them with string equality so the
// original values are never re-parsed.
type DatePair struct {
	Year  int
	Start string
	End   string
}

// DateMatcher finds the eruption date pairs available for a canonical
// volcano name.
type DateMatcher struct {
	eventsByVolcano map[string][]models.EruptionEvent
}

// NewDateMatcher creates a matcher over the event table, indexed by
// canonical name with original table order preserved.
func NewDateMatcher(eventsByVolcano map[string][]models.EruptionEvent) *DateMatcher {
	return &DateMatcher{eventsByVolcano: eventsByVolcano}
}

// MatchDates returns the date pairs selected by the selector. An empty or
// "all" selector returns every distinct pair for the canonical name; a
// "<year>-..." selector returns the single matching pair. Absence of a
// match is not an error and yields an empty result.
func (m *DateMatcher) MatchDates(selector, canonical string) []DatePair {
	if selector == "" || selector == SelectorAll {
		return m.allPairs(canonical)
	}
	if pair, ok := m.MatchOne(selector, canonical); ok {
		return []DatePair{pair}
	}
	return nil
}

// MatchOne resolves a single-eruption selector of the form "<year>" or
// "<year>-<month>". When the month token is present it disambiguates
// same-year eruptions: the first event whose month range contains the
// month wins, and only when no range contains it does the match fall back
// to the first event of the year. The comma-ok form is the NOT_FOUND
// sentinel: callers treat false as "produce empty series", never as a
// fatal condition.
func (m *DateMatcher) MatchOne(selector, canonical string) (DatePair, bool) {
	year, month, hasMonth, ok := ParseSelector(selector)
	if !ok {
		return DatePair{}, false
	}

	events := m.eventsByVolcano[canonical]

	if hasMonth {
		for i := range events {
			event := &events[i]
			if event.StartYear != year {
				continue
			}
			if start, end, ok := event.MonthRange(); ok && start <= float64(month) && float64(month) <= end {
				return DatePair{
					Year:  year,
					Start: event.StartText(),
					End:   event.EndText(),
				}, true
			}
		}
	}

	for i := range events {
		event := &events[i]
		if event.StartYear == year {
			return DatePair{
				Year:  year,
				Start: event.StartText(),
				End:   event.EndText(),
			}, true
		}
	}

	return DatePair{}, false
}

// allPairs returns the distinct (year, start, end) triples for a volcano
// in table order.
func (m *DateMatcher) allPairs(canonical string) []DatePair {
	events := m.eventsByVolcano[canonical]
	if len(events) == 0 {
		return nil
	}

	seen := make(map[DatePair]struct{}, len(events))
	pairs := make([]DatePair, 0, len(events))
	for i := range events {
		pair := DatePair{
			Year:  events[i].StartYear,
			Start: events[i].StartText(),
			End:   events[i].EndText(),
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}

	return pairs
}

// ParseSelector splits a date selector into its numeric tokens. The year
// is the integer prefix before the first '-'; a selector with no '-' is
// treated as a bare year. hasMonth reports a parsable, positive month
// token after the year.
func ParseSelector(selector string) (year, month int, hasMonth, ok bool) {
	yearToken := selector
	monthToken := ""
	if i := strings.Index(selector, "-"); i >= 0 {
		yearToken = selector[:i]
		monthToken = selector[i+1:]
	}

	year, err := strconv.Atoi(strings.TrimSpace(yearToken))
	if err != nil {
		return 0, 0, false, false
	}

	if m, err := strconv.Atoi(strings.TrimSpace(monthToken)); err == nil && m > 0 {
		return year, m, true, true
	}

	return year, 0, false, true
}
