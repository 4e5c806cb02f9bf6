package models

import (
	"strconv"
	"strings"
	"time"
)

// Oxide column names shared by ingestion, the catalog and the chart builders.
const (
	OxideSiO2 = "SIO2"
	OxideNa2O = "NA2O"
	OxideK2O  = "K2O"
	OxideFeO  = "FEO"
	OxideCaO  = "CAO"
	OxideMgO  = "MGO"
)

// Sample represents one petrological (GEOROC) rock sample.
// Input rows are immutable; source data quality is poor, so eruption
// month/day may be 0, negative, or out of range and are only corrected
// at projection time, never rejected.
type Sample struct {
	VolcanoNameRaw string             `json:"volcano_name"`
	EruptionYear   *int               `json:"eruption_year,omitempty"`
	EruptionMonth  *int               `json:"eruption_month,omitempty"`
	EruptionDay    *int               `json:"eruption_day,omitempty"`
	Oxides         map[string]float64 `json:"oxides"`
	RockClass      string             `json:"rock_class"`
}

// Oxide returns the weight-percent for an oxide, 0 when not measured.
func (s *Sample) Oxide(name string) float64 {
	return s.Oxides[name]
}

// TotalAlkali is the Na2O+K2O sum used as the TAS vertical axis.
func (s *Sample) TotalAlkali() float64 {
	return s.Oxides[OxideNa2O] + s.Oxides[OxideK2O]
}

// HasValidMonth reports whether the eruption month is present and positive.
func (s *Sample) HasValidMonth() bool {
	return s.EruptionMonth != nil && *s.EruptionMonth > 0
}

// ProjectedDate builds a calendar date for the post-1679 chronogram axis.
// Months outside [1,12] clamp to 1; days outside [1,31] clamp to 1 and a
// day of 0 is treated as 1.
func (s *Sample) ProjectedDate() time.Time {
	year := 0
	if s.EruptionYear != nil {
		year = *s.EruptionYear
	}

	month := 1
	if s.EruptionMonth != nil && *s.EruptionMonth >= 1 && *s.EruptionMonth <= 12 {
		month = *s.EruptionMonth
	}

	day := 1
	if s.EruptionDay != nil && *s.EruptionDay >= 1 && *s.EruptionDay <= 31 {
		day = *s.EruptionDay
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// EruptionEvent represents one GVP eruption record.
type EruptionEvent struct {
	VolcanoName string   `json:"volcano_name" db:"volcano_name"`
	StartYear   int      `json:"start_year" db:"start_year"`
	EndYear     *int     `json:"end_year,omitempty" db:"end_year"`
	StartMonth  *float64 `json:"start_month,omitempty" db:"start_month"`
	EndMonth    *float64 `json:"end_month,omitempty" db:"end_month"`
	VEI         *float64 `json:"vei,omitempty" db:"vei"`
}

// EndYearOrStart is the derived view of the end year: a missing end year
// is treated as equal to the start year. The stored record is not mutated.
func (e *EruptionEvent) EndYearOrStart() int {
	if e.EndYear == nil {
		return e.StartYear
	}
	return *e.EndYear
}

// StartText and EndText expose the year bounds as text tokens. All date
// matching compares these strings so that numeric coercion can never
// produce a mismatch.
func (e *EruptionEvent) StartText() string {
	return strconv.Itoa(e.StartYear)
}

func (e *EruptionEvent) EndText() string {
	return strconv.Itoa(e.EndYearOrStart())
}

// MonthRange returns the (start, end) month pair when both bounds are
// present and positive.
func (e *EruptionEvent) MonthRange() (float64, float64, bool) {
	if e.StartMonth == nil || e.EndMonth == nil {
		return 0, 0, false
	}
	if *e.StartMonth <= 0 || *e.EndMonth <= 0 {
		return 0, 0, false
	}
	return *e.StartMonth, *e.EndMonth, true
}

// JoinedRecord pairs one eruption event's identity with one sample's full
// field set. One event may join to zero, one, or many samples.
type JoinedRecord struct {
	VolcanoName string   `json:"volcano_name"`
	StartYear   int      `json:"start_year"`
	EndYear     int      `json:"end_year"`
	VEI         *float64 `json:"vei,omitempty"`
	Sample
}

// Period partitions eruption years into the three chronogram eras.
type Period int

const (
	PeriodBC         Period = iota // year < 0
	PeriodBefore1679               // 0 <= year < 1679
	PeriodFrom1679                 // year >= 1679
)

// ParsePeriod maps a wire value to a Period. The original UI labels are
// accepted as aliases; an unknown value falls back to PeriodFrom1679 so
// the chart stays renderable.
func ParsePeriod(s string) Period {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc":
		return PeriodBC
	case "before1679", "before 1679":
		return PeriodBefore1679
	case "from1679", "1679 and after":
		return PeriodFrom1679
	default:
		return PeriodFrom1679
	}
}

func (p Period) String() string {
	switch p {
	case PeriodBC:
		return "BC"
	case PeriodBefore1679:
		return "before1679"
	default:
		return "from1679"
	}
}

// Contains reports whether an eruption year falls in the period.
func (p Period) Contains(year int) bool {
	switch p {
	case PeriodBC:
		return year < 0
	case PeriodBefore1679:
		return year >= 0 && year < 1679
	default:
		return year >= 1679
	}
}

// UsesCalendarAxis reports whether the chronogram horizontal axis carries
// calendar dates rather than raw years.
func (p Period) UsesCalendarAxis() bool {
	return p == PeriodFrom1679
}

// RawSampleRecord represents one GEOROC CSV row during ingestion.
type RawSampleRecord struct {
	EruptionYear  string
	EruptionMonth string
	EruptionDay   string
	SiO2          string
	Na2O          string
	K2O           string
	FeO           string
	CaO           string
	MgO           string
	RockClass     string
}

// ToSample converts a RawSampleRecord to a Sample. Missing or unparsable
// date fields become nil; missing oxide values are absent from the map.
// SiO2, Na2O and K2O are required since every chart axis derives from them.
func (r *RawSampleRecord) ToSample(volcanoName string) (*Sample, error) {
	sample := &Sample{
		VolcanoNameRaw: volcanoName,
		Oxides:         make(map[string]float64, 6),
		RockClass:      strings.TrimSpace(r.RockClass),
	}

	sample.EruptionYear = parseOptionalInt(r.EruptionYear)
	sample.EruptionMonth = parseOptionalInt(r.EruptionMonth)
	sample.EruptionDay = parseOptionalInt(r.EruptionDay)

	required := []struct {
		name  string
		value string
	}{
		{OxideSiO2, r.SiO2},
		{OxideNa2O, r.Na2O},
		{OxideK2O, r.K2O},
	}
	for _, oxide := range required {
		v, err := strconv.ParseFloat(strings.TrimSpace(oxide.value), 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   oxide.name,
				Value:   oxide.value,
				Message: "missing or invalid oxide measurement: " + oxide.name,
			}
		}
		sample.Oxides[oxide.name] = v
	}

	optional := []struct {
		name  string
		value string
	}{
		{OxideFeO, r.FeO},
		{OxideCaO, r.CaO},
		{OxideMgO, r.MgO},
	}
	for _, oxide := range optional {
		if v, err := strconv.ParseFloat(strings.TrimSpace(oxide.value), 64); err == nil {
			sample.Oxides[oxide.name] = v
		}
	}

	return sample, nil
}

// RawEruptionRecord represents one GVP CSV row during ingestion.
type RawEruptionRecord struct {
	VolcanoName string
	StartYear   string
	EndYear     string
	StartMonth  string
	EndMonth    string
	VEI         string
}

// ToEvent converts a RawEruptionRecord to an EruptionEvent. The start year
// is required; every other field is optional.
func (r *RawEruptionRecord) ToEvent() (*EruptionEvent, error) {
	name := strings.TrimSpace(r.VolcanoName)
	if name == "" {
		return nil, &ValidationError{
			Field:   "volcano_name",
			Value:   r.VolcanoName,
			Message: "missing volcano name",
		}
	}

	startYear, err := strconv.Atoi(strings.TrimSpace(r.StartYear))
	if err != nil {
		return nil, &ValidationError{
			Field:   "start_year",
			Value:   r.StartYear,
			Message: "missing or invalid start year",
		}
	}

	event := &EruptionEvent{
		VolcanoName: name,
		StartYear:   startYear,
	}

	event.EndYear = parseOptionalInt(r.EndYear)
	event.StartMonth = parseOptionalFloat(r.StartMonth)
	event.EndMonth = parseOptionalFloat(r.EndMonth)
	event.VEI = parseOptionalFloat(r.VEI)

	return event, nil
}

func parseOptionalInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ValidationError represents a data validation error during ingestion.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
