package models

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

// TestRawSampleRecord_ToSample tests the GEOROC row conversion logic
func TestRawSampleRecord_ToSample(t *testing.T) {
	tests := []struct {
		name        string
		record      RawSampleRecord
		volcanoName string
		wantErr     bool
		checkValues func(*testing.T, *Sample)
	}{
		{
			name: "valid record with all values",
			record: RawSampleRecord{
				EruptionYear:  "1883",
				EruptionMonth: "5",
				EruptionDay:   "20",
				SiO2:          "62.345",
				Na2O:          "4.1",
				K2O:           "2.2",
				FeO:           "5.5",
				CaO:           "3.3",
				MgO:           "1.1",
				RockClass:     "VOLCANIC ROCK",
			},
			volcanoName: "krakatau",
			wantErr:     false,
			checkValues: func(t *testing.T, s *Sample) {
				if s.VolcanoNameRaw != "krakatau" {
					t.Errorf("VolcanoNameRaw = %v, want %v", s.VolcanoNameRaw, "krakatau")
				}

				if s.EruptionYear == nil || *s.EruptionYear != 1883 {
					t.Errorf("EruptionYear = %v, want 1883", s.EruptionYear)
				}
				if s.EruptionMonth == nil || *s.EruptionMonth != 5 {
					t.Errorf("EruptionMonth = %v, want 5", s.EruptionMonth)
				}
				if s.EruptionDay == nil || *s.EruptionDay != 20 {
					t.Errorf("EruptionDay = %v, want 20", s.EruptionDay)
				}

				if got := s.Oxide(OxideSiO2); got != 62.345 {
					t.Errorf("SiO2 = %v, want 62.345", got)
				}
				if got := s.TotalAlkali(); got != 6.3 {
					t.Errorf("TotalAlkali = %v, want 6.3", got)
				}
				if got := s.Oxide(OxideMgO); got != 1.1 {
					t.Errorf("MgO = %v, want 1.1", got)
				}

				if s.RockClass != "VOLCANIC ROCK" {
					t.Errorf("RockClass = %v, want VOLCANIC ROCK", s.RockClass)
				}
			},
		},
		{
			name: "missing date fields become nil",
			record: RawSampleRecord{
				EruptionYear:  "",
				EruptionMonth: "",
				EruptionDay:   "",
				SiO2:          "50.0",
				Na2O:          "3.0",
				K2O:           "1.0",
				RockClass:     "VOLCANIC ROCK",
			},
			volcanoName: "etna",
			wantErr:     false,
			checkValues: func(t *testing.T, s *Sample) {
				if s.EruptionYear != nil {
					t.Error("EruptionYear should be nil for empty input")
				}
				if s.EruptionMonth != nil {
					t.Error("EruptionMonth should be nil for empty input")
				}
				if s.EruptionDay != nil {
					t.Error("EruptionDay should be nil for empty input")
				}
			},
		},
		{
			name: "missing optional oxides absent from map",
			record: RawSampleRecord{
				SiO2:      "50.0",
				Na2O:      "3.0",
				K2O:       "1.0",
				RockClass: "VOLCANIC ROCK",
			},
			volcanoName: "etna",
			wantErr:     false,
			checkValues: func(t *testing.T, s *Sample) {
				if _, ok := s.Oxides[OxideFeO]; ok {
					t.Error("FeO should be absent when not measured")
				}
				if got := s.Oxide(OxideFeO); got != 0 {
					t.Errorf("Oxide(FeO) = %v, want 0 for unmeasured", got)
				}
			},
		},
		{
			name: "negative eruption year (BC) is valid",
			record: RawSampleRecord{
				EruptionYear: "-5050",
				SiO2:         "50.0",
				Na2O:         "3.0",
				K2O:          "1.0",
			},
			volcanoName: "santorini",
			wantErr:     false,
			checkValues: func(t *testing.T, s *Sample) {
				if s.EruptionYear == nil || *s.EruptionYear != -5050 {
					t.Errorf("EruptionYear = %v, want -5050", s.EruptionYear)
				}
			},
		},
		{
			name: "missing SiO2 is rejected",
			record: RawSampleRecord{
				Na2O: "3.0",
				K2O:  "1.0",
			},
			volcanoName: "etna",
			wantErr:     true,
		},
		{
			name: "missing K2O is rejected",
			record: RawSampleRecord{
				SiO2: "50.0",
				Na2O: "3.0",
			},
			volcanoName: "etna",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := tt.record.ToSample(tt.volcanoName)

			if (err != nil) != tt.wantErr {
				t.Errorf("ToSample() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.checkValues != nil {
				tt.checkValues(t, sample)
			}
		})
	}
}

// TestRawEruptionRecord_ToEvent tests the GVP row conversion logic
func TestRawEruptionRecord_ToEvent(t *testing.T) {
	tests := []struct {
		name        string
		record      RawEruptionRecord
		wantErr     bool
		checkValues func(*testing.T, *EruptionEvent)
	}{
		{
			name: "valid record with all values",
			record: RawEruptionRecord{
				VolcanoName: "Krakatau",
				StartYear:   "1883",
				EndYear:     "1883",
				StartMonth:  "5",
				EndMonth:    "10",
				VEI:         "6",
			},
			wantErr: false,
			checkValues: func(t *testing.T, e *EruptionEvent) {
				if e.VolcanoName != "Krakatau" {
					t.Errorf("VolcanoName = %v, want Krakatau", e.VolcanoName)
				}
				if e.StartYear != 1883 {
					t.Errorf("StartYear = %v, want 1883", e.StartYear)
				}
				if e.VEI == nil || *e.VEI != 6 {
					t.Errorf("VEI = %v, want 6", e.VEI)
				}

				start, end, ok := e.MonthRange()
				if !ok {
					t.Fatal("MonthRange should be present")
				}
				if start != 5 || end != 10 {
					t.Errorf("MonthRange = (%v, %v), want (5, 10)", start, end)
				}
			},
		},
		{
			name: "missing end year derives from start",
			record: RawEruptionRecord{
				VolcanoName: "Krakatau",
				StartYear:   "1883",
			},
			wantErr: false,
			checkValues: func(t *testing.T, e *EruptionEvent) {
				if e.EndYear != nil {
					t.Error("EndYear should stay nil; derivation must not mutate the record")
				}
				if got := e.EndYearOrStart(); got != 1883 {
					t.Errorf("EndYearOrStart() = %v, want 1883", got)
				}
				if e.StartText() != "1883" || e.EndText() != "1883" {
					t.Errorf("bounds = (%v, %v), want (1883, 1883)", e.StartText(), e.EndText())
				}
			},
		},
		{
			name: "nonpositive month bound disables the range",
			record: RawEruptionRecord{
				VolcanoName: "Etna",
				StartYear:   "1669",
				StartMonth:  "0",
				EndMonth:    "7",
			},
			wantErr: false,
			checkValues: func(t *testing.T, e *EruptionEvent) {
				if _, _, ok := e.MonthRange(); ok {
					t.Error("MonthRange should be absent when a bound is nonpositive")
				}
			},
		},
		{
			name: "missing volcano name is rejected",
			record: RawEruptionRecord{
				VolcanoName: "  ",
				StartYear:   "1883",
			},
			wantErr: true,
		},
		{
			name: "missing start year is rejected",
			record: RawEruptionRecord{
				VolcanoName: "Krakatau",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := tt.record.ToEvent()

			if (err != nil) != tt.wantErr {
				t.Errorf("ToEvent() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.checkValues != nil {
				tt.checkValues(t, event)
			}
		})
	}
}

// TestSample_ProjectedDate tests the calendar-axis projection and its
// clamping of malformed month/day values
func TestSample_ProjectedDate(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   time.Time
	}{
		{
			name: "valid full date",
			sample: Sample{
				EruptionYear:  intPtr(1883),
				EruptionMonth: intPtr(5),
				EruptionDay:   intPtr(20),
			},
			want: time.Date(1883, 5, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month out of range clamps to January",
			sample: Sample{
				EruptionYear:  intPtr(1902),
				EruptionMonth: intPtr(13),
				EruptionDay:   intPtr(10),
			},
			want: time.Date(1902, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day zero clamps to first",
			sample: Sample{
				EruptionYear:  intPtr(1902),
				EruptionMonth: intPtr(7),
				EruptionDay:   intPtr(0),
			},
			want: time.Date(1902, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "missing month and day clamp to January first",
			sample: Sample{
				EruptionYear: intPtr(1700),
			},
			want: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.ProjectedDate(); !got.Equal(tt.want) {
				t.Errorf("ProjectedDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPeriod_Contains tests the three-way era partition
func TestPeriod_Contains(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		year   int
		want   bool
	}{
		{"BC contains negative year", PeriodBC, -5050, true},
		{"BC excludes year zero", PeriodBC, 0, false},
		{"before1679 contains year zero", PeriodBefore1679, 0, true},
		{"before1679 contains 1678", PeriodBefore1679, 1678, true},
		{"before1679 excludes 1679", PeriodBefore1679, 1679, false},
		{"from1679 contains 1679", PeriodFrom1679, 1679, true},
		{"from1679 excludes 1678", PeriodFrom1679, 1678, false},
		{"from1679 excludes BC", PeriodFrom1679, -100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Contains(tt.year); got != tt.want {
				t.Errorf("Contains(%d) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

// TestParsePeriod tests wire values, UI label aliases and the fallback
func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"BC", PeriodBC},
		{"bc", PeriodBC},
		{"before1679", PeriodBefore1679},
		{"before 1679", PeriodBefore1679},
		{"from1679", PeriodFrom1679},
		{"1679 and after", PeriodFrom1679},
		{"", PeriodFrom1679},
		{"garbage", PeriodFrom1679},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePeriod(tt.input); got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestPeriod_UsesCalendarAxis tests the axis selection per period
func TestPeriod_UsesCalendarAxis(t *testing.T) {
	if !PeriodFrom1679.UsesCalendarAxis() {
		t.Error("from1679 should use the calendar axis")
	}
	if PeriodBC.UsesCalendarAxis() || PeriodBefore1679.UsesCalendarAxis() {
		t.Error("BC and before1679 should use the raw year axis")
	}
}

// TestValidationError tests error handling
func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "start_year",
		Value:   "invalid",
		Message: "missing or invalid start year",
	}

	if err.Error() != "missing or invalid start year" {
		t.Errorf("Error() = %v, want %v", err.Error(), "missing or invalid start year")
	}

	if err.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}
