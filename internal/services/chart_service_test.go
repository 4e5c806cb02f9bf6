package services

import (
	"context"
	"math"
	"testing"

	"volcano-platform/internal/catalog"
	"volcano-platform/internal/models"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// One collector for the whole package; promauto panics on duplicate
// registration.
var testMetrics = metrics.NewCollector("services_test")

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("services-test", "0.0.0", logging.ErrorLevel)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func testChartService() *ChartService {
	cat := catalog.New(
		map[string]string{"krakatau 1883 deposit": "krakatau"},
		map[string]string{"krakatau": "Krakatau"},
		[]models.Sample{
			{
				VolcanoNameRaw: "krakatau",
				EruptionYear:   intPtr(1883),
				EruptionMonth:  intPtr(5),
				EruptionDay:    intPtr(20),
				Oxides: map[string]float64{
					models.OxideSiO2: 62.345,
					models.OxideNa2O: 4.0,
					models.OxideK2O:  2.0,
				},
				RockClass: "VOLCANIC ROCK",
			},
			{
				VolcanoNameRaw: "krakatau",
				EruptionYear:   intPtr(-5050),
				EruptionMonth:  intPtr(1),
				Oxides: map[string]float64{
					models.OxideSiO2: 55.0,
					models.OxideNa2O: 3.0,
					models.OxideK2O:  1.5,
				},
				RockClass: "PLUTONIC ROCK",
			},
			{
				VolcanoNameRaw: "unlisted",
				EruptionYear:   intPtr(1902),
				EruptionMonth:  intPtr(7),
				Oxides: map[string]float64{
					models.OxideSiO2: 48.0,
					models.OxideNa2O: 2.0,
					models.OxideK2O:  0.5,
				},
				RockClass: "VOLCANIC ROCK",
			},
		},
		[]models.EruptionEvent{
			{VolcanoName: "Krakatau", StartYear: 1883, EndYear: intPtr(1883), StartMonth: floatPtr(5), EndMonth: floatPtr(10), VEI: floatPtr(6)},
			{VolcanoName: "Krakatau", StartYear: 1927, EndYear: intPtr(1930), VEI: floatPtr(2)},
		},
	)

	return NewChartService(cat, testLogger(), testMetrics)
}

// TestBuildCharts_NoSelection tests the empty default charts for the
// placeholder volcano name
func TestBuildCharts_NoSelection(t *testing.T) {
	service := testChartService()

	for _, name := range []string{"", VolcanoNone} {
		data := service.BuildCharts(context.Background(), name, "all", models.PeriodFrom1679, true)

		if len(data.FullChemistry) != 0 {
			t.Errorf("FullChemistry has %d series for %q, want 0", len(data.FullChemistry), name)
		}
		if len(data.JoinedChemistry) != 0 {
			t.Errorf("JoinedChemistry has %d series for %q, want 0", len(data.JoinedChemistry), name)
		}
		if len(data.Chronogram.VEISeries) != 0 {
			t.Errorf("VEISeries has %d points for %q, want 0", len(data.Chronogram.VEISeries), name)
		}
	}
}

// TestBuildCharts_FullPipeline tests a complete aliased-volcano run
func TestBuildCharts_FullPipeline(t *testing.T) {
	service := testChartService()

	data := service.BuildCharts(context.Background(), "krakatau", "all", models.PeriodFrom1679, true)

	// Two rock classes in the full chemistry scatter
	if len(data.FullChemistry) != 2 {
		t.Fatalf("FullChemistry has %d series, want 2", len(data.FullChemistry))
	}

	// The 1883 sample joins the 1883 eruption and carries its VEI
	if len(data.JoinedChemistry) != 1 {
		t.Fatalf("JoinedChemistry has %d series, want 1", len(data.JoinedChemistry))
	}
	joined := data.JoinedChemistry[0]
	if joined.RockClass != "VOLCANIC ROCK" {
		t.Errorf("joined RockClass = %v, want VOLCANIC ROCK", joined.RockClass)
	}
	if len(joined.Points) != 1 {
		t.Fatalf("joined series has %d points, want 1", len(joined.Points))
	}
	if joined.Points[0].VEI == nil || *joined.Points[0].VEI != 6 {
		t.Errorf("joined VEI = %v, want 6", joined.Points[0].VEI)
	}

	// Both eruptions fall in the post-1679 period; the axis is calendar dates
	if data.Chronogram.Axis != "date" {
		t.Errorf("Chronogram.Axis = %v, want date", data.Chronogram.Axis)
	}
	if len(data.Chronogram.VEISeries) != 2 {
		t.Fatalf("VEISeries has %d points, want 2", len(data.Chronogram.VEISeries))
	}
	if data.Chronogram.VEISeries[0].Date != "1883-05-01" {
		t.Errorf("first VEI point date = %v, want 1883-05-01", data.Chronogram.VEISeries[0].Date)
	}
	if !data.Chronogram.VEISeries[0].Known {
		t.Error("first VEI point should be known")
	}

	// Overlay: alkali and silica series for the one in-period rock class
	if len(data.Chronogram.Overlays) != 2 {
		t.Fatalf("Overlays has %d series, want 2", len(data.Chronogram.Overlays))
	}
}

// TestBuildCharts_OverlayToggle tests that overlays are omitted on request
func TestBuildCharts_OverlayToggle(t *testing.T) {
	service := testChartService()

	data := service.BuildCharts(context.Background(), "krakatau", "all", models.PeriodFrom1679, false)

	if len(data.Chronogram.Overlays) != 0 {
		t.Errorf("Overlays has %d series with overlay disabled, want 0", len(data.Chronogram.Overlays))
	}
}

// TestBuildCharts_OverlayFollowsDateSelector tests that a specific date
// selector superimposes only that eruption's samples on the chronogram
func TestBuildCharts_OverlayFollowsDateSelector(t *testing.T) {
	cat := catalog.New(
		map[string]string{"krakatau 1883 deposit": "krakatau"},
		map[string]string{"krakatau": "Krakatau"},
		[]models.Sample{
			{
				VolcanoNameRaw: "krakatau",
				EruptionYear:   intPtr(1883),
				EruptionMonth:  intPtr(5),
				EruptionDay:    intPtr(20),
				Oxides: map[string]float64{
					models.OxideSiO2: 62.0,
					models.OxideNa2O: 4.0,
					models.OxideK2O:  2.0,
				},
				RockClass: "VOLCANIC ROCK",
			},
			{
				VolcanoNameRaw: "krakatau",
				EruptionYear:   intPtr(1927),
				EruptionMonth:  intPtr(8),
				EruptionDay:    intPtr(10),
				Oxides: map[string]float64{
					models.OxideSiO2: 50.0,
					models.OxideNa2O: 2.5,
					models.OxideK2O:  1.0,
				},
				RockClass: "VOLCANIC ROCK",
			},
		},
		[]models.EruptionEvent{
			{VolcanoName: "Krakatau", StartYear: 1883, EndYear: intPtr(1883), StartMonth: floatPtr(5), EndMonth: floatPtr(10), VEI: floatPtr(6)},
			{VolcanoName: "Krakatau", StartYear: 1927, EndYear: intPtr(1930), VEI: floatPtr(2)},
		},
	)
	service := NewChartService(cat, testLogger(), testMetrics)

	tests := []struct {
		name       string
		selector   string
		wantPoints int
		wantDate   string
	}{
		{"all keeps every eruption's samples", "all", 2, ""},
		{"specific date narrows to one eruption", "1883-5", 1, "1883-05-20"},
		{"bare year selector narrows too", "1927", 1, "1927-08-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := service.BuildCharts(context.Background(), "krakatau", tt.selector, models.PeriodFrom1679, true)

			if len(data.Chronogram.Overlays) != 2 {
				t.Fatalf("Overlays has %d series, want 2 (alkali + silica)", len(data.Chronogram.Overlays))
			}
			for _, series := range data.Chronogram.Overlays {
				if len(series.Points) != tt.wantPoints {
					t.Fatalf("%s series has %d points, want %d", series.Name, len(series.Points), tt.wantPoints)
				}
				if tt.wantDate != "" && series.Points[0].Date != tt.wantDate {
					t.Errorf("%s point date = %v, want %v", series.Name, series.Points[0].Date, tt.wantDate)
				}
			}
		})
	}
}

// TestBuildCharts_UnaliasedName tests that a fallback-resolved name keeps
// its chemistry but joins to nothing
func TestBuildCharts_UnaliasedName(t *testing.T) {
	service := testChartService()

	data := service.BuildCharts(context.Background(), "unlisted", "all", models.PeriodFrom1679, true)

	if len(data.FullChemistry) != 1 {
		t.Errorf("FullChemistry has %d series, want 1", len(data.FullChemistry))
	}
	if len(data.JoinedChemistry) != 0 {
		t.Errorf("JoinedChemistry has %d series, want 0 for an unaliased name", len(data.JoinedChemistry))
	}
	if len(data.Chronogram.VEISeries) != 0 {
		t.Errorf("VEISeries has %d points, want 0 for an unaliased name", len(data.Chronogram.VEISeries))
	}
}

// TestClassifyAndProject tests the period partition, the calendar
// projection and the offset scaling
func TestClassifyAndProject(t *testing.T) {
	samples := []models.Sample{
		{
			VolcanoNameRaw: "krakatau",
			EruptionYear:   intPtr(1883),
			EruptionMonth:  intPtr(5),
			EruptionDay:    intPtr(20),
			Oxides: map[string]float64{
				models.OxideSiO2: 62.345,
				models.OxideNa2O: 4.0,
				models.OxideK2O:  2.0,
			},
			RockClass: "VOLCANIC ROCK",
		},
		{
			VolcanoNameRaw: "krakatau",
			EruptionYear:   intPtr(-5050),
			Oxides: map[string]float64{
				models.OxideSiO2: 55.0,
				models.OxideNa2O: 3.0,
				models.OxideK2O:  1.0,
			},
			RockClass: "VOLCANIC ROCK",
		},
	}

	t.Run("calendar projection and offset for from1679", func(t *testing.T) {
		projected := ClassifyAndProject(samples, models.PeriodFrom1679)

		if len(projected.Series) != 2 {
			t.Fatalf("Series has %d entries, want 2 (alkali + silica)", len(projected.Series))
		}

		alkali, silica := projected.Series[0], projected.Series[1]
		if alkali.Name != "NA2O+K2O" || silica.Name != "SIO2" {
			t.Fatalf("series names = (%v, %v), want (NA2O+K2O, SIO2)", alkali.Name, silica.Name)
		}

		if len(silica.Points) != 1 {
			t.Fatalf("silica series has %d points, want 1", len(silica.Points))
		}
		point := silica.Points[0]
		if point.Date != "1883-05-20" {
			t.Errorf("silica point date = %v, want 1883-05-20", point.Date)
		}
		// 62.345 -> 0.62 on the percent scale, then the -0.4 offset
		if !approx(point.Value, 0.22) {
			t.Errorf("silica point value = %v, want 0.22", point.Value)
		}

		// (4.0+2.0)/100 = 0.06, offset to -0.34
		if got := alkali.Points[0].Value; !approx(got, -0.34) {
			t.Errorf("alkali point value = %v, want -0.34", got)
		}
	})

	t.Run("raw year axis for BC", func(t *testing.T) {
		projected := ClassifyAndProject(samples, models.PeriodBC)

		if len(projected.Series) != 2 {
			t.Fatalf("Series has %d entries, want 2", len(projected.Series))
		}
		point := projected.Series[0].Points[0]
		if point.Year != -5050 {
			t.Errorf("BC point year = %v, want -5050", point.Year)
		}
		if point.Date != "" {
			t.Errorf("BC point date = %q, want empty", point.Date)
		}
	})

	t.Run("no samples in period yields empty series", func(t *testing.T) {
		projected := ClassifyAndProject(samples, models.PeriodBefore1679)

		if len(projected.Series) != 0 {
			t.Errorf("Series has %d entries, want 0", len(projected.Series))
		}
	})
}

// TestEruptionDates tests the date dropdown derivation
func TestEruptionDates(t *testing.T) {
	service := testChartService()

	tests := []struct {
		name    string
		volcano string
		want    []string
	}{
		{"dated samples ascending", "krakatau", []string{"-5050-01", "1883-05"}},
		{"unknown volcano", "atlantis", nil},
		{"placeholder", VolcanoNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.EruptionDates(tt.volcano)
			if len(got) != len(tt.want) {
				t.Fatalf("EruptionDates(%q) = %v, want %v", tt.volcano, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("EruptionDates(%q)[%d] = %v, want %v", tt.volcano, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestListVolcanoes tests the name dropdown listing
func TestListVolcanoes(t *testing.T) {
	service := testChartService()

	names := service.ListVolcanoes()
	if len(names) != 2 || names[0] != "krakatau" || names[1] != "unlisted" {
		t.Errorf("ListVolcanoes() = %v, want [krakatau unlisted]", names)
	}
}
