package models

// ChemistryPoint is one TAS scatter marker: x = SiO2 weight-percent,
// y = Na2O+K2O weight-percent. Joined points also carry the matched
// eruption's VEI so the chart layer can pick a symbol (the original draws
// VEI >= 3 as triangles).
type ChemistryPoint struct {
	Silica      float64  `json:"silica"`
	TotalAlkali float64  `json:"total_alkali"`
	VEI         *float64 `json:"vei,omitempty"`
}

// ChemistrySeries groups chemistry markers by rock class.
type ChemistrySeries struct {
	RockClass string           `json:"rock_class"`
	Points    []ChemistryPoint `json:"points"`
}

// VEIPoint is one explosivity marker on the chronogram. Date is set for
// the calendar-axis period, Year otherwise. Known is false when the event
// has no recorded VEI; such points render at zero.
type VEIPoint struct {
	Date  string  `json:"date,omitempty"`
	Year  int     `json:"year,omitempty"`
	VEI   float64 `json:"vei"`
	Known bool    `json:"known"`
}

// OverlayPoint is one chemistry marker superimposed on the chronogram,
// already scaled and offset to sit below the VEI scale.
type OverlayPoint struct {
	Date  string  `json:"date,omitempty"`
	Year  int     `json:"year,omitempty"`
	Value float64 `json:"value"`
}

// OverlaySeries is one derived chemistry series per rock class: either the
// alkalinity sum (NA2O+K2O) or silica (SIO2), both divided by 100 and
// offset by -0.4.
type OverlaySeries struct {
	RockClass string         `json:"rock_class"`
	Name      string         `json:"name"`
	Points    []OverlayPoint `json:"points"`
}

// ProjectedSeries is the Period Classifier output: the overlay series for
// the active period, ready to superimpose on the chronogram.
type ProjectedSeries struct {
	Period Period          `json:"-"`
	Series []OverlaySeries `json:"series"`
}

// Chronogram is the eruption-history chart: VEI points for the active
// period plus optional sample overlays.
type Chronogram struct {
	Period    string          `json:"period"`
	Axis      string          `json:"axis"` // "date" or "year"
	VEISeries []VEIPoint      `json:"vei_series"`
	Overlays  []OverlaySeries `json:"overlays,omitempty"`
}

// ChartData bundles the three chart-ready outputs of one pipeline run.
type ChartData struct {
	FullChemistry   []ChemistrySeries `json:"full_chemistry"`
	JoinedChemistry []ChemistrySeries `json:"joined_chemistry"`
	Chronogram      Chronogram        `json:"chronogram"`
}
