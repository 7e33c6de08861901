package report

// Display-unit conversion factors. Simulation values are SI; summaries use
// hobbyist-friendly units.
const (
	MMPerMeter   = 1000.0
	GramsPerKg   = 1000.0
	FPSPerMPS    = 3.280839895013123
	BarPerPascal = 1e-5
	MLPerM3      = 1e6
	MSPerSecond  = 1000.0
)
