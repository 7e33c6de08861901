// Package report renders a textual results summary in display units,
// mirroring what the launcher plots show.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// Summary condenses a finished run into the figures a builder cares about.
type Summary struct {
	Model   string
	Samples int
	EndTime float64

	FinalDartPos  float64
	FinalDartVel  float64
	MaxDartVel    float64
	FinalPlungPos float64
	FinalPlungVel float64
	MaxPlungVel   float64

	FinalPressure float64
	MinPressure   float64
	FinalVolume   float64
	MaxVolume     float64

	HasPlunger bool
}

// Build extracts the summary from a result. For the single-body model the
// "dart" columns describe the lone moving body.
func Build(model string, result *dynamo.Result) Summary {
	s := Summary{
		Model:   model,
		Samples: len(result.Times),
	}
	if len(result.Times) > 0 {
		s.EndTime = result.Times[len(result.Times)-1]
	}
	if len(result.States) == 0 {
		return s
	}

	final := result.Final()
	s.FinalDartPos = final[0]
	s.FinalDartVel = final[1]
	s.MaxDartVel = maxAbs(result.Series(1))

	if len(final) >= 4 {
		s.HasPlunger = true
		s.FinalPlungPos = final[2]
		s.FinalPlungVel = final[3]
		s.MaxPlungVel = maxAbs(result.Series(3))
	}

	if n := len(result.Pressure); n > 0 {
		s.FinalPressure = result.Pressure[n-1]
		s.MinPressure = minOf(result.Pressure)
	}
	if n := len(result.Volume); n > 0 {
		s.FinalVolume = result.Volume[n-1]
		s.MaxVolume = maxOf(result.Volume)
	}

	return s
}

// String renders the summary in display units (mm, fps, bar, mL, ms).
func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "SIMULATION RESULTS\n%s\n", strings.Repeat("=", 40))
	fmt.Fprintf(&b, "Model:   %s\n", s.Model)
	fmt.Fprintf(&b, "Time:    %.3f ms\n", s.EndTime*MSPerSecond)
	fmt.Fprintf(&b, "Samples: %d\n", s.Samples)

	fmt.Fprintf(&b, "\nDART\n%s\n", strings.Repeat("-", 20))
	fmt.Fprintf(&b, "Final Position: %.3f mm\n", s.FinalDartPos*MMPerMeter)
	fmt.Fprintf(&b, "Final Velocity: %.3f fps\n", s.FinalDartVel*FPSPerMPS)
	fmt.Fprintf(&b, "Max Velocity:   %.3f fps\n", s.MaxDartVel*FPSPerMPS)

	if s.HasPlunger {
		fmt.Fprintf(&b, "\nPLUNGER\n%s\n", strings.Repeat("-", 20))
		fmt.Fprintf(&b, "Final Position: %.3f mm\n", s.FinalPlungPos*MMPerMeter)
		fmt.Fprintf(&b, "Final Velocity: %.3f fps\n", s.FinalPlungVel*FPSPerMPS)
		fmt.Fprintf(&b, "Max Velocity:   %.3f fps\n", s.MaxPlungVel*FPSPerMPS)
	}

	fmt.Fprintf(&b, "\nSYSTEM\n%s\n", strings.Repeat("-", 20))
	fmt.Fprintf(&b, "Final Pressure: %.3f bar\n", s.FinalPressure*BarPerPascal)
	fmt.Fprintf(&b, "Min Pressure:   %.3f bar\n", s.MinPressure*BarPerPascal)
	fmt.Fprintf(&b, "Final Volume:   %.3f mL\n", s.FinalVolume*MLPerM3)
	fmt.Fprintf(&b, "Max Volume:     %.3f mL\n", s.MaxVolume*MLPerM3)

	return b.String()
}

func maxAbs(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}
