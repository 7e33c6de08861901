// Package render draws trajectory plots to PNG files with gonum/plot,
// matching the panel layout of the on-screen charts.
package render

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pistonlab/pistonsim/internal/dynamo"
	"github.com/pistonlab/pistonsim/internal/report"
)

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)

	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("render: create directory: %w", err)
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(150),
	)
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("render: create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("render: write png: %w", err)
	}
	return nil
}

// SaveLinePlot draws a single x/y line chart to outDir/filename.
func SaveLinePlot(outDir, filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("render: %s: invalid plot data: %d xs, %d ys", filename, len(xs), len(ys))
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2.0)
	p.Add(line)

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

func scaled(vals []float64, factor float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * factor
	}
	return out
}

// RenderRun writes one PNG per trajectory panel: displacement, velocity,
// pressure, volume, and (for spring-loaded models) spring force. Axes use
// display units.
func RenderRun(outDir string, result *dynamo.Result) error {
	if len(result.Times) == 0 || len(result.States) == 0 {
		return fmt.Errorf("render: empty result")
	}

	tMS := scaled(result.Times, report.MSPerSecond)

	if err := SaveLinePlot(outDir, "dart_displacement.png", "Dart Displacement",
		"time (ms)", "position (mm)", tMS, scaled(result.Series(0), report.MMPerMeter)); err != nil {
		return err
	}
	if err := SaveLinePlot(outDir, "dart_velocity.png", "Dart Velocity",
		"time (ms)", "velocity (fps)", tMS, scaled(result.Series(1), report.FPSPerMPS)); err != nil {
		return err
	}

	if len(result.States[0]) >= 4 {
		if err := SaveLinePlot(outDir, "plunger_displacement.png", "Plunger Displacement",
			"time (ms)", "position (mm)", tMS, scaled(result.Series(2), report.MMPerMeter)); err != nil {
			return err
		}
		if err := SaveLinePlot(outDir, "plunger_velocity.png", "Plunger Velocity",
			"time (ms)", "velocity (fps)", tMS, scaled(result.Series(3), report.FPSPerMPS)); err != nil {
			return err
		}
	}

	if len(result.Pressure) == len(result.Times) {
		if err := SaveLinePlot(outDir, "pressure.png", "Chamber Pressure",
			"time (ms)", "pressure (bar)", tMS, scaled(result.Pressure, report.BarPerPascal)); err != nil {
			return err
		}
	}
	if len(result.Volume) == len(result.Times) {
		if err := SaveLinePlot(outDir, "volume.png", "Chamber Volume",
			"time (ms)", "volume (mL)", tMS, scaled(result.Volume, report.MLPerM3)); err != nil {
			return err
		}
	}
	if len(result.SpringForce) == len(result.Times) {
		if err := SaveLinePlot(outDir, "spring_force.png", "Spring Force",
			"time (ms)", "force (N)", tMS, result.SpringForce); err != nil {
			return err
		}
	}

	return nil
}
