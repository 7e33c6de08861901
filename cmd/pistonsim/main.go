package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pistonlab/pistonsim/internal/analysis"
	"github.com/pistonlab/pistonsim/internal/dynamo"
	"github.com/pistonlab/pistonsim/internal/integrators"
	"github.com/pistonlab/pistonsim/internal/metrics"
	"github.com/pistonlab/pistonsim/internal/models"
	"github.com/pistonlab/pistonsim/internal/params"
	"github.com/pistonlab/pistonsim/internal/render"
	"github.com/pistonlab/pistonsim/internal/report"
	"github.com/pistonlab/pistonsim/internal/sim"
	"github.com/pistonlab/pistonsim/internal/storage"
	"github.com/pistonlab/pistonsim/internal/viz"
)

var (
	dataDir      string
	paramFile    string
	preset       string
	integrator   string
	tolerance    float64
	samples      int
	endTime      float64
	frictionMode string
	outDir       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pistonsim",
		Short: "spring-piston dart launcher internal ballistics simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pistonsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a launch simulation (gas_spring or dart_plunger)",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a saved run to PNG charts",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outDir, "out", "plots", "output directory")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the run trajectory as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write the full run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "replay a launch live in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := params.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "parameter file utilities",
	}
	paramsInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a stock parameter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := params.Default()
			if preset != "" {
				set = params.GetPreset(set.Model, preset)
				if set == nil {
					return fmt.Errorf("unknown preset: %s", preset)
				}
			}
			if err := set.Save(args[0]); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	paramsInitCmd.Flags().StringVar(&preset, "preset", "", "preset to write")
	paramsValidateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "validate a parameter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := params.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: valid %s parameter set (schema %d)\n", args[0], set.Model, set.Schema)
			return nil
		},
	}
	paramsCmd.AddCommand(paramsInitCmd, paramsValidateCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, exportCmd, exportCSVCmd, exportJSONCmd, liveCmd, presetsCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&paramFile, "params", "", "parameter file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator (euler, rk4, rk45)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-8, "adaptive error tolerance")
	cmd.Flags().IntVar(&samples, "samples", 0, "output samples (overrides parameter set)")
	cmd.Flags().Float64Var(&endTime, "time", 0, "simulated duration in seconds (overrides parameter set)")
	cmd.Flags().StringVar(&frictionMode, "friction-mode", "threshold", "gas_spring friction mode (threshold, static-only)")
}

// resolveSet builds the parameter set for a run: preset or stock defaults
// for the model, then the parameter file, then explicit flag overrides.
func resolveSet(cmd *cobra.Command, model string) (*params.Set, error) {
	var set *params.Set
	if preset != "" {
		set = params.GetPreset(model, preset)
		if set == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, params.ListPresets(model))
		}
	} else {
		switch model {
		case params.ModelGasSpring:
			set = params.GetPreset(model, "precharged")
		case params.ModelDartPlunger:
			set = params.GetPreset(model, "stock")
		default:
			return nil, fmt.Errorf("unknown model: %s", model)
		}
	}

	if paramFile != "" {
		if err := set.Reload(paramFile); err != nil {
			return nil, fmt.Errorf("load parameters: %w", err)
		}
		if set.Model != model {
			return nil, fmt.Errorf("parameter file is for model %s, not %s", set.Model, model)
		}
	}

	if cmd.Flags().Changed("time") {
		set.EndTime = endTime
	}
	if cmd.Flags().Changed("samples") {
		set.Points = samples
	}
	return set, set.Validate()
}

func buildSystem(set *params.Set) (dynamo.System, error) {
	dyn, err := set.System()
	if err != nil {
		return nil, err
	}
	if g, ok := dyn.(*models.GasSpring); ok {
		switch frictionMode {
		case "threshold":
			g.Mode = models.FrictionThreshold
		case "static-only":
			g.Mode = models.FrictionStaticOnly
		default:
			return nil, fmt.Errorf("unknown friction mode: %s", frictionMode)
		}
	}
	return dyn, nil
}

func getIntegrator(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

func initialState(dyn dynamo.System) dynamo.State {
	return make(dynamo.State, dyn.StateDim())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := args[0]

	set, err := resolveSet(cmd, model)
	if err != nil {
		return err
	}
	dyn, err := buildSystem(set)
	if err != nil {
		return err
	}
	integ, err := getIntegrator(integrator)
	if err != nil {
		return err
	}

	cfg := set.SimConfig()
	cfg.Tolerance = tolerance

	simulator := sim.New(dyn, integ)
	simulator.AddMetric(metrics.NewMuzzleVelocity(1))
	if pv, ok := dyn.(dynamo.PressureVolume); ok {
		simulator.AddMetric(metrics.NewMinPressure(pv))
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", model)
	start := time.Now()

	result, err := sim.NewRunner().Do(context.Background(), simulator, initialState(dyn), cfg)
	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			return fmt.Errorf("simulation failed at t=%.6fs: %w", simErr.Time, err)
		}
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(model, integrator, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d steps)\n", elapsed, result.StepsTaken)
	fmt.Printf("run id: %s\n\n", runID)
	fmt.Println(report.Build(model, result).String())

	if dp, ok := dyn.(*models.DartPlunger); ok {
		printEnergy(dp, result)
	}

	if len(result.Metrics) > 0 {
		fmt.Println("metrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

	return nil
}

// printEnergy reports the spring-to-dart energy transfer for the two-body
// model.
func printEnergy(dp *models.DartPlunger, result *dynamo.Result) {
	final := result.Final()
	ke := analysis.KineticEnergy(dp.DartMass, final[1])
	stored := dp.StoredEnergy()

	fmt.Println("energy:")
	fmt.Printf("  spring stored:  %.4f J\n", stored)
	fmt.Printf("  dart kinetic:   %.4f J\n", ke)
	fmt.Printf("  efficiency:     %.1f %%\n", analysis.Efficiency(ke, stored)*100)

	if imp, err := analysis.Impulse(result.Times, result.Pressure, dp.AmbientPressure, dp.BarrelArea()); err == nil {
		fmt.Printf("  barrel impulse: %.6f N·s\n", imp)
	}
	fmt.Println()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tSAMPLES\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fms\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.EndTime*report.MSPerSecond,
			run.Samples,
			run.Integrator,
		)
	}

	return w.Flush()
}

// plotPanels is the terminal plot layout: column name, caption, display
// scale.
var plotPanels = []struct {
	column  string
	caption string
	scale   float64
}{
	{"dart_pos", "dart position (mm)", report.MMPerMeter},
	{"dart_vel", "dart velocity (fps)", report.FPSPerMPS},
	{"plunger_pos", "plunger position (mm)", report.MMPerMeter},
	{"plunger_vel", "plunger velocity (fps)", report.FPSPerMPS},
	{"pos", "position (mm)", report.MMPerMeter},
	{"vel", "velocity (fps)", report.FPSPerMPS},
	{"pressure", "chamber pressure (bar)", report.BarPerPascal},
	{"volume", "chamber volume (mL)", report.MLPerM3},
	{"spring_force", "spring force (N)", 1},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(traj.Times))

	for _, panel := range plotPanels {
		series := traj.Series(panel.column)
		if series == nil {
			continue
		}
		data := make([]float64, len(series))
		for i, v := range series {
			data[i] = v * panel.scale
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(panel.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	result := &dynamo.Result{
		Times:       traj.Times,
		States:      make([]dynamo.State, len(traj.States)),
		Pressure:    traj.Pressure,
		Volume:      traj.Volume,
		SpringForce: traj.SpringForce,
	}
	for i, s := range traj.States {
		result.States[i] = s
	}

	if err := render.RenderRun(outDir, result); err != nil {
		return err
	}
	fmt.Printf("wrote charts to %s\n", outDir)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(traj.Columns); err != nil {
		return err
	}

	series := make([][]float64, len(traj.Columns))
	for i, col := range traj.Columns {
		series[i] = traj.Series(col)
	}

	for i := range traj.Times {
		row := make([]string, len(series))
		for j := range series {
			row[j] = strconv.FormatFloat(series[j][i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	result := &dynamo.Result{
		Times:       traj.Times,
		States:      make([]dynamo.State, len(traj.States)),
		Pressure:    traj.Pressure,
		Volume:      traj.Volume,
		SpringForce: traj.SpringForce,
		Metrics:     meta.Metrics,
	}
	for i, s := range traj.States {
		result.States[i] = s
	}

	cfg := dynamo.DefaultConfig()
	cfg.EndTime = meta.EndTime
	cfg.Tolerance = meta.Tolerance

	return storage.ExportJSONStdout(meta.Model, meta.Integrator, cfg, result)
}

func runLive(cmd *cobra.Command, args []string) error {
	model := args[0]

	set, err := resolveSet(cmd, model)
	if err != nil {
		return err
	}
	dyn, err := buildSystem(set)
	if err != nil {
		return err
	}
	integ, err := getIntegrator(integrator)
	if err != nil {
		return err
	}

	m := viz.NewModel(dyn, integ, initialState(dyn), set.EndTime, tolerance, model)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
