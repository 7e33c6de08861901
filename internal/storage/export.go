package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

// ExportData is the JSON export shape for a single run, including the
// derived series alongside the raw states.
type ExportData struct {
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	EndTime     float64            `json:"end_time"`
	Samples     int                `json:"samples"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Pressure    []float64          `json:"pressure,omitempty"`
	Volume      []float64          `json:"volume,omitempty"`
	SpringForce []float64          `json:"spring_force,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

func buildExport(model, integrator string, cfg dynamo.Config, result *dynamo.Result) ExportData {
	data := ExportData{
		Model:       model,
		Integrator:  integrator,
		EndTime:     cfg.EndTime,
		Samples:     len(result.Times),
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Pressure:    result.Pressure,
		Volume:      result.Volume,
		SpringForce: result.SpringForce,
		Metrics:     result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

// ExportJSON writes the run as indented JSON to path.
func ExportJSON(path, model, integrator string, cfg dynamo.Config, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, model, integrator, cfg, result)
}

// ExportJSONStdout writes the run as indented JSON to stdout.
func ExportJSONStdout(model, integrator string, cfg dynamo.Config, result *dynamo.Result) error {
	return writeExport(os.Stdout, model, integrator, cfg, result)
}

func writeExport(w io.Writer, model, integrator string, cfg dynamo.Config, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(model, integrator, cfg, result))
}
