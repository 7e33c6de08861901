// Package storage persists finished runs to disk. Each run gets its own
// directory holding metadata.json and trajectory.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pistonlab/pistonsim/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Tolerance  float64            `json:"tolerance"`
	EndTime    float64            `json:"end_time"`
	Samples    int                `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Trajectory is a run read back from disk.
type Trajectory struct {
	Columns     []string
	Times       []float64
	States      [][]float64
	Pressure    []float64
	Volume      []float64
	SpringForce []float64
}

// stateColumns names the state components for CSV headers. The 4-state
// launcher gets dart and plunger columns; anything else falls back to
// generic position/velocity pairs.
func stateColumns(dim int) []string {
	switch dim {
	case 2:
		return []string{"pos", "vel"}
	case 4:
		return []string{"dart_pos", "dart_vel", "plunger_pos", "plunger_vel"}
	}
	cols := make([]string, dim)
	for i := range cols {
		cols[i] = fmt.Sprintf("x%d", i)
	}
	return cols
}

// Save writes the run to a new directory under the store root and returns
// its run ID. Nanosecond IDs keep back-to-back runs distinct; creating the
// run directory fails rather than overwriting an existing run.
func (s *Store) Save(model, integrator string, cfg dynamo.Config, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	if err := os.Mkdir(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Integrator: integrator,
		Tolerance:  cfg.Tolerance,
		EndTime:    cfg.EndTime,
		Samples:    len(result.Times),
		Metrics:    result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "trajectory.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.States) == 0 {
		return runID, nil
	}

	header := append([]string{"time"}, stateColumns(len(result.States[0]))...)
	hasPressure := len(result.Pressure) == len(result.Times)
	hasVolume := len(result.Volume) == len(result.Times)
	hasSpring := len(result.SpringForce) == len(result.Times)
	if hasPressure {
		header = append(header, "pressure")
	}
	if hasVolume {
		header = append(header, "volume")
	}
	if hasSpring {
		header = append(header, "spring_force")
	}

	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'g', -1, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if hasPressure {
			row = append(row, strconv.FormatFloat(result.Pressure[i], 'g', -1, 64))
		}
		if hasVolume {
			row = append(row, strconv.FormatFloat(result.Volume[i], 'g', -1, 64))
		}
		if hasSpring {
			row = append(row, strconv.FormatFloat(result.SpringForce[i], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads trajectory.csv back, splitting derived columns out of
// the state block by header name.
func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	csvPath := filepath.Join(s.baseDir, runID, "trajectory.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: %s: empty trajectory", runID)
	}

	header := records[0]
	traj := &Trajectory{Columns: header}

	derived := map[string]*[]float64{
		"pressure":     &traj.Pressure,
		"volume":       &traj.Volume,
		"spring_force": &traj.SpringForce,
	}

	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("storage: %s: ragged row: %d fields, header has %d", runID, len(record), len(header))
		}

		var state []float64
		for j, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s: column %q: %w", runID, header[j], err)
			}
			switch {
			case header[j] == "time":
				traj.Times = append(traj.Times, val)
			case derived[header[j]] != nil:
				dst := derived[header[j]]
				*dst = append(*dst, val)
			default:
				state = append(state, val)
			}
		}
		traj.States = append(traj.States, state)
	}

	return traj, nil
}

// Series returns a named column from the trajectory, or nil if absent.
func (t *Trajectory) Series(name string) []float64 {
	switch name {
	case "time":
		return t.Times
	case "pressure":
		return t.Pressure
	case "volume":
		return t.Volume
	case "spring_force":
		return t.SpringForce
	}
	stateIdx := 0
	for _, col := range t.Columns {
		switch col {
		case "time", "pressure", "volume", "spring_force":
			continue
		}
		if col == name {
			out := make([]float64, len(t.States))
			for i, s := range t.States {
				out[i] = s[stateIdx]
			}
			return out
		}
		stateIdx++
	}
	return nil
}
