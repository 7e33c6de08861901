// Package params defines the launcher parameter set and its versioned YAML
// persistence. Loading validates the schema tag, the presence of every
// required field, and the physical bounds before anything is assigned, so a
// rejected load never disturbs the active set.
package params

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pistonlab/pistonsim/internal/dynamo"
	"github.com/pistonlab/pistonsim/internal/models"
)

// SchemaVersion is the current parameter file schema.
const SchemaVersion = 1

const (
	ModelGasSpring   = "gas_spring"
	ModelDartPlunger = "dart_plunger"
)

// Set is a complete launcher parameter set. All quantities are SI.
type Set struct {
	Schema int    `yaml:"schema"`
	Model  string `yaml:"model"`

	InitialPressure float64 `yaml:"initial_pressure"`
	AmbientPressure float64 `yaml:"ambient_pressure"`
	BarrelDiameter  float64 `yaml:"barrel_diameter"`
	PlungerDiameter float64 `yaml:"plunger_diameter"`
	Gamma           float64 `yaml:"gamma"`
	DartMass        float64 `yaml:"dart_mass"`
	PlungerMass     float64 `yaml:"plunger_mass"`
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	Precompression  float64 `yaml:"precompression"`
	FreeLength      float64 `yaml:"free_length"`
	SpringK         float64 `yaml:"spring_k"`
	EndTime         float64 `yaml:"end_time"`
	Points          int     `yaml:"n_points"`

	// RestVolume is only consulted by the single-body model; the two-body
	// model derives its reference volume from the plunger geometry.
	RestVolume float64 `yaml:"rest_volume,omitempty"`

	// Leakage is carried for file compatibility but not used by the
	// dynamics in any variant.
	Leakage float64 `yaml:"leakage,omitempty"`
}

// requiredKeys are the fields a loaded file must carry. A file missing any
// of them is rejected outright.
var requiredKeys = []string{
	"schema", "model",
	"initial_pressure", "ambient_pressure",
	"barrel_diameter", "plunger_diameter",
	"gamma", "dart_mass", "plunger_mass",
	"static_friction", "dynamic_friction",
	"precompression", "free_length", "spring_k",
	"end_time", "n_points",
}

// Validate checks the physical invariants of the set.
func (s *Set) Validate() error {
	positive := map[string]float64{
		"initial_pressure": s.InitialPressure,
		"ambient_pressure": s.AmbientPressure,
		"barrel_diameter":  s.BarrelDiameter,
		"plunger_diameter": s.PlungerDiameter,
		"dart_mass":        s.DartMass,
		"plunger_mass":     s.PlungerMass,
		"precompression":   s.Precompression,
		"free_length":      s.FreeLength,
		"end_time":         s.EndTime,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %g", dynamo.ErrParameterBounds, name, v)
		}
	}

	if s.Gamma <= 1 {
		return fmt.Errorf("%w: gamma must be > 1, got %g", dynamo.ErrParameterBounds, s.Gamma)
	}
	if s.Points < 2 {
		return fmt.Errorf("%w: n_points must be >= 2, got %d", dynamo.ErrParameterBounds, s.Points)
	}
	if s.StaticFriction < 0 || s.DynamicFriction < 0 {
		return fmt.Errorf("%w: friction forces must be >= 0", dynamo.ErrParameterBounds)
	}
	if s.SpringK < 0 {
		return fmt.Errorf("%w: spring_k must be >= 0, got %g", dynamo.ErrParameterBounds, s.SpringK)
	}

	switch s.Model {
	case ModelGasSpring, ModelDartPlunger:
	default:
		return fmt.Errorf("%w: unknown model %q", dynamo.ErrParameterBounds, s.Model)
	}

	return nil
}

// Load reads and fully validates a parameter file. The returned set is only
// non-nil on success.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Presence check first: decoding into the struct cannot distinguish a
	// missing key from a zero value.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse parameter file: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: %s", dynamo.ErrMissingField, key)
		}
	}

	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse parameter file: %w", err)
	}

	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", dynamo.ErrSchemaVersion, s.Schema, SchemaVersion)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Reload replaces s with the contents of path. On any error s is left
// completely unchanged.
func (s *Set) Reload(path string) error {
	loaded, err := Load(path)
	if err != nil {
		return err
	}
	*s = *loaded
	return nil
}

// Save writes the set as YAML, stamping the current schema version.
func (s *Set) Save(path string) error {
	out := *s
	out.Schema = SchemaVersion

	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GasSpring builds the single-body model from the set. The bore takes the
// barrel diameter; the rest volume defaults to the plunger tube volume when
// not given explicitly.
func (s *Set) GasSpring() *models.GasSpring {
	g := models.NewGasSpring()
	g.InitialPressure = s.InitialPressure
	g.AmbientPressure = s.AmbientPressure
	g.Diameter = s.BarrelDiameter
	g.Gamma = s.Gamma
	g.Mass = s.DartMass
	g.StaticFriction = s.StaticFriction
	g.DynamicFriction = s.DynamicFriction
	if s.RestVolume > 0 {
		g.RestVolume = s.RestVolume
	} else {
		g.RestVolume = tubeVolume(s.PlungerDiameter, s.FreeLength)
	}
	return g
}

// DartPlunger builds the two-body model from the set.
func (s *Set) DartPlunger() *models.DartPlunger {
	return &models.DartPlunger{
		InitialPressure: s.InitialPressure,
		AmbientPressure: s.AmbientPressure,
		BarrelDiameter:  s.BarrelDiameter,
		PlungerDiameter: s.PlungerDiameter,
		Gamma:           s.Gamma,
		DartMass:        s.DartMass,
		PlungerMass:     s.PlungerMass,
		Precompression:  s.Precompression,
		FreeLength:      s.FreeLength,
		SpringK:         s.SpringK,
	}
}

// System builds the model named by the set.
func (s *Set) System() (dynamo.System, error) {
	switch s.Model {
	case ModelGasSpring:
		return s.GasSpring(), nil
	case ModelDartPlunger:
		return s.DartPlunger(), nil
	default:
		return nil, fmt.Errorf("%w: unknown model %q", dynamo.ErrParameterBounds, s.Model)
	}
}

// SimConfig derives the integration config from the set.
func (s *Set) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.EndTime = s.EndTime
	cfg.Samples = s.Points
	cfg.MaxDt = s.EndTime / 10
	return cfg
}

func tubeVolume(diameter, length float64) float64 {
	return length * math.Pi * diameter * diameter / 4
}
