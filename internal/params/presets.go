package params

// Presets are the named stock configurations, keyed by model then name.
var Presets = map[string]map[string]*Set{
	ModelDartPlunger: {
		"stock": {
			Schema: SchemaVersion, Model: ModelDartPlunger,
			InitialPressure: 101325, AmbientPressure: 101325,
			BarrelDiameter: 0.0127, PlungerDiameter: 0.035052,
			Gamma: 1.4, DartMass: 0.0012, PlungerMass: 0.06,
			StaticFriction: 0.4, DynamicFriction: 0.2,
			Precompression: 0.0254, FreeLength: 0.1016,
			SpringK: 523 * 11.0 / 5.0,
			EndTime: 0.02, Points: 1500,
		},
		"heavy_dart": {
			Schema: SchemaVersion, Model: ModelDartPlunger,
			InitialPressure: 101325, AmbientPressure: 101325,
			BarrelDiameter: 0.0127, PlungerDiameter: 0.035052,
			Gamma: 1.4, DartMass: 0.003, PlungerMass: 0.06,
			StaticFriction: 0.4, DynamicFriction: 0.2,
			Precompression: 0.0254, FreeLength: 0.1016,
			SpringK: 523 * 11.0 / 5.0,
			EndTime: 0.03, Points: 1500,
		},
		"stiff_spring": {
			Schema: SchemaVersion, Model: ModelDartPlunger,
			InitialPressure: 101325, AmbientPressure: 101325,
			BarrelDiameter: 0.0127, PlungerDiameter: 0.035052,
			Gamma: 1.4, DartMass: 0.0012, PlungerMass: 0.06,
			StaticFriction: 0.4, DynamicFriction: 0.2,
			Precompression: 0.0254, FreeLength: 0.1016,
			SpringK: 2000,
			EndTime: 0.02, Points: 1500,
		},
	},
	ModelGasSpring: {
		"precharged": {
			Schema: SchemaVersion, Model: ModelGasSpring,
			InitialPressure: 501325, AmbientPressure: 101325,
			BarrelDiameter: 0.013, PlungerDiameter: 0.035052,
			Gamma: 1.4, DartMass: 0.0012, PlungerMass: 0.06,
			StaticFriction: 0.4, DynamicFriction: 0.2,
			Precompression: 0.0254, FreeLength: 0.1016,
			SpringK: 523 * 11.0 / 5.0,
			RestVolume: 1.74e-5,
			EndTime:    0.05, Points: 1500,
		},
		"low_pressure": {
			Schema: SchemaVersion, Model: ModelGasSpring,
			InitialPressure: 200000, AmbientPressure: 101325,
			BarrelDiameter: 0.013, PlungerDiameter: 0.035052,
			Gamma: 1.4, DartMass: 0.0012, PlungerMass: 0.06,
			StaticFriction: 0.4, DynamicFriction: 0.2,
			Precompression: 0.0254, FreeLength: 0.1016,
			SpringK: 523 * 11.0 / 5.0,
			RestVolume: 1.74e-5,
			EndTime:    0.05, Points: 1500,
		},
	},
}

func GetPreset(model, name string) *Set {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	s, ok := modelPresets[name]
	if !ok {
		return nil
	}
	clone := *s
	return &clone
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}

// Default is the parameter set used when none is given: the stock
// dart-plunger launcher.
func Default() *Set {
	return GetPreset(ModelDartPlunger, "stock")
}
