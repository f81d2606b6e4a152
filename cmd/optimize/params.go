package main

import (
	"github.com/pthm-cable/planisuss/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Vegetation
			{Name: "growth_divisor", Path: "vegetob.growth_divisor", Min: 20000, Max: 400000, Default: 100000},
			// Shared
			{Name: "starvation_threshold", Path: "animals.starvation_threshold", Min: 1, Max: 20, Default: 5},
			{Name: "surplus_threshold", Path: "animals.surplus_threshold", Min: 100, Max: 400, Default: 150},
			// Erbast
			{Name: "erbast_lifetime", Path: "erbast.initial_lifetime", Min: 20, Max: 200, Default: 100},
			{Name: "erbast_move_cost", Path: "erbast.move_cost", Min: 0.1, Max: 5, Default: 1},
			{Name: "erbast_graze_gain", Path: "erbast.graze_gain", Min: 2, Max: 40, Default: 10},
			{Name: "erbast_crowd_limit", Path: "erbast.crowd_limit", Min: 10, Max: 300, Default: 100},
			// Carviz
			{Name: "carviz_energy", Path: "carviz.initial_energy", Min: 20, Max: 300, Default: 100},
			{Name: "carviz_lifetime", Path: "carviz.initial_lifetime", Min: 5, Max: 60, Default: 10},
			{Name: "carviz_spawn_chance", Path: "carviz.spawn_chance", Min: 0.02, Max: 0.6, Default: 0.2},
			{Name: "carviz_energy_mult", Path: "carviz.energy_multiplier", Min: 0.5, Max: 3, Default: 2},
			{Name: "carviz_move_cost", Path: "carviz.move_cost", Min: 0.1, Max: 5, Default: 1},
			{Name: "carviz_join_attitude", Path: "carviz.join_attitude", Min: 0.2, Max: 2, Default: 1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// fields returns pointers to the config fields in Specs order.
func fields(cfg *config.Config) []*float64 {
	return []*float64{
		&cfg.Vegetob.GrowthDivisor,
		&cfg.Animals.StarvationThreshold,
		&cfg.Animals.SurplusThreshold,
		&cfg.Erbast.InitialLifetime,
		&cfg.Erbast.MoveCost,
		&cfg.Erbast.GrazeGain,
		&cfg.Erbast.CrowdLimit,
		&cfg.Carviz.InitialEnergy,
		&cfg.Carviz.InitialLifetime,
		&cfg.Carviz.SpawnChance,
		&cfg.Carviz.EnergyMultiplier,
		&cfg.Carviz.MoveCost,
		&cfg.Carviz.JoinAttitude,
	}
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, f := range fields(cfg) {
		*f = clamped[i]
	}
	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	ptrs := fields(cfg)
	out := make([]float64, len(ptrs))
	for i, f := range ptrs {
		out[i] = *f
	}
	return out
}
