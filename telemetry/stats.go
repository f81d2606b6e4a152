package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of days.
type WindowStats struct {
	WindowStartDay int `csv:"-"`
	WindowEndDay   int `csv:"day"`

	// Population counts at window end
	Erbasts  int `csv:"erbasts"`
	Carvizes int `csv:"carvizes"`

	// Events during window
	ErbastBirths int `csv:"erbast_births"`
	CarvizBirths int `csv:"carviz_births"`
	ErbastDeaths int `csv:"erbast_deaths"`
	CarvizDeaths int `csv:"carviz_deaths"`

	// Deaths by reason, both species
	Overage     int `csv:"overage"`
	LackEnergy  int `csv:"lack_energy"`
	HuntedDown  int `csv:"hunted_down"`
	FightDeaths int `csv:"fight"`
	Injured     int `csv:"injured"`

	// Hunting and fighting
	HuntsAttempted int     `csv:"hunts_attempted"`
	HuntsSucceeded int     `csv:"hunts_succeeded"`
	HuntRate       float64 `csv:"hunt_rate"`
	Fights         int     `csv:"fights"`

	ErbastSecessions int `csv:"erbast_secessions"`
	CarvizSecessions int `csv:"carviz_secessions"`

	// Energy distribution (sampled at window end)
	ErbastEnergyMean float64 `csv:"erbast_energy_mean"`
	ErbastEnergyStd  float64 `csv:"erbast_energy_std"`
	ErbastEnergyP10  float64 `csv:"erbast_energy_p10"`
	ErbastEnergyP50  float64 `csv:"erbast_energy_p50"`
	ErbastEnergyP90  float64 `csv:"erbast_energy_p90"`

	CarvizEnergyMean float64 `csv:"carviz_energy_mean"`
	CarvizEnergyStd  float64 `csv:"carviz_energy_std"`
	CarvizEnergyP10  float64 `csv:"carviz_energy_p10"`
	CarvizEnergyP50  float64 `csv:"carviz_energy_p50"`
	CarvizEnergyP90  float64 `csv:"carviz_energy_p90"`

	MeanVegetation float64 `csv:"vegetation_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// EnergyStats summarizes an energy distribution.
type EnergyStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeEnergyStats calculates population mean, standard deviation and
// percentiles from energy values.
func ComputeEnergyStats(values []float64) EnergyStats {
	if len(values) == 0 {
		return EnergyStats{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return EnergyStats{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartDay),
		slog.Int("window_end", s.WindowEndDay),
		slog.Int("erbasts", s.Erbasts),
		slog.Int("carvizes", s.Carvizes),
		slog.Int("erbast_births", s.ErbastBirths),
		slog.Int("carviz_births", s.CarvizBirths),
		slog.Int("erbast_deaths", s.ErbastDeaths),
		slog.Int("carviz_deaths", s.CarvizDeaths),
		slog.Int("overage", s.Overage),
		slog.Int("lack_energy", s.LackEnergy),
		slog.Int("hunted_down", s.HuntedDown),
		slog.Int("fight", s.FightDeaths),
		slog.Int("injured", s.Injured),
		slog.Int("hunts_attempted", s.HuntsAttempted),
		slog.Int("hunts_succeeded", s.HuntsSucceeded),
		slog.Float64("hunt_rate", s.HuntRate),
		slog.Int("fights", s.Fights),
		slog.Int("erbast_secessions", s.ErbastSecessions),
		slog.Int("carviz_secessions", s.CarvizSecessions),
		slog.Float64("erbast_energy_mean", s.ErbastEnergyMean),
		slog.Float64("erbast_energy_p50", s.ErbastEnergyP50),
		slog.Float64("carviz_energy_mean", s.CarvizEnergyMean),
		slog.Float64("carviz_energy_p50", s.CarvizEnergyP50),
		slog.Float64("vegetation_mean", s.MeanVegetation),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndDay,
		"erbasts", s.Erbasts,
		"carvizes", s.Carvizes,
		"erbast_births", s.ErbastBirths,
		"carviz_births", s.CarvizBirths,
		"erbast_deaths", s.ErbastDeaths,
		"carviz_deaths", s.CarvizDeaths,
		"hunts_attempted", s.HuntsAttempted,
		"hunts_succeeded", s.HuntsSucceeded,
		"hunt_rate", s.HuntRate,
		"fights", s.Fights,
		"erbast_energy_mean", s.ErbastEnergyMean,
		"erbast_energy_std", s.ErbastEnergyStd,
		"carviz_energy_mean", s.CarvizEnergyMean,
		"carviz_energy_std", s.CarvizEnergyStd,
		"vegetation_mean", s.MeanVegetation,
	)
}
