package telemetry

import "github.com/pthm-cable/planisuss/components"

// Collector accumulates events within windows of days and produces WindowStats.
// It satisfies world.Observer.
type Collector struct {
	windowDays     int
	windowStartDay int

	// Event counters for current window
	erbastBirths     int
	carvizBirths     int
	erbastDeaths     int
	carvizDeaths     int
	deathsByReason   map[components.DeathReason]int
	huntsAttempted   int
	huntsSucceeded   int
	fights           int
	erbastSecessions int
	carvizSecessions int
}

// NewCollector creates a stats collector flushing every windowDays days.
func NewCollector(windowDays int) *Collector {
	if windowDays < 1 {
		windowDays = 1
	}
	return &Collector{
		windowDays:     windowDays,
		deathsByReason: make(map[components.DeathReason]int),
	}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(species components.Species) {
	if species == components.Erbast {
		c.erbastBirths++
	} else {
		c.carvizBirths++
	}
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(species components.Species, reason components.DeathReason) {
	if species == components.Erbast {
		c.erbastDeaths++
	} else {
		c.carvizDeaths++
	}
	c.deathsByReason[reason]++
}

// RecordHunt records one hunt attempt.
func (c *Collector) RecordHunt(success bool) {
	c.huntsAttempted++
	if success {
		c.huntsSucceeded++
	}
}

// RecordFight records a fight between two prides.
func (c *Collector) RecordFight() {
	c.fights++
}

// RecordSecession records an animal leaving its group.
func (c *Collector) RecordSecession(species components.Species) {
	if species == components.Erbast {
		c.erbastSecessions++
	} else {
		c.carvizSecessions++
	}
}

// ShouldFlush returns true if enough days have passed to flush the window.
func (c *Collector) ShouldFlush(day int) bool {
	return day-c.windowStartDay >= c.windowDays
}

// Population is the state sampled at the end of a window.
type Population struct {
	Erbasts        int
	Carvizes       int
	ErbastEnergies []float64
	CarvizEnergies []float64
	MeanVegetation float64 // mean land density, 0-100
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(day int, pop Population) WindowStats {
	var huntRate float64
	if c.huntsAttempted > 0 {
		huntRate = float64(c.huntsSucceeded) / float64(c.huntsAttempted)
	}

	erbast := ComputeEnergyStats(pop.ErbastEnergies)
	carviz := ComputeEnergyStats(pop.CarvizEnergies)

	stats := WindowStats{
		WindowStartDay: c.windowStartDay,
		WindowEndDay:   day,

		Erbasts:  pop.Erbasts,
		Carvizes: pop.Carvizes,

		ErbastBirths: c.erbastBirths,
		CarvizBirths: c.carvizBirths,
		ErbastDeaths: c.erbastDeaths,
		CarvizDeaths: c.carvizDeaths,

		Overage:     c.deathsByReason[components.Overage],
		LackEnergy:  c.deathsByReason[components.LackEnergy],
		HuntedDown:  c.deathsByReason[components.HuntedDown],
		FightDeaths: c.deathsByReason[components.Fight],
		Injured:     c.deathsByReason[components.Injured],

		HuntsAttempted: c.huntsAttempted,
		HuntsSucceeded: c.huntsSucceeded,
		HuntRate:       huntRate,
		Fights:         c.fights,

		ErbastSecessions: c.erbastSecessions,
		CarvizSecessions: c.carvizSecessions,

		ErbastEnergyMean: erbast.Mean,
		ErbastEnergyStd:  erbast.Std,
		ErbastEnergyP10:  erbast.P10,
		ErbastEnergyP50:  erbast.P50,
		ErbastEnergyP90:  erbast.P90,

		CarvizEnergyMean: carviz.Mean,
		CarvizEnergyStd:  carviz.Std,
		CarvizEnergyP10:  carviz.P10,
		CarvizEnergyP50:  carviz.P50,
		CarvizEnergyP90:  carviz.P90,

		MeanVegetation: pop.MeanVegetation,
	}

	// Reset for next window
	c.windowStartDay = day
	c.erbastBirths = 0
	c.carvizBirths = 0
	c.erbastDeaths = 0
	c.carvizDeaths = 0
	clear(c.deathsByReason)
	c.huntsAttempted = 0
	c.huntsSucceeded = 0
	c.fights = 0
	c.erbastSecessions = 0
	c.carvizSecessions = 0

	return stats
}

// WindowDays returns the number of days per window.
func (c *Collector) WindowDays() int {
	return c.windowDays
}
