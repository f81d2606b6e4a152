package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/planisuss/components"
)

// DeathTally counts deaths by species and reason.
type DeathTally struct {
	counts map[components.Species]map[components.DeathReason]int
}

// NewDeathTally creates an empty tally.
func NewDeathTally() *DeathTally {
	t := &DeathTally{counts: make(map[components.Species]map[components.DeathReason]int)}
	for _, s := range components.AllSpecies() {
		t.counts[s] = make(map[components.DeathReason]int)
	}
	return t
}

// Record adds one death.
func (t *DeathTally) Record(species components.Species, reason components.DeathReason) {
	t.counts[species][reason]++
}

// Count returns the deaths of a species for one reason.
func (t *DeathTally) Count(species components.Species, reason components.DeathReason) int {
	return t.counts[species][reason]
}

// Total returns all deaths of a species.
func (t *DeathTally) Total(species components.Species) int {
	n := 0
	for _, c := range t.counts[species] {
		n += c
	}
	return n
}

// BySpecies returns species name -> reason -> count, with every known
// reason present.
func (t *DeathTally) BySpecies() map[string]map[string]int {
	out := make(map[string]map[string]int, len(t.counts))
	for _, s := range components.AllSpecies() {
		reasons := make(map[string]int)
		for _, r := range components.DeathReasons() {
			reasons[string(r)] = t.counts[s][r]
		}
		out[s.String()] = reasons
	}
	return out
}

// DeathRecord is one row of deaths.csv.
type DeathRecord struct {
	Species string `csv:"species"`
	Reason  string `csv:"reason"`
	Count   int    `csv:"count"`
}

// Records flattens the tally in species then reason order.
func (t *DeathTally) Records() []DeathRecord {
	var out []DeathRecord
	for _, s := range components.AllSpecies() {
		for _, r := range components.DeathReasons() {
			out = append(out, DeathRecord{Species: s.String(), Reason: string(r), Count: t.counts[s][r]})
		}
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (t *DeathTally) LogValue() slog.Value {
	var groups []slog.Attr
	for _, s := range components.AllSpecies() {
		var attrs []any
		for _, r := range components.DeathReasons() {
			if c := t.counts[s][r]; c > 0 {
				attrs = append(attrs, slog.Int(string(r), c))
			}
		}
		groups = append(groups, slog.Group(s.String(), attrs...))
	}
	return slog.GroupValue(groups...)
}
