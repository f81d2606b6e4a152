package world

import (
	"slices"

	"github.com/pthm-cable/planisuss/components"
)

// Snapshot is the read-only state of one day, for renderers and telemetry.
// Per-cell slices are indexed by x*Size+y.
type Snapshot struct {
	Day  int
	Size int

	Vegetation []float64 // density normalized to [0,1]
	Herds      []float64 // herd size over saturation, capped at 1
	Prides     []float64 // pride size over saturation, capped at 1
	Water      []bool

	ErbastCount int
	CarvizCount int

	Paths []GroupPath
}

// GroupPath is the recorded path of one tracked group.
type GroupPath struct {
	Species components.Species
	Group   uint64
	Points  []TrackPoint
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Vegetation = slices.Clone(s.Vegetation)
	out.Herds = slices.Clone(s.Herds)
	out.Prides = slices.Clone(s.Prides)
	out.Water = slices.Clone(s.Water)
	out.Paths = slices.Clone(s.Paths)
	for i := range out.Paths {
		out.Paths[i].Points = slices.Clone(out.Paths[i].Points)
	}
	return &out
}

// Index returns the slice index of cell (x,y).
func (s *Snapshot) Index(x, y int) int { return x*s.Size + y }

func (w *World) snapshot(day int) *Snapshot {
	n := len(w.cells)
	s := &Snapshot{
		Day:         day,
		Size:        w.size,
		Vegetation:  make([]float64, n),
		Herds:       make([]float64, n),
		Prides:      make([]float64, n),
		Water:       make([]bool, n),
		ErbastCount: w.erbasts.Live(),
		CarvizCount: w.carvizes.Live(),
	}

	sat := w.cfg.Snapshot.GroupSaturation
	maxDensity := w.cfg.Vegetob.MaxDensity
	for i, c := range w.cells {
		s.Water[i] = c.water
		s.Vegetation[i] = c.density() / maxDensity
		if c.herd != nil {
			s.Herds[i] = min(float64(c.herd.liveCount())/sat, 1)
		}
		if c.pride != nil {
			s.Prides[i] = min(float64(c.pride.liveCount())/sat, 1)
		}
	}

	for _, g := range w.trackedGroups() {
		s.Paths = append(s.Paths, GroupPath{
			Species: g.Species,
			Group:   g.ID,
			Points:  slices.Clone(g.path),
		})
	}
	return s
}
