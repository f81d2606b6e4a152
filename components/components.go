// Package components defines ECS components for the simulation's animals.
package components

// Species identifies which registry an animal belongs to.
type Species uint8

const (
	Erbast Species = iota // herbivore, grouped in herds
	Carviz                // carnivore, grouped in prides
)

// String returns the species name used in diagnostics.
func (s Species) String() string {
	switch s {
	case Erbast:
		return "Erbast"
	case Carviz:
		return "Carviz"
	}
	return "Unknown"
}

// AllSpecies lists the species in registry order.
func AllSpecies() []Species {
	return []Species{Erbast, Carviz}
}

// DeathReason records why an animal died.
type DeathReason string

const (
	Overage      DeathReason = "overage"
	LackEnergy   DeathReason = "lack_energy"
	HuntedDown   DeathReason = "hunted_down"
	Fight        DeathReason = "fight"
	Overcrowding DeathReason = "overcrowding"
	Bomb         DeathReason = "bomb"
	Drowned      DeathReason = "drowned"
	Injured      DeathReason = "injured" // failed hunt drained the champion
)

// DeathReasons lists every reason the simulation can report.
func DeathReasons() []DeathReason {
	return []DeathReason{Overage, LackEnergy, HuntedDown, Fight, Overcrowding, Bomb, Drowned, Injured}
}

// Vitals is the mutable life state of an animal.
type Vitals struct {
	Energy         float64
	Lifetime       float64 // days the animal may live
	Age            int
	SocialAttitude float64 // in [0,1]
	Alive          bool
}

// Position is the grid cell an animal stands on.
type Position struct {
	X, Y int
}

// Membership links an animal to its herd or pride.
// Zero means the animal currently belongs to no group.
type Membership struct {
	Group uint64
}

// Death is the graveyard marker left at an animal's last position.
// It stays empty while the animal is alive.
type Death struct {
	Reason DeathReason
	Day    int
	X, Y   int
}
