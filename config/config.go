// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Vegetob   VegetobConfig   `yaml:"vegetob"`
	Animals   AnimalsConfig   `yaml:"animals"`
	Erbast    ErbastConfig    `yaml:"erbast"`
	Carviz    CarvizConfig    `yaml:"carviz"`
	Groups    GroupsConfig    `yaml:"groups"`
	Registry  RegistryConfig  `yaml:"registry"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the run length.
type WorldConfig struct {
	Size         int `yaml:"size"`         // Side of the square grid
	Neighborhood int `yaml:"neighborhood"` // Herd sensing radius in cells
	Days         int `yaml:"days"`         // Default run length for the driver
}

// VegetobConfig holds vegetation growth parameters.
type VegetobConfig struct {
	GrowthDivisor float64 `yaml:"growth_divisor"` // d += d*(max-d)^2/divisor
	MaxDensity    float64 `yaml:"max_density"`
	ReseedDensity float64 `yaml:"reseed_density"` // Density restored when below 1
}

// AnimalsConfig holds parameters shared by both species.
type AnimalsConfig struct {
	StarvationThreshold float64  `yaml:"starvation_threshold"` // Dies if U[0,energy) < this
	OffspringMinEnergy  float64  `yaml:"offspring_min_energy"` // Residual energy needed to reproduce
	SurplusThreshold    float64  `yaml:"surplus_threshold"`    // Energy above this converts to lifetime
	SurplusCost         float64  `yaml:"surplus_cost"`         // Energy paid per extra day of lifetime
	MaxShare            float64  `yaml:"max_share"`            // Cap on a single partition share / member energy
	AttitudeSigma       float64  `yaml:"attitude_sigma"`       // Offspring social attitude noise
	AttitudeMin         float64  `yaml:"attitude_min"`
	AttitudeMax         float64  `yaml:"attitude_max"`
	TerminalReasons     []string `yaml:"terminal_reasons"` // Death reasons that never leave offspring
}

// SpeciesConfig holds the per-species parameters shared by Erbast and Carviz.
type SpeciesConfig struct {
	InitialEnergy    float64 `yaml:"initial_energy"`
	InitialLifetime  float64 `yaml:"initial_lifetime"`
	InitialAttitude  float64 `yaml:"initial_attitude"`
	Offspring        int     `yaml:"offspring"`         // Branching factor at death
	EnergyMultiplier float64 `yaml:"energy_multiplier"` // Parent energy scale split among offspring
	MoveCost         float64 `yaml:"move_cost"`
	MemoryFloor      float64 `yaml:"memory_floor"` // Memory entries at or below this are forgotten
}

// ErbastConfig holds herbivore parameters.
type ErbastConfig struct {
	SpeciesConfig  `yaml:",inline"`
	InitialMembers int     `yaml:"initial_members"`
	MoveAgeExp     float64 `yaml:"move_age_exponent"` // Movement cost scales with age^exp
	GrazeGain      float64 `yaml:"graze_gain"`        // Energy per unit of density eaten
	CrowdLimit     float64 `yaml:"crowd_limit"`       // herd size * attitude above this pushes members out
}

// CarvizConfig holds carnivore parameters.
type CarvizConfig struct {
	SpeciesConfig   `yaml:",inline"`
	SpawnChance     float64 `yaml:"spawn_chance"`     // Probability a land cell starts with a pride
	SecessionEnergy float64 `yaml:"secession_energy"` // Energy needed to wander off after quitting
	QuitScale       float64 `yaml:"quit_scale"`       // P(quit) = (1-attitude)/scale
	JoinAttitude    float64 `yaml:"join_attitude"`    // Prides join when summed attitude exceeds this
	SensingRadius   int     `yaml:"sensing_radius"`   // 0 = max(neighborhood, size/10)
}

// GroupsConfig bounds the hunt and fight protocols.
type GroupsConfig struct {
	HuntMaxAttempts int `yaml:"hunt_max_attempts"`
	FightMaxRounds  int `yaml:"fight_max_rounds"`
}

// RegistryConfig controls when dead animals are compacted out of the registries.
type RegistryConfig struct {
	CompactThreshold int `yaml:"compact_threshold"` // Minimum dead entries before compaction runs
}

// SnapshotConfig controls snapshot normalization.
type SnapshotConfig struct {
	GroupSaturation float64 `yaml:"group_saturation"` // Members at which a group indicator reads 1.0
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Days per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	HuntBreakthrough HuntBreakthroughConfig `yaml:"hunt_breakthrough"`
	PredatorRecovery PredatorRecoveryConfig `yaml:"predator_recovery"`
	PreyCrash        PreyCrashConfig        `yaml:"prey_crash"`
	StableEcosystem  StableEcosystemConfig  `yaml:"stable_ecosystem"`
}

// HuntBreakthroughConfig holds hunt breakthrough detection parameters.
type HuntBreakthroughConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinKills   int     `yaml:"min_kills"`
}

// PredatorRecoveryConfig holds predator recovery detection parameters.
type PredatorRecoveryConfig struct {
	MinPopulation      int `yaml:"min_population"`
	RecoveryMultiplier int `yaml:"recovery_multiplier"`
	MinFinal           int `yaml:"min_final"`
}

// PreyCrashConfig holds prey crash detection parameters.
type PreyCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	MinPrey       int     `yaml:"min_prey"`
	MinPred       int     `yaml:"min_pred"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	PrideSensing    int             // Effective pride sensing radius
	TerminalReasons map[string]bool // Lookup set for Animals.TerminalReasons
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.World.Size < 1:
		return fmt.Errorf("%w: world.size must be >= 1, got %d", ErrInvalid, c.World.Size)
	case c.World.Neighborhood < 0:
		return fmt.Errorf("%w: world.neighborhood must be >= 0, got %d", ErrInvalid, c.World.Neighborhood)
	case c.Vegetob.GrowthDivisor <= 0:
		return fmt.Errorf("%w: vegetob.growth_divisor must be > 0", ErrInvalid)
	case c.Carviz.SpawnChance < 0 || c.Carviz.SpawnChance > 1:
		return fmt.Errorf("%w: carviz.spawn_chance must be in [0,1], got %g", ErrInvalid, c.Carviz.SpawnChance)
	case c.Animals.AttitudeMin < 0 || c.Animals.AttitudeMax > 1 || c.Animals.AttitudeMin > c.Animals.AttitudeMax:
		return fmt.Errorf("%w: attitude bounds [%g,%g] outside [0,1]", ErrInvalid, c.Animals.AttitudeMin, c.Animals.AttitudeMax)
	case c.Erbast.Offspring < 1 || c.Carviz.Offspring < 1:
		return fmt.Errorf("%w: offspring counts must be >= 1", ErrInvalid)
	case c.Animals.MaxShare <= 0:
		return fmt.Errorf("%w: animals.max_share must be > 0", ErrInvalid)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Callers that edit a Config in place must call it again.
func (c *Config) ComputeDerived() {
	c.Derived.PrideSensing = c.Carviz.SensingRadius
	if c.Derived.PrideSensing == 0 {
		c.Derived.PrideSensing = max(c.World.Neighborhood, c.World.Size/10)
	}

	c.Derived.TerminalReasons = make(map[string]bool, len(c.Animals.TerminalReasons))
	for _, r := range c.Animals.TerminalReasons {
		c.Derived.TerminalReasons[r] = true
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Animals.TerminalReasons = append([]string(nil), c.Animals.TerminalReasons...)
	out.ComputeDerived()
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
