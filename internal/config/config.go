// Package config defines the recognized configuration tree and its YAML
// loading, following the teacher's cmd/default_config.go layered
// defaults-then-override pattern.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ScoringWeights holds the three-layer weights plus their sub-weights.
// Non-negative; renormalized at use.
type ScoringWeights struct {
	Student float64 `yaml:"student"`
	Class   float64 `yaml:"class"`
	School  float64 `yaml:"school"`

	Friends  float64 `yaml:"friends"`
	Dislikes float64 `yaml:"dislikes"`

	GenderBalance float64 `yaml:"gender_balance"`

	Academic       float64 `yaml:"academic"`
	Behavior       float64 `yaml:"behavior"`
	Studentiality  float64 `yaml:"studentiality"`
	Size           float64 `yaml:"size"`
	Assistance     float64 `yaml:"assistance"`
	SchoolOrigin   float64 `yaml:"school_origin"`
}

func (w ScoringWeights) Validate() error {
	all := []float64{
		w.Student, w.Class, w.School, w.Friends, w.Dislikes, w.GenderBalance,
		w.Academic, w.Behavior, w.Studentiality, w.Size, w.Assistance, w.SchoolOrigin,
	}
	for _, v := range all {
		if v < 0 {
			return fmt.Errorf("scoring weight cannot be negative: %v", v)
		}
	}
	return nil
}

// NormalizationFactors converts each balance metric's standard deviation to
// a 0-100 score. Every factor must be positive.
type NormalizationFactors struct {
	Academic      float64 `yaml:"academic_factor"`
	Behavior      float64 `yaml:"behavior_factor"`
	Studentiality float64 `yaml:"studentiality_factor"`
	Size          float64 `yaml:"size_factor"`
	Assistance    float64 `yaml:"assistance_factor"`
	SchoolOrigin  float64 `yaml:"school_origin_factor"`
}

func (n NormalizationFactors) Validate() error {
	all := map[string]float64{
		"academic_factor": n.Academic, "behavior_factor": n.Behavior,
		"studentiality_factor": n.Studentiality, "size_factor": n.Size,
		"assistance_factor": n.Assistance, "school_origin_factor": n.SchoolOrigin,
	}
	for name, v := range all {
		if v <= 0 {
			return fmt.Errorf("normalization factor %s must be positive, got %v", name, v)
		}
	}
	return nil
}

// ClassConfig governs the target class layout.
type ClassConfig struct {
	TargetClasses int  `yaml:"target_classes"`
	MinSize       int  `yaml:"min_size"`
	MaxSize       int  `yaml:"max_size"`
	PreferredSize int  `yaml:"preferred_size"`
	AllowUneven   bool `yaml:"allow_uneven"`
}

func (c ClassConfig) Validate() error {
	if c.TargetClasses < 0 {
		return fmt.Errorf("target_classes cannot be negative")
	}
	if c.MinSize < 0 || c.MaxSize < 0 || c.PreferredSize < 0 {
		return fmt.Errorf("class size fields cannot be negative")
	}
	if c.MaxSize > 0 && c.MinSize > c.MaxSize {
		return fmt.Errorf("min_size (%d) cannot exceed max_size (%d)", c.MinSize, c.MaxSize)
	}
	if c.MaxSize > 0 && c.PreferredSize > 0 && (c.PreferredSize < c.MinSize || c.PreferredSize > c.MaxSize) {
		return fmt.Errorf("preferred_size (%d) must be between min_size and max_size", c.PreferredSize)
	}
	return nil
}

// Config is the full recognized configuration tree threaded through
// constructors by value, per the Design Notes' "no module-level state"
// guidance.
type Config struct {
	Weights        ScoringWeights        `yaml:"weights"`
	Normalization  NormalizationFactors  `yaml:"normalization"`
	Classes        ClassConfig           `yaml:"classes"`
	RandomSwap     RandomSwapParams      `yaml:"random_swap"`
	LocalSearch    LocalSearchParams     `yaml:"local_search"`
	Annealing      AnnealingParams       `yaml:"simulated_annealing"`
	Genetic        GeneticParams         `yaml:"genetic"`
	MinFriendsRequired      int     `yaml:"min_friends_required"`
	RespectForceConstraints bool    `yaml:"respect_force_constraints"`
	AcceptNeutralMoves      bool    `yaml:"accept_neutral_moves"`
	EarlyStopThreshold      int     `yaml:"early_stop_threshold"`
	LogLevel                string  `yaml:"log_level"`
	SAForceFriendOverrideProbability float64 `yaml:"sa_force_friend_override_probability"`
	GAForceFriendOverrideProbability float64 `yaml:"ga_force_friend_override_probability"`
}

// RandomSwapParams is the random swap solver's recognized option set.
type RandomSwapParams struct {
	MaxSwapAttempts int `yaml:"max_swap_attempts"`
}

// LocalSearchParams is the local search solver's recognized option set.
type LocalSearchParams struct {
	MaxPasses      int     `yaml:"max_passes"`
	MinImprovement float64 `yaml:"min_improvement"`
	MinPasses      int     `yaml:"min_passes"`
}

// AnnealingParams is the simulated annealing solver's recognized option set.
type AnnealingParams struct {
	InitialTemperature     float64 `yaml:"initial_temperature"`
	MinTemperature         float64 `yaml:"min_temperature"`
	CoolingRate            float64 `yaml:"cooling_rate"`
	CoolingSchedule        string  `yaml:"cooling_schedule"`
	IterationsPerTemperature int   `yaml:"iterations_per_temperature"`
	SwapProbability        float64 `yaml:"swap_probability"`
	MaxGroupSize           int     `yaml:"max_group_size"`
}

// GeneticParams is the genetic solver's recognized option set.
type GeneticParams struct {
	PopulationSize         int     `yaml:"population_size"`
	EliteSize              int     `yaml:"elite_size"`
	MaxGenerations         int     `yaml:"max_generations"`
	CrossoverRate          float64 `yaml:"crossover_rate"`
	MutationRate           float64 `yaml:"mutation_rate"`
	TournamentSize         int     `yaml:"tournament_size"`
	SelectionMethod        string  `yaml:"selection_method"`
	ConvergenceGenerations int     `yaml:"convergence_generations"`
	MinImprovement         float64 `yaml:"min_improvement"`
}

// Default returns the configuration tree with the reference defaults
// (grounded on original_source/src/meshachvetz/utils/config.py's
// DEFAULT_CONFIG and each optimizer module's config.get(..., default)
// calls).
func Default() Config {
	return Config{
		Weights: ScoringWeights{
			Student: 0.75, Class: 0.05, School: 0.2,
			Friends: 0.7, Dislikes: 0.3,
			GenderBalance: 1.0,
			Academic: 0.05, Behavior: 0.4, Studentiality: 0.4,
			Size: 0.0, Assistance: 0.15, SchoolOrigin: 0.0,
		},
		Normalization: NormalizationFactors{
			Academic: 2.0, Behavior: 35.0, Studentiality: 35.0,
			Size: 5.0, Assistance: 10.0, SchoolOrigin: 20.0,
		},
		Classes: ClassConfig{
			TargetClasses: 0, MinSize: 15, MaxSize: 30, PreferredSize: 25, AllowUneven: true,
		},
		RandomSwap:  RandomSwapParams{MaxSwapAttempts: 50},
		LocalSearch: LocalSearchParams{MaxPasses: 10, MinImprovement: 0.1, MinPasses: 2},
		Annealing: AnnealingParams{
			InitialTemperature: 100.0, MinTemperature: 0.01, CoolingRate: 0.95,
			CoolingSchedule: "exponential", IterationsPerTemperature: 50,
			SwapProbability: 0.7, MaxGroupSize: 3,
		},
		Genetic: GeneticParams{
			PopulationSize: 50, EliteSize: 5, MaxGenerations: 100,
			CrossoverRate: 0.8, MutationRate: 0.1, TournamentSize: 3,
			SelectionMethod: "tournament", ConvergenceGenerations: 20, MinImprovement: 0.01,
		},
		MinFriendsRequired:      1,
		RespectForceConstraints: true,
		AcceptNeutralMoves:      false,
		EarlyStopThreshold:      200,
		LogLevel:                "info",
		SAForceFriendOverrideProbability: 0.1,
		GAForceFriendOverrideProbability: 0.3,
	}
}

// Validate checks every sub-struct and the cross-cutting invariants.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Normalization.Validate(); err != nil {
		return err
	}
	if err := c.Classes.Validate(); err != nil {
		return err
	}
	if c.MinFriendsRequired < 0 {
		return fmt.Errorf("min_friends_required cannot be negative")
	}
	if c.EarlyStopThreshold < 0 {
		return fmt.Errorf("early_stop_threshold cannot be negative")
	}
	return nil
}

// Load reads YAML bytes over a Default() base, so unspecified fields keep
// their defaults (mirrors cmd/default_config.go's merge-over-defaults
// loading).
func Load(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of override onto base, implementing the
// portfolio manager's "caller > manager > defaults" precedence. Zero-valued
// top-level numeric/string/bool fields in override are treated as
// "not specified" and keep base's value; callers that genuinely want zero
// must set it on base instead. RandomSwap is merged field by field; every
// other sub-struct (weights, normalization, classes, local search,
// annealing, genetic) is taken whole from override when any of its fields
// is non-zero, so its zero fields then replace base's values.
func Merge(base, override Config) Config {
	out := base
	mergeScoringWeights(&out.Weights, override.Weights)
	mergeNormalization(&out.Normalization, override.Normalization)
	mergeClasses(&out.Classes, override.Classes)
	if override.MinFriendsRequired != 0 {
		out.MinFriendsRequired = override.MinFriendsRequired
	}
	out.RespectForceConstraints = override.RespectForceConstraints || base.RespectForceConstraints
	out.AcceptNeutralMoves = override.AcceptNeutralMoves || base.AcceptNeutralMoves
	if override.EarlyStopThreshold != 0 {
		out.EarlyStopThreshold = override.EarlyStopThreshold
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.SAForceFriendOverrideProbability != 0 {
		out.SAForceFriendOverrideProbability = override.SAForceFriendOverrideProbability
	}
	if override.GAForceFriendOverrideProbability != 0 {
		out.GAForceFriendOverrideProbability = override.GAForceFriendOverrideProbability
	}
	mergeRandomSwap(&out.RandomSwap, override.RandomSwap)
	mergeLocalSearch(&out.LocalSearch, override.LocalSearch)
	mergeAnnealing(&out.Annealing, override.Annealing)
	mergeGenetic(&out.Genetic, override.Genetic)
	return out
}

func mergeScoringWeights(base *ScoringWeights, o ScoringWeights) {
	if z := (ScoringWeights{}); o != z {
		*base = o
	}
}

func mergeNormalization(base *NormalizationFactors, o NormalizationFactors) {
	if z := (NormalizationFactors{}); o != z {
		*base = o
	}
}

func mergeClasses(base *ClassConfig, o ClassConfig) {
	if z := (ClassConfig{}); o != z {
		*base = o
	}
}

func mergeRandomSwap(base *RandomSwapParams, o RandomSwapParams) {
	if o.MaxSwapAttempts != 0 {
		base.MaxSwapAttempts = o.MaxSwapAttempts
	}
}

func mergeLocalSearch(base *LocalSearchParams, o LocalSearchParams) {
	if z := (LocalSearchParams{}); o != z {
		*base = o
	}
}

func mergeAnnealing(base *AnnealingParams, o AnnealingParams) {
	if z := (AnnealingParams{}); o != z {
		*base = o
	}
}

func mergeGenetic(base *GeneticParams, o GeneticParams) {
	if z := (GeneticParams{}); o != z {
		*base = o
	}
}
