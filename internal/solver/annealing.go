package solver

import (
	"math"
	"math/rand"
	"time"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/constraint"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/neighborhood"
	"github.com/meshachvetz/classalloc/internal/obs"
)

// Cooling schedule names recognized by the annealing solver.
const (
	CoolingLinear      = "linear"
	CoolingExponential = "exponential"
	CoolingLogarithmic = "logarithmic"
	CoolingAdaptive    = "adaptive"
)

// AnnealingSolver is the simulated annealing algorithm.
// min_friends_required is not enforced during search (the feasibility gate
// leaves it unset); it is checked at the final constraint report.
type AnnealingSolver struct {
	Config config.Config
	Seed   int64
	Cancel <-chan struct{}
}

func NewAnnealingSolver(cfg config.Config, seed int64) *AnnealingSolver {
	return &AnnealingSolver{Config: cfg, Seed: seed}
}

func (s *AnnealingSolver) Name() string { return "simulated_annealing" }

func (s *AnnealingSolver) Parameters() map[string]any {
	a := s.Config.Annealing
	return map[string]any{
		"initial_temperature":       a.InitialTemperature,
		"min_temperature":           a.MinTemperature,
		"cooling_rate":              a.CoolingRate,
		"cooling_schedule":          a.CoolingSchedule,
		"iterations_per_temperature": a.IterationsPerTemperature,
		"swap_probability":          a.SwapProbability,
		"seed":                      s.Seed,
	}
}

func (s *AnnealingSolver) Optimize(initial *domain.School, maxIterations int) *OptimizationResult {
	log := obs.NewLogger("simulated_annealing", s.Config.LogLevel)
	start := time.Now()
	rng := rand.New(rand.NewSource(s.Seed))

	current := initial.Clone()
	currentScore := evalScore(current, s.Config)
	initialScore := currentScore
	tracker := newBestTracker(current, initialScore)
	constraintOpts := constraint.Options{CheckClassSize: true, CheckMinFriends: true}

	gate := neighborhood.GateOptions{
		RespectForceConstraints: s.Config.RespectForceConstraints,
		OverrideProbability:     s.Config.SAForceFriendOverrideProbability,
	}

	a := s.Config.Annealing
	temperature := a.InitialTemperature
	if temperature <= 0 {
		temperature = 100
	}
	minTemp := a.MinTemperature
	if minTemp <= 0 {
		minTemp = 0.01
	}
	coolingRate := a.CoolingRate
	if coolingRate <= 0 || coolingRate >= 1 {
		coolingRate = 0.95
	}
	iterPerTemp := a.IterationsPerTemperature
	if iterPerTemp <= 0 {
		iterPerTemp = 50
	}
	swapProbability := a.SwapProbability
	if swapProbability == 0 {
		swapProbability = 0.7
	}
	coolingFn := coolingFunction(a.CoolingSchedule)

	iter := 0
	tempIteration := 0
	noImprovement := 0
	for shouldContinue(iter, maxIterations, noImprovement, s.Config.EarlyStopThreshold, s.Cancel) {
		if tracker.bestScore >= 99.0 {
			log.Debugf("stopping: best score %.4f reached ceiling", tracker.bestScore)
			break
		}
		if tempIteration >= iterPerTemp {
			temperature = coolingFn(temperature, iter, maxIterations, a.InitialTemperature, coolingRate)
			tempIteration = 0
			if temperature < minTemp {
				log.Debugf("stopping: temperature %.4f below minimum %.4f", temperature, minTemp)
				break
			}
		}

		neighbor := current.Clone()
		moved := generateNeighbor(neighbor, rng, gate, swapProbability)
		tempIteration++
		iter++
		if !moved {
			noImprovement++
			tracker.observe(iter, current, currentScore)
			continue
		}

		neighborScore := evalScore(neighbor, s.Config)
		delta := neighborScore - currentScore

		accept := delta > 0
		if !accept && temperature > 0 {
			accept = rng.Float64() < math.Exp(delta/temperature)
		}
		if accept {
			current = neighbor
			currentScore = neighborScore
			noImprovement = 0
		} else {
			noImprovement++
		}
		tracker.observe(iter, current, currentScore)
	}

	log.Debugf("simulated annealing finished after %d iterations, best=%.4f", iter, tracker.bestScore)
	return finalize(s.Name(), s.Parameters(), initial, initialScore, tracker, start, iter, maxIterations, s.Config, constraintOpts)
}

// generateNeighbor mutates school in place with a swap (probability
// swapProbability) or a single move, returning whether a mutation actually
// happened (it can fail to find a feasible candidate).
func generateNeighbor(school *domain.School, rng *rand.Rand, gate neighborhood.GateOptions, swapProbability float64) bool {
	students := school.Students()
	if len(students) == 0 {
		return false
	}
	classIDs := school.ClassIDs()
	if len(classIDs) < 2 {
		return false
	}

	if rng.Float64() < swapProbability {
		a := students[rng.Intn(len(students))]
		b := students[rng.Intn(len(students))]
		for attempts := 0; attempts < 10 && (a.ID == b.ID || a.ClassID == b.ClassID); attempts++ {
			b = students[rng.Intn(len(students))]
		}
		if a.ID == b.ID || a.ClassID == b.ClassID {
			return false
		}
		return neighborhood.Swap(school, a.ID, b.ID, gate, rng)
	}

	st := students[rng.Intn(len(students))]
	target := classIDs[rng.Intn(len(classIDs))]
	for attempts := 0; attempts < 10 && target == st.ClassID; attempts++ {
		target = classIDs[rng.Intn(len(classIDs))]
	}
	if target == st.ClassID {
		return false
	}
	return neighborhood.Move(school, st.ID, target, gate, rng)
}

type coolingFn func(temperature float64, iteration, maxIterations int, initialTemperature, coolingRate float64) float64

func coolingFunction(schedule string) coolingFn {
	switch schedule {
	case CoolingLinear:
		return linearCooling
	case CoolingLogarithmic:
		return logarithmicCooling
	case CoolingAdaptive:
		return adaptiveCooling
	default:
		return exponentialCooling
	}
}

func linearCooling(_ float64, iteration, maxIterations int, initialTemperature, _ float64) float64 {
	if maxIterations <= 0 {
		return 0
	}
	return initialTemperature * (1 - float64(iteration)/float64(maxIterations))
}

func exponentialCooling(temperature float64, _ int, _ int, _ float64, coolingRate float64) float64 {
	return temperature * coolingRate
}

func logarithmicCooling(_ float64, iteration int, _ int, initialTemperature, _ float64) float64 {
	return initialTemperature / math.Log(2+float64(iteration))
}

// adaptiveCooling is a hook for future acceptance-rate-driven schedules;
// today it degrades to exponential cooling.
func adaptiveCooling(temperature float64, iteration, maxIterations int, initialTemperature, coolingRate float64) float64 {
	return exponentialCooling(temperature, iteration, maxIterations, initialTemperature, coolingRate)
}
