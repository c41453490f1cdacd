package solver

import (
	"math/rand"
	"time"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/constraint"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/neighborhood"
	"github.com/meshachvetz/classalloc/internal/obs"
)

// LocalSearchSolver is the greedy local search algorithm.
// min_friends_required is a hard feasibility guard here too.
type LocalSearchSolver struct {
	Config config.Config
	Seed   int64
	Cancel <-chan struct{}
}

func NewLocalSearchSolver(cfg config.Config, seed int64) *LocalSearchSolver {
	return &LocalSearchSolver{Config: cfg, Seed: seed}
}

func (s *LocalSearchSolver) Name() string { return "local_search" }

func (s *LocalSearchSolver) Parameters() map[string]any {
	return map[string]any{
		"max_passes":      s.Config.LocalSearch.MaxPasses,
		"min_improvement": s.Config.LocalSearch.MinImprovement,
		"min_passes":      s.Config.LocalSearch.MinPasses,
		"seed":            s.Seed,
	}
}

func (s *LocalSearchSolver) Optimize(initial *domain.School, maxIterations int) *OptimizationResult {
	log := obs.NewLogger("local_search", s.Config.LogLevel)
	start := time.Now()
	rng := rand.New(rand.NewSource(s.Seed))

	current := initial.Clone()
	initialScore := evalScore(current, s.Config)
	tracker := newBestTracker(current, initialScore)
	constraintOpts := constraint.Options{CheckClassSize: true, CheckMinFriends: true}
	gate := neighborhood.GateOptions{
		RespectForceConstraints: s.Config.RespectForceConstraints,
		MinFriendsRequired:      s.Config.MinFriendsRequired,
	}

	maxPasses := s.Config.LocalSearch.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 10
	}
	minPasses := s.Config.LocalSearch.MinPasses
	perPassBudget := maxIterations / maxPasses
	if perPassBudget <= 0 {
		perPassBudget = 1
	}

	totalIter := 0
	noImprovement := 0
	pass := 0
	for pass < maxPasses && shouldContinue(totalIter, maxIterations, noImprovement, s.Config.EarlyStopThreshold, s.Cancel) {
		passStartScore := evalScore(current, s.Config)
		passBudget := perPassBudget
		for i := 0; i < passBudget && shouldContinue(totalIter, maxIterations, noImprovement, s.Config.EarlyStopThreshold, s.Cancel); i++ {
			improved := s.attemptMove(current, rng, gate)
			currentScore := evalScore(current, s.Config)
			tracker.observe(totalIter, current, currentScore)
			if improved {
				noImprovement = 0
			} else {
				noImprovement++
			}
			totalIter++
		}
		passImprovement := evalScore(current, s.Config) - passStartScore
		pass++
		if passImprovement < s.Config.LocalSearch.MinImprovement && pass >= minPasses {
			log.Debugf("stopping early after pass %d: improvement %.4f below threshold", pass, passImprovement)
			break
		}
	}

	log.Debugf("local search finished after %d iterations over %d passes, best=%.4f", totalIter, pass, tracker.bestScore)
	return finalize(s.Name(), s.Parameters(), initial, initialScore, tracker, start, totalIter, maxIterations, s.Config, constraintOpts)
}

// attemptMove samples a student in randomized order and tries random
// target classes, accepting the first move that improves (or is neutral
// when configured).
func (s *LocalSearchSolver) attemptMove(current *domain.School, rng *rand.Rand, gate neighborhood.GateOptions) bool {
	students := current.Students()
	if len(students) == 0 {
		return false
	}
	order := rng.Perm(len(students))
	classIDs := current.ClassIDs()
	if len(classIDs) < 2 {
		return false
	}
	beforeScore := evalScore(current, s.Config)

	for _, idx := range order {
		st := students[idx]
		if !neighborhood.IsMovable(st, s.Config) {
			continue
		}
		targets := rng.Perm(len(classIDs))
		for _, tIdx := range targets {
			target := classIDs[tIdx]
			if target == st.ClassID {
				continue
			}
			originalClass := st.ClassID
			if !neighborhood.Move(current, st.ID, target, gate, rng) {
				continue
			}
			after := evalScore(current, s.Config)
			if after > beforeScore || (s.Config.AcceptNeutralMoves && after >= beforeScore) {
				return true
			}
			_ = current.MoveStudent(st.ID, originalClass)
		}
	}
	return false
}
