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

// RandomSwapSolver is the hill-climbing random swap algorithm.
// min_friends_required is treated as a hard feasibility guard for this
// solver: a swap that would leave a student below the required friend count
// in their new class is never accepted.
type RandomSwapSolver struct {
	Config config.Config
	Seed   int64
	Cancel <-chan struct{}
}

func NewRandomSwapSolver(cfg config.Config, seed int64) *RandomSwapSolver {
	return &RandomSwapSolver{Config: cfg, Seed: seed}
}

func (s *RandomSwapSolver) Name() string { return "random_swap" }

func (s *RandomSwapSolver) Parameters() map[string]any {
	return map[string]any{
		"max_swap_attempts":    s.Config.RandomSwap.MaxSwapAttempts,
		"accept_neutral_moves": s.Config.AcceptNeutralMoves,
		"early_stop_threshold": s.Config.EarlyStopThreshold,
		"seed":                 s.Seed,
	}
}

func (s *RandomSwapSolver) Optimize(initial *domain.School, maxIterations int) *OptimizationResult {
	log := obs.NewLogger("random_swap", s.Config.LogLevel)
	start := time.Now()
	rng := rand.New(rand.NewSource(s.Seed))

	current := initial.Clone()
	initialScore := evalScore(current, s.Config)
	tracker := newBestTracker(current, initialScore)

	gate := neighborhood.GateOptions{
		RespectForceConstraints: s.Config.RespectForceConstraints,
		MinFriendsRequired:      s.Config.MinFriendsRequired,
	}
	constraintOpts := constraint.Options{CheckClassSize: true, CheckMinFriends: true}

	maxAttempts := s.Config.RandomSwap.MaxSwapAttempts
	if maxAttempts <= 0 {
		maxAttempts = 50
	}

	iter := 0
	noImprovement := 0
	for shouldContinue(iter, maxIterations, noImprovement, s.Config.EarlyStopThreshold, s.Cancel) {
		improved := s.attemptIteration(current, rng, gate, maxAttempts, tracker.bestScore)
		currentScore := evalScore(current, s.Config)
		tracker.observe(iter, current, currentScore)
		if improved {
			noImprovement = 0
		} else {
			noImprovement++
		}
		iter++
	}

	log.Debugf("random swap finished after %d iterations, best=%.4f", iter, tracker.bestScore)
	return finalize(s.Name(), s.Parameters(), initial, initialScore, tracker, start, iter, maxIterations, s.Config, constraintOpts)
}

// attemptIteration picks two distinct classes with a movable student each,
// tries the swap, and accepts it in place if it strictly improves (or
// neutrally improves when configured). Returns whether it accepted a move.
func (s *RandomSwapSolver) attemptIteration(current *domain.School, rng *rand.Rand, gate neighborhood.GateOptions, maxAttempts int, bestScore float64) bool {
	beforeScore := evalScore(current, s.Config)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s1, s2, ok := pickSwapCandidates(current, rng, s.Config)
		if !ok {
			continue
		}
		before := current.Clone()
		if !neighborhood.Swap(current, s1, s2, gate, rng) {
			continue
		}
		after := evalScore(current, s.Config)
		if after > beforeScore || (s.Config.AcceptNeutralMoves && after >= beforeScore) {
			return true
		}
		// Undo the rejected trial: before is an untouched deep copy taken
		// just prior to the swap, so reassigning current's backing maps to
		// before's is a cheap whole-School undo.
		*current = *before
	}
	return false
}

func pickSwapCandidates(school *domain.School, rng *rand.Rand, cfg config.Config) (domain.StudentID, domain.StudentID, bool) {
	classes := school.Classes()
	candidates := make([]*domain.Class, 0, len(classes))
	for _, c := range classes {
		if hasMovable(c, cfg) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) < 2 {
		return "", "", false
	}
	i := rng.Intn(len(candidates))
	j := rng.Intn(len(candidates))
	for j == i {
		j = rng.Intn(len(candidates))
	}
	s1 := movableStudent(candidates[i], cfg, rng)
	s2 := movableStudent(candidates[j], cfg, rng)
	if s1 == "" || s2 == "" {
		return "", "", false
	}
	return s1, s2, true
}

func hasMovable(c *domain.Class, cfg config.Config) bool {
	for _, s := range c.Students() {
		if neighborhood.IsMovable(s, cfg) {
			return true
		}
	}
	return false
}

func movableStudent(c *domain.Class, cfg config.Config, rng *rand.Rand) domain.StudentID {
	students := c.Students()
	movable := make([]*domain.Student, 0, len(students))
	for _, s := range students {
		if neighborhood.IsMovable(s, cfg) {
			movable = append(movable, s)
		}
	}
	if len(movable) == 0 {
		return ""
	}
	return movable[rng.Intn(len(movable))].ID
}
