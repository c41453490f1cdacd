// Package solver implements the metaheuristic portfolio: random swap,
// greedy local search, simulated annealing, and genetic. All four share
// one contract (Solver) and a base harness that tracks the best-ever
// scoring solution, since solvers report the best seen, not the last
// visited. The harness does not check that solution against the hard
// constraints while tracking it; finalize reports its violations. Dispatch-over-closed-sum-of-variants is grounded on
// sim/policy/admission.go's NewAdmissionPolicy constructor-by-name shape.
package solver

import (
	"time"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/constraint"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/scorer"
)

// OptimizationResult is the immutable result contract.
type OptimizationResult struct {
	School        *domain.School
	InitialScore  float64
	FinalScore    float64
	Improvement   float64
	AlgorithmName string
	Parameters    map[string]any
	ElapsedTime   time.Duration

	IterationsCompleted int
	IterationsRequested int

	ScoreHistory     []float64
	BestScoreHistory []float64

	ConstraintsSatisfied bool
	Violations           []constraint.Violation

	ConvergenceIteration int // 0 if no observed state beat the initial score
}

// ImprovementPercentage mirrors the Python original's
// OptimizationResult.improvement_percentage derived property.
func (r *OptimizationResult) ImprovementPercentage() float64 {
	if r.InitialScore == 0 {
		return 0
	}
	return 100 * r.Improvement / r.InitialScore
}

// SuccessRate mirrors success_rate: fraction of requested iterations
// actually completed, as a percentage.
func (r *OptimizationResult) SuccessRate() float64 {
	if r.IterationsRequested == 0 {
		return 0
	}
	return 100 * float64(r.IterationsCompleted) / float64(r.IterationsRequested)
}

// Solver is the capability every algorithm implements.
type Solver interface {
	Optimize(initial *domain.School, maxIterations int) *OptimizationResult
	Name() string
	Parameters() map[string]any
}

// shouldContinue is the cooperative cancellation check every solver
// consults before each iteration: "should_continue(iter, max,
// no_improvement)". cancel may be nil for uncancellable runs.
func shouldContinue(iter, maxIterations, noImprovementStreak, earlyStopThreshold int, cancel <-chan struct{}) bool {
	if iter >= maxIterations {
		return false
	}
	if earlyStopThreshold > 0 && noImprovementStreak >= earlyStopThreshold {
		return false
	}
	if cancel != nil {
		select {
		case <-cancel:
			return false
		default:
		}
	}
	return true
}

// bestTracker owns the highest-scoring School observed during a run, plus
// the score/best-score history every solver's base harness contract needs.
// observe compares scores only; it does not run constraint.Validate.
type bestTracker struct {
	best         *domain.School
	bestScore    float64
	history      []float64
	bestHistory  []float64
	bestIteration int
}

func newBestTracker(initial *domain.School, initialScore float64) *bestTracker {
	return &bestTracker{
		best:          initial.Clone(),
		bestScore:     initialScore,
		history:       []float64{initialScore},
		bestHistory:   []float64{initialScore},
		bestIteration: 0,
	}
}

func (t *bestTracker) observe(iteration int, current *domain.School, currentScore float64) {
	t.history = append(t.history, currentScore)
	if currentScore > t.bestScore {
		t.bestScore = currentScore
		t.best = current.Clone()
		t.bestIteration = iteration
	}
	t.bestHistory = append(t.bestHistory, t.bestScore)
}

func finalize(
	name string,
	params map[string]any,
	initial *domain.School,
	initialScore float64,
	tracker *bestTracker,
	start time.Time,
	iterationsCompleted, iterationsRequested int,
	cfg config.Config,
	constraintOpts constraint.Options,
) *OptimizationResult {
	ok, violations := constraint.Validate(tracker.best, cfg, constraintOpts)
	return &OptimizationResult{
		School:               tracker.best,
		InitialScore:         initialScore,
		FinalScore:           tracker.bestScore,
		Improvement:          tracker.bestScore - initialScore,
		AlgorithmName:        name,
		Parameters:           params,
		ElapsedTime:          time.Since(start),
		IterationsCompleted:  iterationsCompleted,
		IterationsRequested:  iterationsRequested,
		ScoreHistory:         tracker.history,
		BestScoreHistory:     tracker.bestHistory,
		ConstraintsSatisfied: ok,
		Violations:           violations,
		ConvergenceIteration: tracker.bestIteration,
	}
}

// evalScore is the single call site every solver uses to evaluate a
// candidate School, so the hot path has one place to swap in a caching
// strategy later without touching solver logic.
func evalScore(school *domain.School, cfg config.Config) float64 {
	return scorer.QuickScore(school, cfg)
}
