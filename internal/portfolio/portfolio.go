// Package portfolio implements the manager that detects assignment status,
// routes to the initializer and solver(s), and composes multi-solver runs.
// Grounded on original_source's
// optimizer/optimization_manager.py OptimizationManager dispatch-by-name;
// concurrency shape grounded on the teacher's ClusterSimulator discipline
// of each run owning its own state with nothing shared mutably.
package portfolio

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/initializer"
	"github.com/meshachvetz/classalloc/internal/scorer"
	"github.com/meshachvetz/classalloc/internal/solver"
)

// Algorithm names recognized by the manager, matching solver.Solver.Name().
const (
	AlgorithmRandomSwap          = "random_swap"
	AlgorithmLocalSearch         = "local_search"
	AlgorithmSimulatedAnnealing  = "simulated_annealing"
	AlgorithmGenetic             = "genetic"
)

// NewSolver dispatches to the named algorithm, mirroring
// OptimizationManager._register_algorithms's string-keyed table.
func NewSolver(name string, cfg config.Config, seed int64, cancel <-chan struct{}) (solver.Solver, error) {
	switch name {
	case AlgorithmRandomSwap:
		s := solver.NewRandomSwapSolver(cfg, seed)
		s.Cancel = cancel
		return s, nil
	case AlgorithmLocalSearch:
		s := solver.NewLocalSearchSolver(cfg, seed)
		s.Cancel = cancel
		return s, nil
	case AlgorithmSimulatedAnnealing:
		s := solver.NewAnnealingSolver(cfg, seed)
		s.Cancel = cancel
		return s, nil
	case AlgorithmGenetic:
		s := solver.NewGeneticSolver(cfg, seed)
		s.Cancel = cancel
		return s, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q; valid: [%s, %s, %s, %s]",
			name, AlgorithmRandomSwap, AlgorithmLocalSearch, AlgorithmSimulatedAnnealing, AlgorithmGenetic)
	}
}

// Request is the portfolio manager's single-algorithm entry point.
type Request struct {
	School                 *domain.School
	Algorithm              string
	MaxIterations          int
	Config                 config.Config
	InitializationStrategy string
	AutoInitialize         bool
	TargetClasses          int
	Seed                   int64
	Cancel                 <-chan struct{}
}

// Optimize runs the single-algorithm flow: auto-initialize if requested,
// then dispatch to the named solver.
func Optimize(req Request) (*solver.OptimizationResult, error) {
	school := req.School
	status := school.Status()

	if req.AutoInitialize && status != domain.FullyAssigned {
		rng := rand.New(rand.NewSource(req.Seed))
		strategy := req.InitializationStrategy
		if strategy == "" {
			strategy = initializer.Balanced
		}
		if err := initializer.Initialize(school, strategy, req.TargetClasses, rng); err != nil {
			return nil, fmt.Errorf("initializing school: %w", err)
		}
	}

	s, err := NewSolver(req.Algorithm, req.Config, req.Seed, req.Cancel)
	if err != nil {
		return nil, err
	}
	return s.Optimize(school, req.MaxIterations), nil
}

// StepResult names one step of a sequential or parallel portfolio run.
type StepResult struct {
	RunID     string
	Algorithm string
	Result    *solver.OptimizationResult
	Err       error
}

// Sequential runs a sequence of algorithms, each starting from the
// previous one's optimized output, splitting the iteration budget evenly.
// It returns every step's result plus a "combined" final result (the last
// step's).
func Sequential(school *domain.School, algorithms []string, totalIterations int, cfg config.Config, seed int64) (map[string]*StepResult, *solver.OptimizationResult, error) {
	if len(algorithms) == 0 {
		return nil, nil, fmt.Errorf("sequential portfolio requires at least one algorithm")
	}
	perStep := totalIterations / len(algorithms)
	if perStep <= 0 {
		perStep = 1
	}

	results := make(map[string]*StepResult, len(algorithms))
	current := school
	var last *solver.OptimizationResult

	for i, name := range algorithms {
		s, err := NewSolver(name, cfg, seed+int64(i), nil)
		if err != nil {
			return results, nil, err
		}
		res := s.Optimize(current, perStep)
		key := fmt.Sprintf("%d_%s", i, name)
		results[key] = &StepResult{RunID: uuid.NewString(), Algorithm: name, Result: res}
		current = res.School
		last = res
	}
	results["combined"] = &StepResult{RunID: uuid.NewString(), Algorithm: "combined", Result: last}
	return results, last, nil
}

// Parallel runs N solvers on independent deep copies of the same initial
// assignment (fair start), verifying every copy evaluates to the same
// initial score within tolerance. Each run executes on its own goroutine
// via errgroup, sharing nothing mutable with the others.
func Parallel(school *domain.School, algorithms []string, maxIterations int, cfg config.Config, seed int64) ([]*StepResult, []string, error) {
	if len(algorithms) == 0 {
		return nil, nil, fmt.Errorf("parallel portfolio requires at least one algorithm")
	}

	baseScore := scorer.QuickScore(school, cfg)
	results := make([]*StepResult, len(algorithms))

	var g errgroup.Group
	for i, name := range algorithms {
		i, name := i, name
		g.Go(func() error {
			copySchool := school.Clone()
			s, err := NewSolver(name, cfg, seed+int64(i), nil)
			if err != nil {
				results[i] = &StepResult{RunID: uuid.NewString(), Algorithm: name, Err: err}
				return nil
			}
			res := s.Optimize(copySchool, maxIterations)
			results[i] = &StepResult{RunID: uuid.NewString(), Algorithm: name, Result: res}
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		if math.Abs(r.Result.InitialScore-baseScore) > 1e-6 {
			warnings = append(warnings, fmt.Sprintf("algorithm %s saw initial score %.6f, expected %.6f (fair-start violation)", r.Algorithm, r.Result.InitialScore, baseScore))
		}
	}
	return results, warnings, nil
}

// ComparisonStats summarizes best/worst/average/range across a set of
// results, used by the best-of and comparison portfolios.
type ComparisonStats struct {
	Best    float64
	Worst   float64
	Average float64
	Range   float64
}

func computeStats(results []*StepResult) ComparisonStats {
	var scores []float64
	for _, r := range results {
		if r.Result != nil {
			scores = append(scores, r.Result.FinalScore)
		}
	}
	if len(scores) == 0 {
		return ComparisonStats{}
	}
	best, worst, sum := scores[0], scores[0], 0.0
	for _, v := range scores {
		if v > best {
			best = v
		}
		if v < worst {
			worst = v
		}
		sum += v
	}
	return ComparisonStats{Best: best, Worst: worst, Average: sum / float64(len(scores)), Range: best - worst}
}

// BestOf runs Parallel, then returns the single best result plus
// comparison statistics.
func BestOf(school *domain.School, algorithms []string, maxIterations int, cfg config.Config, seed int64) (*StepResult, ComparisonStats, []string, error) {
	results, warnings, err := Parallel(school, algorithms, maxIterations, cfg, seed)
	if err != nil {
		return nil, ComparisonStats{}, warnings, err
	}
	var best *StepResult
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		if best == nil || r.Result.FinalScore > best.Result.FinalScore {
			best = r
		}
	}
	if best == nil {
		return nil, ComparisonStats{}, warnings, fmt.Errorf("no algorithm in the portfolio produced a result")
	}
	return best, computeStats(results), warnings, nil
}

// RankedResult is one entry of an algorithm comparison, carrying the
// metrics used to rank it.
type RankedResult struct {
	*StepResult
	RankByScore       int
	RankByImprovement int
	RankByTime        int
}

// Compare runs Parallel, then ranks by final score, improvement, and
// execution time.
func Compare(school *domain.School, algorithms []string, maxIterations int, cfg config.Config, seed int64) ([]RankedResult, ComparisonStats, []string, error) {
	results, warnings, err := Parallel(school, algorithms, maxIterations, cfg, seed)
	if err != nil {
		return nil, ComparisonStats{}, warnings, err
	}
	ranked := make([]RankedResult, len(results))
	for i, r := range results {
		ranked[i] = RankedResult{StepResult: r}
	}
	assignRank(ranked, func(r RankedResult) float64 {
		if r.Result == nil {
			return math.Inf(-1)
		}
		return r.Result.FinalScore
	}, func(r *RankedResult, rank int) { r.RankByScore = rank })
	assignRank(ranked, func(r RankedResult) float64 {
		if r.Result == nil {
			return math.Inf(-1)
		}
		return r.Result.Improvement
	}, func(r *RankedResult, rank int) { r.RankByImprovement = rank })
	assignRank(ranked, func(r RankedResult) float64 {
		if r.Result == nil {
			return math.Inf(-1)
		}
		return -float64(r.Result.ElapsedTime)
	}, func(r *RankedResult, rank int) { r.RankByTime = rank })

	return ranked, computeStats(results), warnings, nil
}

// assignRank ranks entries descending by key(entry), 1 = best.
func assignRank(entries []RankedResult, key func(RankedResult) float64, set func(*RankedResult, int)) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return key(entries[order[i]]) > key(entries[order[j]]) })
	for rank, idx := range order {
		set(&entries[idx], rank+1)
	}
}
