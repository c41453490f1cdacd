// Package baseline implements the statistical floor harness, grounded on
// original_source's optimizer/baseline_generator.py's
// BaselineRun/BaselineStatistics.
package baseline

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/solver"
)

// Run is a single baseline run's collected metrics.
type Run struct {
	RunNumber          int
	InitialScore       float64
	FinalScore         float64
	Improvement        float64
	ImprovementPercent float64
	Duration           time.Duration
	IterationsUsed     int
	IterationsPerSecond float64
	ScorePerSecond      float64
}

// Statistics is the aggregate of num_runs baseline Runs.
type Statistics struct {
	Runs []Run

	FinalScoreMean   float64
	FinalScoreMedian float64
	FinalScoreStdDev float64
	FinalScoreMin    float64
	FinalScoreMax    float64

	ImprovementMean   float64
	ImprovementMedian float64
	ImprovementStdDev float64

	DurationMean time.Duration
}

// Generate runs Random Swap numRuns times on independent deep copies of
// school, each seeded deterministically from baseSeed + run index so the
// whole harness is reproducible.
func Generate(school *domain.School, numRuns, maxIterationsPerRun int, cfg config.Config, baseSeed int64) Statistics {
	runs := make([]Run, 0, numRuns)
	for i := 0; i < numRuns; i++ {
		copySchool := school.Clone()
		s := solver.NewRandomSwapSolver(cfg, baseSeed+int64(i))
		start := time.Now()
		res := s.Optimize(copySchool, maxIterationsPerRun)
		duration := time.Since(start)

		run := Run{
			RunNumber:          i,
			InitialScore:       res.InitialScore,
			FinalScore:         res.FinalScore,
			Improvement:        res.Improvement,
			ImprovementPercent: res.ImprovementPercentage(),
			Duration:           duration,
			IterationsUsed:     res.IterationsCompleted,
		}
		if duration > 0 {
			run.IterationsPerSecond = float64(run.IterationsUsed) / duration.Seconds()
			run.ScorePerSecond = run.Improvement / duration.Seconds()
		}
		runs = append(runs, run)
	}
	return summarize(runs)
}

func summarize(runs []Run) Statistics {
	finalScores := make([]float64, len(runs))
	improvements := make([]float64, len(runs))
	var totalDuration time.Duration
	for i, r := range runs {
		finalScores[i] = r.FinalScore
		improvements[i] = r.Improvement
		totalDuration += r.Duration
	}

	s := Statistics{Runs: runs}
	if len(runs) == 0 {
		return s
	}
	s.FinalScoreMean, s.FinalScoreStdDev = stat.PopMeanStdDev(finalScores, nil)
	s.FinalScoreMedian = median(finalScores)
	s.FinalScoreMin, s.FinalScoreMax = minMax(finalScores)

	s.ImprovementMean, s.ImprovementStdDev = stat.PopMeanStdDev(improvements, nil)
	s.ImprovementMedian = median(improvements)

	s.DurationMean = totalDuration / time.Duration(len(runs))
	return s
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minMax(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return
}

// ComparisonRecord is the result of comparing an arbitrary OptimizationResult
// against a Statistics baseline.
type ComparisonRecord struct {
	DiffFromMean    float64
	DiffFromMedian  float64
	DiffFromBest    float64
	BetterThanMean  bool
	BetterThanMedian bool
	BetterThanBest  bool
	PercentileRank  float64
}

// Compare yields the difference from mean/median/best, whether other beats
// each, and the percentile rank:
// 100 * |{s in final_scores : s < other}| / n.
func (s Statistics) Compare(other *solver.OptimizationResult) ComparisonRecord {
	rec := ComparisonRecord{
		DiffFromMean:   other.FinalScore - s.FinalScoreMean,
		DiffFromMedian: other.FinalScore - s.FinalScoreMedian,
		DiffFromBest:   other.FinalScore - s.FinalScoreMax,
	}
	rec.BetterThanMean = rec.DiffFromMean > 0
	rec.BetterThanMedian = rec.DiffFromMedian > 0
	rec.BetterThanBest = rec.DiffFromBest > 0

	n := len(s.Runs)
	if n == 0 {
		return rec
	}
	below := 0
	for _, r := range s.Runs {
		if r.FinalScore < other.FinalScore {
			below++
		}
	}
	rec.PercentileRank = 100 * float64(below) / float64(n)
	return rec
}
