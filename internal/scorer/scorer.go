// Package scorer implements the three-layer weighted scoring function.
// It is the engine's hot path: Score is called on the order of
// 10^5-10^7 times per optimization run. Every call recomputes all
// per-student, per-class and school-level values from the School; no
// per-class aggregates are cached between calls.
package scorer

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

// StudentBreakdown is the per-student snapshot of the student layer.
type StudentBreakdown struct {
	ID                  domain.StudentID
	FriendSatisfaction  float64
	ConflictAvoidance   float64
	WeightedScore       float64
}

// ClassBreakdown is the per-class snapshot of the class layer.
type ClassBreakdown struct {
	ID            domain.ClassID
	GenderBalance float64
	Size          int
	MaleCount     int
	FemaleCount   int
}

// BalanceMetric captures one school-layer metric's statistics, including
// the min/max/range fields the Python original carries alongside std_dev
// (SPEC_FULL.md's supplemented features).
type BalanceMetric struct {
	Score    float64
	StdDev   float64
	Mean     float64
	MinValue float64
	MaxValue float64
	Range    float64
}

// ScoringResult is the immutable snapshot produced by Score.
type ScoringResult struct {
	Students []StudentBreakdown
	Classes  []ClassBreakdown

	AcademicBalance      BalanceMetric
	BehaviorBalance      BalanceMetric
	StudentialityBalance BalanceMetric
	SizeBalance          BalanceMetric
	AssistanceBalance    BalanceMetric
	SchoolOriginBalance  BalanceMetric

	StudentLayerScore float64
	ClassLayerScore   float64
	SchoolLayerScore  float64

	FinalScore float64
}

// ClassSummaries returns a read-only per-class rollup combining the class
// breakdown with demographic aggregates, mirroring the Python original's
// ClassScorer.get_class_summary. It is not consumed by the core itself —
// only by reporter collaborators — so it is computed lazily here rather
// than stored on every ScoringResult.
type ClassSummary struct {
	ID                    domain.ClassID
	Size                  int
	Score                 float64
	GenderBalanceScore    float64
	MalePercentage        float64
	FemalePercentage      float64
	AverageAcademicScore  float64
	AverageBehaviorRank   float64
	AssistancePercentage  float64
}

func (r *ScoringResult) ClassSummaries(school *domain.School) []ClassSummary {
	out := make([]ClassSummary, 0, len(r.Classes))
	for _, cb := range r.Classes {
		var malePct, femalePct, assistPct float64
		if cb.Size > 0 {
			malePct = 100 * float64(cb.MaleCount) / float64(cb.Size)
			femalePct = 100 * float64(cb.FemaleCount) / float64(cb.Size)
		}
		var avgAcademic, avgBehavior float64
		if c, ok := school.GetClass(cb.ID); ok {
			avgAcademic = c.AverageAcademicScore()
			avgBehavior = c.AverageBehaviorRank()
			if cb.Size > 0 {
				assistPct = 100 * float64(c.AssistanceCount()) / float64(cb.Size)
			}
		}
		out = append(out, ClassSummary{
			ID:                   cb.ID,
			Size:                 cb.Size,
			Score:                cb.GenderBalance,
			GenderBalanceScore:   cb.GenderBalance,
			MalePercentage:       malePct,
			FemalePercentage:     femalePct,
			AverageAcademicScore: avgAcademic,
			AverageBehaviorRank:  avgBehavior,
			AssistancePercentage: assistPct,
		})
	}
	return out
}

// Score computes the full three-layer score for school under cfg. It is
// deterministic: student and class iteration is always id-sorted (School
// already guarantees this), so floating point accumulation order never
// depends on map iteration.
func Score(school *domain.School, cfg config.Config) *ScoringResult {
	result := &ScoringResult{}

	result.Students, result.StudentLayerScore = scoreStudents(school, cfg)
	result.Classes, result.ClassLayerScore = scoreClasses(school, cfg)
	scoreSchool(school, cfg, result)

	wSum := cfg.Weights.Student + cfg.Weights.Class + cfg.Weights.School
	if wSum <= 0 {
		result.FinalScore = 0
		return result
	}
	result.FinalScore = (cfg.Weights.Student*result.StudentLayerScore +
		cfg.Weights.Class*result.ClassLayerScore +
		cfg.Weights.School*result.SchoolLayerScore) / wSum
	return result
}

// QuickScore returns only the final composite score, for the inner loop of
// solvers that need a scalar to compare. It runs the full Score computation,
// breakdown included, and discards everything but FinalScore.
func QuickScore(school *domain.School, cfg config.Config) float64 {
	return Score(school, cfg).FinalScore
}

func classmateSet(c *domain.Class) map[domain.StudentID]bool {
	set := make(map[domain.StudentID]bool, c.Size())
	for _, s := range c.Students() {
		set[s.ID] = true
	}
	return set
}

func friendSatisfaction(s *domain.Student, school *domain.School) float64 {
	if len(s.PreferredFriends) == 0 {
		return 100
	}
	class, ok := school.GetClass(s.ClassID)
	if !ok {
		return 0
	}
	mates := classmateSet(class)
	present := 0
	for _, f := range s.PreferredFriends {
		if mates[f] {
			present++
		}
	}
	return 100 * float64(present) / float64(len(s.PreferredFriends))
}

func conflictAvoidance(s *domain.Student, school *domain.School) float64 {
	if len(s.DislikedPeers) == 0 {
		return 100
	}
	class, ok := school.GetClass(s.ClassID)
	if !ok {
		return 100
	}
	mates := classmateSet(class)
	conflicts := 0
	for _, d := range s.DislikedPeers {
		if mates[d] {
			conflicts++
		}
	}
	total := len(s.DislikedPeers)
	return 100 * float64(total-conflicts) / float64(total)
}

func scoreStudents(school *domain.School, cfg config.Config) ([]StudentBreakdown, float64) {
	students := school.Students()
	breakdowns := make([]StudentBreakdown, 0, len(students))
	wSum := cfg.Weights.Friends + cfg.Weights.Dislikes

	sum := 0.0
	for _, s := range students {
		fs := friendSatisfaction(s, school)
		ca := conflictAvoidance(s, school)
		var weighted float64
		if wSum > 0 {
			weighted = (fs*cfg.Weights.Friends + ca*cfg.Weights.Dislikes) / wSum
		}
		breakdowns = append(breakdowns, StudentBreakdown{
			ID: s.ID, FriendSatisfaction: fs, ConflictAvoidance: ca, WeightedScore: weighted,
		})
		sum += weighted
	}
	if len(breakdowns) == 0 {
		return breakdowns, 0
	}
	return breakdowns, sum / float64(len(breakdowns))
}

func genderBalance(c *domain.Class) (score float64, male, female int) {
	male, female = c.GenderCounts()
	size := c.Size()
	if size == 0 {
		return 100, 0, 0
	}
	maleRatio := float64(male) / float64(size)
	femaleRatio := float64(female) / float64(size)
	diff := maleRatio - femaleRatio
	if diff < 0 {
		diff = -diff
	}
	return 100 * (1 - diff), male, female
}

func scoreClasses(school *domain.School, cfg config.Config) ([]ClassBreakdown, float64) {
	classes := school.Classes()
	breakdowns := make([]ClassBreakdown, 0, len(classes))
	sum := 0.0
	for _, c := range classes {
		gb, male, female := genderBalance(c)
		breakdowns = append(breakdowns, ClassBreakdown{
			ID: c.ID, GenderBalance: gb, Size: c.Size(), MaleCount: male, FemaleCount: female,
		})
		sum += gb
	}
	if len(breakdowns) == 0 {
		return breakdowns, 100
	}
	return breakdowns, sum / float64(len(breakdowns))
}

// balance computes the stdev-based score, using gonum's population
// statistics (ddof=0, matching numpy's default np.std used by the Python
// original).
func balance(values []float64, normalizationFactor float64) BalanceMetric {
	if len(values) == 0 {
		return BalanceMetric{Score: 100}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mean, std := stat.PopMeanStdDev(values, nil)
	score := 100 - std*normalizationFactor
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return BalanceMetric{
		Score: score, StdDev: std, Mean: mean,
		MinValue: sorted[0], MaxValue: sorted[len(sorted)-1], Range: sorted[len(sorted)-1] - sorted[0],
	}
}

func scoreSchool(school *domain.School, cfg config.Config, result *ScoringResult) {
	classes := school.Classes()

	academic := make([]float64, len(classes))
	behavior := make([]float64, len(classes))
	studentiality := make([]float64, len(classes))
	size := make([]float64, len(classes))
	assistance := make([]float64, len(classes))
	origin := make([]float64, len(classes))

	for i, c := range classes {
		academic[i] = c.AverageAcademicScore()
		behavior[i] = c.AverageBehaviorRank()
		studentiality[i] = c.AverageStudentialityRank()
		size[i] = float64(c.Size())
		assistance[i] = float64(c.AssistanceCount())
		origin[i] = c.SchoolOriginDiversity()
	}

	result.AcademicBalance = balance(academic, cfg.Normalization.Academic)
	result.BehaviorBalance = balance(behavior, cfg.Normalization.Behavior)
	result.StudentialityBalance = balance(studentiality, cfg.Normalization.Studentiality)
	result.SizeBalance = balance(size, cfg.Normalization.Size)
	result.AssistanceBalance = balance(assistance, cfg.Normalization.Assistance)
	result.SchoolOriginBalance = balance(origin, cfg.Normalization.SchoolOrigin)

	w := cfg.Weights
	wSum := w.Academic + w.Behavior + w.Studentiality + w.Size + w.Assistance + w.SchoolOrigin
	if wSum <= 0 {
		result.SchoolLayerScore = 0
		return
	}
	result.SchoolLayerScore = (result.AcademicBalance.Score*w.Academic +
		result.BehaviorBalance.Score*w.Behavior +
		result.StudentialityBalance.Score*w.Studentiality +
		result.SizeBalance.Score*w.Size +
		result.AssistanceBalance.Score*w.Assistance +
		result.SchoolOriginBalance.Score*w.SchoolOrigin) / wSum
}
