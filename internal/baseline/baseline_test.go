package baseline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/solver"
)

func baselineSchool(n int) *domain.School {
	sc := domain.NewSchool()
	sc.AddClass("A")
	sc.AddClass("B")
	for i := 0; i < n; i++ {
		id := domain.StudentID(fmt.Sprintf("5%08d", i))
		class := domain.ClassID("A")
		if i%2 == 0 {
			class = "B"
		}
		gender := domain.GenderMale
		if i%3 == 0 {
			gender = domain.GenderFemale
		}
		sc.AddStudent(&domain.Student{
			ID: id, Gender: gender, AcademicScore: 70,
			BehaviorRank: domain.RankA, StudentialityRank: domain.RankB,
			ClassID: class,
		})
	}
	return sc
}

func TestGenerate_ProducesOneRunPerRequestedRun(t *testing.T) {
	sc := baselineSchool(20)
	stats := Generate(sc, 5, 50, config.Default(), 100)

	require.Len(t, stats.Runs, 5)
	assert.GreaterOrEqual(t, stats.FinalScoreMean, 0.0)
}

func TestGenerate_IsReproducibleAcrossIdenticalInputs(t *testing.T) {
	sc1 := baselineSchool(20)
	sc2 := baselineSchool(20)

	s1 := Generate(sc1, 5, 50, config.Default(), 100)
	s2 := Generate(sc2, 5, 50, config.Default(), 100)

	assert.Equal(t, s1.FinalScoreMean, s2.FinalScoreMean)
	assert.Equal(t, s1.FinalScoreStdDev, s2.FinalScoreStdDev)
}

func TestGenerate_DoesNotMutateTheSourceSchool(t *testing.T) {
	sc := baselineSchool(10)
	before := sc.Students()[0].ClassID

	Generate(sc, 3, 30, config.Default(), 1)

	assert.Equal(t, before, sc.Students()[0].ClassID)
}

func TestSummarize_EmptyRunsYieldsZeroedStatistics(t *testing.T) {
	stats := summarize(nil)
	assert.Equal(t, 0.0, stats.FinalScoreMean)
	assert.Empty(t, stats.Runs)
}

func TestSummarize_ZeroStdDevForIdenticalFinalScores(t *testing.T) {
	runs := []Run{{FinalScore: 5}, {FinalScore: 5}, {FinalScore: 5}}
	stats := summarize(runs)
	assert.Equal(t, 0.0, stats.FinalScoreStdDev)
}

func TestMedian_EvenAndOddLengths(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestStatistics_Compare_PercentileRankCountsStrictlyLowerRuns(t *testing.T) {
	stats := Statistics{Runs: []Run{
		{FinalScore: 10}, {FinalScore: 20}, {FinalScore: 30}, {FinalScore: 40},
	}}
	stats.FinalScoreMean = 25
	stats.FinalScoreMedian = 25
	stats.FinalScoreMax = 40

	rec := stats.Compare(&solver.OptimizationResult{FinalScore: 35})
	assert.Equal(t, 75.0, rec.PercentileRank) // beats 3 of 4 runs
	assert.True(t, rec.BetterThanMean)
	assert.True(t, rec.BetterThanMedian)
	assert.False(t, rec.BetterThanBest)
}
