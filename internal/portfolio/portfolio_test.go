package portfolio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
	"github.com/meshachvetz/classalloc/internal/initializer"
)

func portfolioStudent(id domain.StudentID, class domain.ClassID, gender domain.Gender) *domain.Student {
	return &domain.Student{
		ID: id, Gender: gender, AcademicScore: 75,
		BehaviorRank: domain.RankA, StudentialityRank: domain.RankB,
		ClassID: class,
	}
}

func mixedSchool(n int) *domain.School {
	sc := domain.NewSchool()
	sc.AddClass("A")
	sc.AddClass("B")
	for i := 0; i < n; i++ {
		id := domain.StudentID(fmt.Sprintf("3%08d", i))
		class := domain.ClassID("A")
		if i%2 == 0 {
			class = "B"
		}
		gender := domain.GenderMale
		if i%3 == 0 {
			gender = domain.GenderFemale
		}
		sc.AddStudent(portfolioStudent(id, class, gender))
	}
	return sc
}

func TestNewSolver_RejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewSolver("not_a_real_algorithm", config.Default(), 1, nil)
	require.Error(t, err)
}

func TestNewSolver_DispatchesEachKnownAlgorithm(t *testing.T) {
	for _, name := range []string{AlgorithmRandomSwap, AlgorithmLocalSearch, AlgorithmSimulatedAnnealing, AlgorithmGenetic} {
		s, err := NewSolver(name, config.Default(), 1, nil)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
}

func TestOptimize_AutoInitializesUnassignedStudents(t *testing.T) {
	sc := domain.NewSchool()
	for i := 0; i < 10; i++ {
		sc.AddStudent(portfolioStudent(domain.StudentID(fmt.Sprintf("4%08d", i)), "", domain.GenderMale))
	}

	res, err := Optimize(Request{
		School: sc, Algorithm: AlgorithmRandomSwap, MaxIterations: 20,
		Config: config.Default(), AutoInitialize: true,
		InitializationStrategy: initializer.Balanced, Seed: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.School.UnassignedStudents())
}

func TestSequential_ChainsAlgorithmsThroughTheSameSchool(t *testing.T) {
	sc := mixedSchool(20)
	results, combined, err := Sequential(sc, []string{AlgorithmRandomSwap, AlgorithmLocalSearch}, 100, config.Default(), 1)
	require.NoError(t, err)
	require.Len(t, results, 3) // two steps plus "combined"
	assert.NotNil(t, combined)
	assert.GreaterOrEqual(t, combined.FinalScore, combined.InitialScore)
}

func TestSequential_RequiresAtLeastOneAlgorithm(t *testing.T) {
	sc := mixedSchool(5)
	_, _, err := Sequential(sc, nil, 100, config.Default(), 1)
	require.Error(t, err)
}

func TestParallel_EachRunSeesTheSameFairStartScore(t *testing.T) {
	sc := mixedSchool(20)
	results, warnings, err := Parallel(sc, []string{AlgorithmRandomSwap, AlgorithmLocalSearch, AlgorithmSimulatedAnnealing}, 50, config.Default(), 1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Empty(t, warnings, "every run should start from the same cloned initial score")

	for _, r := range results {
		require.NotNil(t, r.Result)
		assert.Equal(t, results[0].Result.InitialScore, r.Result.InitialScore)
	}
}

func TestParallel_DoesNotMutateTheSharedInputSchool(t *testing.T) {
	sc := mixedSchool(10)
	before := sc.Students()[0].ClassID

	_, _, err := Parallel(sc, []string{AlgorithmRandomSwap, AlgorithmGenetic}, 30, config.Default(), 1)
	require.NoError(t, err)

	assert.Equal(t, before, sc.Students()[0].ClassID)
}

func TestBestOf_PicksTheHighestFinalScore(t *testing.T) {
	sc := mixedSchool(20)
	best, stats, _, err := BestOf(sc, []string{AlgorithmRandomSwap, AlgorithmLocalSearch}, 50, config.Default(), 1)
	require.NoError(t, err)
	require.NotNil(t, best.Result)
	assert.Equal(t, stats.Best, best.Result.FinalScore)
}

func TestCompare_RanksByScoreImprovementAndTime(t *testing.T) {
	sc := mixedSchool(20)
	ranked, _, _, err := Compare(sc, []string{AlgorithmRandomSwap, AlgorithmLocalSearch}, 50, config.Default(), 1)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	ranksSeen := map[int]bool{}
	for _, r := range ranked {
		ranksSeen[r.RankByScore] = true
	}
	assert.True(t, ranksSeen[1])
	assert.True(t, ranksSeen[2])
}
