package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

func student(id domain.StudentID, class domain.ClassID, gender domain.Gender) *domain.Student {
	return &domain.Student{
		ID:                id,
		Gender:            gender,
		AcademicScore:     80,
		BehaviorRank:      domain.RankA,
		StudentialityRank: domain.RankA,
		ClassID:           class,
	}
}

func TestFriendSatisfaction_AllPreferredFriendsPresentScoresMax(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	a := student("111111111", "6A", domain.GenderMale)
	a.PreferredFriends = []domain.StudentID{"222222222"}
	b := student("222222222", "6A", domain.GenderMale)
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	result := Score(sc, config.Default())
	require.Len(t, result.Students, 2)
	assert.Equal(t, 100.0, result.Students[0].FriendSatisfaction)
}

func TestFriendSatisfaction_MissingFriendScoresZero(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	sc.AddClass("6B")
	a := student("111111111", "6A", domain.GenderMale)
	a.PreferredFriends = []domain.StudentID{"222222222"}
	b := student("222222222", "6B", domain.GenderMale)
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	result := Score(sc, config.Default())
	assert.Equal(t, 0.0, result.Students[0].FriendSatisfaction)
}

func TestFriendSatisfaction_NoPreferencesScoresMaxByDefault(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	a := student("111111111", "6A", domain.GenderMale)
	require.NoError(t, sc.AddStudent(a))

	result := Score(sc, config.Default())
	assert.Equal(t, 100.0, result.Students[0].FriendSatisfaction)
}

func TestConflictAvoidance_DislikedPeerPresentReducesScore(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	a := student("111111111", "6A", domain.GenderMale)
	a.DislikedPeers = []domain.StudentID{"222222222", "333333333"}
	b := student("222222222", "6A", domain.GenderMale)
	c := student("333333333", "6A", domain.GenderMale)
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))
	require.NoError(t, sc.AddStudent(c))

	result := Score(sc, config.Default())
	assert.Equal(t, 0.0, result.Students[0].ConflictAvoidance)
}

func TestGenderBalance_PerfectSplitScoresMax(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(student("111111111", "6A", domain.GenderMale)))
	require.NoError(t, sc.AddStudent(student("222222222", "6A", domain.GenderFemale)))

	result := Score(sc, config.Default())
	require.Len(t, result.Classes, 1)
	assert.Equal(t, 100.0, result.Classes[0].GenderBalance)
}

func TestGenderBalance_AllOneGenderScoresZero(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(student("111111111", "6A", domain.GenderMale)))
	require.NoError(t, sc.AddStudent(student("222222222", "6A", domain.GenderMale)))

	result := Score(sc, config.Default())
	assert.Equal(t, 0.0, result.Classes[0].GenderBalance)
}

func TestScore_EmptySchoolReturnsNeutralLayers(t *testing.T) {
	sc := domain.NewSchool()
	result := Score(sc, config.Default())
	assert.Equal(t, 0.0, result.StudentLayerScore)
	assert.Equal(t, 100.0, result.ClassLayerScore)
}

func TestScore_FinalScoreIsWeightedAverageOfLayers(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	sc.AddClass("6B")
	require.NoError(t, sc.AddStudent(student("111111111", "6A", domain.GenderMale)))
	require.NoError(t, sc.AddStudent(student("222222222", "6B", domain.GenderFemale)))

	result := Score(sc, config.Default())
	cfg := config.Default()
	wSum := cfg.Weights.Student + cfg.Weights.Class + cfg.Weights.School
	expected := (cfg.Weights.Student*result.StudentLayerScore +
		cfg.Weights.Class*result.ClassLayerScore +
		cfg.Weights.School*result.SchoolLayerScore) / wSum
	assert.InDelta(t, expected, result.FinalScore, 1e-9)
}

func TestQuickScore_MatchesScoreFinalScore(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(student("111111111", "6A", domain.GenderMale)))

	cfg := config.Default()
	assert.Equal(t, Score(sc, cfg).FinalScore, QuickScore(sc, cfg))
}

func TestBalance_IdenticalValuesScorePerfect(t *testing.T) {
	b := balance([]float64{25, 25, 25}, 5.0)
	assert.Equal(t, 100.0, b.Score)
	assert.Equal(t, 0.0, b.StdDev)
}

func TestBalance_EmptyInputScoresPerfect(t *testing.T) {
	b := balance(nil, 5.0)
	assert.Equal(t, 100.0, b.Score)
}

func TestBalance_ScoreClampsAtZero(t *testing.T) {
	b := balance([]float64{0, 1000}, 5.0)
	assert.Equal(t, 0.0, b.Score)
}

func TestClassSummaries_PopulatesDemographicsFromLiveSchool(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	a := student("111111111", "6A", domain.GenderMale)
	a.AssistancePackage = true
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(student("222222222", "6A", domain.GenderFemale)))

	result := Score(sc, config.Default())
	summaries := result.ClassSummaries(sc)
	require.Len(t, summaries, 1)
	assert.Equal(t, 50.0, summaries[0].MalePercentage)
	assert.Equal(t, 50.0, summaries[0].FemalePercentage)
	assert.Equal(t, 50.0, summaries[0].AssistancePercentage)
	assert.Equal(t, 80.0, summaries[0].AverageAcademicScore)
}
