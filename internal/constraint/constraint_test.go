package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

func baseStudent(id domain.StudentID, class domain.ClassID) *domain.Student {
	return &domain.Student{
		ID:                id,
		Gender:            domain.GenderMale,
		AcademicScore:     80,
		BehaviorRank:      domain.RankA,
		StudentialityRank: domain.RankA,
		ClassID:           class,
	}
}

func TestValidate_FlagsUnassignedStudent(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(baseStudent("111111111", "")))

	ok, violations := Validate(sc, config.Default(), Options{})
	assert.False(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnassigned, violations[0].Kind)
}

func TestValidate_FlagsForceClassMismatch(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	sc.AddClass("6B")
	s := baseStudent("111111111", "6A")
	s.ForceClass = "6B"
	require.NoError(t, sc.AddStudent(s))

	ok, violations := Validate(sc, config.Default(), Options{})
	assert.False(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationForceClass, violations[0].Kind)
}

func TestValidate_FlagsSplitForceFriendGroup(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	sc.AddClass("6B")
	a := baseStudent("111111111", "6A")
	a.ForceFriendGroup = "G1"
	b := baseStudent("222222222", "6B")
	b.ForceFriendGroup = "G1"
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	ok, violations := Validate(sc, config.Default(), Options{})
	assert.False(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationForceFriend, violations[0].Kind)
}

func TestValidate_ForceFriendGroupInSameClassIsNotAViolation(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	a := baseStudent("111111111", "6A")
	a.ForceFriendGroup = "G1"
	b := baseStudent("222222222", "6A")
	b.ForceFriendGroup = "G1"
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	ok, violations := Validate(sc, config.Default(), Options{})
	assert.True(t, ok)
	assert.Empty(t, violations)
}

func TestValidate_ClassSizeCheckedOnlyWhenOptedIn(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(baseStudent("111111111", "6A")))

	cfg := config.Default()
	cfg.Classes.MinSize = 10
	cfg.Classes.MaxSize = 20

	ok, violations := Validate(sc, cfg, Options{CheckClassSize: false})
	assert.True(t, ok)
	assert.Empty(t, violations)

	ok, violations = Validate(sc, cfg, Options{CheckClassSize: true})
	assert.False(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationClassSize, violations[0].Kind)
}

func TestValidate_MinFriendsCheckedOnlyWhenOptedIn(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	sc.AddClass("6B")
	a := baseStudent("111111111", "6A")
	a.PreferredFriends = []domain.StudentID{"222222222"}
	b := baseStudent("222222222", "6B")
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	cfg := config.Default()
	cfg.MinFriendsRequired = 1

	ok, _ := Validate(sc, cfg, Options{CheckMinFriends: false})
	assert.True(t, ok)

	ok, violations := Validate(sc, cfg, Options{CheckMinFriends: true})
	assert.False(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationMinFriends, violations[0].Kind)
}

func TestValidate_EnumeratesAllViolationsWithoutShortCircuiting(t *testing.T) {
	sc := domain.NewSchool()
	sc.AddClass("6A")
	require.NoError(t, sc.AddStudent(baseStudent("111111111", "")))
	s2 := baseStudent("222222222", "6A")
	s2.ForceClass = "6B"
	sc.AddClass("6B")
	require.NoError(t, sc.AddStudent(s2))

	ok, violations := Validate(sc, config.Default(), Options{})
	assert.False(t, ok)
	assert.Len(t, violations, 2)
}
