package neighborhood

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

func pinned(id domain.StudentID, class, force domain.ClassID) *domain.Student {
	return &domain.Student{
		ID: id, Gender: domain.GenderMale, AcademicScore: 80,
		BehaviorRank: domain.RankA, StudentialityRank: domain.RankA,
		ClassID: class, ForceClass: force,
	}
}

func newTwoClassSchool(t *testing.T) *domain.School {
	t.Helper()
	sc := domain.NewSchool()
	sc.AddClass("A")
	sc.AddClass("B")
	return sc
}

func TestFeasible_RespectsForceClassPin(t *testing.T) {
	sc := newTwoClassSchool(t)
	s := pinned("111111111", "A", "A")
	require.NoError(t, sc.AddStudent(s))

	opts := GateOptions{RespectForceConstraints: true}
	assert.False(t, Feasible(sc, s, "B", opts, nil))
	assert.True(t, Feasible(sc, s, "A", opts, nil))
}

func TestFeasible_IgnoresForceClassWhenNotRespected(t *testing.T) {
	sc := newTwoClassSchool(t)
	s := pinned("111111111", "A", "A")
	require.NoError(t, sc.AddStudent(s))

	opts := GateOptions{RespectForceConstraints: false}
	assert.True(t, Feasible(sc, s, "B", opts, nil))
}

func TestFeasible_BlocksGroupSplitWithoutOverride(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	a.ForceFriendGroup = "G1"
	b := pinned("222222222", "A", "")
	b.ForceFriendGroup = "G1"
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	opts := GateOptions{OverrideProbability: 0}
	assert.False(t, Feasible(sc, a, "B", opts, rand.New(rand.NewSource(1))))
}

func TestFeasible_RespectsMaxClassSize(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	b := pinned("222222222", "B", "")
	c := pinned("333333333", "B", "")
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))
	require.NoError(t, sc.AddStudent(c))

	opts := GateOptions{MaxClassSize: 2}
	assert.False(t, Feasible(sc, a, "B", opts, nil))
}

func TestFeasible_RespectsMinFriendsRequiredWhenSet(t *testing.T) {
	sc := newTwoClassSchool(t)
	friend := pinned("222222222", "A", "")
	require.NoError(t, sc.AddStudent(friend))
	s := pinned("111111111", "A", "")
	s.PreferredFriends = []domain.StudentID{"222222222"}
	require.NoError(t, sc.AddStudent(s))

	opts := GateOptions{MinFriendsRequired: 1}
	assert.False(t, Feasible(sc, s, "B", opts, nil), "target class has none of s's preferred friends")
	assert.True(t, Feasible(sc, s, "A", opts, nil), "current class already satisfies the requirement")
}

func TestFeasible_MinFriendsRequiredIgnoresStudentsWithNoPreferences(t *testing.T) {
	sc := newTwoClassSchool(t)
	s := pinned("111111111", "A", "")
	require.NoError(t, sc.AddStudent(s))

	opts := GateOptions{MinFriendsRequired: 1}
	assert.True(t, Feasible(sc, s, "B", opts, nil))
}

func TestSwap_ExchangesClassAssignments(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	b := pinned("222222222", "B", "")
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	ok := Swap(sc, "111111111", "222222222", GateOptions{}, nil)
	require.True(t, ok)

	sa, _ := sc.GetStudent("111111111")
	sb, _ := sc.GetStudent("222222222")
	assert.Equal(t, domain.ClassID("B"), sa.ClassID)
	assert.Equal(t, domain.ClassID("A"), sb.ClassID)
}

func TestSwap_RejectsSameClassPair(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	b := pinned("222222222", "A", "")
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	assert.False(t, Swap(sc, "111111111", "222222222", GateOptions{}, nil))
}

func TestMove_RelocatesWhenFeasible(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	require.NoError(t, sc.AddStudent(a))

	assert.True(t, Move(sc, "111111111", "B", GateOptions{}, nil))
	got, _ := sc.GetStudent("111111111")
	assert.Equal(t, domain.ClassID("B"), got.ClassID)
}

func TestGroupMove_IsAllOrNothing(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "A")
	b := pinned("222222222", "A", "")
	require.NoError(t, sc.AddStudent(a))
	require.NoError(t, sc.AddStudent(b))

	opts := GateOptions{RespectForceConstraints: true}
	ok := GroupMove(sc, []domain.StudentID{"111111111", "222222222"}, "B", opts, nil)
	assert.False(t, ok)

	sa, _ := sc.GetStudent("111111111")
	sb, _ := sc.GetStudent("222222222")
	assert.Equal(t, domain.ClassID("A"), sa.ClassID)
	assert.Equal(t, domain.ClassID("A"), sb.ClassID)
}

func TestGroupMove_RejectsOutOfRangeGroupSize(t *testing.T) {
	sc := newTwoClassSchool(t)
	a := pinned("111111111", "A", "")
	require.NoError(t, sc.AddStudent(a))

	assert.False(t, GroupMove(sc, []domain.StudentID{"111111111"}, "B", GateOptions{}, nil))
}

func TestIsMovable_FalseWhenForcePinnedAndRespected(t *testing.T) {
	s := pinned("111111111", "A", "A")
	cfg := config.Default()
	cfg.RespectForceConstraints = true
	assert.False(t, IsMovable(s, cfg))

	cfg.RespectForceConstraints = false
	assert.True(t, IsMovable(s, cfg))
}
