// Package neighborhood implements the three perturbation primitives — swap,
// move, group_move — plus the feasibility gate they share. Grounded on
// original_source/src/meshachvetz/optimizer/base_optimizer.py's
// constraint-respecting move helpers and optimizer/genetic.py's group
// mutation helper.
package neighborhood

import (
	"math/rand"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

// GateOptions parameterizes the feasibility gate shared by Swap and Move.
// OverrideProbability is the probability with which a force-friend split is
// allowed anyway — 0 for random swap/local search, <=0.1 for simulated
// annealing, <=0.3 for the genetic mutator. MinFriendsRequired makes the
// min-friends constraint a hard per-move guard (set by callers that treat it
// as hard, e.g. random swap and local search); 0 leaves it unchecked here.
type GateOptions struct {
	RespectForceConstraints bool
	OverrideProbability     float64
	MaxClassSize            int // 0 means unbounded
	MinFriendsRequired      int // 0 disables the hard guard
}

// Feasible reports whether moving student s to target satisfies the
// feasibility gate.
func Feasible(school *domain.School, s *domain.Student, target domain.ClassID, opts GateOptions, rng *rand.Rand) bool {
	if opts.RespectForceConstraints && s.ForceClass != "" && s.ForceClass != target {
		return false
	}
	if s.ForceFriendGroup != "" {
		if wouldSplitGroup(school, s, target) {
			if rng == nil || rng.Float64() >= opts.OverrideProbability {
				return false
			}
		}
	}
	if opts.MaxClassSize > 0 {
		if c, ok := school.GetClass(target); ok && c.ID != s.ClassID && c.Size() >= opts.MaxClassSize {
			return false
		}
	}
	if opts.MinFriendsRequired > 0 && !minFriendsSatisfied(school, s, target, opts.MinFriendsRequired) {
		return false
	}
	return true
}

// minFriendsSatisfied mirrors the original's is_valid_solution check inside
// _perform_swap/_find_best_move: a student with preferred friends is only
// allowed into target if at least minRequired of them are already there.
// Students with no preferences are never blocked by this guard.
func minFriendsSatisfied(school *domain.School, s *domain.Student, target domain.ClassID, minRequired int) bool {
	if len(s.PreferredFriends) == 0 {
		return true
	}
	class, ok := school.GetClass(target)
	if !ok {
		return false
	}
	present := 0
	for _, f := range s.PreferredFriends {
		if class.Has(f) {
			present++
		}
	}
	return present >= minRequired
}

func wouldSplitGroup(school *domain.School, s *domain.Student, target domain.ClassID) bool {
	for _, id := range school.ForceFriendGroups()[s.ForceFriendGroup] {
		if id == s.ID {
			continue
		}
		mate, ok := school.GetStudent(id)
		if ok && mate.ClassID != "" && mate.ClassID != target {
			return true
		}
	}
	return false
}

// Swap exchanges the class assignments of s1 and s2, which must currently
// be in different classes. Both directions are gated.
func Swap(school *domain.School, s1, s2 domain.StudentID, opts GateOptions, rng *rand.Rand) bool {
	a, ok1 := school.GetStudent(s1)
	b, ok2 := school.GetStudent(s2)
	if !ok1 || !ok2 || a.ClassID == b.ClassID || a.ClassID == "" || b.ClassID == "" {
		return false
	}
	classA, classB := a.ClassID, b.ClassID
	if !Feasible(school, a, classB, opts, rng) || !Feasible(school, b, classA, opts, rng) {
		return false
	}
	_ = school.MoveStudent(a.ID, classB)
	_ = school.MoveStudent(b.ID, classA)
	return true
}

// Move relocates s to target if the feasibility gate allows it.
func Move(school *domain.School, s domain.StudentID, target domain.ClassID, opts GateOptions, rng *rand.Rand) bool {
	st, ok := school.GetStudent(s)
	if !ok || st.ClassID == target {
		return false
	}
	if !Feasible(school, st, target, opts, rng) {
		return false
	}
	return school.MoveStudent(s, target) == nil
}

// GroupMove moves every member of a 2-5 student cohort to target in one
// step, used only by the genetic mutator. It is all-or-nothing: if any
// member fails the feasibility gate, no member is moved.
func GroupMove(school *domain.School, group []domain.StudentID, target domain.ClassID, opts GateOptions, rng *rand.Rand) bool {
	if len(group) < 2 || len(group) > 5 {
		return false
	}
	students := make([]*domain.Student, 0, len(group))
	for _, id := range group {
		s, ok := school.GetStudent(id)
		if !ok {
			return false
		}
		students = append(students, s)
	}
	for _, s := range students {
		if !Feasible(school, s, target, opts, rng) {
			return false
		}
	}
	for _, s := range students {
		_ = school.MoveStudent(s.ID, target)
	}
	return true
}

// IsMovable reports whether a student can participate in a move/swap under
// the given config at all (i.e. is not pinned by force-class when force
// constraints are respected). Solvers use this to pick candidate students
// that are worth sampling, avoiding wasted attempts.
func IsMovable(s *domain.Student, cfg config.Config) bool {
	if cfg.RespectForceConstraints && s.ForceClass != "" {
		return false
	}
	return true
}
