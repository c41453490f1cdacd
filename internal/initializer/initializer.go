// Package initializer implements the four starting-assignment strategies,
// grounded on original_source/src/meshachvetz/optimizer/optimization_manager.py's
// InitializationStrategy dispatch. Constructor-by-name dispatch shape is
// grounded on sim/policy/admission.go's NewAdmissionPolicy.
package initializer

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/meshachvetz/classalloc/internal/domain"
)

// Strategy names recognized by Initialize.
const (
	Random           = "random"
	Balanced         = "balanced"
	ConstraintAware  = "constraint_aware"
	AcademicBalanced = "academic_balanced"
)

// TargetClasses derives the number of classes from student count using a
// size-band table, when not already implied by existing non-empty classes.
func TargetClasses(school *domain.School) int {
	existing := 0
	for _, c := range school.Classes() {
		if c.Size() > 0 {
			existing++
		}
	}
	if existing > 0 {
		return existing
	}
	n := len(school.Students())
	switch {
	case n <= 25:
		return 1
	case n <= 50:
		return 2
	case n <= 75:
		return 3
	case n <= 100:
		return 4
	default:
		target := int(math.Ceil(float64(n) / 25))
		if target < 4 {
			target = 4
		}
		if target > 8 {
			target = 8
		}
		return target
	}
}

// Initialize fills every unassigned student into a class using strategy,
// creating target classes numbered "1".."N" if they don't already exist.
// rng must be seeded by the caller (one RNG per run).
func Initialize(school *domain.School, strategy string, targetClasses int, rng *rand.Rand) error {
	if targetClasses <= 0 {
		targetClasses = TargetClasses(school)
	}
	classIDs := ensureClasses(school, targetClasses)

	unassigned := school.UnassignedStudents()
	if strategy != Random {
		unassigned = honorForceClass(school, unassigned, classIDs)
	}

	switch strategy {
	case Random:
		return placeRandom(school, unassigned, classIDs, rng)
	case Balanced:
		return placeBalanced(school, unassigned, classIDs, rng)
	case ConstraintAware:
		return placeConstraintAware(school, unassigned, classIDs, rng)
	case AcademicBalanced:
		return placeAcademicBalanced(school, unassigned, classIDs)
	default:
		return placeBalanced(school, unassigned, classIDs, rng)
	}
}

func ensureClasses(school *domain.School, n int) []domain.ClassID {
	ids := make([]domain.ClassID, 0, n)
	for _, c := range school.Classes() {
		ids = append(ids, c.ID)
	}
	for len(ids) < n {
		// New class ids are ordinal strings numbered after the classes
		// already present ("1", "2", ... from scratch); a School that
		// already has at least n classes skips this loop.
		id := domain.ClassID(strconv.Itoa(len(ids) + 1))
		school.AddClass(id)
		ids = append(ids, id)
	}
	return ids
}

// honorForceClass assigns every unassigned student whose ForceClass names
// an existing class, as a common first pass before the strategy runs.
// Returns the remaining unassigned students.
func honorForceClass(school *domain.School, unassigned []*domain.Student, classIDs []domain.ClassID) []*domain.Student {
	known := map[domain.ClassID]bool{}
	for _, id := range classIDs {
		known[id] = true
	}
	rest := make([]*domain.Student, 0, len(unassigned))
	for _, s := range unassigned {
		if s.ForceClass != "" && known[s.ForceClass] {
			_ = school.MoveStudent(s.ID, s.ForceClass)
			continue
		}
		rest = append(rest, s)
	}
	return rest
}

func placeRandom(school *domain.School, students []*domain.Student, classIDs []domain.ClassID, rng *rand.Rand) error {
	if len(classIDs) == 0 {
		return nil
	}
	for _, s := range students {
		target := classIDs[rng.Intn(len(classIDs))]
		if err := school.MoveStudent(s.ID, target); err != nil {
			return err
		}
	}
	return nil
}

func placeBalanced(school *domain.School, students []*domain.Student, classIDs []domain.ClassID, rng *rand.Rand) error {
	if len(classIDs) == 0 {
		return nil
	}
	shuffled := append([]*domain.Student(nil), students...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return roundRobin(school, shuffled, classIDs)
}

func placeConstraintAware(school *domain.School, students []*domain.Student, classIDs []domain.ClassID, rng *rand.Rand) error {
	if len(classIDs) == 0 {
		return nil
	}
	remaining := make(map[domain.StudentID]*domain.Student, len(students))
	for _, s := range students {
		remaining[s.ID] = s
	}

	groups := school.ForceFriendGroups()
	for _, members := range groups {
		target := classIDs[rng.Intn(len(classIDs))]
		for _, id := range members {
			if _, ok := remaining[id]; !ok {
				continue
			}
			if err := school.MoveStudent(id, target); err != nil {
				return err
			}
			delete(remaining, id)
		}
	}

	rest := make([]*domain.Student, 0, len(remaining))
	for _, s := range students {
		if _, ok := remaining[s.ID]; ok {
			rest = append(rest, s)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return roundRobin(school, rest, classIDs)
}

func placeAcademicBalanced(school *domain.School, students []*domain.Student, classIDs []domain.ClassID) error {
	sorted := append([]*domain.Student(nil), students...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AcademicScore > sorted[j].AcademicScore })
	return roundRobin(school, sorted, classIDs)
}

func roundRobin(school *domain.School, students []*domain.Student, classIDs []domain.ClassID) error {
	if len(classIDs) == 0 {
		return nil
	}
	for i, s := range students {
		target := classIDs[i%len(classIDs)]
		if err := school.MoveStudent(s.ID, target); err != nil {
			return err
		}
	}
	return nil
}
