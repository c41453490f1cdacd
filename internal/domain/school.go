package domain

import "golang.org/x/exp/slices"

// School is the aggregate root: a mapping of class id to Class and student
// id to Student, with the ownership invariants described below.
type School struct {
	classes  map[ClassID]*Class
	students map[StudentID]*Student
}

// NewSchool creates an empty School.
func NewSchool() *School {
	return &School{
		classes:  make(map[ClassID]*Class),
		students: make(map[StudentID]*Student),
	}
}

// AddClass registers an (initially empty) class. A no-op if the class
// already exists.
func (sc *School) AddClass(id ClassID) *Class {
	if c, ok := sc.classes[id]; ok {
		return c
	}
	c := NewClass(id)
	sc.classes[id] = c
	return c
}

// AddStudent inserts a student into the student table. If the student
// carries a non-empty ClassID, it is also added to that class's roster;
// the class must already exist via AddClass.
func (sc *School) AddStudent(s *Student) error {
	sc.students[s.ID] = s
	if s.ClassID != "" {
		c, ok := sc.classes[s.ClassID]
		if !ok {
			return wrapErr(ErrUnknownClass, "student references unknown class "+string(s.ClassID), nil)
		}
		c.add(s)
	}
	return nil
}

// GetStudent looks up a student by id.
func (sc *School) GetStudent(id StudentID) (*Student, bool) {
	s, ok := sc.students[id]
	return s, ok
}

// GetClass looks up a class by id.
func (sc *School) GetClass(id ClassID) (*Class, bool) {
	c, ok := sc.classes[id]
	return c, ok
}

// ClassIDs returns all class ids in sorted order.
func (sc *School) ClassIDs() []ClassID {
	ids := make([]ClassID, 0, len(sc.classes))
	for id := range sc.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Classes returns all classes in class-id-sorted order.
func (sc *School) Classes() []*Class {
	ids := sc.ClassIDs()
	out := make([]*Class, 0, len(ids))
	for _, id := range ids {
		out = append(out, sc.classes[id])
	}
	return out
}

// StudentIDs returns all student ids in sorted order.
func (sc *School) StudentIDs() []StudentID {
	ids := make([]StudentID, 0, len(sc.students))
	for id := range sc.students {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Students returns all students in student-id-sorted order.
func (sc *School) Students() []*Student {
	ids := sc.StudentIDs()
	out := make([]*Student, 0, len(ids))
	for _, id := range ids {
		out = append(out, sc.students[id])
	}
	return out
}

// UnassignedStudents returns students with an empty ClassID, in sorted
// order.
func (sc *School) UnassignedStudents() []*Student {
	out := make([]*Student, 0)
	for _, s := range sc.Students() {
		if !s.IsAssigned() {
			out = append(out, s)
		}
	}
	return out
}

// MoveStudent atomically removes the student from its current class (if
// any) and inserts it into target, updating Student.ClassID. It does not
// consult constraints; callers (neighborhood ops, solvers) are responsible
// for feasibility gating before calling this.
func (sc *School) MoveStudent(id StudentID, target ClassID) error {
	s, ok := sc.students[id]
	if !ok {
		return wrapErr(ErrUnknownStudent, "move_student: unknown student "+string(id), nil)
	}
	targetClass, ok := sc.classes[target]
	if !ok {
		return wrapErr(ErrUnknownClass, "move_student: unknown class "+string(target), nil)
	}
	if old, ok := sc.classes[s.ClassID]; ok {
		old.remove(id)
	}
	targetClass.add(s)
	s.ClassID = target
	return nil
}

// ForceFriendGroups returns the derived view of force-friend group id to
// its member student ids. Each member list is in student-id-sorted order;
// the returned map has no defined iteration order.
func (sc *School) ForceFriendGroups() map[GroupID][]StudentID {
	groups := make(map[GroupID][]StudentID)
	for _, s := range sc.Students() {
		if s.ForceFriendGroup == "" {
			continue
		}
		groups[s.ForceFriendGroup] = append(groups[s.ForceFriendGroup], s.ID)
	}
	return groups
}

// Clone returns a deep copy of the School: every Student and Class is
// copied so mutating the clone (via MoveStudent or direct roster edits)
// never affects the original. This is the primitive the parallel portfolio
// and genetic solver rely on to give each run its own exclusively-owned
// School.
func (sc *School) Clone() *School {
	out := NewSchool()
	for _, id := range sc.ClassIDs() {
		out.AddClass(id)
	}
	for _, s := range sc.Students() {
		clone := s.Clone()
		out.students[clone.ID] = clone
		if clone.ClassID != "" {
			if c, ok := out.classes[clone.ClassID]; ok {
				c.add(clone)
			}
		}
	}
	return out
}

// AssignmentStatus classifies how fully the School's students are
// assigned, which the portfolio manager uses to decide whether
// auto-initialization is needed before optimizing.
type AssignmentStatus string

const (
	FullyAssigned     AssignmentStatus = "fully_assigned"
	PartiallyAssigned AssignmentStatus = "partially_assigned"
	Unassigned        AssignmentStatus = "unassigned"
	MixedAssignment   AssignmentStatus = "mixed"
)

// Status computes the assignment status of the School.
func (sc *School) Status() AssignmentStatus {
	total := len(sc.students)
	if total == 0 {
		return FullyAssigned
	}
	assigned := 0
	for _, s := range sc.students {
		if s.IsAssigned() {
			assigned++
		}
	}
	switch {
	case assigned == total:
		return FullyAssigned
	case assigned == 0:
		return Unassigned
	default:
		return PartiallyAssigned
	}
}

// Equal reports deep equality modulo roster ordering within a class — the
// comparison the clone tests use to check round-trip/idempotence
// properties.
func (sc *School) Equal(other *School) bool {
	if len(sc.students) != len(other.students) {
		return false
	}
	for id, s := range sc.students {
		os, ok := other.students[id]
		if !ok || s.ClassID != os.ClassID {
			return false
		}
	}
	if len(sc.classes) != len(other.classes) {
		return false
	}
	for id, c := range sc.classes {
		oc, ok := other.classes[id]
		if !ok || c.Size() != oc.Size() {
			return false
		}
		for sid := range c.students {
			if !oc.Has(sid) {
				return false
			}
		}
	}
	return true
}
