// Package constraint implements the hard-constraint validation.
// Grounded on original_source/src/constraints/{base,behavior_rank,class_size}.py's
// enumerate-every-violation discipline: Validate never short-circuits.
package constraint

import (
	"fmt"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
)

// ViolationKind classifies a single hard-constraint breach.
type ViolationKind string

const (
	ViolationUnassigned   ViolationKind = "unassigned_student"
	ViolationForceClass   ViolationKind = "force_class"
	ViolationForceFriend  ViolationKind = "force_friend_group_split"
	ViolationClassSize    ViolationKind = "class_size"
	ViolationMinFriends   ViolationKind = "min_friends"
)

// Violation describes one breach found by Validate.
type Violation struct {
	Kind      ViolationKind
	StudentID domain.StudentID
	GroupID   domain.GroupID
	ClassID   domain.ClassID
	Detail    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// Options controls which hard constraints Validate checks, since some are
// conditionally active (class size band only when configured) and the
// min-friends check is hard for some solvers and soft for others.
type Options struct {
	CheckClassSize  bool
	CheckMinFriends bool
}

// Validate enumerates every hard-constraint violation in school under cfg.
// It never short-circuits: all violations are returned together so a
// caller can report the complete picture.
func Validate(school *domain.School, cfg config.Config, opts Options) (bool, []Violation) {
	var violations []Violation

	for _, s := range school.Students() {
		if !s.IsAssigned() {
			violations = append(violations, Violation{
				Kind: ViolationUnassigned, StudentID: s.ID,
				Detail: "student has no class assignment",
			})
			continue
		}
		if s.ForceClass != "" && s.ClassID != s.ForceClass {
			violations = append(violations, Violation{
				Kind: ViolationForceClass, StudentID: s.ID, ClassID: s.ClassID,
				Detail: fmt.Sprintf("student forced to class %s but assigned to %s", s.ForceClass, s.ClassID),
			})
		}
	}

	for groupID, members := range school.ForceFriendGroups() {
		classesSeen := map[domain.ClassID]bool{}
		for _, id := range members {
			if s, ok := school.GetStudent(id); ok && s.ClassID != "" {
				classesSeen[s.ClassID] = true
			}
		}
		if len(classesSeen) > 1 {
			violations = append(violations, Violation{
				Kind: ViolationForceFriend, GroupID: groupID,
				Detail: fmt.Sprintf("force-friend group %s is split across %d classes", groupID, len(classesSeen)),
			})
		}
	}

	if opts.CheckClassSize && cfg.Classes.MaxSize > 0 {
		for _, c := range school.Classes() {
			if c.Size() < cfg.Classes.MinSize || c.Size() > cfg.Classes.MaxSize {
				violations = append(violations, Violation{
					Kind: ViolationClassSize, ClassID: c.ID,
					Detail: fmt.Sprintf("class %s has size %d, outside [%d,%d]", c.ID, c.Size(), cfg.Classes.MinSize, cfg.Classes.MaxSize),
				})
			}
		}
	}

	if opts.CheckMinFriends && cfg.MinFriendsRequired > 0 {
		for _, s := range school.Students() {
			if len(s.PreferredFriends) == 0 || s.ClassID == "" {
				continue
			}
			class, ok := school.GetClass(s.ClassID)
			if !ok {
				continue
			}
			present := 0
			for _, f := range s.PreferredFriends {
				if class.Has(f) {
					present++
				}
			}
			if present < cfg.MinFriendsRequired {
				violations = append(violations, Violation{
					Kind: ViolationMinFriends, StudentID: s.ID, ClassID: s.ClassID,
					Detail: fmt.Sprintf("student %s has %d/%d required friends in class", s.ID, present, cfg.MinFriendsRequired),
				})
			}
		}
	}

	return len(violations) == 0, violations
}
