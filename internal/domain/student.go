package domain

import (
	"regexp"
)

// Gender is restricted to the two values the roster format recognizes.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Rank is a four-value ordinal used for both behavior_rank and
// studentiality_rank. A=1 ... D=4 when averaged.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
)

// Numeric maps a rank letter to its averaging value. Unknown ranks map to 0
// and are expected to have been rejected by validation before reaching here.
func (r Rank) Numeric() float64 {
	switch r {
	case RankA:
		return 1
	case RankB:
		return 2
	case RankC:
		return 3
	case RankD:
		return 4
	default:
		return 0
	}
}

var studentIDPattern = regexp.MustCompile(`^[0-9]{9}$`)

// ClassID identifies a Class within a School. The empty ClassID means
// "unassigned".
type ClassID string

// GroupID identifies a force-friend group.
type GroupID string

// StudentID is the 9-digit opaque identity of a Student.
type StudentID string

// Student is immutable except for ClassID, which is mutated only through
// School.MoveStudent.
type Student struct {
	ID                 StudentID
	FirstName          string
	LastName           string
	Gender             Gender
	AcademicScore      float64
	BehaviorRank       Rank
	StudentialityRank  Rank
	AssistancePackage  bool
	SchoolOfOrigin     string
	PreferredFriends   []StudentID
	DislikedPeers      []StudentID
	ForceClass         ClassID
	ForceFriendGroup   GroupID
	ClassID            ClassID
}

// Validate checks the entity invariants a Student must satisfy. It does
// not check that referenced friend/dislike/force-class ids exist
// elsewhere — that is a School-level, cross-entity concern.
func (s *Student) Validate() error {
	if !studentIDPattern.MatchString(string(s.ID)) {
		return newErr(ErrInvalidInput, "student_id must be a 9-digit numeric string: "+string(s.ID))
	}
	if s.Gender != GenderMale && s.Gender != GenderFemale {
		return newErr(ErrInvalidInput, "gender must be M or F")
	}
	if s.AcademicScore < 0 || s.AcademicScore > 100 {
		return newErr(ErrInvalidInput, "academic_score must be in [0,100]")
	}
	if !isValidRank(s.BehaviorRank) {
		return newErr(ErrInvalidInput, "behavior_rank must be one of A,B,C,D")
	}
	if !isValidRank(s.StudentialityRank) {
		return newErr(ErrInvalidInput, "studentiality_rank must be one of A,B,C,D")
	}
	if len(s.PreferredFriends) > 3 {
		return newErr(ErrInvalidInput, "at most three preferred friends are allowed")
	}
	if len(s.DislikedPeers) > 5 {
		return newErr(ErrInvalidInput, "at most five disliked peers are allowed")
	}
	return nil
}

func isValidRank(r Rank) bool {
	switch r {
	case RankA, RankB, RankC, RankD:
		return true
	default:
		return false
	}
}

// NormalizePreferences removes self-references and duplicates from the
// friend and dislike lists: self-reference in preferences is ignored, and
// duplicates are deduplicated.
func (s *Student) NormalizePreferences() {
	s.PreferredFriends = dedupExcluding(s.PreferredFriends, s.ID)
	s.DislikedPeers = dedupExcluding(s.DislikedPeers, s.ID)
}

func dedupExcluding(ids []StudentID, self StudentID) []StudentID {
	seen := make(map[StudentID]bool, len(ids))
	out := make([]StudentID, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IsAssigned reports whether the student currently belongs to a class.
func (s *Student) IsAssigned() bool { return s.ClassID != "" }

// Clone returns a deep copy of the student (slices copied).
func (s *Student) Clone() *Student {
	clone := *s
	clone.PreferredFriends = append([]StudentID(nil), s.PreferredFriends...)
	clone.DislikedPeers = append([]StudentID(nil), s.DislikedPeers...)
	return &clone
}
