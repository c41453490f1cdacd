package domain

import (
	"math"

	"golang.org/x/exp/slices"
)

// Class holds an ordered-irrelevant collection of students. Students are
// stored in a map keyed by StudentID so membership checks and removal are
// O(1); aggregate queries iterate in StudentID-sorted order so repeated
// calls accumulate floating point sums identically, per the Design Notes'
// "accumulate in fixed order" guidance.
type Class struct {
	ID       ClassID
	students map[StudentID]*Student
}

// NewClass creates an empty class with the given id.
func NewClass(id ClassID) *Class {
	return &Class{ID: id, students: make(map[StudentID]*Student)}
}

// Students returns the class roster in StudentID-sorted order.
func (c *Class) Students() []*Student {
	out := make([]*Student, 0, len(c.students))
	for _, s := range c.students {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Student) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Size returns the number of students in the class.
func (c *Class) Size() int { return len(c.students) }

// Has reports whether the given student id is in this class.
func (c *Class) Has(id StudentID) bool {
	_, ok := c.students[id]
	return ok
}

func (c *Class) add(s *Student)          { c.students[s.ID] = s }
func (c *Class) remove(id StudentID)     { delete(c.students, id) }

// GenderCounts returns the number of male and female students.
func (c *Class) GenderCounts() (male, female int) {
	for _, s := range c.students {
		if s.Gender == GenderMale {
			male++
		} else if s.Gender == GenderFemale {
			female++
		}
	}
	return
}

// AverageAcademicScore returns the mean academic score, or 0 for an empty
// class.
func (c *Class) AverageAcademicScore() float64 {
	return c.average(func(s *Student) float64 { return s.AcademicScore })
}

// AverageBehaviorRank returns the mean numeric behavior rank, or 0 for an
// empty class.
func (c *Class) AverageBehaviorRank() float64 {
	return c.average(func(s *Student) float64 { return s.BehaviorRank.Numeric() })
}

// AverageStudentialityRank returns the mean numeric studentiality rank, or
// 0 for an empty class.
func (c *Class) AverageStudentialityRank() float64 {
	return c.average(func(s *Student) float64 { return s.StudentialityRank.Numeric() })
}

// AssistanceCount returns the number of students with AssistancePackage set.
func (c *Class) AssistanceCount() int {
	n := 0
	for _, s := range c.students {
		if s.AssistancePackage {
			n++
		}
	}
	return n
}

// SchoolOriginDistribution returns the count of students per
// school-of-origin value. Students with an empty origin are excluded.
func (c *Class) SchoolOriginDistribution() map[string]int {
	dist := make(map[string]int)
	for _, s := range c.students {
		if s.SchoolOfOrigin == "" {
			continue
		}
		dist[s.SchoolOfOrigin]++
	}
	return dist
}

// SchoolOriginDiversity returns the Shannon diversity of school-of-origin
// values normalized to [0,100]. An empty class, a class with no origin
// data, or a class with a single origin all score 0 entropy normalized to
// 100 (perfect, trivial diversity is treated as the ceiling case the same
// way a single-class school has size_balance 100: nothing to disperse).
func (c *Class) SchoolOriginDiversity() float64 {
	dist := c.SchoolOriginDistribution()
	total := 0
	for _, n := range dist {
		total += n
	}
	if total == 0 || len(dist) <= 1 {
		return 100
	}
	entropy := 0.0
	for _, n := range dist {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	maxEntropy := math.Log2(float64(len(dist)))
	if maxEntropy == 0 {
		return 100
	}
	return 100 * entropy / maxEntropy
}

func (c *Class) average(f func(*Student) float64) float64 {
	if len(c.students) == 0 {
		return 0
	}
	ids := c.sortedIDs()
	sum := 0.0
	for _, id := range ids {
		sum += f(c.students[id])
	}
	return sum / float64(len(ids))
}

func (c *Class) sortedIDs() []StudentID {
	ids := make([]StudentID, 0, len(c.students))
	for id := range c.students {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
