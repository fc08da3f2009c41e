package model

import "time"

// ReturnGap is how far after the first visit a second visit must land for
// the visitor to count as returning.
const ReturnGap = 3 * time.Hour

type Cohort int

const (
	CohortNone Cohort = iota
	CohortNew
	CohortReturning
)

func (c Cohort) String() string {
	switch c {
	case CohortNew:
		return "new"
	case CohortReturning:
		return "returning"
	}
	return "none"
}

// Classify places an identifier with the given timeline into a cohort for the
// window [start, end). Identifiers first seen after the window, or never seen,
// belong to no cohort.
func Classify(t Timeline, start, end time.Time) Cohort {
	if t.First.IsZero() {
		return CohortNone
	}
	if t.First.Before(start) {
		return CohortReturning
	}
	if !t.First.Before(end) {
		return CohortNone
	}
	if t.Second.IsZero() || !t.Second.After(t.First.Add(ReturnGap)) {
		return CohortNew
	}
	return CohortReturning
}
