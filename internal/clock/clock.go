// Package clock supplies the reference date used by loan and exhibition date arithmetic.
package clock

import (
	"time"

	"github.com/5w1tchy/library-api/internal/models"
)

type Clock interface {
	Today() time.Time
}

// System reads the wall clock in Loc (time.Local when nil).
type System struct{ Loc *time.Location }

func (s System) Today() time.Time {
	now := time.Now()
	if s.Loc != nil {
		now = now.In(s.Loc)
	}
	return models.Date(now)
}

// Fixed always answers the same day. Used for demo and test environments.
type Fixed struct{ Day time.Time }

func (f Fixed) Today() time.Time { return models.Date(f.Day) }

// New picks Fixed when useFixed is set, System otherwise.
func New(useFixed bool, day time.Time, loc *time.Location) Clock {
	if useFixed {
		return Fixed{Day: day}
	}
	return System{Loc: loc}
}
