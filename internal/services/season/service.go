package season

import (
	"time"

	"github.com/mcoot/whamageddon/internal/dependencies/clock"
)

// Phase is where today falls relative to the season
type Phase string

const (
	PhaseBefore Phase = "before" // before 1 December
	PhaseActive Phase = "active" // 1 to 24 December inclusive
	PhaseOver   Phase = "over"   // after 24 December
)

const (
	seasonStartDay = 1
	cutoffDay      = 24
)

// Countdown describes the current season relative to today
type Countdown struct {
	Today         time.Time
	SeasonStart   time.Time
	Cutoff        time.Time
	DaysRemaining int
	Phase         Phase
}

// Service computes the countdown in a fixed location
type Service struct {
	clock    clock.Clock
	location *time.Location
}

// New creates a season Service. A nil location means UTC.
func New(clock clock.Clock, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{clock: clock, location: location}
}

// Countdown returns the countdown for the current day
func (s *Service) Countdown() Countdown {
	return CountdownAt(s.clock.Now().In(s.location))
}

// CountdownAt computes the countdown for the calendar day of now, in now's
// location. Days remaining counts whole days to 24 December and never goes
// below zero.
func CountdownAt(now time.Time) Countdown {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := time.Date(now.Year(), time.December, seasonStartDay, 0, 0, 0, 0, loc)
	cutoff := time.Date(now.Year(), time.December, cutoffDay, 0, 0, 0, 0, loc)

	c := Countdown{
		Today:       today,
		SeasonStart: start,
		Cutoff:      cutoff,
	}

	switch {
	case today.After(cutoff):
		c.Phase = PhaseOver
	case today.Before(start):
		c.Phase = PhaseBefore
		c.DaysRemaining = daysBetween(today, cutoff)
	default:
		c.Phase = PhaseActive
		c.DaysRemaining = daysBetween(today, cutoff)
	}
	return c
}

// daysBetween counts calendar days, ignoring DST shifts in the location
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
