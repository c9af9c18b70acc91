package planner

import "github.com/kirinyoku/seatplan/internal/domain"

// Summary returns the plan counters shown next to the floor plan.
func (e *Engine) Summary() domain.Summary {
	s := domain.Summary{
		Tables: len(e.state.Tables),
		Guests: len(e.state.Guests),
	}
	for _, t := range e.state.Tables {
		s.TotalSeats += len(t.Chairs)
		s.AssignedGuests += t.GuestCount()
	}
	s.FreeSeats = max(0, s.TotalSeats-s.AssignedGuests)
	for _, g := range e.state.Guests {
		if !g.Assigned() {
			s.UnassignedGuests++
		}
	}
	return s
}
