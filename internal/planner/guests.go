package planner

import (
	"fmt"
	"strings"

	"github.com/kirinyoku/seatplan/internal/domain"
)

// AddGuest registers an unseated guest and returns it.
func (e *Engine) AddGuest(name string) (domain.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Guest{}, ErrEmptyGuestName
	}
	g := &domain.Guest{ID: e.uniqueGuestID(), Name: name}
	e.state.Guests = append(e.state.Guests, g)
	return *g, nil
}

func (e *Engine) uniqueGuestID() string {
	for {
		id := e.newGuestID()
		if e.guest(id) == nil {
			return id
		}
	}
}

// FindGuestByName looks a guest up by name, ignoring case and surrounding space.
func (e *Engine) FindGuestByName(name string) (domain.Guest, bool) {
	name = strings.TrimSpace(name)
	for _, g := range e.state.Guests {
		if strings.EqualFold(g.Name, name) {
			return *g, true
		}
	}
	return domain.Guest{}, false
}

// AssignGuest seats a guest on a chair. The guest's previous chair is emptied
// and any other guest on the target chair is unseated first.
func (e *Engine) AssignGuest(guestID, chairID string) error {
	g := e.guest(guestID)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}
	_, c := e.chair(chairID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrChairNotFound, chairID)
	}

	if g.Assigned() && g.AssignedTo != chairID {
		if _, old := e.chair(g.AssignedTo); old != nil && old.GuestID == g.ID {
			old.ClearGuest()
		}
	}
	if c.Occupied() && c.GuestID != g.ID {
		if other := e.guest(c.GuestID); other != nil {
			other.ClearAssignment()
		}
	}

	c.AssignGuest(g.ID)
	g.AssignTo(c.ID)
	return nil
}

// AssignGuestByName seats the guest with the given name on a chair, creating
// the guest when nobody by that name exists. An empty name clears the chair.
func (e *Engine) AssignGuestByName(name, chairID string) (domain.Guest, error) {
	if _, c := e.chair(chairID); c == nil {
		return domain.Guest{}, fmt.Errorf("%w: %s", ErrChairNotFound, chairID)
	}
	if strings.TrimSpace(name) == "" {
		return domain.Guest{}, e.ClearChair(chairID)
	}

	g, ok := e.FindGuestByName(name)
	if !ok {
		var err error
		if g, err = e.AddGuest(name); err != nil {
			return domain.Guest{}, err
		}
	}
	if err := e.AssignGuest(g.ID, chairID); err != nil {
		return domain.Guest{}, err
	}
	return e.Guest(g.ID)
}

// ClearChair empties a chair and unseats its guest.
func (e *Engine) ClearChair(chairID string) error {
	_, c := e.chair(chairID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrChairNotFound, chairID)
	}
	if c.Occupied() {
		if g := e.guest(c.GuestID); g != nil && g.AssignedTo == c.ID {
			g.ClearAssignment()
		}
		c.ClearGuest()
	}
	return nil
}

// UnassignGuest empties the guest's chair, if any.
func (e *Engine) UnassignGuest(guestID string) error {
	g := e.guest(guestID)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}
	if !g.Assigned() {
		return nil
	}
	return e.ClearChair(g.AssignedTo)
}

// RemoveGuest deletes a guest and empties any chair referencing them.
func (e *Engine) RemoveGuest(guestID string) error {
	idx := -1
	for i, g := range e.state.Guests {
		if g.ID == guestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}

	for _, t := range e.state.Tables {
		for i := range t.Chairs {
			if t.Chairs[i].GuestID == guestID {
				t.Chairs[i].ClearGuest()
			}
		}
	}
	e.state.Guests = append(e.state.Guests[:idx], e.state.Guests[idx+1:]...)
	return nil
}

// RenameGuest changes a guest's display name.
func (e *Engine) RenameGuest(guestID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyGuestName
	}
	g := e.guest(guestID)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}
	g.Name = name
	return nil
}

// UnassignedGuests returns the guests without a chair, in list order.
func (e *Engine) UnassignedGuests() []domain.Guest {
	var out []domain.Guest
	for _, g := range e.state.Guests {
		if !g.Assigned() {
			out = append(out, *g)
		}
	}
	return out
}
