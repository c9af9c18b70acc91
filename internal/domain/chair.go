package domain

import "github.com/kirinyoku/seatplan/internal/geometry"

// Chair ids are derived from the owning table and the chair's index,
// e.g. "t3_c5", so they stay stable while the chair count is unchanged.
type Chair struct {
	ID      string
	X       float64
	Y       float64
	Side    Side
	GuestID string
}

func (c *Chair) MoveBy(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

func (c *Chair) Rect() geometry.Rect {
	return geometry.ChairRect(c.X, c.Y)
}

func (c *Chair) Occupied() bool { return c.GuestID != "" }

func (c *Chair) AssignGuest(guestID string) { c.GuestID = guestID }

func (c *Chair) ClearGuest() { c.GuestID = "" }
