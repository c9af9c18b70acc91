package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/kirinyoku/seatplan/internal/geometry"
)

const (
	HeadSeatsMin = 2
	HeadSeatsMax = 4
)

type Table struct {
	ID            string
	Number        int
	X             float64
	Y             float64
	Rotation      float64
	Description   string
	IsHead        bool
	HeadSeatCount int
	Chairs        []Chair
	GroupID       string
}

// NewTable creates a horizontal, non-head table that forms its own group.
func NewTable(id string, number int, x, y float64) *Table {
	return &Table{
		ID:            id,
		Number:        number,
		X:             x,
		Y:             y,
		HeadSeatCount: HeadSeatsMax,
		GroupID:       id,
	}
}

func (t *Table) Orientation() Orientation {
	if geometry.IsVertical(t.Rotation) {
		return Vertical
	}
	return Horizontal
}

func (t *Table) HalfDimensions() (halfX, halfY float64) {
	return geometry.TableHalfDimensions(t.Rotation)
}

func (t *Table) Rect() geometry.Rect {
	return geometry.TableRect(t.X, t.Y, t.Rotation)
}

// MoveBy shifts the table and every chair around it.
func (t *Table) MoveBy(dx, dy float64) {
	t.X += dx
	t.Y += dy
	for i := range t.Chairs {
		t.Chairs[i].MoveBy(dx, dy)
	}
}

// MoveTo places the table centre at (x, y), carrying its chairs along.
func (t *Table) MoveTo(x, y float64) {
	t.MoveBy(x-t.X, y-t.Y)
}

func (t *Table) SetRotation(deg float64) {
	t.Rotation = geometry.NormalizeRotation(deg)
}

func (t *Table) SetDescription(s string) {
	t.Description = strings.TrimSpace(s)
}

// SetHead toggles head-table mode. Leaving head mode resets the seat count
// so a later toggle starts from the maximum again.
func (t *Table) SetHead(isHead bool) {
	t.IsHead = isHead
	if !isHead {
		t.HeadSeatCount = HeadSeatsMax
	}
}

func (t *Table) SetHeadSeatCount(n int) {
	t.HeadSeatCount = ClampHeadSeatCount(float64(n), ModeMore)
}

// GuestCount returns the number of occupied chairs.
func (t *Table) GuestCount() int {
	n := 0
	for _, c := range t.Chairs {
		if c.GuestID != "" {
			n++
		}
	}
	return n
}

// Label is the display name, e.g. "Stół 3" or "Stół 3: Rodzina".
func (t *Table) Label() string {
	if t.Description != "" {
		return fmt.Sprintf("Stół %d: %s", t.Number, t.Description)
	}
	return fmt.Sprintf("Stół %d", t.Number)
}

func (t *Table) Clone() *Table {
	cp := *t
	cp.Chairs = append([]Chair(nil), t.Chairs...)
	return &cp
}

// ClampHeadSeatCount rounds v and clamps it to [HeadSeatsMin, HeadSeatsMax].
// Non-finite values fall back to the mode default.
func ClampHeadSeatCount(v float64, mode Mode) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return mode.DefaultHeadSeatCount()
	}
	n := int(math.Round(v))
	if n < HeadSeatsMin {
		return HeadSeatsMin
	}
	if n > HeadSeatsMax {
		return HeadSeatsMax
	}
	return n
}
