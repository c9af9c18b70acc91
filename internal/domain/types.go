package domain

import (
	"strings"
	"time"
)

// Mode controls how generously seats are laid out along table sides.
type Mode string

const (
	ModeLess Mode = "less"
	ModeMore Mode = "more"
)

// ParseMode maps anything other than "more" to ModeLess.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeMore)) {
		return ModeMore
	}
	return ModeLess
}

// BasePerSide is the number of seats one table contributes to each long side.
func (m Mode) BasePerSide() int {
	if m == ModeMore {
		return 4
	}
	return 3
}

// DefaultHeadSeatCount is the head-table seat count used when none is given.
func (m Mode) DefaultHeadSeatCount() int {
	if m == ModeMore {
		return 4
	}
	return 3
}

// Side names the table edge a chair is placed along.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Orientation is the axis a table's long side runs along.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

type Settings struct {
	Mode       Mode
	TableCount int
}

type Summary struct {
	Tables           int `json:"tables"`
	TotalSeats       int `json:"totalSeats"`
	AssignedGuests   int `json:"assignedGuests"`
	FreeSeats        int `json:"freeSeats"`
	UnassignedGuests int `json:"unassignedGuests"`
	Guests           int `json:"guests"`
}

// Plan is a stored, shareable snapshot.
type Plan struct {
	ID        string
	Version   int
	Snapshot  []byte // json
	CreatedAt time.Time
}

// PlanSaved is broadcast after a plan was stored on the server.
type PlanSaved struct {
	PlanID string `json:"plan_id"`
	Tables int    `json:"tables"`
	Seats  int    `json:"seats"`
	Guests int    `json:"guests"`
	TsUnix int64  `json:"ts_unix"`
}
