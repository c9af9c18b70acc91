package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
)

// wireSnapshot accepts every field name any version ever wrote.
type wireSnapshot struct {
	Version  looseNumber   `json:"version"`
	Tables   []wireTable   `json:"tables"`
	Guests   []wireGuest   `json:"guests"`
	Settings *wireSettings `json:"settings"`
}

type wireTable struct {
	ID            string      `json:"id"`
	Number        looseNumber `json:"number"`
	X             looseNumber `json:"x"`
	Y             looseNumber `json:"y"`
	Rotation      looseNumber `json:"rotation"`
	Description   *string     `json:"description"`
	IsHead        *bool       `json:"isHead"`
	HeadSeatCount looseNumber `json:"headSeatCount"`
	Chairs        []wireChair `json:"chairs"`
	GroupID       string      `json:"groupId"`
}

type wireChair struct {
	ID      string      `json:"id"`
	X       looseNumber `json:"x"`
	Y       looseNumber `json:"y"`
	Side    string      `json:"side"`
	GuestID *string     `json:"guestId"`
	Guest   *string     `json:"guest"` // v1: guest name doubling as id
}

type wireGuest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AssignedTo *string `json:"assignedTo"`
	SeatID     *string `json:"seatId"` // v1
}

type wireSettings struct {
	Mode       string      `json:"mode"`
	TableCount looseNumber `json:"tableCount"`
}

// looseNumber accepts a JSON number, a numeric string or null.
type looseNumber struct {
	value float64
	valid bool
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.value, n.valid = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// Unparseable strings count as absent.
		return nil
	}
	n.value, n.valid = f, true
	return nil
}

func (n looseNumber) or(def float64) float64 {
	if n.valid {
		return n.value
	}
	return def
}

func (w *wireSnapshot) mode() domain.Mode {
	if w.Settings == nil {
		return domain.ModeLess
	}
	return domain.ParseMode(w.Settings.Mode)
}

// normalize fills defaults and produces the current in-memory shape.
func (w *wireSnapshot) normalize() (*Snapshot, error) {
	mode := w.mode()
	s := &Snapshot{
		Version:  CurrentVersion,
		Tables:   make([]Table, 0, len(w.Tables)),
		Guests:   make([]Guest, 0, len(w.Guests)),
		Settings: Settings{Mode: string(mode)},
	}

	deriveHeadSeatCounts(w)

	for i, wt := range w.Tables {
		if !wt.X.valid || !wt.Y.valid {
			return nil, fmt.Errorf("%w: table %d has no position", ErrInvalid, i+1)
		}

		id := wt.ID
		if id == "" {
			id = fmt.Sprintf("t%d", i+1)
		}
		t := Table{
			ID:            id,
			Number:        int(wt.Number.or(float64(i + 1))),
			X:             wt.X.value,
			Y:             wt.Y.value,
			Rotation:      geometry.NormalizeRotation(wt.Rotation.or(0)),
			IsHead:        wt.IsHead != nil && *wt.IsHead,
			HeadSeatCount: domain.ClampHeadSeatCount(wt.HeadSeatCount.or(float64(mode.DefaultHeadSeatCount())), mode),
			GroupID:       wt.GroupID,
			Chairs:        make([]Chair, 0, len(wt.Chairs)),
		}
		if wt.Description != nil {
			t.Description = strings.TrimSpace(*wt.Description)
		}
		if t.GroupID == "" {
			t.GroupID = id
		}

		for j, wc := range wt.Chairs {
			c := Chair{
				ID:   wc.ID,
				X:    wc.X.or(t.X),
				Y:    wc.Y.or(t.Y),
				Side: wc.Side,
			}
			if c.ID == "" {
				c.ID = fmt.Sprintf("%s_c%d", id, j+1)
			}
			if c.Side == "" {
				c.Side = string(domain.SideTop)
			}
			if wc.GuestID != nil {
				c.GuestID = *wc.GuestID
			}
			t.Chairs = append(t.Chairs, c)
		}
		s.Tables = append(s.Tables, t)
	}

	seen := make(map[string]bool, len(w.Guests))
	for _, wg := range w.Guests {
		g := Guest{ID: wg.ID, Name: strings.TrimSpace(wg.Name)}
		if g.Name == "" {
			g.Name = defaultGuestName
		}
		if g.ID == "" {
			g.ID = "g" + g.Name
		}
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		if wg.AssignedTo != nil {
			g.AssignedTo = *wg.AssignedTo
		}
		s.Guests = append(s.Guests, g)
	}

	s.Settings.TableCount = len(s.Tables)
	return s, nil
}
