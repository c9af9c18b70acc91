package snapshot

import (
	"fmt"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/hall"
)

const defaultGuestName = "Gość"

// migrations[v] upgrades a document from version v to v+1 in place.
var migrations = map[int]func(*wireSnapshot){
	1: migrateV1ToV2,
	2: migrateV2ToV3,
	3: migrateV3ToV4,
}

// migrateV1ToV2 flips the y axis (v1 measured y downwards from the far wall),
// folds the v1 chair/guest aliases into the current fields and creates guest
// records for names that were only stored on chairs.
func migrateV1ToV2(w *wireSnapshot) {
	for i := range w.Tables {
		t := &w.Tables[i]
		if t.Y.valid {
			t.Y.value = hall.Height - t.Y.value
		}
		for j := range t.Chairs {
			c := &t.Chairs[j]
			if c.Y.valid {
				c.Y.value = hall.Height - c.Y.value
			}
			if c.Guest != nil && *c.Guest != "" {
				id := *c.Guest
				c.GuestID = &id
			}
		}
	}

	known := make(map[string]bool, len(w.Guests))
	for i := range w.Guests {
		g := &w.Guests[i]
		if (g.AssignedTo == nil || *g.AssignedTo == "") && g.SeatID != nil {
			g.AssignedTo = g.SeatID
		}
		if g.ID == "" {
			g.ID = "g" + g.Name
		}
		known[g.ID] = true
	}

	for ti, t := range w.Tables {
		for ci, c := range t.Chairs {
			if c.GuestID == nil || *c.GuestID == "" || known[*c.GuestID] {
				continue
			}
			name := defaultGuestName
			if c.Guest != nil && *c.Guest != "" {
				name = *c.Guest
			}
			chairID := c.ID
			if chairID == "" {
				chairID = chairIDFor(w.Tables[ti], ti, ci)
			}
			w.Guests = append(w.Guests, wireGuest{
				ID:         *c.GuestID,
				Name:       name,
				AssignedTo: &chairID,
			})
			known[*c.GuestID] = true
		}
	}
}

// migrateV2ToV3 introduces head tables; nothing written before v3 was one.
func migrateV2ToV3(w *wireSnapshot) {
	no := false
	for i := range w.Tables {
		w.Tables[i].IsHead = &no
	}
}

// migrateV3ToV4 introduces per-table head seat counts.
func migrateV3ToV4(w *wireSnapshot) {
	deriveHeadSeatCounts(w)
}

// deriveHeadSeatCounts fills missing head seat counts: a head table keeps
// as many seats as it has chairs, anything else gets the mode default.
func deriveHeadSeatCounts(w *wireSnapshot) {
	mode := w.mode()
	for i := range w.Tables {
		t := &w.Tables[i]
		if t.HeadSeatCount.valid {
			continue
		}
		n := mode.DefaultHeadSeatCount()
		if t.IsHead != nil && *t.IsHead && len(t.Chairs) > 0 {
			n = len(t.Chairs)
		}
		t.HeadSeatCount = looseNumber{value: float64(domain.ClampHeadSeatCount(float64(n), mode)), valid: true}
	}
}

func chairIDFor(t wireTable, tableIndex, chairIndex int) string {
	id := t.ID
	if id == "" {
		id = fmt.Sprintf("t%d", tableIndex+1)
	}
	return fmt.Sprintf("%s_c%d", id, chairIndex+1)
}
