package planner

import (
	"math"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
)

// Band edges are inclusive; grid-snapped distances land on them exactly.
const connectEpsilon = 1e-9

type connection int

const (
	notConnected connection = iota
	endToEnd                // long axes continue into each other
	sideBySide              // long sides touch
)

// connectionBetween applies the adjacency test to a pair of tables. Head
// tables never connect, nor do tables of different orientation.
func connectionBetween(a, b *domain.Table) connection {
	if a.IsHead || b.IsHead {
		return notConnected
	}
	if a.Orientation() != b.Orientation() {
		return notConnected
	}

	aAxial, aCross := axes(a)
	bAxial, bCross := axes(b)
	axial := math.Abs(*aAxial - *bAxial)
	cross := math.Abs(*aCross - *bCross)

	within := func(v, limit float64) bool { return v <= limit+connectEpsilon }
	switch {
	case within(cross, AlignmentTolerance) && within(math.Abs(axial-geometry.TableLength), ConnectThreshold):
		return endToEnd
	case within(axial, AlignmentTolerance) && within(math.Abs(cross-geometry.TableWidth), ConnectThreshold):
		return sideBySide
	}
	return notConnected
}

// ShouldConnect reports whether two tables would be grouped.
func ShouldConnect(a, b *domain.Table) bool {
	return connectionBetween(a, b) != notConnected
}

// axes returns pointers to the coordinate along the table's long side and
// the one across it.
func axes(t *domain.Table) (axial, cross *float64) {
	if t.Orientation() == domain.Vertical {
		return &t.Y, &t.X
	}
	return &t.X, &t.Y
}

// alignTables snaps a against b: the shared coordinate is averaged and a is
// placed exactly one table length (or width) away from b on its own side.
func alignTables(a, b *domain.Table, c connection) {
	aAxial, aCross := axes(a)
	bAxial, bCross := axes(b)

	switch c {
	case endToEnd:
		avg := (*aCross + *bCross) / 2
		*aCross, *bCross = avg, avg
		*aAxial = besides(*aAxial, *bAxial, geometry.TableLength)
	case sideBySide:
		avg := (*aAxial + *bAxial) / 2
		*aAxial, *bAxial = avg, avg
		*aCross = besides(*aCross, *bCross, geometry.TableWidth)
	}
}

func besides(a, b, gap float64) float64 {
	if a < b {
		return b - gap
	}
	return b + gap
}

// recomputeGroups normalises rotations, snaps connected pairs and assigns
// every table the id of the first table of its connected component.
func (e *Engine) recomputeGroups() {
	tables := e.state.Tables
	adj := make(map[string][]string, len(tables))
	byID := make(map[string]*domain.Table, len(tables))

	for _, t := range tables {
		t.SetRotation(t.Rotation)
		byID[t.ID] = t
	}

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			a, b := tables[i], tables[j]
			c := connectionBetween(a, b)
			if c == notConnected {
				continue
			}
			adj[a.ID] = append(adj[a.ID], b.ID)
			adj[b.ID] = append(adj[b.ID], a.ID)
			alignTables(a, b, c)
		}
	}

	visited := make(map[string]bool, len(tables))
	for _, root := range tables {
		if visited[root.ID] {
			continue
		}
		visited[root.ID] = true
		queue := []string{root.ID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			byID[id].GroupID = root.ID
			for _, n := range adj[id] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
}

// groups returns the tables of each group in plan order, groups ordered by
// their first member.
func (e *Engine) groups() [][]*domain.Table {
	var out [][]*domain.Table
	index := make(map[string]int)
	for _, t := range e.state.Tables {
		i, ok := index[t.GroupID]
		if !ok {
			i = len(out)
			index[t.GroupID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], t)
	}
	return out
}

// Groups returns the table ids of each group.
func (e *Engine) Groups() [][]string {
	var out [][]string
	for _, g := range e.groups() {
		ids := make([]string, len(g))
		for i, t := range g {
			ids[i] = t.ID
		}
		out = append(out, ids)
	}
	return out
}
