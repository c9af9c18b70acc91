// Package hall describes the fixed banquet hall: its outline, pillars,
// labelled reference segments and the blueprint used for default layouts.
package hall

import "github.com/kirinyoku/seatplan/internal/geometry"

const (
	Width  = 25.0
	Height = 11.0

	PillarSize = 0.4
)

// Pillar is a square structural column that furniture must not overlap.
type Pillar struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Rect returns the pillar's footprint.
func (p Pillar) Rect() geometry.Rect {
	return geometry.RectFromCenter(p.X, p.Y, p.Size/2, p.Size/2)
}

// Reference is a labelled segment (door, gate) drawn for orientation only.
// It takes no part in collision checks.
type Reference struct {
	From  geometry.Point  `json:"from"`
	To    geometry.Point  `json:"to"`
	Label string          `json:"label"`
	At    *geometry.Point `json:"at,omitempty"`
}

// Hall is the immutable spatial model consulted by the layout engine.
type Hall struct {
	Width      float64
	Height     float64
	Polygon    []geometry.Point
	Pillars    []Pillar
	References []Reference
	Blueprint  []BlueprintEntry
}

// Default returns the hall the planner is built for.
func Default() *Hall {
	return &Hall{
		Width:  Width,
		Height: Height,
		Polygon: []geometry.Point{
			{X: 0, Y: 0},
			{X: 4.3, Y: 0},
			{X: 4.3, Y: 2.3},
			{X: 0, Y: 5.3},
			{X: 0, Y: 11},
			{X: 25, Y: 11},
			{X: 25, Y: 0},
			{X: 0, Y: 0},
		},
		Pillars: []Pillar{
			{X: 5, Y: 5.5, Size: PillarSize},
			{X: 10, Y: 5.5, Size: PillarSize},
			{X: 15, Y: 5.5, Size: PillarSize},
			{X: 20, Y: 5.5, Size: PillarSize},
		},
		References: []Reference{
			{
				From:  geometry.Point{X: 0, Y: 5.3},
				To:    geometry.Point{X: 0, Y: 11},
				Label: "Wejście na zaplecze",
				At:    &geometry.Point{X: 1.4, Y: 8.15},
			},
			{
				From:  geometry.Point{X: 8, Y: 11},
				To:    geometry.Point{X: 14, Y: 11},
				Label: "Brama na łąkę",
				At:    &geometry.Point{X: 7.5, Y: 10.6},
			},
			{
				From:  geometry.Point{X: 16, Y: 11},
				To:    geometry.Point{X: 22, Y: 11},
				Label: "Przeszklona brama",
			},
			{
				From:  geometry.Point{X: 16.5, Y: 1},
				To:    geometry.Point{X: 17.5, Y: 1},
				Label: "Wejście",
			},
		},
		Blueprint: DefaultBlueprint(),
	}
}

// ContainsRect reports whether all four corners of r lie inside the hall outline.
func (h *Hall) ContainsRect(r geometry.Rect) bool {
	for _, c := range r.Corners() {
		if !geometry.PointInPolygon(c, h.Polygon) {
			return false
		}
	}
	return true
}

// HitsPillar reports whether r overlaps any pillar.
func (h *Hall) HitsPillar(r geometry.Rect) bool {
	for _, p := range h.Pillars {
		if r.Intersects(p.Rect()) {
			return true
		}
	}
	return false
}

// TableWithinHall reports whether a table centred on (x, y) fits inside the outline.
func (h *Hall) TableWithinHall(x, y, rotation float64) bool {
	return h.ContainsRect(geometry.TableRect(x, y, rotation))
}

// TableHitsPillar reports whether a table centred on (x, y) overlaps a pillar.
func (h *Hall) TableHitsPillar(x, y, rotation float64) bool {
	return h.HitsPillar(geometry.TableRect(x, y, rotation))
}

// ChairWithinHall reports whether a chair centred on (x, y) fits inside the outline.
func (h *Hall) ChairWithinHall(x, y float64) bool {
	return h.ContainsRect(geometry.ChairRect(x, y))
}

// ChairHitsPillar reports whether a chair centred on (x, y) overlaps a pillar.
func (h *Hall) ChairHitsPillar(x, y float64) bool {
	return h.HitsPillar(geometry.ChairRect(x, y))
}
