// Package geometry holds the planar primitives the floor plan is built on.
//
// All coordinates are meters in a y-up frame: the origin is the hall's
// bottom-left corner, x grows to the right and y grows towards the far wall.
// Rectangles are axis-aligned because tables only ever sit at 0° or 90°.
package geometry

import "math"

// Fixed furniture dimensions in meters.
const (
	TableLength = 2.3
	TableWidth  = 1.0
	ChairSize   = 0.45
)

// Point is a position on the floor.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// RectFromCenter builds a rectangle centred on (x, y) extending halfX and halfY.
func RectFromCenter(x, y, halfX, halfY float64) Rect {
	return Rect{
		MinX: x - halfX,
		MaxX: x + halfX,
		MinY: y - halfY,
		MaxY: y + halfY,
	}
}

// Width returns the extent along x.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the extent along y.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Corners returns the four corners starting at (MinX, MinY).
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
	}
}

// Intersects reports whether the interiors of r and o overlap.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return !(r.MinX >= o.MaxX || r.MaxX <= o.MinX || r.MinY >= o.MaxY || r.MaxY <= o.MinY)
}

// Overlaps is Intersects with both rectangles shrunk by tol, so rectangles
// that touch up to floating point noise do not count.
func (r Rect) Overlaps(o Rect, tol float64) bool {
	return !(r.MinX >= o.MaxX-tol || r.MaxX <= o.MinX+tol || r.MinY >= o.MaxY-tol || r.MaxY <= o.MinY+tol)
}

// RectsIntersect is the free-function form of Rect.Intersects.
func RectsIntersect(a, b Rect) bool {
	return a.Intersects(b)
}

// PointInPolygon reports whether p lies inside poly using the even-odd rule.
// Points exactly on an edge may be classified either way.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y

		if (yi > p.Y) != (yj > p.Y) {
			// 1e-9 keeps horizontal edges from dividing by zero.
			xCross := (xj-xi)*(p.Y-yi)/(yj-yi+1e-9) + xi
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// NormalizeRotation maps any angle in degrees onto the two supported
// orientations: 0 (long side along x) or 90 (long side along y).
// Rotating a rectangle by 180° yields the same footprint, so 180 folds
// into 0 and 270 folds into 90. Non-finite input is treated as 0.
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(math.Mod(deg, 360)+360, 360)
	// Snap to the nearest quarter turn first; anything else is not a valid pose.
	quarter := math.Mod(math.Round(r/90), 4)
	if int(quarter)%2 == 1 {
		return 90
	}
	return 0
}

// IsVertical reports whether a normalised rotation puts the table's long side along y.
func IsVertical(rotation float64) bool {
	return NormalizeRotation(rotation) == 90
}

// TableHalfDimensions returns half the table extent along x and y for the
// given rotation.
func TableHalfDimensions(rotation float64) (halfX, halfY float64) {
	if IsVertical(rotation) {
		return TableWidth / 2, TableLength / 2
	}
	return TableLength / 2, TableWidth / 2
}

// TableRect returns the footprint of a table centred on (x, y).
func TableRect(x, y, rotation float64) Rect {
	hx, hy := TableHalfDimensions(rotation)
	return RectFromCenter(x, y, hx, hy)
}

// ChairRect returns the square footprint of a chair centred on (x, y).
func ChairRect(x, y float64) Rect {
	return RectFromCenter(x, y, ChairSize/2, ChairSize/2)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Snap rounds v to the nearest multiple of step.
func Snap(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
