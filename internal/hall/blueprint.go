package hall

// BlueprintEntry is one preferred table slot of the default layout.
type BlueprintEntry struct {
	X             float64
	Y             float64
	Rotation      float64
	IsHead        bool
	HeadSeatCount int
}

// DefaultBlueprint returns the ordered list of preferred table slots.
// The head table comes first, followed by three rows of four and a
// partial row near the entrance. Default layouts take a prefix of it.
func DefaultBlueprint() []BlueprintEntry {
	return []BlueprintEntry{
		{X: 12.5, Y: 9.6, IsHead: true, HeadSeatCount: 4},

		{X: 7.5, Y: 7.6},
		{X: 12.5, Y: 7.6},
		{X: 17.5, Y: 7.6},
		{X: 21.5, Y: 7.6},

		{X: 7.5, Y: 5.4},
		{X: 12.5, Y: 5.4},
		{X: 17.5, Y: 5.4},
		{X: 21.5, Y: 5.4},

		{X: 7.5, Y: 3.0},
		{X: 12.5, Y: 3.0},
		{X: 17.5, Y: 3.0},
		{X: 21.5, Y: 3.0},

		{X: 7.5, Y: 1.1},
		{X: 17.5, Y: 1.1},
		{X: 21.5, Y: 1.1},
	}
}
