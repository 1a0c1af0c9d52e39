package scroll

import "fmt"

// Direction is the edge a feed follows.
type Direction int

const (
	// Down follows the bottom edge (new content is appended).
	Down Direction = iota + 1
	// Up follows the top edge (new content is prepended).
	Up
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return ""
	}
}

// ParseDirection parses "down" or "up".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "down", "bottom":
		return Down, true
	case "up", "top":
		return Up, true
	default:
		return 0, false
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("invalid direction %q", b)
	}
	*d = v
	return nil
}

// Align positions a target inside the viewport.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Rect is an axis-aligned box in viewport units.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// ButtonGeometry is what a follow button declares about itself plus its
// measured bounds.
type ButtonGeometry struct {
	Direction Direction // declared edge, zero = infer from position
	Threshold int       // declared hide distance, zero = default
	Rect      Rect      // button bounds
	Container *Rect     // declared alignment container, nil = use the feed
}

// Layout is the geometry a follow button is placed against.
type Layout struct {
	Container Rect // the scrollable container
	Feed      Rect // the feed column inside it
}

// EdgeMetrics describes how a follow button behaves.
type EdgeMetrics struct {
	Direction Direction
	// Threshold is the distance from the edge below which the button hides.
	Threshold int
	// Offset is the gap between the container's right edge and the right
	// edge of the column the button aligns with.
	Offset int
}

// DefaultThreshold is used when a button does not declare one.
const DefaultThreshold = 150

// ComputeEdgeMetrics derives a follow button's metrics from geometry alone.
// It has no side effects and returns the same result for the same input.
func ComputeEdgeMetrics(b ButtonGeometry, l Layout) EdgeMetrics {
	m := EdgeMetrics{
		Direction: b.Direction,
		Threshold: b.Threshold,
	}
	if m.Direction != Down && m.Direction != Up {
		m.Direction = inferDirection(b.Rect, l.Container)
	}
	if m.Threshold <= 0 {
		m.Threshold = DefaultThreshold
	}

	ref := l.Feed
	if b.Container != nil {
		ref = *b.Container
	}
	m.Offset = alignOffset(ref, l.Container)
	return m
}

// inferDirection picks the edge of the container the button sits closest to.
func inferDirection(button, container Rect) Direction {
	if button.Empty() || container.Empty() {
		return Down
	}
	buttonMid := 2*button.Y + button.Height
	containerMid := 2*container.Y + container.Height
	if buttonMid < containerMid {
		return Up
	}
	return Down
}

func alignOffset(ref, container Rect) int {
	if ref.Empty() || container.Empty() {
		return 0
	}
	return max(container.Right()-ref.Right(), 0)
}
