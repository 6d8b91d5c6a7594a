// Package geometry positions floating overlays relative to a text anchor.
//
// Coordinates are terminal cells relative to the top-left corner of the
// container (the editor pane). An overlay position names the horizontal centre
// of the overlay and the row just below its bottom edge, so the overlay box
// occupies rows [Y-Height, Y).
package geometry

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

// Size is a width/height pair in cells.
type Size struct {
	Width, Height int
}

// Rect is an axis-aligned rectangle. X/Y is the top-left cell.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Offset translates the rectangle by dx, dy.
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Facing records whether the overlay sits above its anchor or was flipped below it.
type Facing int

const (
	FacingAbove Facing = iota
	FacingBelow
)

func (f Facing) String() string {
	if f == FacingBelow {
		return "below"
	}
	return "above"
}

// OverlaySpec holds the fixed overlay size estimate and the edge padding.
type OverlaySpec struct {
	Width   int
	Height  int
	Padding int
}

// Fits reports whether a container is large enough for the containment guarantee.
func (s OverlaySpec) Fits(container Size) bool {
	return container.Width >= s.Width+2*s.Padding && container.Height >= s.Height+2*s.Padding
}

// Position is a clamped overlay position.
type Position struct {
	X, Y   int
	Facing Facing
}

// Point returns the position without its facing flag.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Bounds returns the overlay rectangle for this position.
func (p Position) Bounds(spec OverlaySpec) Rect {
	return Rect{X: p.X - spec.Width/2, Y: p.Y - spec.Height, W: spec.Width, H: spec.Height}
}

// Clamp computes where an overlay anchored at anchor should be drawn so that
// it never renders off the container edge.
//
// Horizontally the anchor is pulled in from whichever edge it crosses.
// Vertically the overlay prefers to sit above the anchor; when there is no
// room it flips below, and when it would overflow the bottom it is pulled up.
// Results are held inside the band where neither rule fires again, so
// Clamp(Clamp(p)) == Clamp(p). A container too short to flip into keeps the
// box inside [Padding, Height-Padding] without flipping; one smaller than the
// overlay gets a best-effort centred result.
func Clamp(anchor Point, container Size, spec OverlaySpec) Position {
	half := spec.Width / 2

	x := anchor.X
	left, right := half+spec.Padding, container.Width-half-spec.Padding
	switch {
	case right < left:
		x = container.Width / 2
	case anchor.X+half > container.Width-spec.Padding:
		x = right
	case anchor.X-half < spec.Padding:
		x = left
	}

	top := spec.Height + spec.Padding
	bottom := container.Height - spec.Height - spec.Padding

	y := anchor.Y
	facing := FacingAbove
	switch {
	case bottom < top:
		// No room to flip: keep the box between the paddings.
		y = clampInt(anchor.Y, top, container.Height-spec.Padding)
	case anchor.Y-spec.Height-spec.Padding < 0:
		y = clampInt(anchor.Y+spec.Height+spec.Padding, top, bottom)
		facing = FacingBelow
	case anchor.Y+spec.Height+spec.Padding > container.Height:
		y = bottom
	}

	return Position{X: x, Y: y, Facing: facing}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
