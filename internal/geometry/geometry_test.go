package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var toolbarSpec = OverlaySpec{Width: 36, Height: 3, Padding: 1}

func TestClampPullsInFromEdges(t *testing.T) {
	container := Size{Width: 80, Height: 24}
	cases := []struct {
		name   string
		anchor Point
		want   Position
	}{
		{name: "centre untouched", anchor: Point{X: 40, Y: 12}, want: Position{X: 40, Y: 12, Facing: FacingAbove}},
		{name: "right edge", anchor: Point{X: 78, Y: 12}, want: Position{X: 80 - 18 - 1, Y: 12, Facing: FacingAbove}},
		{name: "left edge", anchor: Point{X: 2, Y: 12}, want: Position{X: 18 + 1, Y: 12, Facing: FacingAbove}},
		{name: "top flips below", anchor: Point{X: 40, Y: 1}, want: Position{X: 40, Y: 1 + 3 + 1, Facing: FacingBelow}},
		{name: "bottom pulled up", anchor: Point{X: 40, Y: 22}, want: Position{X: 40, Y: 24 - 3 - 1, Facing: FacingAbove}},
		{name: "negative anchor stays inside", anchor: Point{X: -10, Y: -10}, want: Position{X: 19, Y: 4, Facing: FacingBelow}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clamp(tc.anchor, container, toolbarSpec))
		})
	}
}

func TestClampIsIdempotent(t *testing.T) {
	containers := []Size{{80, 24}, {120, 40}, {38, 5}, {38, 8}, {200, 9}, {20, 3}}
	specs := []OverlaySpec{toolbarSpec, {Width: 7, Height: 2, Padding: 0}, {Width: 200, Height: 50, Padding: 10}}
	for _, container := range containers {
		for _, spec := range specs {
			for x := -5; x <= container.Width+5; x++ {
				for y := -5; y <= container.Height+5; y++ {
					once := Clamp(Point{X: x, Y: y}, container, spec)
					twice := Clamp(once.Point(), container, spec)
					if once.Point() != twice.Point() {
						t.Fatalf("clamp not idempotent for %+v in %+v spec %+v: %+v then %+v", Point{x, y}, container, spec, once, twice)
					}
				}
			}
		}
	}
}

func TestClampKeepsOverlayInsideContainer(t *testing.T) {
	containers := []Size{{80, 24}, {38, 5}, {120, 8}, {1000, 600}}
	specs := []OverlaySpec{toolbarSpec, {Width: 200, Height: 50, Padding: 10}, {Width: 10, Height: 1, Padding: 2}}
	for _, container := range containers {
		for _, spec := range specs {
			if !spec.Fits(container) {
				continue
			}
			for x := -20; x <= container.Width+20; x += 3 {
				for y := -20; y <= container.Height+20; y += 3 {
					pos := Clamp(Point{X: x, Y: y}, container, spec)
					half := spec.Width / 2
					assert.LessOrEqual(t, spec.Padding, pos.X-half)
					assert.LessOrEqual(t, pos.X+half, container.Width-spec.Padding)

					box := pos.Bounds(spec)
					assert.GreaterOrEqual(t, box.Y, spec.Padding, "anchor %v in %v", Point{x, y}, container)
					assert.LessOrEqual(t, box.Y+box.H, container.Height-spec.Padding, "anchor %v in %v", Point{x, y}, container)
				}
			}
		}
	}
}

func TestClampIsBestEffortInTinyContainers(t *testing.T) {
	pos := Clamp(Point{X: 3, Y: 1}, Size{Width: 10, Height: 2}, toolbarSpec)
	assert.Equal(t, 5, pos.X)
	assert.Equal(t, 4, pos.Y)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	cases := []struct {
		name string
		x, y int
		want bool
	}{
		{"inside", 15, 30, true},
		{"top-left corner", 10, 20, true},
		{"right edge exclusive", 40, 30, false},
		{"bottom edge exclusive", 15, 60, false},
		{"left of rect", 9, 30, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Contains(tc.x, tc.y))
		})
	}
	assert.False(t, Rect{X: 5, Y: 5, W: 0, H: 3}.Contains(5, 5))
}

func TestHitMapTopmostWins(t *testing.T) {
	hm := NewHitMap()
	hm.Add("editor", Rect{X: 0, Y: 0, W: 80, H: 20}, nil)
	hm.Add("toolbar", Rect{X: 10, Y: 5, W: 20, H: 3}, "ask")
	hm.Add("empty", Rect{X: 0, Y: 0, W: 0, H: 0}, nil)

	region := hm.Test(12, 6)
	if assert.NotNil(t, region) {
		assert.Equal(t, "toolbar", region.ID)
		assert.Equal(t, "ask", region.Data)
	}
	region = hm.Test(50, 15)
	if assert.NotNil(t, region) {
		assert.Equal(t, "editor", region.ID)
	}
	assert.Nil(t, hm.Test(90, 30))
	assert.Equal(t, 2, hm.Len())

	hm.Clear()
	assert.Nil(t, hm.Test(12, 6))
}
