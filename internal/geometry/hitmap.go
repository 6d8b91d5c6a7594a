package geometry

// Region is a named clickable area.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap resolves clicks to regions. Regions added later sit on top.
type HitMap struct {
	regions []Region
}

// NewHitMap returns an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// Add registers a region.
func (h *HitMap) Add(id string, rect Rect, data any) {
	if rect.Empty() {
		return
	}
	h.regions = append(h.regions, Region{ID: id, Rect: rect, Data: data})
}

// Test returns the topmost region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			return &h.regions[i]
		}
	}
	return nil
}

// Clear drops every region; call it before each render pass.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Len reports how many regions are registered.
func (h *HitMap) Len() int {
	return len(h.regions)
}
