package layout

// Box is a text placement region in normalized [0,1] image coordinates.
// (X, Y) is the center of the box, not a corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Left() float64   { return b.X - b.Width/2 }
func (b Box) Right() float64  { return b.X + b.Width/2 }
func (b Box) Top() float64    { return b.Y - b.Height/2 }
func (b Box) Bottom() float64 { return b.Y + b.Height/2 }

// InBounds reports whether the box lies entirely within the unit frame.
func (b Box) InBounds() bool {
	return b.Left() >= 0 && b.Right() <= 1 && b.Top() >= 0 && b.Bottom() <= 1
}

// Clamp returns the box with its center moved so the box fits inside the
// unit frame. Boxes wider or taller than the frame keep their size; the
// center is pinned to the nearer feasible bound.
func (b Box) Clamp() Box {
	b.X = clamp(b.X, b.Width/2, 1-b.Width/2)
	b.Y = clamp(b.Y, b.Height/2, 1-b.Height/2)
	return b
}

// Overlaps reports whether the two boxes intersect with nonzero area.
// Touching edges do not count as overlap.
func Overlaps(a, b Box) bool {
	return !(a.Right() <= b.Left() || b.Right() <= a.Left() ||
		a.Bottom() <= b.Top() || b.Bottom() <= a.Top())
}

// OverlapArea returns the area of the intersection of the two boxes,
// or 0 if they do not overlap.
func OverlapArea(a, b Box) float64 {
	if !Overlaps(a, b) {
		return 0
	}
	overlapWidth := min(a.Right(), b.Right()) - max(a.Left(), b.Left())
	overlapHeight := min(a.Bottom(), b.Bottom()) - max(a.Top(), b.Top())
	return overlapWidth * overlapHeight
}

// For boxes larger than the frame lo exceeds hi and the center pins to lo,
// matching the repair behavior the audit tooling expects.
func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
