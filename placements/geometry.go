package placements

// Box is a resolved placement in absolute page coordinates (pt),
// bottom-left origin as PDF content streams expect.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Resolve converts a fractional placement into absolute coordinates on a
// page of the given dimensions. The vertical flip puts the *top* of the
// authored box at YFrac from the page top, matching what the user saw in a
// top-left-origin editor.
//
// No clamping: a box partially or fully outside the page is passed through
// and gets clipped (or stays invisible) at composition time.
//
// Pages in one document can differ in size, so call this per page.
func Resolve(p FieldPlacement, pageW, pageH float64) Box {
	h := p.HeightFrac * pageH
	return Box{
		X: p.XFrac * pageW,
		Y: pageH - p.YFrac*pageH - h,
		W: p.WidthFrac * pageW,
		H: h,
	}
}
