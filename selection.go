package easel

// Selection is an axis-aligned document-space region constraining the
// effect of an operation. A nil Selection, or one without positive area,
// means the whole layer.
type Selection struct {
	X, Y float64
	W, H float64
}

// Select is a convenience constructor for a document-space selection.
func Select(x, y, w, h float64) *Selection {
	return &Selection{X: x, Y: y, W: w, H: h}
}

// Active reports whether the selection constrains anything. It is safe to
// call on a nil receiver.
func (s *Selection) Active() bool {
	return s != nil && s.W > 0 && s.H > 0
}
