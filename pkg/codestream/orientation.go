package codestream

// Orientation is the EXIF-style orientation tag stored in the header.
type Orientation uint8

const (
	OrientIdentity Orientation = iota + 1
	OrientFlipHorizontal
	OrientRotate180
	OrientFlipVertical
	OrientTranspose
	OrientRotate90CW
	OrientAntiTranspose
	OrientRotate90CCW
)

// Valid reports whether o is one of the eight defined orientations.
func (o Orientation) Valid() bool {
	return o >= OrientIdentity && o <= OrientRotate90CCW
}

// SwapsAxes reports whether displaying the image exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	return o >= OrientTranspose
}

// Apply maps stored pixel (x, y) of a w×h image to its displayed position.
func (o Orientation) Apply(x, y, w, h int) (int, int) {
	switch o {
	case OrientFlipHorizontal:
		return w - 1 - x, y
	case OrientRotate180:
		return w - 1 - x, h - 1 - y
	case OrientFlipVertical:
		return x, h - 1 - y
	case OrientTranspose:
		return y, x
	case OrientRotate90CW:
		return h - 1 - y, x
	case OrientAntiTranspose:
		return h - 1 - y, w - 1 - x
	case OrientRotate90CCW:
		return y, w - 1 - x
	default:
		return x, y
	}
}
