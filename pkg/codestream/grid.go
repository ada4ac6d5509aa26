package codestream

// Rect is a group rectangle in stored image coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Grid partitions an image into groups of GroupDim×GroupDim pixels,
// clipped at the right and bottom edges.
type Grid struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	GroupDim int `json:"group_dim"`
	Cols     int `json:"cols"`
	Rows     int `json:"rows"`
}

// NewGrid computes the group grid for a width×height image.
func NewGrid(width, height, groupDim int) Grid {
	return Grid{
		Width:    width,
		Height:   height,
		GroupDim: groupDim,
		Cols:     (width + groupDim - 1) / groupDim,
		Rows:     (height + groupDim - 1) / groupDim,
	}
}

// NumGroups returns the number of groups in raster order.
func (g Grid) NumGroups() int {
	return g.Cols * g.Rows
}

// Group returns the rectangle of group i.
func (g Grid) Group(i int) Rect {
	col := i % g.Cols
	row := i / g.Cols

	r := Rect{
		X:      col * g.GroupDim,
		Y:      row * g.GroupDim,
		Width:  g.GroupDim,
		Height: g.GroupDim,
	}
	if r.X+r.Width > g.Width {
		r.Width = g.Width - r.X
	}
	if r.Y+r.Height > g.Height {
		r.Height = g.Height - r.Y
	}
	return r
}

// Groups returns all group rectangles in raster order.
func (g Grid) Groups() []Rect {
	rects := make([]Rect, g.NumGroups())
	for i := range rects {
		rects[i] = g.Group(i)
	}
	return rects
}
