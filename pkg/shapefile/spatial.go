package shapefile

import "github.com/dhconnelly/rtreego"

// Bounds is an axis-aligned bounding box in layer coordinates.
//
// Coordinates are whatever the shapefile stores: decimal degrees for
// geographic data, projected units otherwise.
type Bounds struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
}

func boundsFromBox(b Box) Bounds {
	return Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// Contains returns true if the point (x, y) is within the bounds.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

// BBox returns the bounds as a GeoJSON bbox member.
func (b Bounds) BBox() []float64 {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// rect converts bounds to an R-tree rectangle.
//
// R-tree rectangles need non-zero extent, so point features and
// degenerate query windows are widened to a small epsilon.
func (b Bounds) rect() rtreego.Rect {
	point := rtreego.Point{b.MinX, b.MinY}

	const epsilon = 0.0001
	xLength := b.MaxX - b.MinX
	yLength := b.MaxY - b.MinY
	if xLength < epsilon {
		xLength = epsilon
	}
	if yLength < epsilon {
		yLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{xLength, yLength})
	return rect
}

// geometryBounds calculates the bounding box of every position in g.
func geometryBounds(g Geometry) (Bounds, bool) {
	var bounds Bounds
	found := false
	visit := func(coord []float64) {
		x, y := coord[0], coord[1]
		if !found {
			bounds = Bounds{MinX: x, MinY: y, MaxX: x, MaxY: y}
			found = true
			return
		}
		bounds.MinX = min(bounds.MinX, x)
		bounds.MinY = min(bounds.MinY, y)
		bounds.MaxX = max(bounds.MaxX, x)
		bounds.MaxY = max(bounds.MaxY, y)
	}

	for _, coord := range g.Coordinates {
		visit(coord)
	}
	for _, part := range g.Parts {
		for _, coord := range part {
			visit(coord)
		}
	}
	return bounds, found
}
