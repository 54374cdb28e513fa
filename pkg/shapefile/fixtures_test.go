package shapefile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

func testHeader(st ShapeType, box Box) Header {
	return Header{
		FileCode:  parser.FileCode,
		Version:   parser.FileVersion,
		ShapeType: st,
		Box:       box,
	}
}

func buildSHP(t testing.TB, st ShapeType, box Box, shapes ...Shape) []byte {
	t.Helper()
	records := make([]*Record, len(shapes))
	for i, shape := range shapes {
		records[i] = &Record{ID: int32(i + 1), Type: st, Shape: shape}
	}
	buf, err := parser.EncodeFile(testHeader(st, box), records)
	require.NoError(t, err)
	return buf
}

var nameField = []Field{
	{Name: "NAME", Type: parser.FieldCharacter, Length: 16},
	{Name: "RANK", Type: parser.FieldNumber, Length: 4},
}

func buildDBF(t testing.TB, names ...string) []byte {
	t.Helper()
	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = Row{Values: map[string]interface{}{"NAME": name, "RANK": i + 1}}
	}
	buf, err := parser.EncodeTable(parser.TableHeader{CodePageMark: 0x57}, nameField, rows)
	require.NoError(t, err)
	return buf
}

func pt(x, y float64) Point {
	return Point{X: x, Y: y, M: NoData}
}

func pointShape(x, y float64) Shape {
	return &PointShape{Point: pt(x, y)}
}

// square returns a closed ring around (x, y) with the given half width.
func square(x, y, r float64) []Point {
	return []Point{pt(x-r, y-r), pt(x+r, y-r), pt(x+r, y+r), pt(x-r, y+r), pt(x-r, y-r)}
}

func polygonShape(rings ...[]Point) Shape {
	poly := &PolyShape{}
	first := true
	for _, ring := range rings {
		poly.Parts = append(poly.Parts, int32(len(poly.Points)))
		for _, p := range ring {
			poly.Points = append(poly.Points, p)
			if first {
				poly.Box = Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
				first = false
			}
			poly.Box.MinX = min(poly.Box.MinX, p.X)
			poly.Box.MinY = min(poly.Box.MinY, p.Y)
			poly.Box.MaxX = max(poly.Box.MaxX, p.X)
			poly.Box.MaxY = max(poly.Box.MaxY, p.Y)
		}
	}
	return poly
}

var testBox = Box{MinX: -72, MinY: 42, MaxX: -70, MaxY: 44}
