package shapefile

import "github.com/beetlebugorg/shapefile/internal/parser"

// Decoded file structures.
type (
	// Header is the 100-byte main file header.
	Header = parser.Header
	// Box is a bounding box as stored in the file.
	Box = parser.Box
	// Range is a Z or M value range.
	Range = parser.Range
	// Record is one decoded main file record.
	Record = parser.Record
	// Point is a single vertex with optional Z and M.
	Point = parser.Point
	// Shape is the decoded payload of a record: *PointShape,
	// *MultiPointShape or *PolyShape.
	Shape           = parser.Shape
	PointShape      = parser.PointShape
	MultiPointShape = parser.MultiPointShape
	PolyShape       = parser.PolyShape
	// Table is a decoded dBase attribute table.
	Table = parser.Table
	// Row is one attribute table row.
	Row = parser.Row
	// Field describes one attribute table column.
	Field = parser.Field
)

// ShapeType is the shape type code of a file or record.
type ShapeType = parser.ShapeType

const (
	ShapeNull        = parser.ShapeNull
	ShapePoint       = parser.ShapePoint
	ShapePolyLine    = parser.ShapePolyLine
	ShapePolygon     = parser.ShapePolygon
	ShapeMultiPoint  = parser.ShapeMultiPoint
	ShapePointZ      = parser.ShapePointZ
	ShapePolyLineZ   = parser.ShapePolyLineZ
	ShapePolygonZ    = parser.ShapePolygonZ
	ShapeMultiPointZ = parser.ShapeMultiPointZ
	ShapePointM      = parser.ShapePointM
	ShapePolyLineM   = parser.ShapePolyLineM
	ShapePolygonM    = parser.ShapePolygonM
	ShapeMultiPointM = parser.ShapeMultiPointM
	ShapeMultiPatch  = parser.ShapeMultiPatch
)

// Capabilities selects which shape variants a parse accepts.
type Capabilities = parser.Capabilities

const (
	CapBase = parser.CapBase
	CapZ    = parser.CapZ
	CapM    = parser.CapM
	CapAll  = parser.CapAll
)

// NoData is the measure value of a point without M.
const NoData = parser.NoData
