package shapefile

import (
	"encoding/json"
	"fmt"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"` // Always "FeatureCollection"
	BBox     []float64 `json:"bbox"` // Header bounds [minX, minY, maxX, maxY]
	Features []Feature `json:"features"`
}

// Feature represents one shape record joined with its attribute row.
//
// Access feature data via methods:
//   - ID() returns the 1-based record number
//   - Geometry() returns the spatial representation
//   - Properties() returns the attribute row
//   - Property(name) returns a single attribute value
type Feature struct {
	id         int32
	bbox       *Bounds
	geometry   Geometry
	properties map[string]interface{}
	deleted    bool
}

// ID returns the record number of the feature.
func (f *Feature) ID() int32 {
	return f.id
}

// Geometry returns the spatial representation of the feature.
func (f *Feature) Geometry() Geometry {
	return f.geometry
}

// BBox returns the record bounding box. Point features have none.
func (f *Feature) BBox() (Bounds, bool) {
	if f.bbox == nil {
		return Bounds{}, false
	}
	return *f.bbox, true
}

// Properties returns the joined attribute row, or nil when the layer was
// parsed without an attribute table.
func (f *Feature) Properties() map[string]interface{} {
	return f.properties
}

// Property returns a specific attribute value by name.
//
// Returns the value and true if the attribute exists, or nil and false if not found.
func (f *Feature) Property(name string) (interface{}, bool) {
	val, ok := f.properties[name]
	return val, ok
}

// Deleted reports whether the joined attribute row carries the dBase
// deletion flag.
func (f *Feature) Deleted() bool {
	return f.deleted
}

// MarshalJSON encodes the feature as a GeoJSON Feature.
func (f Feature) MarshalJSON() ([]byte, error) {
	out := struct {
		Type       string                 `json:"type"`
		BBox       []float64              `json:"bbox,omitempty"`
		Geometry   Geometry               `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}{
		Type:       "Feature",
		Geometry:   f.geometry,
		Properties: f.properties,
	}
	if f.bbox != nil {
		out.BBox = f.bbox.BBox()
	}
	return json.Marshal(out)
}

// Geometry represents the spatial representation of a feature.
//
// Positions are [x, y] pairs following the GeoJSON convention.
type Geometry struct {
	// Type indicates the geometry type.
	Type GeometryType

	// Coordinates holds the positions of Point (one position), MultiPoint
	// and LineString geometries.
	Coordinates [][]float64

	// Parts holds the rings of a Polygon or the lines of a MultiLineString.
	// For Polygon, ring 0 is the outer ring and later rings are holes;
	// winding order is not checked.
	Parts [][][]float64
}

// MarshalJSON encodes the geometry as a GeoJSON geometry object.
func (g Geometry) MarshalJSON() ([]byte, error) {
	var coords interface{}
	switch g.Type {
	case GeometryTypePoint:
		if len(g.Coordinates) != 1 {
			return nil, fmt.Errorf("point geometry has %d positions", len(g.Coordinates))
		}
		coords = g.Coordinates[0]
	case GeometryTypeMultiPoint, GeometryTypeLineString:
		coords = nonNil(g.Coordinates)
	case GeometryTypePolygon, GeometryTypeMultiLineString:
		parts := make([][][]float64, len(g.Parts))
		for i, part := range g.Parts {
			parts[i] = nonNil(part)
		}
		coords = parts
	default:
		return nil, fmt.Errorf("cannot encode geometry type %v", g.Type)
	}

	return json.Marshal(struct {
		Type        GeometryType `json:"type"`
		Coordinates interface{}  `json:"coordinates"`
	}{g.Type, coords})
}

// nonNil keeps empty position lists encoding as [] rather than null.
func nonNil(coords [][]float64) [][]float64 {
	if coords == nil {
		return [][]float64{}
	}
	return coords
}

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypePoint represents a single position.
	GeometryTypePoint GeometryType = iota

	// GeometryTypeMultiPoint represents an unconnected set of positions.
	GeometryTypeMultiPoint

	// GeometryTypeLineString represents a line through connected positions.
	GeometryTypeLineString

	// GeometryTypeMultiLineString represents several independent lines.
	GeometryTypeMultiLineString

	// GeometryTypePolygon represents an outer ring with optional holes.
	GeometryTypePolygon
)

// String returns the GeoJSON name of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeMultiPoint:
		return "MultiPoint"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypeMultiLineString:
		return "MultiLineString"
	case GeometryTypePolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the geometry type as its GeoJSON name.
func (g GeometryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// Assemble builds a feature collection from a decoded header, its records
// and an optional attribute table.
//
// Row i of table becomes the properties of feature i. A nil table gives
// every feature null properties; otherwise the row count must equal the
// record count or *ErrJoinLengthMismatch is returned. Deleted rows are
// joined like any other and flagged on the feature.
//
// Of opts only SplitMultiPartLines is used.
func Assemble(header *Header, records []*Record, table *Table, opts ParseOptions) (*FeatureCollection, error) {
	if table != nil && len(table.Rows) != len(records) {
		return nil, &ErrJoinLengthMismatch{Features: len(records), Attributes: len(table.Rows)}
	}

	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		BBox:     boundsFromBox(header.Box).BBox(),
		Features: make([]Feature, 0, len(records)),
	}

	for i, rec := range records {
		geom, err := assembleGeometry(rec, opts)
		if err != nil {
			return nil, err
		}
		feature := Feature{
			id:       rec.ID,
			geometry: geom,
		}
		if box, ok := rec.Bounds(); ok {
			b := boundsFromBox(box)
			feature.bbox = &b
		}
		if table != nil {
			feature.properties = table.Rows[i].Values
			feature.deleted = table.Rows[i].Deleted
		}
		fc.Features = append(fc.Features, feature)
	}
	return fc, nil
}

// assembleGeometry converts one record's shape to a GeoJSON geometry.
func assembleGeometry(rec *Record, opts ParseOptions) (Geometry, error) {
	switch shape := rec.Shape.(type) {
	case *parser.PointShape:
		return Geometry{
			Type:        GeometryTypePoint,
			Coordinates: [][]float64{{shape.X, shape.Y}},
		}, nil

	case *parser.MultiPointShape:
		return Geometry{
			Type:        GeometryTypeMultiPoint,
			Coordinates: positions(shape.Points),
		}, nil

	case *parser.PolyShape:
		switch rec.Type.Family() {
		case parser.FamilyPolygon:
			return Geometry{Type: GeometryTypePolygon, Parts: splitParts(shape)}, nil
		case parser.FamilyPolyLine:
			if opts.SplitMultiPartLines && len(shape.Parts) > 1 {
				return Geometry{Type: GeometryTypeMultiLineString, Parts: splitParts(shape)}, nil
			}
			// Multi-part lines are flattened into one vertex list.
			return Geometry{
				Type:        GeometryTypeLineString,
				Coordinates: positions(shape.Points),
			}, nil
		}
	}
	return Geometry{}, &ErrUnsupportedShapeType{Type: rec.Type, RecordID: rec.ID, Offset: rec.StartOffset}
}

func positions(points []Point) [][]float64 {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.X, p.Y}
	}
	return coords
}

// splitParts cuts the point sequence at each part index.
func splitParts(shape *PolyShape) [][][]float64 {
	parts := make([][][]float64, len(shape.Parts))
	for i := range shape.Parts {
		start, end := shape.PartRange(i)
		parts[i] = positions(shape.Points[start:end])
	}
	return parts
}
