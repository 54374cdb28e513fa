package parser

import (
	"errors"
	"fmt"
	"io"
)

const (
	// NoData is written for an unset measure.
	NoData = -1e39

	// noDataThreshold: any measure below this reads as no data.
	noDataThreshold = -1e38

	// recordHeaderSize is the id + length prefix of every record.
	recordHeaderSize = 8
)

// Point is a single vertex. Z is zero and M is NoData unless the record's
// shape type carries them.
type Point struct {
	X, Y float64
	Z    float64
	M    float64
}

// HasMeasure reports whether M holds a value rather than the no-data sentinel.
func (p Point) HasMeasure() bool {
	return p.M >= noDataThreshold
}

// Shape is the decoded payload of a record. The concrete type is one of
// *PointShape, *MultiPointShape or *PolyShape.
type Shape interface {
	// Vertices returns the points of the shape in file order.
	Vertices() []Point
	isShape()
}

// PointShape is the payload of Point, PointZ and PointM records.
type PointShape struct {
	Point
}

// MultiPointShape is the payload of MultiPoint, MultiPointZ and MultiPointM records.
type MultiPointShape struct {
	Box    Box
	Points []Point
	ZRange *Range // nil unless the Z block was read
	MRange *Range // nil unless the optional M block was present
}

// PolyShape is the payload of the PolyLine and Polygon families.
// Parts holds the index of the first point of each ring or line.
type PolyShape struct {
	Box    Box
	Parts  []int32
	Points []Point
	ZRange *Range
	MRange *Range
}

func (p *PointShape) Vertices() []Point      { return []Point{p.Point} }
func (m *MultiPointShape) Vertices() []Point { return m.Points }
func (p *PolyShape) Vertices() []Point       { return p.Points }

func (*PointShape) isShape()      {}
func (*MultiPointShape) isShape() {}
func (*PolyShape) isShape()       {}

// PartRange returns the half-open point index range [start, end) of part i.
// The last part extends to the end of the point sequence.
func (p *PolyShape) PartRange(i int) (start, end int) {
	start = int(p.Parts[i])
	if i == len(p.Parts)-1 {
		end = len(p.Points)
	} else {
		end = int(p.Parts[i+1])
	}
	return
}

// Record is one variable-length record of the main file.
type Record struct {
	ID          int32     // 1-based record number
	Length      int       // Content length in bytes (excludes the 8-byte record header)
	StartOffset int       // Offset of the shape type tag
	Type        ShapeType // Shape type tag of this record
	Shape       Shape
}

// End returns the offset just past the record content.
func (r *Record) End() int {
	return r.StartOffset + r.Length
}

// Bounds returns the record bounding box. Point records have none.
func (r *Record) Bounds() (Box, bool) {
	switch s := r.Shape.(type) {
	case *MultiPointShape:
		return s.Box, true
	case *PolyShape:
		return s.Box, true
	default:
		return Box{}, false
	}
}

// DecodeOptions configures record decoding.
type DecodeOptions struct {
	// Capabilities selects the accepted shape variants. Zero means CapAll.
	Capabilities Capabilities
}

func (o DecodeOptions) caps() Capabilities {
	if o.Capabilities == 0 {
		return CapAll
	}
	return o.Capabilities
}

// DecodeRecords reads records until the stream is exhausted.
//
// Running out of bytes while reading a record id is the normal end of the
// record stream. Every other failure, including a truncated record,
// aborts the decode and no records are returned.
func DecodeRecords(s *Stream, opts DecodeOptions) ([]*Record, error) {
	records := make([]*Record, 0)
	for {
		rec, err := DecodeRecord(s, opts)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeRecord reads the next record. Returns io.EOF when no record id
// can be read.
func DecodeRecord(s *Stream, opts DecodeOptions) (*Record, error) {
	id, err := s.ReadInt32(be)
	if err != nil {
		var oob *ErrOutOfBounds
		if errors.As(err, &oob) {
			return nil, io.EOF
		}
		return nil, err
	}

	d := &recordDecoder{
		s:    s,
		caps: opts.caps(),
		rec:  &Record{ID: id},
	}
	if err := d.decode(); err != nil {
		var oob *ErrOutOfBounds
		if errors.As(err, &oob) {
			return nil, fmt.Errorf("record %d at offset %d: %w", id, d.rec.StartOffset, err)
		}
		return nil, err
	}
	return d.rec, nil
}

// recordDecoder holds exclusive access to the cursor for one record.
type recordDecoder struct {
	s    *Stream
	caps Capabilities
	rec  *Record

	points []Point // Set once the Points block has been read
}

func (d *recordDecoder) malformed(format string, args ...interface{}) error {
	return &ErrMalformedRecord{
		RecordID: d.rec.ID,
		Offset:   d.rec.StartOffset,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (d *recordDecoder) decode() error {
	words, err := d.s.ReadInt32(be)
	if err != nil {
		return err
	}
	if words < 0 {
		return d.malformed("negative content length %d", words)
	}
	d.rec.Length = int(words) * 2
	d.rec.StartOffset = d.s.Offset()

	code, err := d.s.ReadInt32(le)
	if err != nil {
		return err
	}
	st := ShapeType(code)
	if !st.Supported(d.caps) {
		return &ErrUnsupportedShapeType{Type: st, RecordID: d.rec.ID, Offset: d.rec.StartOffset}
	}
	d.rec.Type = st

	switch st.Family() {
	case FamilyPoint:
		d.rec.Shape, err = d.readPoint(st)
	case FamilyMultiPoint:
		d.rec.Shape, err = d.readMultiPoint(st)
	case FamilyPolyLine, FamilyPolygon:
		d.rec.Shape, err = d.readPoly(st)
	default:
		err = &ErrUnsupportedShapeType{Type: st, RecordID: d.rec.ID, Offset: d.rec.StartOffset}
	}
	if err != nil {
		return err
	}

	// Content shorter than declared is padding.
	end := d.rec.End()
	switch pos := d.s.Offset(); {
	case pos > end:
		return d.malformed("content overruns declared length by %d bytes", pos-end)
	case pos < end:
		return d.s.Skip(end - pos)
	}
	return nil
}

// optionalDataRemains reports whether the declared record length extends
// past the cursor. Optional M blocks are present only in that case; a
// cursor exactly at the boundary means nothing optional follows.
func (d *recordDecoder) optionalDataRemains() bool {
	return d.rec.StartOffset+d.rec.Length > d.s.Offset()
}

func (d *recordDecoder) readPoint(st ShapeType) (*PointShape, error) {
	p, err := d.readXY()
	if err != nil {
		return nil, err
	}
	if st.HasZ() {
		if p.Z, err = d.s.ReadDouble(le); err != nil {
			return nil, err
		}
	}
	if st.HasM() {
		if p.M, err = d.s.ReadDouble(le); err != nil {
			return nil, err
		}
	}
	return &PointShape{Point: p}, nil
}

func (d *recordDecoder) readMultiPoint(st ShapeType) (*MultiPointShape, error) {
	box, err := readBox(d.s)
	if err != nil {
		return nil, err
	}
	n, err := d.readCount("point")
	if err != nil {
		return nil, err
	}
	points, err := d.readPoints(n)
	if err != nil {
		return nil, err
	}
	shape := &MultiPointShape{Box: box, Points: points}
	shape.ZRange, shape.MRange, err = d.readZM(st)
	if err != nil {
		return nil, err
	}
	return shape, nil
}

func (d *recordDecoder) readPoly(st ShapeType) (*PolyShape, error) {
	box, err := readBox(d.s)
	if err != nil {
		return nil, err
	}
	numParts, err := d.readCount("part")
	if err != nil {
		return nil, err
	}
	numPoints, err := d.readCount("point")
	if err != nil {
		return nil, err
	}
	if err := d.ensureAvailable(numParts*4 + numPoints*16); err != nil {
		return nil, err
	}

	parts := make([]int32, numParts)
	for i := range parts {
		if parts[i], err = d.s.ReadInt32(le); err != nil {
			return nil, err
		}
	}
	if err := d.checkParts(parts, numPoints); err != nil {
		return nil, err
	}

	points, err := d.readPoints(numPoints)
	if err != nil {
		return nil, err
	}
	shape := &PolyShape{Box: box, Parts: parts, Points: points}
	shape.ZRange, shape.MRange, err = d.readZM(st)
	if err != nil {
		return nil, err
	}
	return shape, nil
}

// readZM reads the Z block (unconditional for Z variants) followed by the
// optional M block.
func (d *recordDecoder) readZM(st ShapeType) (zr, mr *Range, err error) {
	if st.HasZ() {
		if zr, err = d.readZ(); err != nil {
			return nil, nil, err
		}
	}
	if st.HasM() && d.optionalDataRemains() {
		if mr, err = d.readM(); err != nil {
			return nil, nil, err
		}
	}
	return zr, mr, nil
}

func (d *recordDecoder) readZ() (*Range, error) {
	if d.points == nil {
		return nil, d.malformed("Z array requested before points")
	}
	r, err := readRange(d.s)
	if err != nil {
		return nil, err
	}
	for i := range d.points {
		if d.points[i].Z, err = d.s.ReadDouble(le); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func (d *recordDecoder) readM() (*Range, error) {
	if d.points == nil {
		return nil, d.malformed("measure array requested before points")
	}
	r, err := readRange(d.s)
	if err != nil {
		return nil, err
	}
	for i := range d.points {
		if d.points[i].M, err = d.s.ReadDouble(le); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func (d *recordDecoder) readXY() (Point, error) {
	x, err := d.s.ReadDouble(le)
	if err != nil {
		return Point{}, err
	}
	y, err := d.s.ReadDouble(le)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y, M: NoData}, nil
}

func (d *recordDecoder) readCount(what string) (int, error) {
	n, err := d.s.ReadInt32(le)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, d.malformed("negative %s count %d", what, n)
	}
	return int(n), nil
}

func (d *recordDecoder) readPoints(n int) ([]Point, error) {
	if err := d.ensureAvailable(n * 16); err != nil {
		return nil, err
	}
	points := make([]Point, n)
	for i := range points {
		p, err := d.readXY()
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	d.points = points
	return points, nil
}

// ensureAvailable fails before allocating when the counts in a record
// ask for more bytes than the buffer holds.
func (d *recordDecoder) ensureAvailable(n int) error {
	if n > d.s.Remaining() {
		return &ErrOutOfBounds{Offset: d.s.Offset(), Want: n, Len: d.s.Len()}
	}
	return nil
}

// checkParts enforces 0 <= parts[0] < parts[1] < ... < numPoints.
func (d *recordDecoder) checkParts(parts []int32, numPoints int) error {
	for i, p := range parts {
		if p < 0 {
			return d.malformed("part %d starts at negative index %d", i, p)
		}
		if i > 0 && p <= parts[i-1] {
			return d.malformed("part %d index %d not greater than part %d index %d", i, p, i-1, parts[i-1])
		}
	}
	if n := len(parts); n > 0 && int(parts[n-1]) >= numPoints {
		return d.malformed("last part index %d out of range for %d points", parts[n-1], numPoints)
	}
	return nil
}
