package parser

import (
	"encoding/binary"
	"errors"
	"testing"
)

func encodeTestFile(t *testing.T, st ShapeType, records ...*Record) []byte {
	t.Helper()
	buf, err := EncodeFile(testHeader(st), records)
	if err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	return buf
}

func decodeTestFile(buf []byte, opts DecodeOptions) ([]*Record, error) {
	s := NewStream(buf)
	if _, err := DecodeHeader(s); err != nil {
		return nil, err
	}
	return DecodeRecords(s, opts)
}

// rawRecord frames content with a record header whose length is taken from content
func rawRecord(id int32, content []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(id))
	out = binary.BigEndian.AppendUint32(out, uint32(len(content)/2))
	return append(out, content...)
}

func rawFile(t *testing.T, st ShapeType, records ...[]byte) []byte {
	t.Helper()
	h := testHeader(st)
	buf, _ := h.MarshalBinary()
	for _, r := range records {
		buf = append(buf, r...)
	}
	return buf
}

func sevenPoints() []Point {
	pts := []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 0},
		{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 2, Y: 2},
	}
	for i := range pts {
		pts[i].M = NoData
	}
	return pts
}

func TestDecodePointRecord(t *testing.T) {
	buf := encodeTestFile(t, ShapePoint, &Record{
		ID:    1,
		Type:  ShapePoint,
		Shape: &PointShape{Point: Point{X: 10, Y: 20}},
	})

	records, err := decodeTestFile(buf, DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != 1 || rec.Type != ShapePoint {
		t.Errorf("Unexpected record header: id=%d type=%v", rec.ID, rec.Type)
	}
	if rec.StartOffset != HeaderSize+8 {
		t.Errorf("StartOffset = %d, want %d", rec.StartOffset, HeaderSize+8)
	}
	if rec.Length != 20 {
		t.Errorf("Length = %d, want 20", rec.Length)
	}
	p, ok := rec.Shape.(*PointShape)
	if !ok {
		t.Fatalf("Expected *PointShape, got %T", rec.Shape)
	}
	if p.X != 10 || p.Y != 20 {
		t.Errorf("Point = (%v, %v), want (10, 20)", p.X, p.Y)
	}
	if p.HasMeasure() {
		t.Error("2-D point should carry the no-data measure")
	}
	if _, ok := rec.Bounds(); ok {
		t.Error("Point record should have no bounding box")
	}
}

func TestDecodePointVariants(t *testing.T) {
	tests := []struct {
		name   string
		st     ShapeType
		in     Point
		wantZ  float64
		wantM  bool
		length int
	}{
		{"PointZ", ShapePointZ, Point{X: 1, Y: 2, Z: 3, M: 4}, 3, true, 36},
		{"PointM", ShapePointM, Point{X: 1, Y: 2, M: 4}, 0, true, 28},
		{"PointM no data", ShapePointM, Point{X: 1, Y: 2, M: NoData}, 0, false, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodeTestFile(t, tt.st, &Record{ID: 1, Type: tt.st, Shape: &PointShape{Point: tt.in}})
			records, err := decodeTestFile(buf, DecodeOptions{})
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			rec := records[0]
			p := rec.Shape.(*PointShape)
			if p.Z != tt.wantZ {
				t.Errorf("Z = %v, want %v", p.Z, tt.wantZ)
			}
			if p.HasMeasure() != tt.wantM {
				t.Errorf("HasMeasure() = %v, want %v", p.HasMeasure(), tt.wantM)
			}
			if rec.Length != tt.length {
				t.Errorf("Length = %d, want %d", rec.Length, tt.length)
			}
		})
	}
}

func TestDecodePolygonParts(t *testing.T) {
	box := Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	buf := encodeTestFile(t, ShapePolygon, &Record{
		ID:    1,
		Type:  ShapePolygon,
		Shape: &PolyShape{Box: box, Parts: []int32{0, 4}, Points: sevenPoints()},
	})

	records, err := decodeTestFile(buf, DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	poly, ok := records[0].Shape.(*PolyShape)
	if !ok {
		t.Fatalf("Expected *PolyShape, got %T", records[0].Shape)
	}
	if got, _ := records[0].Bounds(); got != box {
		t.Errorf("Bounds = %+v, want %+v", got, box)
	}
	if len(poly.Parts) != 2 || len(poly.Points) != 7 {
		t.Fatalf("Got %d parts and %d points, want 2 and 7", len(poly.Parts), len(poly.Points))
	}

	ranges := [][2]int{{0, 4}, {4, 7}}
	for i, want := range ranges {
		start, end := poly.PartRange(i)
		if start != want[0] || end != want[1] {
			t.Errorf("Part %d spans [%d,%d), want [%d,%d)", i, start, end, want[0], want[1])
		}
	}
	if poly.ZRange != nil || poly.MRange != nil {
		t.Error("2-D polygon should have no Z or M range")
	}
}

// TestOptionalMeasureBoundary checks that M data is read only when the
// declared length extends past the mandatory fields
func TestOptionalMeasureBoundary(t *testing.T) {
	zr := &Range{Min: 1, Max: 7}
	mr := &Range{Min: 0, Max: 60}

	withZ := func(pts []Point, withM bool) []Point {
		for i := range pts {
			pts[i].Z = float64(i + 1)
			if withM {
				pts[i].M = float64(i * 10)
			}
		}
		return pts
	}

	tests := []struct {
		name  string
		st    ShapeType
		shape Shape
		wantM bool
		wantZ bool
	}{
		{"PolygonZ without M", ShapePolygonZ, &PolyShape{Parts: []int32{0, 4}, Points: withZ(sevenPoints(), false), ZRange: zr}, false, true},
		{"PolygonZ with M", ShapePolygonZ, &PolyShape{Parts: []int32{0, 4}, Points: withZ(sevenPoints(), true), ZRange: zr, MRange: mr}, true, true},
		{"PolygonM without M", ShapePolygonM, &PolyShape{Parts: []int32{0}, Points: sevenPoints()}, false, false},
		{"PolyLineM with M", ShapePolyLineM, &PolyShape{Parts: []int32{0}, Points: withZ(sevenPoints(), true), MRange: mr}, true, false},
		{"MultiPointZ without M", ShapeMultiPointZ, &MultiPointShape{Points: withZ(sevenPoints(), false), ZRange: zr}, false, true},
		{"MultiPointM with M", ShapeMultiPointM, &MultiPointShape{Points: withZ(sevenPoints(), true), MRange: mr}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodeTestFile(t, tt.st, &Record{ID: 1, Type: tt.st, Shape: tt.shape})
			s := NewStream(buf)
			if _, err := DecodeHeader(s); err != nil {
				t.Fatalf("DecodeHeader: %v", err)
			}
			rec, err := DecodeRecord(s, DecodeOptions{})
			if err != nil {
				t.Fatalf("DecodeRecord: %v", err)
			}
			if s.Offset() != rec.End() {
				t.Errorf("Cursor at %d, want record end %d", s.Offset(), rec.End())
			}

			var zRange, mRange *Range
			switch shape := rec.Shape.(type) {
			case *PolyShape:
				zRange, mRange = shape.ZRange, shape.MRange
			case *MultiPointShape:
				zRange, mRange = shape.ZRange, shape.MRange
			}
			if (mRange != nil) != tt.wantM {
				t.Errorf("M range present = %v, want %v", mRange != nil, tt.wantM)
			}
			if (zRange != nil) != tt.wantZ {
				t.Errorf("Z range present = %v, want %v", zRange != nil, tt.wantZ)
			}

			for i, p := range rec.Shape.Vertices() {
				if p.HasMeasure() != tt.wantM {
					t.Fatalf("Point %d HasMeasure() = %v, want %v", i, p.HasMeasure(), tt.wantM)
				}
				if tt.wantM && p.M != float64(i*10) {
					t.Errorf("Point %d M = %v, want %v", i, p.M, float64(i*10))
				}
				if tt.wantZ && p.Z != float64(i+1) {
					t.Errorf("Point %d Z = %v, want %v", i, p.Z, float64(i+1))
				}
			}
		})
	}
}

func TestDecodeTruncatedRecord(t *testing.T) {
	buf := encodeTestFile(t, ShapePolygon,
		&Record{ID: 1, Type: ShapePolygon, Shape: &PolyShape{Parts: []int32{0}, Points: sevenPoints()}},
		&Record{ID: 2, Type: ShapePolygon, Shape: &PolyShape{Parts: []int32{0}, Points: sevenPoints()}},
	)

	// Cut into the point array of the second record
	truncated := buf[:len(buf)-20]
	records, err := decodeTestFile(truncated, DecodeOptions{})
	if err == nil {
		t.Fatal("Expected error for truncated record")
	}
	var oob *ErrOutOfBounds
	if !errors.As(err, &oob) {
		t.Errorf("Expected *ErrOutOfBounds, got %v", err)
	}
	if records != nil {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	buf := encodeTestFile(t, ShapePoint, &Record{ID: 1, Type: ShapePoint, Shape: &PointShape{Point: Point{X: 1, Y: 1}}})
	buf = append(buf, 0, 0)

	records, err := decodeTestFile(buf, DecodeOptions{})
	if err != nil {
		t.Fatalf("Trailing bytes shorter than a record id should end the stream: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestDecodeUnsupportedShapeTypes(t *testing.T) {
	tests := []struct {
		name string
		code int32
		caps Capabilities
	}{
		{"null shape", 0, CapAll},
		{"multipatch", 31, CapAll},
		{"unknown code", 99, CapAll},
		{"z excluded", int32(ShapePointZ), CapBase | CapM},
		{"m excluded", int32(ShapePolygonM), CapBase},
		{"base excluded", int32(ShapePoint), CapZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := binary.LittleEndian.AppendUint32(nil, uint32(tt.code))
			content = append(content, make([]byte, 32)...)
			buf := rawFile(t, ShapePoint, rawRecord(7, content))

			records, err := decodeTestFile(buf, DecodeOptions{Capabilities: tt.caps})
			var unsupported *ErrUnsupportedShapeType
			if !errors.As(err, &unsupported) {
				t.Fatalf("Expected *ErrUnsupportedShapeType, got %v", err)
			}
			if unsupported.RecordID != 7 || int32(unsupported.Type) != tt.code {
				t.Errorf("Unexpected error context: %+v", unsupported)
			}
			if records != nil {
				t.Error("No records should be returned after an unsupported shape")
			}
		})
	}
}

func TestDecodeMalformedRecords(t *testing.T) {
	badParts := func(parts []int32) []byte {
		content, err := EncodeContent(&Record{ID: 1, Type: ShapePolyLine, Shape: &PolyShape{Parts: parts, Points: sevenPoints()}})
		if err != nil {
			t.Fatalf("EncodeContent: %v", err)
		}
		return rawRecord(1, content)
	}

	negativeCount := binary.LittleEndian.AppendUint32(nil, uint32(ShapeMultiPoint))
	negativeCount = append(negativeCount, make([]byte, 32)...)
	negativeCount = binary.LittleEndian.AppendUint32(negativeCount, 0xFFFFFFFF)

	pointContent, _ := EncodeContent(&Record{Type: ShapePoint, Shape: &PointShape{}})
	overrun := binary.BigEndian.AppendUint32(nil, 1)
	overrun = binary.BigEndian.AppendUint32(overrun, 8) // 16 bytes declared, 20 written
	overrun = append(overrun, pointContent...)

	tests := []struct {
		name   string
		record []byte
	}{
		{"parts not increasing", badParts([]int32{0, 4, 4})},
		{"parts decreasing", badParts([]int32{0, 5, 2})},
		{"last part past points", badParts([]int32{0, 7})},
		{"negative part", badParts([]int32{-1})},
		{"negative point count", rawRecord(1, negativeCount)},
		{"content overruns length", overrun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTestFile(rawFile(t, ShapePolyLine, tt.record), DecodeOptions{})
			var malformed *ErrMalformedRecord
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected *ErrMalformedRecord, got %v", err)
			}
			if malformed.RecordID != 1 {
				t.Errorf("RecordID = %d, want 1", malformed.RecordID)
			}
		})
	}
}

func TestDecodeSkipsRecordPadding(t *testing.T) {
	content, _ := EncodeContent(&Record{Type: ShapePolyLine, Shape: &PolyShape{Parts: []int32{0}, Points: sevenPoints()}})
	content = append(content, make([]byte, 8)...)

	second, _ := EncodeContent(&Record{Type: ShapePoint, Shape: &PointShape{Point: Point{X: 5, Y: 6}}})
	buf := rawFile(t, ShapePolyLine, rawRecord(1, content), rawRecord(2, second))

	records, err := decodeTestFile(buf, DecodeOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	p := records[1].Shape.(*PointShape)
	if records[1].ID != 2 || p.X != 5 || p.Y != 6 {
		t.Errorf("Second record misread: id=%d point=%+v", records[1].ID, p.Point)
	}
}

func TestShapeTypeTable(t *testing.T) {
	tests := []struct {
		st        ShapeType
		name      string
		family    Family
		z, m      bool
		supported bool
	}{
		{ShapeNull, "Null Shape", FamilyNull, false, false, false},
		{ShapePoint, "Point", FamilyPoint, false, false, true},
		{ShapePolyLine, "PolyLine", FamilyPolyLine, false, false, true},
		{ShapePolygon, "Polygon", FamilyPolygon, false, false, true},
		{ShapeMultiPoint, "MultiPoint", FamilyMultiPoint, false, false, true},
		{ShapePointZ, "PointZ", FamilyPoint, true, true, true},
		{ShapePolyLineZ, "PolyLineZ", FamilyPolyLine, true, true, true},
		{ShapePolygonZ, "PolygonZ", FamilyPolygon, true, true, true},
		{ShapeMultiPointZ, "MultiPointZ", FamilyMultiPoint, true, true, true},
		{ShapePointM, "PointM", FamilyPoint, false, true, true},
		{ShapePolyLineM, "PolyLineM", FamilyPolyLine, false, true, true},
		{ShapePolygonM, "PolygonM", FamilyPolygon, false, true, true},
		{ShapeMultiPointM, "MultiPointM", FamilyMultiPoint, false, true, true},
		{ShapeMultiPatch, "MultiPatch", FamilyMultiPatch, true, true, false},
		{ShapeType(2), "Unknown", FamilyNull, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.st.String() != tt.name {
				t.Errorf("String() = %s, want %s", tt.st.String(), tt.name)
			}
			if tt.st.Family() != tt.family {
				t.Errorf("Family() = %v, want %v", tt.st.Family(), tt.family)
			}
			if tt.st.HasZ() != tt.z || tt.st.HasM() != tt.m {
				t.Errorf("HasZ/HasM = %v/%v, want %v/%v", tt.st.HasZ(), tt.st.HasM(), tt.z, tt.m)
			}
			if tt.st.Supported(CapAll) != tt.supported {
				t.Errorf("Supported(CapAll) = %v, want %v", tt.st.Supported(CapAll), tt.supported)
			}
		})
	}
}
