package parser

import (
	"fmt"
	"math"
	"time"
)

// EncodeFile writes a complete main file. The header FileLength is
// recomputed from the encoded records; record lengths are taken from the
// encoded content, not from Record.Length.
func EncodeFile(h Header, records []*Record) ([]byte, error) {
	body := make([]byte, 0)
	var err error
	for _, rec := range records {
		if body, err = AppendRecord(body, rec); err != nil {
			return nil, err
		}
	}

	h.FileCode = FileCode
	h.FileLength = HeaderSize + len(body)
	hdr, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(hdr, body...), nil
}

// AppendRecord appends the record header and content of rec to dst.
func AppendRecord(dst []byte, rec *Record) ([]byte, error) {
	content, err := EncodeContent(rec)
	if err != nil {
		return nil, err
	}
	dst = be.AppendUint32(dst, uint32(rec.ID))
	dst = be.AppendUint32(dst, uint32(len(content)/2))
	return append(dst, content...), nil
}

// EncodeContent encodes the shape type tag and payload of rec.
func EncodeContent(rec *Record) ([]byte, error) {
	st := rec.Type
	out := le.AppendUint32(nil, uint32(st))

	switch shape := rec.Shape.(type) {
	case *PointShape:
		if st.Family() != FamilyPoint {
			return nil, fmt.Errorf("record %d: point shape with type %v", rec.ID, st)
		}
		out = appendFloats(out, shape.X, shape.Y)
		if st.HasZ() {
			out = appendFloats(out, shape.Z)
		}
		if st.HasM() {
			out = appendFloats(out, shape.M)
		}
	case *MultiPointShape:
		if st.Family() != FamilyMultiPoint {
			return nil, fmt.Errorf("record %d: multipoint shape with type %v", rec.ID, st)
		}
		out = appendBox(out, shape.Box)
		out = le.AppendUint32(out, uint32(len(shape.Points)))
		out = appendXY(out, shape.Points)
		out = appendZM(out, st, shape.Points, shape.ZRange, shape.MRange)
	case *PolyShape:
		if f := st.Family(); f != FamilyPolyLine && f != FamilyPolygon {
			return nil, fmt.Errorf("record %d: poly shape with type %v", rec.ID, st)
		}
		out = appendBox(out, shape.Box)
		out = le.AppendUint32(out, uint32(len(shape.Parts)))
		out = le.AppendUint32(out, uint32(len(shape.Points)))
		for _, p := range shape.Parts {
			out = le.AppendUint32(out, uint32(p))
		}
		out = appendXY(out, shape.Points)
		out = appendZM(out, st, shape.Points, shape.ZRange, shape.MRange)
	default:
		return nil, fmt.Errorf("record %d: cannot encode shape %T", rec.ID, rec.Shape)
	}
	return out, nil
}

// appendZM writes the Z block for Z variants and the M block only when
// mr is set, mirroring the optional M block on read.
func appendZM(out []byte, st ShapeType, points []Point, zr, mr *Range) []byte {
	if st.HasZ() {
		r := Range{}
		if zr != nil {
			r = *zr
		}
		out = appendFloats(out, r.Min, r.Max)
		for _, p := range points {
			out = appendFloats(out, p.Z)
		}
	}
	if st.HasM() && mr != nil {
		out = appendFloats(out, mr.Min, mr.Max)
		for _, p := range points {
			out = appendFloats(out, p.M)
		}
	}
	return out
}

func appendBox(out []byte, b Box) []byte {
	return appendFloats(out, b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func appendXY(out []byte, points []Point) []byte {
	for _, p := range points {
		out = appendFloats(out, p.X, p.Y)
	}
	return out
}

func appendFloats(out []byte, values ...float64) []byte {
	for _, v := range values {
		out = le.AppendUint64(out, math.Float64bits(v))
	}
	return out
}

// EncodeTable writes a dBase III table. Text values are left aligned,
// numbers right aligned, nil values left blank. Text is written as-is;
// callers encode non-ASCII text themselves. Binary field types are not
// written.
func EncodeTable(h TableHeader, fields []Field, rows []Row) ([]byte, error) {
	recordLen := 1
	for _, f := range fields {
		switch f.Type {
		case FieldInteger, FieldDouble, FieldAutoincrement:
			return nil, fmt.Errorf("field %s: binary type %c not supported", f.Name, f.Type)
		}
		if f.Length <= 0 || f.Length > 255 {
			return nil, fmt.Errorf("field %s: invalid length %d", f.Name, f.Length)
		}
		if len(f.Name) > dbfFieldNameBytes-1 {
			return nil, fmt.Errorf("field %s: name longer than 10 bytes", f.Name)
		}
		recordLen += f.Length
	}
	headerLen := dbfHeaderSize + dbfFieldSize*len(fields) + 1

	out := make([]byte, 0, headerLen+recordLen*len(rows)+1)
	version := h.Version
	if version == 0 {
		version = 0x03
	}
	out = append(out, version)
	if h.LastUpdate.IsZero() {
		out = append(out, 0, 1, 1)
	} else {
		out = append(out, byte(h.LastUpdate.Year()-1900), byte(h.LastUpdate.Month()), byte(h.LastUpdate.Day()))
	}
	out = le.AppendUint32(out, uint32(len(rows)))
	out = le.AppendUint16(out, uint16(headerLen))
	out = le.AppendUint16(out, uint16(recordLen))
	out = append(out, make([]byte, 16)...)
	out = append(out, h.Flags, h.CodePageMark, 0, 0)

	for _, f := range fields {
		desc := make([]byte, dbfFieldSize)
		copy(desc, f.Name)
		desc[11] = byte(f.Type)
		desc[16] = byte(f.Length)
		desc[17] = byte(f.Decimals)
		desc[18] = f.Flags
		le.PutUint32(desc[19:23], f.AutoincrementNext)
		desc[23] = f.AutoincrementStep
		out = append(out, desc...)
	}
	out = append(out, dbfFieldTerm)

	for _, row := range rows {
		if row.Deleted {
			out = append(out, dbfDeletedFlag)
		} else {
			out = append(out, ' ')
		}
		for _, f := range fields {
			cell, err := formatCell(f, row.Values[f.Name])
			if err != nil {
				return nil, err
			}
			out = append(out, cell...)
		}
	}
	return append(out, 0x1A), nil
}

func formatCell(f Field, v interface{}) ([]byte, error) {
	var text string
	right := false
	switch val := v.(type) {
	case nil:
	case string:
		text = val
	case bool:
		text = "F"
		if val {
			text = "T"
		}
	case int, int32, int64:
		text, right = fmt.Sprint(val), true
	case float64:
		text, right = fmt.Sprintf("%.*f", f.Decimals, val), true
	case time.Time:
		text = val.Format("20060102")
	default:
		return nil, fmt.Errorf("field %s: cannot encode %T", f.Name, v)
	}
	if len(text) > f.Length {
		return nil, fmt.Errorf("field %s: value %q longer than %d bytes", f.Name, text, f.Length)
	}
	pad := make([]byte, f.Length-len(text))
	for i := range pad {
		pad[i] = ' '
	}
	if right {
		return append(pad, text...), nil
	}
	return append([]byte(text), pad...), nil
}
