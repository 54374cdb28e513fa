package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
)

// dBase table layout is documented at
// http://www.clicketyclick.dk/databases/xbase/format/dbf.html

const (
	dbfHeaderSize     = 32
	dbfFieldSize      = 32
	dbfFieldTerm      = 0x0D
	dbfDeletedFlag    = '*'
	dbfFieldNameBytes = 11
)

// FieldType is the single-character dBase field type.
type FieldType byte

const (
	FieldCharacter     FieldType = 'C'
	FieldNumber        FieldType = 'N'
	FieldLogical       FieldType = 'L'
	FieldDate          FieldType = 'D'
	FieldMemo          FieldType = 'M'
	FieldFloat         FieldType = 'F'
	FieldBinary        FieldType = 'B'
	FieldGeneral       FieldType = 'G'
	FieldPicture       FieldType = 'P'
	FieldCurrency      FieldType = 'Y'
	FieldDateTime      FieldType = 'T'
	FieldInteger       FieldType = 'I'
	FieldVariField     FieldType = 'V'
	FieldVariant       FieldType = 'X'
	FieldTimestamp     FieldType = '@'
	FieldDouble        FieldType = 'O'
	FieldAutoincrement FieldType = '+'
)

// TableHeader is the fixed 32-byte dBase header.
type TableHeader struct {
	Version      uint8
	LastUpdate   time.Time
	NumRecords   int
	HeaderLength int // Offset of the first record
	RecordLength int // Includes the deletion flag byte
	Flags        uint8
	CodePageMark uint8
}

// Field describes one column of the table.
type Field struct {
	Name         string
	Type         FieldType
	Displacement int32
	Length       int
	Decimals     int
	Flags        uint8

	// Next value and step of an autoincrement field.
	AutoincrementNext uint32
	AutoincrementStep uint8
}

// Row is one data record. Deleted rows are kept so that rows stay aligned
// with shapes by position.
type Row struct {
	Deleted bool
	Values  map[string]interface{}
}

// Table is a decoded dBase attribute table.
type Table struct {
	Header TableHeader
	Fields []Field
	Rows   []Row
}

// TableOptions configures dBase decoding.
type TableOptions struct {
	// Encoding decodes text fields. When nil the code page mark selects one;
	// unknown marks leave the bytes as they are.
	Encoding encoding.Encoding
}

// DecodeTable reads a complete dBase table from buf.
func DecodeTable(buf []byte, opts TableOptions) (*Table, error) {
	s := NewStream(buf)
	t := &Table{}

	if err := t.readHeader(s); err != nil {
		return nil, err
	}
	if err := t.readFields(s); err != nil {
		return nil, err
	}

	enc := opts.Encoding
	if enc == nil {
		enc, _ = CodePageEncoding(t.Header.CodePageMark)
	}
	var dec *encoding.Decoder
	if enc != nil {
		dec = enc.NewDecoder()
	}

	if t.Header.HeaderLength < s.Offset() {
		return nil, &ErrMalformedTable{Offset: 8, Reason: "header length ends inside field descriptors"}
	}
	if err := s.Skip(t.Header.HeaderLength - s.Offset()); err != nil {
		return nil, &ErrMalformedTable{Offset: s.Offset(), Reason: "header length points past end of buffer"}
	}
	if err := t.readRows(s, dec); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) readHeader(s *Stream) error {
	if s.Remaining() < dbfHeaderSize {
		return &ErrMalformedTable{Offset: 0, Reason: "buffer shorter than 32-byte header"}
	}
	h := &t.Header

	// Errors below cannot occur after the length check above.
	h.Version, _ = s.ReadUint8()
	yy, _ := s.ReadUint8()
	mm, _ := s.ReadUint8()
	dd, _ := s.ReadUint8()
	h.LastUpdate = time.Date(1900+int(yy), time.Month(mm), int(dd), 0, 0, 0, 0, time.UTC)

	n, _ := s.ReadInt32(le)
	headerLen, _ := s.ReadUint16(le)
	recordLen, _ := s.ReadUint16(le)
	h.NumRecords = int(n)
	h.HeaderLength = int(headerLen)
	h.RecordLength = int(recordLen)

	// Reserved (2), incomplete transaction, encryption, multi-user (12)
	_ = s.Skip(16)
	h.Flags, _ = s.ReadUint8()
	h.CodePageMark, _ = s.ReadUint8()
	_ = s.Skip(2)

	if h.NumRecords < 0 {
		return &ErrMalformedTable{Offset: 4, Reason: "negative record count"}
	}
	if h.HeaderLength < dbfHeaderSize {
		return &ErrMalformedTable{Offset: 8, Reason: "header length shorter than 32 bytes"}
	}
	return nil
}

func (t *Table) readFields(s *Stream) error {
	for {
		marker, err := s.ReadUint8()
		if err != nil {
			return &ErrMalformedTable{Offset: s.Offset(), Reason: "missing field descriptor terminator"}
		}
		if marker == dbfFieldTerm {
			return nil
		}
		if err := s.Skip(-1); err != nil {
			return err
		}

		start := s.Offset()
		raw, err := s.ReadBytes(dbfFieldSize)
		if err != nil {
			return &ErrMalformedTable{Offset: start, Reason: "truncated field descriptor"}
		}
		name := string(raw[:dbfFieldNameBytes])
		if i := strings.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		t.Fields = append(t.Fields, Field{
			Name:         strings.TrimSpace(name),
			Type:         FieldType(raw[11]),
			Displacement: int32(le.Uint32(raw[12:16])),
			Length:       int(raw[16]),
			Decimals:     int(raw[17]),
			Flags:        raw[18],

			AutoincrementNext: le.Uint32(raw[19:23]),
			AutoincrementStep: raw[23],
		})
	}
}

func (t *Table) readRows(s *Stream, dec *encoding.Decoder) error {
	rowSize := 1
	for _, f := range t.Fields {
		rowSize += f.Length
	}
	rowSize = max(rowSize, t.Header.RecordLength)
	if t.Header.NumRecords > s.Remaining()/rowSize {
		return &ErrMalformedTable{
			Offset: 4,
			Reason: fmt.Sprintf("%d records of %d bytes exceed the %d bytes remaining", t.Header.NumRecords, rowSize, s.Remaining()),
		}
	}

	t.Rows = make([]Row, 0, t.Header.NumRecords)
	for i := 0; i < t.Header.NumRecords; i++ {
		start := s.Offset()
		flag, err := s.ReadUint8()
		if err != nil {
			return &ErrMalformedTable{Offset: start, Reason: "truncated record " + strconv.Itoa(i)}
		}
		row := Row{
			Deleted: flag == dbfDeletedFlag,
			Values:  make(map[string]interface{}, len(t.Fields)),
		}
		for _, f := range t.Fields {
			raw, err := s.ReadBytes(f.Length)
			if err != nil {
				return &ErrMalformedTable{Offset: s.Offset(), Reason: "truncated field " + f.Name}
			}
			v, err := f.value(raw, dec)
			if err != nil {
				return &ErrMalformedTable{Offset: s.Offset() - f.Length, Reason: err.Error()}
			}
			row.Values[f.Name] = v
		}
		t.Rows = append(t.Rows, row)

		// Honour the declared record length if the fields do not fill it.
		if rest := start + t.Header.RecordLength - s.Offset(); rest > 0 {
			if err := s.Skip(rest); err != nil {
				return &ErrMalformedTable{Offset: s.Offset(), Reason: "truncated record " + strconv.Itoa(i)}
			}
		}
	}
	return nil
}

// Records returns the value maps of every row in file order.
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Values
	}
	return out
}

// value converts raw field bytes to a Go value.
func (f Field) value(raw []byte, dec *encoding.Decoder) (interface{}, error) {
	switch f.Type {
	case FieldInteger, FieldAutoincrement:
		if len(raw) != 4 {
			return nil, &strconv.NumError{Func: "int32", Num: string(raw), Err: strconv.ErrSyntax}
		}
		return int32(le.Uint32(raw)), nil
	case FieldDouble:
		if len(raw) != 8 {
			return nil, &strconv.NumError{Func: "float64", Num: string(raw), Err: strconv.ErrSyntax}
		}
		return math.Float64frombits(le.Uint64(raw)), nil
	}

	text := strings.TrimSpace(fixedString(raw))
	switch f.Type {
	case FieldNumber, FieldFloat:
		if text == "" {
			return nil, nil
		}
		if f.Decimals == 0 {
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				return n, nil
			}
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case FieldLogical:
		switch text {
		case "T", "t", "Y", "y":
			return true, nil
		case "F", "f", "N", "n":
			return false, nil
		default:
			return nil, nil // '?' or blank
		}
	case FieldDate:
		if text == "" || strings.Trim(text, "0") == "" {
			return nil, nil
		}
		d, err := time.Parse("20060102", text)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		if dec != nil {
			decoded, err := dec.String(text)
			if err == nil {
				return decoded, nil
			}
		}
		return text, nil
	}
}
