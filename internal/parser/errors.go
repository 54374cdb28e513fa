package parser

import (
	"fmt"
)

// ErrOutOfBounds indicates a read past the end of the buffer.
//
// While reading the next record id this is the normal end-of-stream
// signal. Anywhere else it means the file is truncated.
type ErrOutOfBounds struct {
	Offset int // Cursor position when the read was attempted
	Want   int // Bytes requested
	Len    int // Buffer length
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds buffer length %d",
		e.Want, e.Offset, e.Len)
}

// ErrInvalidMagic indicates the file code is not 0x0000270A
type ErrInvalidMagic struct {
	Code int32
}

func (e *ErrInvalidMagic) Error() string {
	return fmt.Sprintf("invalid file code 0x%08X (expected 0x%08X)", uint32(e.Code), FileCode)
}

// ErrMalformedHeader indicates the 100-byte main file header could not be decoded
type ErrMalformedHeader struct {
	Err error
}

func (e *ErrMalformedHeader) Error() string {
	return fmt.Sprintf("malformed shapefile header: %v", e.Err)
}

func (e *ErrMalformedHeader) Unwrap() error {
	return e.Err
}

// ErrUnknownShapeType indicates a shape type code outside the shapefile enumeration
type ErrUnknownShapeType struct {
	Code   int32
	Offset int
}

func (e *ErrUnknownShapeType) Error() string {
	return fmt.Sprintf("unknown shape type %d at offset %d", e.Code, e.Offset)
}

// ErrUnsupportedShapeType indicates a known shape type this decoder cannot read
// (Null Shape, MultiPatch, or a type excluded by the decode capabilities)
type ErrUnsupportedShapeType struct {
	Type     ShapeType
	RecordID int32
	Offset   int
}

func (e *ErrUnsupportedShapeType) Error() string {
	return fmt.Sprintf("record %d at offset %d: unsupported shape type %v (%d)",
		e.RecordID, e.Offset, e.Type, int32(e.Type))
}

// ErrMalformedRecord indicates a record violates the shapefile record layout
type ErrMalformedRecord struct {
	RecordID int32
	Offset   int
	Reason   string
}

func (e *ErrMalformedRecord) Error() string {
	return fmt.Sprintf("malformed record %d at offset %d: %s", e.RecordID, e.Offset, e.Reason)
}

// ErrMalformedTable indicates a dBase table that cannot be decoded
type ErrMalformedTable struct {
	Offset int
	Reason string
}

func (e *ErrMalformedTable) Error() string {
	return fmt.Sprintf("malformed dbf table at offset %d: %s", e.Offset, e.Reason)
}

// ErrInvalidCoordinate indicates coordinate out of valid geographic bounds
type ErrInvalidCoordinate struct {
	X, Y float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: x=%f y=%f (x must be ±180, y must be ±90)",
		e.X, e.Y)
}

// ErrInvalidGeometry indicates decoded coordinates fail validation
type ErrInvalidGeometry struct {
	RecordID int32
	Type     ShapeType
	Reason   string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid geometry in record %d (%v): %s", e.RecordID, e.Type, e.Reason)
}
