package parser

import (
	"encoding/binary"
	"math"
)

const (
	// FileCode is the magic number at offset 0 of every main file.
	FileCode = 0x0000270A

	// HeaderSize is the fixed size of the main file header in bytes.
	HeaderSize = 100

	// FileVersion is the only version the format defines.
	FileVersion = 1000
)

var (
	be = binary.BigEndian
	le = binary.LittleEndian
)

// Box is a minimum bounding rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Range is a min/max pair for Z or M values.
type Range struct {
	Min, Max float64
}

// Header is the 100-byte main file header.
//
// Layout (mixed endianness):
//
//	0   int32 BE  file code (0x0000270A)
//	4   5×int32   unused
//	24  int32 BE  file length in 16-bit words
//	28  int32 LE  version
//	32  int32 LE  shape type
//	36  4×double  bounding box (Xmin, Ymin, Xmax, Ymax)
//	68  2×double  Z range
//	84  2×double  M range
type Header struct {
	FileCode   int32
	FileLength int // Bytes, including the header
	Version    int32
	ShapeType  ShapeType
	Box        Box
	ZRange     Range
	MRange     Range
}

// DecodeHeader reads the main file header from s.
//
// The cursor must be at offset 0. Fails with *ErrMalformedHeader wrapping
// *ErrInvalidMagic, *ErrOutOfBounds or *ErrUnknownShapeType.
func DecodeHeader(s *Stream) (*Header, error) {
	h, err := decodeHeader(s)
	if err != nil {
		return nil, &ErrMalformedHeader{Err: err}
	}
	return h, nil
}

func decodeHeader(s *Stream) (*Header, error) {
	if s.Remaining() < HeaderSize {
		return nil, &ErrOutOfBounds{Offset: s.Offset(), Want: HeaderSize, Len: s.Len()}
	}

	h := &Header{}
	var err error

	if h.FileCode, err = s.ReadInt32(be); err != nil {
		return nil, err
	}
	if h.FileCode != FileCode {
		return nil, &ErrInvalidMagic{Code: h.FileCode}
	}

	// Five unused int32
	if err = s.Skip(20); err != nil {
		return nil, err
	}

	words, err := s.ReadInt32(be)
	if err != nil {
		return nil, err
	}
	h.FileLength = int(words) * 2

	if h.Version, err = s.ReadInt32(le); err != nil {
		return nil, err
	}

	typeOffset := s.Offset()
	code, err := s.ReadInt32(le)
	if err != nil {
		return nil, err
	}
	st, ok := ShapeTypeFromCode(code)
	if !ok {
		return nil, &ErrUnknownShapeType{Code: code, Offset: typeOffset}
	}
	h.ShapeType = st

	if h.Box, err = readBox(s); err != nil {
		return nil, err
	}
	if h.ZRange, err = readRange(s); err != nil {
		return nil, err
	}
	if h.MRange, err = readRange(s); err != nil {
		return nil, err
	}
	return h, nil
}

// MarshalBinary encodes the header back into its 100-byte wire form.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	be.PutUint32(buf[0:4], uint32(h.FileCode))
	be.PutUint32(buf[24:28], uint32(h.FileLength/2))
	le.PutUint32(buf[28:32], uint32(h.Version))
	le.PutUint32(buf[32:36], uint32(h.ShapeType))
	putFloats(buf[36:], h.Box.MinX, h.Box.MinY, h.Box.MaxX, h.Box.MaxY,
		h.ZRange.Min, h.ZRange.Max, h.MRange.Min, h.MRange.Max)
	return buf, nil
}

func putFloats(dst []byte, values ...float64) {
	for i, v := range values {
		le.PutUint64(dst[i*8:], math.Float64bits(v))
	}
}

func readBox(s *Stream) (Box, error) {
	var b Box
	for _, dst := range []*float64{&b.MinX, &b.MinY, &b.MaxX, &b.MaxY} {
		v, err := s.ReadDouble(le)
		if err != nil {
			return Box{}, err
		}
		*dst = v
	}
	return b, nil
}

func readRange(s *Stream) (Range, error) {
	lo, err := s.ReadDouble(le)
	if err != nil {
		return Range{}, err
	}
	hi, err := s.ReadDouble(le)
	if err != nil {
		return Range{}, err
	}
	return Range{Min: lo, Max: hi}, nil
}
