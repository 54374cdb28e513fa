package parser

import (
	"encoding/binary"
	"math"
	"strings"
)

// dbfNullFill marks a dBase field with no value when it fills the whole span.
const dbfNullFill = '*'

// Stream is a cursor over a fixed byte buffer.
//
// A Stream is owned by exactly one decode operation. Reads advance the
// cursor; a read that would run past the buffer fails with
// *ErrOutOfBounds and leaves the cursor where it was.
type Stream struct {
	buf []byte
	pos int
}

// NewStream returns a stream positioned at the start of buf.
func NewStream(buf []byte) *Stream {
	return &Stream{buf: buf}
}

// NewStreamAt returns a stream over buf positioned at an absolute offset.
// Offsets reported by the stream stay relative to the start of buf.
func NewStreamAt(buf []byte, offset int) *Stream {
	if offset < 0 {
		offset = 0
	}
	if offset > len(buf) {
		offset = len(buf)
	}
	return &Stream{buf: buf, pos: offset}
}

// Offset returns the current cursor position.
func (s *Stream) Offset() int { return s.pos }

// Len returns the buffer length.
func (s *Stream) Len() int { return len(s.buf) }

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int { return len(s.buf) - s.pos }

// take returns the next n bytes and advances the cursor.
func (s *Stream) take(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.buf) {
		return nil, &ErrOutOfBounds{Offset: s.pos, Want: n, Len: len(s.buf)}
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Skip moves the cursor by n bytes; n may be negative.
func (s *Stream) Skip(n int) error {
	next := s.pos + n
	if next < 0 || next > len(s.buf) {
		return &ErrOutOfBounds{Offset: s.pos, Want: n, Len: len(s.buf)}
	}
	s.pos = next
	return nil
}

// ReadBytes returns the next n bytes. The slice aliases the buffer.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	return s.take(n)
}

// ReadDouble reads an IEEE 754 float64.
func (s *Stream) ReadDouble(order binary.ByteOrder) (float64, error) {
	b, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(order.Uint64(b)), nil
}

// ReadInt32 reads a signed 32-bit integer.
func (s *Stream) ReadInt32(order binary.ByteOrder) (int32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return int32(order.Uint32(b)), nil
}

// ReadInt16 reads a signed 16-bit integer.
func (s *Stream) ReadInt16(order binary.ByteOrder) (int16, error) {
	b, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return int16(order.Uint16(b)), nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (s *Stream) ReadUint16(order binary.ByteOrder) (uint16, error) {
	b, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// ReadInt8 reads a signed byte.
func (s *Stream) ReadInt8() (int8, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadUint8 reads an unsigned byte.
func (s *Stream) ReadUint8() (uint8, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadFixedString reads n bytes as text and trims trailing NUL and space fill.
//
// A span made only of fill (including the dBase null fill '*') reads as "".
func (s *Stream) ReadFixedString(n int) (string, error) {
	b, err := s.take(n)
	if err != nil {
		return "", err
	}
	return fixedString(b), nil
}

func fixedString(b []byte) string {
	allNull := len(b) > 0
	for _, c := range b {
		if c != dbfNullFill {
			allNull = false
			break
		}
	}
	if allNull {
		return ""
	}
	return strings.TrimRight(string(b), "\x00 ")
}
