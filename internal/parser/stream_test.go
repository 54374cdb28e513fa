package parser

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestStreamTypedReads(t *testing.T) {
	buf := make([]byte, 0, 32)
	buf = binary.BigEndian.AppendUint32(buf, 0x0000270A)
	buf = binary.LittleEndian.AppendUint32(buf, 0xFFFFFFFE) // -2
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(12.5))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(-3.25))
	buf = binary.LittleEndian.AppendUint16(buf, 0x8001)
	buf = append(buf, 0xFF, 0xFF)

	s := NewStream(buf)

	code, err := s.ReadInt32(binary.BigEndian)
	if err != nil || code != 0x270A {
		t.Fatalf("ReadInt32(BE) = %d, %v", code, err)
	}
	neg, err := s.ReadInt32(binary.LittleEndian)
	if err != nil || neg != -2 {
		t.Fatalf("ReadInt32(LE) = %d, %v", neg, err)
	}
	d, err := s.ReadDouble(binary.LittleEndian)
	if err != nil || d != 12.5 {
		t.Fatalf("ReadDouble(LE) = %v, %v", d, err)
	}
	d, err = s.ReadDouble(binary.BigEndian)
	if err != nil || d != -3.25 {
		t.Fatalf("ReadDouble(BE) = %v, %v", d, err)
	}
	i16, err := s.ReadInt16(binary.LittleEndian)
	if err != nil || i16 != -32767 {
		t.Fatalf("ReadInt16 = %d, %v", i16, err)
	}
	i8, err := s.ReadInt8()
	if err != nil || i8 != -1 {
		t.Fatalf("ReadInt8 = %d, %v", i8, err)
	}
	u8, err := s.ReadUint8()
	if err != nil || u8 != 255 {
		t.Fatalf("ReadUint8 = %d, %v", u8, err)
	}
	if s.Remaining() != 0 {
		t.Errorf("Expected stream exhausted, %d bytes remain", s.Remaining())
	}
}

func TestStreamOutOfBounds(t *testing.T) {
	s := NewStream([]byte{1, 2, 3})

	_, err := s.ReadInt32(binary.LittleEndian)
	var oob *ErrOutOfBounds
	if !errors.As(err, &oob) {
		t.Fatalf("Expected *ErrOutOfBounds, got %v", err)
	}
	if oob.Offset != 0 || oob.Want != 4 || oob.Len != 3 {
		t.Errorf("Unexpected error context: %+v", oob)
	}
	if s.Offset() != 0 {
		t.Errorf("Failed read moved cursor to %d", s.Offset())
	}
}

func TestStreamSkip(t *testing.T) {
	s := NewStream(make([]byte, 10))

	tests := []struct {
		name    string
		n       int
		want    int
		wantErr bool
	}{
		{"forward", 6, 6, false},
		{"backward", -2, 4, false},
		{"to end", 6, 10, false},
		{"past end", 1, 10, true},
		{"before start", -11, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Skip(tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Skip(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			}
			if s.Offset() != tt.want {
				t.Errorf("Offset() = %d, want %d", s.Offset(), tt.want)
			}
		})
	}
}

func TestStreamReadFixedString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "ROAD", "ROAD"},
		{"space fill", "ROAD      ", "ROAD"},
		{"nul fill", "ROAD\x00\x00\x00", "ROAD"},
		{"all null fill", "********", ""},
		{"all spaces", "     ", ""},
		{"leading kept", "  42", "  42"},
		{"star inside", "A*B", "A*B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream([]byte(tt.raw))
			got, err := s.ReadFixedString(len(tt.raw))
			if err != nil {
				t.Fatalf("ReadFixedString: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadFixedString(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewStreamAt(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 7}
	s := NewStreamAt(buf, 4)
	v, err := s.ReadInt32(binary.BigEndian)
	if err != nil || v != 7 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if s.Offset() != 8 {
		t.Errorf("Offset() = %d, want 8", s.Offset())
	}

	if got := NewStreamAt(buf, 99).Offset(); got != len(buf) {
		t.Errorf("NewStreamAt past end: offset %d, want %d", got, len(buf))
	}
}
