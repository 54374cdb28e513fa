package shapefile

import (
	"fmt"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// Decode errors. Use errors.As to inspect them.
type (
	ErrOutOfBounds          = parser.ErrOutOfBounds
	ErrInvalidMagic         = parser.ErrInvalidMagic
	ErrMalformedHeader      = parser.ErrMalformedHeader
	ErrUnknownShapeType     = parser.ErrUnknownShapeType
	ErrUnsupportedShapeType = parser.ErrUnsupportedShapeType
	ErrMalformedRecord      = parser.ErrMalformedRecord
	ErrMalformedTable       = parser.ErrMalformedTable
	ErrInvalidCoordinate    = parser.ErrInvalidCoordinate
	ErrInvalidGeometry      = parser.ErrInvalidGeometry
)

// ErrJoinLengthMismatch indicates the attribute table row count differs
// from the number of decoded shapes
type ErrJoinLengthMismatch struct {
	Features   int
	Attributes int
}

func (e *ErrJoinLengthMismatch) Error() string {
	return fmt.Sprintf("attribute join mismatch: %d features but %d attribute rows",
		e.Features, e.Attributes)
}
