package parser

import (
	"fmt"
	"math"
)

// ValidateCoordinate validates a single longitude/latitude pair
func ValidateCoordinate(x, y float64) error {
	if y < -90.0 || y > 90.0 {
		return &ErrInvalidCoordinate{X: x, Y: y}
	}
	if x < -180.0 || x > 180.0 {
		return &ErrInvalidCoordinate{X: x, Y: y}
	}
	return nil
}

// ValidateRecord validates the coordinates of a decoded record.
//
// Every X and Y must be finite. When geographic is true they must also be
// valid longitude/latitude values. Z and M are not checked; measures may
// legitimately hold the no-data sentinel.
func ValidateRecord(rec *Record, geographic bool) error {
	if rec == nil || rec.Shape == nil {
		return &ErrInvalidGeometry{Reason: "record has no shape"}
	}

	for i, p := range rec.Shape.Vertices() {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return &ErrInvalidGeometry{
				RecordID: rec.ID,
				Type:     rec.Type,
				Reason:   fmt.Sprintf("point %d is not finite (%v, %v)", i, p.X, p.Y),
			}
		}
		if geographic {
			if err := ValidateCoordinate(p.X, p.Y); err != nil {
				return &ErrInvalidGeometry{
					RecordID: rec.ID,
					Type:     rec.Type,
					Reason:   fmt.Sprintf("point %d invalid: %v", i, err),
				}
			}
		}
	}

	// Polygon rings need at least three vertices to enclose an area
	if poly, ok := rec.Shape.(*PolyShape); ok && rec.Type.Family() == FamilyPolygon {
		for i := range poly.Parts {
			start, end := poly.PartRange(i)
			if end-start < 3 {
				return &ErrInvalidGeometry{
					RecordID: rec.ID,
					Type:     rec.Type,
					Reason:   fmt.Sprintf("ring %d has %d points, need at least 3", i, end-start),
				}
			}
		}
	}
	return nil
}
