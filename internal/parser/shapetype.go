package parser

// ShapeType is the shape type code stored in the main file header and in
// every record.
//
// Reference: ESRI Shapefile Technical Description (July 1998), Table 1.
type ShapeType int32

const (
	ShapeNull        ShapeType = 0
	ShapePoint       ShapeType = 1
	ShapePolyLine    ShapeType = 3
	ShapePolygon     ShapeType = 5
	ShapeMultiPoint  ShapeType = 8
	ShapePointZ      ShapeType = 11
	ShapePolyLineZ   ShapeType = 13
	ShapePolygonZ    ShapeType = 15
	ShapeMultiPointZ ShapeType = 18
	ShapePointM      ShapeType = 21
	ShapePolyLineM   ShapeType = 23
	ShapePolygonM    ShapeType = 25
	ShapeMultiPointM ShapeType = 28
	ShapeMultiPatch  ShapeType = 31
)

// Family groups shape types that share a record layout.
type Family int

const (
	FamilyNull Family = iota
	FamilyPoint
	FamilyPolyLine
	FamilyPolygon
	FamilyMultiPoint
	FamilyMultiPatch
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyNull:
		return "Null"
	case FamilyPoint:
		return "Point"
	case FamilyPolyLine:
		return "PolyLine"
	case FamilyPolygon:
		return "Polygon"
	case FamilyMultiPoint:
		return "MultiPoint"
	case FamilyMultiPatch:
		return "MultiPatch"
	default:
		return "Unknown"
	}
}

// Capabilities selects which shape variants a decode accepts.
type Capabilities uint8

const (
	// CapBase accepts Point, PolyLine, Polygon and MultiPoint.
	CapBase Capabilities = 1 << iota
	// CapZ accepts the Z variants.
	CapZ
	// CapM accepts the M variants.
	CapM

	CapAll = CapBase | CapZ | CapM
)

// Has reports whether every capability in c is enabled.
func (c Capabilities) Has(other Capabilities) bool {
	return c&other == other
}

type shapeInfo struct {
	name   string
	family Family
	z, m   bool
}

var shapeTypes = map[ShapeType]shapeInfo{
	ShapeNull:        {"Null Shape", FamilyNull, false, false},
	ShapePoint:       {"Point", FamilyPoint, false, false},
	ShapePolyLine:    {"PolyLine", FamilyPolyLine, false, false},
	ShapePolygon:     {"Polygon", FamilyPolygon, false, false},
	ShapeMultiPoint:  {"MultiPoint", FamilyMultiPoint, false, false},
	ShapePointZ:      {"PointZ", FamilyPoint, true, true},
	ShapePolyLineZ:   {"PolyLineZ", FamilyPolyLine, true, true},
	ShapePolygonZ:    {"PolygonZ", FamilyPolygon, true, true},
	ShapeMultiPointZ: {"MultiPointZ", FamilyMultiPoint, true, true},
	ShapePointM:      {"PointM", FamilyPoint, false, true},
	ShapePolyLineM:   {"PolyLineM", FamilyPolyLine, false, true},
	ShapePolygonM:    {"PolygonM", FamilyPolygon, false, true},
	ShapeMultiPointM: {"MultiPointM", FamilyMultiPoint, false, true},
	ShapeMultiPatch:  {"MultiPatch", FamilyMultiPatch, true, true},
}

// ShapeTypeFromCode maps a raw code to a ShapeType.
// Returns false for codes outside the enumeration.
func ShapeTypeFromCode(code int32) (ShapeType, bool) {
	st := ShapeType(code)
	_, ok := shapeTypes[st]
	return st, ok
}

// Valid reports whether t is part of the shapefile enumeration.
func (t ShapeType) Valid() bool {
	_, ok := shapeTypes[t]
	return ok
}

// String returns the name used by the ESRI technical description.
func (t ShapeType) String() string {
	if info, ok := shapeTypes[t]; ok {
		return info.name
	}
	return "Unknown"
}

// Family returns the record layout family of t.
func (t ShapeType) Family() Family {
	return shapeTypes[t].family
}

// HasZ reports whether t carries Z values.
func (t ShapeType) HasZ() bool { return shapeTypes[t].z }

// HasM reports whether t carries measures.
func (t ShapeType) HasM() bool { return shapeTypes[t].m }

// Supported reports whether a record of type t can be decoded with caps.
// Null Shape and MultiPatch are never supported.
func (t ShapeType) Supported(caps Capabilities) bool {
	switch t.Family() {
	case FamilyPoint, FamilyPolyLine, FamilyPolygon, FamilyMultiPoint:
	default:
		return false
	}
	if !t.Valid() {
		return false
	}
	switch {
	case t.HasZ():
		return caps.Has(CapZ)
	case t.HasM():
		return caps.Has(CapM)
	default:
		return caps.Has(CapBase)
	}
}
