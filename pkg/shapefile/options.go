package shapefile

import (
	"golang.org/x/text/encoding"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// Capabilities selects the accepted shape variants. A record outside the
	// set fails with *ErrUnsupportedShapeType. Zero means CapAll.
	Capabilities Capabilities

	// ValidateGeometry rejects records with non-finite coordinates or
	// polygon rings of fewer than three points.
	ValidateGeometry bool

	// RequireGeographic additionally requires every X/Y to be a valid
	// longitude/latitude. Only used when ValidateGeometry is true.
	RequireGeographic bool

	// SplitMultiPartLines emits multi-part PolyLine records as
	// MultiLineString instead of one flattened LineString.
	SplitMultiPartLines bool

	// Workers sets the number of goroutines decoding records. Values above
	// one pre-scan record boundaries and decode records in parallel.
	Workers int

	// Encoding decodes attribute text. When nil the code page mark of the
	// attribute table selects one.
	Encoding encoding.Encoding
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Capabilities:        CapAll,
		ValidateGeometry:    true,
		RequireGeographic:   false,
		SplitMultiPartLines: false,
		Workers:             1,
		Encoding:            nil,
	}
}

// EncodingFromCPG resolves the contents of a .cpg sidecar file for use as
// ParseOptions.Encoding.
func EncodingFromCPG(cpg []byte) (encoding.Encoding, error) {
	return parser.CPGEncoding(string(cpg))
}

func (o ParseOptions) decodeOptions() parser.DecodeOptions {
	return parser.DecodeOptions{Capabilities: o.Capabilities}
}
