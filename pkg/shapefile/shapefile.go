package shapefile

import (
	"fmt"

	"github.com/beetlebugorg/shapefile/internal/parser"
)

// Parser decodes shapefile layers from in-memory buffers.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read layers.
type Parser interface {
	// Parse decodes the contents of a .shp file and, when dbf is not nil,
	// joins the rows of its .dbf attribute table.
	//
	// No partial layer is returned: any header, record or join error
	// aborts the whole decode.
	//
	// Parse uses DefaultParseOptions, which validates geometry. A record
	// with non-finite coordinates or a polygon ring of fewer than three
	// points fails with *ErrInvalidCoordinate or *ErrInvalidGeometry even
	// though it decodes. Use ParseWithOptions with ValidateGeometry false
	// to accept such records as stored.
	Parse(shp, dbf []byte) (*Layer, error)

	// ParseWithOptions parses a layer with custom options.
	//
	// Use ParseOptions to control accepted shape types, validation,
	// parallel decoding and attribute text encoding.
	ParseWithOptions(shp, dbf []byte, opts ParseOptions) (*Layer, error)
}

// NewParser creates a new shapefile parser with default settings.
//
// Example:
//
//	parser := shapefile.NewParser()
//	layer, err := parser.Parse(shp, dbf)
func NewParser() Parser {
	return &defaultParser{}
}

type defaultParser struct{}

func (p *defaultParser) Parse(shp, dbf []byte) (*Layer, error) {
	return p.ParseWithOptions(shp, dbf, DefaultParseOptions())
}

func (p *defaultParser) ParseWithOptions(shp, dbf []byte, opts ParseOptions) (*Layer, error) {
	s := parser.NewStream(shp)
	header, err := parser.DecodeHeader(s)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(shp, s, opts)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	if opts.ValidateGeometry {
		for _, rec := range records {
			if err := parser.ValidateRecord(rec, opts.RequireGeographic); err != nil {
				return nil, err
			}
		}
	}

	var table *Table
	if dbf != nil {
		table, err = parser.DecodeTable(dbf, parser.TableOptions{Encoding: opts.Encoding})
		if err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}

	fc, err := Assemble(header, records, table, opts)
	if err != nil {
		return nil, err
	}
	return newLayer(header, records, table, fc), nil
}

// decodeRecords reads every record after the header, in parallel when
// more than one worker is requested.
func decodeRecords(shp []byte, s *parser.Stream, opts ParseOptions) ([]*Record, error) {
	if opts.Workers <= 1 {
		return parser.DecodeRecords(s, opts.decodeOptions())
	}
	bounds, err := parser.ScanRecords(shp)
	if err != nil {
		return nil, err
	}
	return parser.DecodeRecordsParallel(shp, bounds, opts.Workers, opts.decodeOptions())
}
