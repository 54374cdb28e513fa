// Package shapefile decodes ESRI Shapefiles into GeoJSON-compatible feature
// collections.
//
// A layer is decoded from the complete contents of a .shp file and,
// optionally, its companion .dbf attribute table. Both are byte slices that
// are fully resident in memory; reading them from disk or an archive is up
// to the caller.
//
// # Basic Usage
//
//	shp, _ := os.ReadFile("roads.shp")
//	dbf, _ := os.ReadFile("roads.dbf")
//
//	parser := shapefile.NewParser()
//	layer, err := parser.Parse(shp, dbf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s layer with %d features covering %+v\n",
//	    layer.ShapeType(), layer.FeatureCount(), layer.Bounds())
//
// # GeoJSON Output
//
// The feature collection marshals directly to GeoJSON:
//
//	out, err := json.Marshal(layer.FeatureCollection())
//
// Point records become Point geometries, MultiPoint records MultiPoint,
// PolyLine records LineString and Polygon records Polygon. Multi-part
// PolyLine records are flattened into one LineString unless
// ParseOptions.SplitMultiPartLines is set, in which case they become
// MultiLineString. Z and M values are not part of the GeoJSON output; they
// remain available on the decoded records via Layer.Records.
//
// # Attributes
//
// Row i of the attribute table becomes the properties of feature i. A table
// whose row count differs from the number of shapes fails with
// *ErrJoinLengthMismatch. Without a table, properties are null.
//
// Text fields are decoded with the code page named in the table header, or
// with ParseOptions.Encoding when set:
//
//	opts := shapefile.DefaultParseOptions()
//	opts.Encoding = charmap.Windows1251
//	layer, err := parser.ParseWithOptions(shp, dbf, opts)
//
// # Spatial Queries
//
// Every layer carries an R-tree over its feature bounds:
//
//	viewport := shapefile.Bounds{MinX: -71.5, MinY: 42.0, MaxX: -71.0, MaxY: 42.5}
//	visible := layer.FeaturesInBounds(viewport)
//
// # Loading Many Layers
//
// LoadLayersParallel decodes a batch of in-memory sources with a worker
// pool, and LayerCache keeps recently used layers in memory with LRU
// eviction.
package shapefile
