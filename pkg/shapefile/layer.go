package shapefile

import (
	"github.com/dhconnelly/rtreego"
)

// Layer is a decoded shapefile: its header, records, attribute fields and
// the feature collection assembled from them.
//
// Access features via Features(), FeaturesInBounds(), or FeatureCount().
// The GeoJSON form is FeatureCollection().
type Layer struct {
	name       string
	header     Header
	records    []*Record
	fields     []Field
	collection *FeatureCollection

	spatialIndex *spatialIndex // nil for empty layers
}

// spatialIndex provides O(log n) spatial queries using R-tree.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature Feature
	bounds  Bounds
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.bounds.rect()
}

func newLayer(header *Header, records []*Record, table *Table, fc *FeatureCollection) *Layer {
	l := &Layer{
		header:     *header,
		records:    records,
		collection: fc,
	}
	if table != nil {
		l.fields = table.Fields
	}
	l.buildSpatialIndex()
	return l
}

// buildSpatialIndex creates an R-tree over the feature bounds.
func (l *Layer) buildSpatialIndex() {
	if len(l.collection.Features) == 0 {
		return
	}

	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)
	for _, feature := range l.collection.Features {
		fb, ok := feature.BBox()
		if !ok {
			if fb, ok = geometryBounds(feature.geometry); !ok {
				continue // no positions to index
			}
		}
		rtree.Insert(&indexedFeature{feature: feature, bounds: fb})
	}
	l.spatialIndex = &spatialIndex{rtree: rtree}
}

// Name returns the layer name given when it was loaded, or "" for layers
// returned directly by a Parser.
func (l *Layer) Name() string { return l.name }

// Header returns the main file header.
func (l *Layer) Header() Header { return l.header }

// ShapeType returns the shape type declared in the header.
func (l *Layer) ShapeType() ShapeType { return l.header.ShapeType }

// Bounds returns the bounding box declared in the header.
func (l *Layer) Bounds() Bounds { return boundsFromBox(l.header.Box) }

// Records returns the decoded records in file order, including Z and M
// values that the GeoJSON output leaves out.
func (l *Layer) Records() []*Record { return l.records }

// Fields returns the attribute table columns, or nil without a table.
func (l *Layer) Fields() []Field { return l.fields }

// FeatureCollection returns the GeoJSON feature collection of the layer.
func (l *Layer) FeatureCollection() *FeatureCollection { return l.collection }

// Features returns all features in file order.
func (l *Layer) Features() []Feature { return l.collection.Features }

// FeatureCount returns the number of features in the layer.
func (l *Layer) FeatureCount() int { return len(l.collection.Features) }

// FeaturesInBounds returns all features whose bounds intersect the given
// bounding box. Result order is unspecified.
//
// Example:
//
//	viewport := shapefile.Bounds{MinX: -71.5, MinY: 42.0, MaxX: -71.0, MaxY: 42.5}
//	for _, feature := range layer.FeaturesInBounds(viewport) {
//	    render(feature)
//	}
func (l *Layer) FeaturesInBounds(bounds Bounds) []Feature {
	if l.spatialIndex == nil {
		return nil
	}

	spatials := l.spatialIndex.rtree.SearchIntersect(bounds.rect())
	result := make([]Feature, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*indexedFeature).feature)
	}
	return result
}
