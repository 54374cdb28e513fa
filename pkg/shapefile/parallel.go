package shapefile

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
)

// Source is the in-memory content of one shapefile layer.
type Source struct {
	Name string // Layer name, typically the file stem
	SHP  []byte // Contents of the .shp file
	DBF  []byte // Contents of the .dbf file, or nil
	CPG  []byte // Contents of the .cpg file, or nil
}

// LoadOptions controls parallel loading behavior and error handling.
type LoadOptions struct {
	// Parallel enables concurrent layer loading.
	// When true, layers are loaded using multiple worker goroutines.
	Parallel bool

	// Workers specifies the number of parallel loader goroutines.
	// If 0, defaults to runtime.NumCPU().
	// Only used when Parallel is true.
	Workers int

	// SkipErrors causes loading to continue even when individual layers fail.
	// Failed layers are skipped and errors are collected.
	// When false, the first error stops loading and is returned immediately.
	SkipErrors bool

	// Progress is an optional callback for tracking loading progress.
	// Called after each layer is loaded (successfully or with error).
	// Parameters: (loaded, total) where loaded is count of layers processed so far.
	Progress func(loaded, total int)

	// ErrorLog is an optional writer for detailed error reporting.
	// Each loading error is written here with the layer name and error details.
	ErrorLog io.Writer

	// Parse is passed to the parser for every layer.
	Parse ParseOptions
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Progress:   nil,
		ErrorLog:   nil,
		Parse:      DefaultParseOptions(),
	}
}

// LoadLayer parses one source and names the resulting layer. A .cpg code
// page sets the attribute encoding unless opts already names one.
func LoadLayer(src Source, p Parser, opts ParseOptions) (*Layer, error) {
	if opts.Encoding == nil && len(src.CPG) > 0 {
		enc, err := EncodingFromCPG(src.CPG)
		if err != nil {
			return nil, err
		}
		opts.Encoding = enc
	}

	layer, err := p.ParseWithOptions(src.SHP, src.DBF, opts)
	if err != nil {
		return nil, err
	}
	layer.name = src.Name
	return layer, nil
}

// LoadLayersParallel loads multiple layers in parallel with progress reporting.
//
// Layers are returned in source order; failed sources are left out. With
// SkipErrors the errors of every failed source are returned alongside the
// loaded layers, otherwise the first error stops loading and the LayerSet
// is nil.
//
// Example:
//
//	layers, errs := shapefile.LoadLayersParallel(sources, shapefile.NewParser(),
//	    shapefile.LoadOptions{
//	        Parallel:   true,
//	        SkipErrors: true,
//	        Progress: func(loaded, total int) {
//	            fmt.Printf("\rLoading: %d/%d", loaded, total)
//	        },
//	        ErrorLog: os.Stderr,
//	        Parse:    shapefile.DefaultParseOptions(),
//	    })
func LoadLayersParallel(sources []Source, p Parser, opts LoadOptions) (*LayerSet, []error) {
	if len(sources) == 0 {
		return NewLayerSet(nil), nil
	}

	if !opts.Parallel {
		return loadLayersSerial(sources, p, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	type loadResult struct {
		index int
		layer *Layer
		err   error
	}

	jobs := make(chan int, len(sources))
	results := make(chan loadResult, len(sources))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				layer, err := LoadLayer(sources[index], p, opts.Parse)
				results <- loadResult{index: index, layer: layer, err: err}
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	layerMap := make(map[int]*Layer)
	var failed []loadResult
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(sources))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", sources[result.index].Name, result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading layer: %v\n", err)
			}
			if !opts.SkipErrors {
				// Remaining workers drain into the buffered results channel.
				return nil, []error{err}
			}
			result.err = err
			failed = append(failed, result)
			continue
		}
		layerMap[result.index] = result.layer
	}

	// Errors are reported in source order regardless of completion order.
	sort.Slice(failed, func(i, j int) bool { return failed[i].index < failed[j].index })
	var errs []error
	for _, f := range failed {
		errs = append(errs, f.err)
	}

	layers := make([]*Layer, 0, len(layerMap))
	for i := 0; i < len(sources); i++ {
		if layer, ok := layerMap[i]; ok {
			layers = append(layers, layer)
		}
	}
	return NewLayerSet(layers), errs
}

// loadLayersSerial loads layers one at a time (fallback when Parallel=false).
func loadLayersSerial(sources []Source, p Parser, opts LoadOptions) (*LayerSet, []error) {
	layers := make([]*Layer, 0, len(sources))
	var errs []error

	for i, src := range sources {
		layer, err := LoadLayer(src, p, opts.Parse)
		if opts.Progress != nil {
			opts.Progress(i+1, len(sources))
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", src.Name, err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading layer: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		layers = append(layers, layer)
	}

	return NewLayerSet(layers), errs
}

// LayerSet is a collection of loaded layers with a spatial index over
// their extents.
type LayerSet struct {
	Layers []*Layer

	rtree *rtreego.Rtree
}

// indexedLayer wraps a layer for R-tree storage.
type indexedLayer struct {
	layer *Layer
}

// Bounds implements rtreego.Spatial interface.
func (l indexedLayer) Bounds() rtreego.Rect {
	return l.layer.Bounds().rect()
}

// NewLayerSet indexes layers by their header bounds.
func NewLayerSet(layers []*Layer) *LayerSet {
	if layers == nil {
		layers = []*Layer{}
	}
	set := &LayerSet{Layers: layers}
	if len(layers) > 0 {
		set.rtree = rtreego.NewTree(2, 25, 50)
		for _, layer := range layers {
			set.rtree.Insert(indexedLayer{layer: layer})
		}
	}
	return set
}

// Layer returns the layer with the given name.
func (ls *LayerSet) Layer(name string) (*Layer, bool) {
	for _, layer := range ls.Layers {
		if layer.name == name {
			return layer, true
		}
	}
	return nil, false
}

// Bounds returns the union of all layer bounds.
func (ls *LayerSet) Bounds() Bounds {
	if len(ls.Layers) == 0 {
		return Bounds{}
	}
	bounds := ls.Layers[0].Bounds()
	for _, layer := range ls.Layers[1:] {
		bounds = bounds.Union(layer.Bounds())
	}
	return bounds
}

// LayersInBounds returns the layers whose extent intersects bounds, in
// load order.
func (ls *LayerSet) LayersInBounds(bounds Bounds) []*Layer {
	if ls.rtree == nil {
		return nil
	}
	hits := make(map[*Layer]bool)
	for _, spatial := range ls.rtree.SearchIntersect(bounds.rect()) {
		hits[spatial.(indexedLayer).layer] = true
	}

	result := make([]*Layer, 0, len(hits))
	for _, layer := range ls.Layers {
		if hits[layer] {
			result = append(result, layer)
		}
	}
	return result
}

// FeaturesInBounds queries every layer whose extent intersects bounds.
func (ls *LayerSet) FeaturesInBounds(bounds Bounds) []Feature {
	var result []Feature
	for _, layer := range ls.LayersInBounds(bounds) {
		result = append(result, layer.FeaturesInBounds(bounds)...)
	}
	return result
}

// FeatureCount returns the total number of features across all layers.
func (ls *LayerSet) FeatureCount() int {
	n := 0
	for _, layer := range ls.Layers {
		n += layer.FeatureCount()
	}
	return n
}
