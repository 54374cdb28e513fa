package parser

import (
	"fmt"
	"runtime"
	"sync"
)

// RecordBounds locates one record in the main file without interpreting it.
type RecordBounds struct {
	ID     int32
	Offset int // Offset of the record header (id field)
	Length int // Content length in bytes
}

// ScanRecords walks the id/length prefixes of every record after the
// header. Record boundaries can only be found sequentially; this pre-pass
// lets record content be decoded in parallel afterwards.
func ScanRecords(buf []byte) ([]RecordBounds, error) {
	s := NewStreamAt(buf, HeaderSize)
	bounds := make([]RecordBounds, 0)
	for {
		offset := s.Offset()
		id, err := s.ReadInt32(be)
		if err != nil {
			break // end of records
		}
		words, err := s.ReadInt32(be)
		if err != nil {
			return nil, fmt.Errorf("record %d at offset %d: %w", id, offset, err)
		}
		if words < 0 {
			return nil, &ErrMalformedRecord{RecordID: id, Offset: s.Offset(), Reason: "negative content length"}
		}
		length := int(words) * 2
		if err := s.Skip(length); err != nil {
			return nil, fmt.Errorf("record %d at offset %d: %w", id, s.Offset(), err)
		}
		bounds = append(bounds, RecordBounds{ID: id, Offset: offset, Length: length})
	}
	return bounds, nil
}

// DecodeRecordsParallel decodes the records located by ScanRecords using
// a pool of workers. Each record gets its own cursor over buf. Records are
// returned in file order; the first error in file order is returned.
func DecodeRecordsParallel(buf []byte, bounds []RecordBounds, workers int, opts DecodeOptions) ([]*Record, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(bounds) {
		workers = len(bounds)
	}

	records := make([]*Record, len(bounds))
	errs := make([]error, len(bounds))
	if len(bounds) == 0 {
		return records, nil
	}

	jobs := make(chan int, len(bounds))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				s := NewStreamAt(buf, bounds[index].Offset)
				records[index], errs[index] = DecodeRecord(s, opts)
			}
		}()
	}

	for i := range bounds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}
