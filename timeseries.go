// FILE: timeseries.go
// Package main – Chunked parquet time-series index shared by BookReplay,
// PricePoint, and MidPriceTracker.
//
// Historical data for every per-instrument stream (order books, mark
// prices, index prices) is laid out on disk as a sequence of parquet
// "chunks" named part-<seq>-<startTs>-<endTs>.parquet. This file owns
// chunk *discovery* (glob + filename parsing) and chunk *loading* (via
// github.com/xitongsys/parquet-go). BookReplay (bookreplay.go) and
// PricePoint (priceseries.go) each hold one chunkIndex and drive it
// forward as the simulation clock advances.
package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// BookRow is the parquet row shape for order-book chunks.
type BookRow struct {
	Timestamp int64  `parquet:"name=timestamp, type=INT64"`
	Action    string `parquet:"name=action, type=BYTE_ARRAY, convertedtype=UTF8"`
	Side      string `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price     float64 `parquet:"name=price, type=DOUBLE"`
	Size      float64 `parquet:"name=size, type=DOUBLE"`
	NumOrders int64  `parquet:"name=numOrders, type=INT64"`
	InstID    string `parquet:"name=instId, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// PriceRow is the parquet row shape for mark/index price chunks: one
// (timestamp, value) pair per row, value nullable.
type PriceRow struct {
	Timestamp int64    `parquet:"name=timestamp, type=INT64"`
	Value     *float64 `parquet:"name=value, type=DOUBLE"`
}

// chunkMeta is one discovered chunk file with its [start,end] range decoded
// from the filename.
type chunkMeta struct {
	path  string
	start int64
	end   int64
}

// chunkIndex discovers and tracks the currently-loaded chunk for one
// instrument's stream directory.
type chunkIndex struct {
	chunks       []chunkMeta
	currentIdx   int // -1 until a chunk has ever been loaded
}

// newChunkIndex globs dir for part-*-*-*.parquet files and sorts them by
// start time.
func newChunkIndex(dir string) (*chunkIndex, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "part-*-*-*.parquet"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no chunk files found under %s", ErrNoDataForTime, dir)
	}
	chunks := make([]chunkMeta, 0, len(matches))
	for _, m := range matches {
		start, end, err := parseChunkRange(m)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunkMeta{path: m, start: start, end: end})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].start < chunks[j].start })
	return &chunkIndex{chunks: chunks, currentIdx: -1}, nil
}

// locate finds the unique chunk covering ts. It reports whether the pointer
// moved, and fails with ErrNoDataForTime if ts is uncovered and no chunk has
// ever been loaded.
func (c *chunkIndex) locate(ts int64) (moved bool, err error) {
	for i, ch := range c.chunks {
		if ch.start <= ts && ts <= ch.end {
			if c.currentIdx != i {
				c.currentIdx = i
				return true, nil
			}
			return false, nil
		}
	}
	if c.currentIdx == -1 {
		return false, fmt.Errorf("%w: clock %d not covered by any chunk", ErrNoDataForTime, ts)
	}
	return false, nil
}

func (c *chunkIndex) path() string { return c.chunks[c.currentIdx].path }

// readBookChunk loads every row of a book chunk in file order.
func readBookChunk(path string) ([]BookRow, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open chunk %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(BookRow), 4)
	if err != nil {
		return nil, fmt.Errorf("parquet reader %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]BookRow, n)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", path, err)
	}
	return rows, nil
}

// readPriceChunk loads every row of a mark/index price chunk in file order.
func readPriceChunk(path string) ([]PriceRow, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open chunk %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(PriceRow), 4)
	if err != nil {
		return nil, fmt.Errorf("parquet reader %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]PriceRow, n)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", path, err)
	}
	return rows, nil
}
