package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// chunkPath builds the part-<seq>-<start>-<end>.parquet filename the chunk
// index expects, under dir.
func chunkPath(dir string, seq, start, end int64) string {
	name := "part-" + strconv.FormatInt(seq, 10) + "-" + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10) + ".parquet"
	return filepath.Join(dir, name)
}

// writeBookChunk writes a single-chunk parquet file of BookRow values under
// dir/part-<seq>-<start>-<end>.parquet (dir created if absent). The first
// row must be a snapshot row sharing its timestamp with every other
// leading snapshot row.
func writeBookChunk(t *testing.T, dir string, seq, start, end int64, rows []BookRow) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	fw, err := local.NewLocalFileWriter(chunkPath(dir, seq, start, end))
	if err != nil {
		t.Fatalf("open writer for %s: %v", dir, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(BookRow), 4)
	if err != nil {
		t.Fatalf("new parquet writer: %v", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
}

// writePriceChunk writes a single-chunk parquet file of PriceRow values,
// same layout convention as writeBookChunk.
func writePriceChunk(t *testing.T, dir string, seq, start, end int64, rows []PriceRow) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	fw, err := local.NewLocalFileWriter(chunkPath(dir, seq, start, end))
	if err != nil {
		t.Fatalf("open writer for %s: %v", dir, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(PriceRow), 4)
	if err != nil {
		t.Fatalf("new parquet writer: %v", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }
