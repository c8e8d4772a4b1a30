package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJsonlExporterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "valuations.jsonl")
	exporter := NewJsonlExporter(path)

	first := ValuationRecord{
		Wallet:     "0x1111111111111111111111111111111111111111",
		TokenID:    "42",
		Pool:       "0x2222222222222222222222222222222222222222",
		Liquidity:  "1000000",
		Active:     true,
		CapturedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	second := first
	second.TokenID = "43"
	second.Active = false
	second.Closed = true

	if err := exporter.PutRecordBatch([]ValuationRecord{first}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := exporter.PutRecordBatch([]ValuationRecord{second}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var records []ValuationRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record ValuationRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].TokenID != "42" || records[1].TokenID != "43" {
		t.Fatalf("token ids = %s/%s, want 42/43", records[0].TokenID, records[1].TokenID)
	}
	if !records[1].Closed {
		t.Fatalf("second record should be closed")
	}
}

func TestJsonlExporterEmptyBatchWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuations.jsonl")
	exporter := NewJsonlExporter(path)

	if err := exporter.PutRecordBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch should not create the file")
	}
}

func TestCacheMintRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenCache(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	if _, ok, err := cache.GetMint("42"); err != nil {
		t.Fatalf("get missing: %v", err)
	} else if ok {
		t.Fatalf("unexpected hit for missing token")
	}

	mintedAt := time.Date(2023, 7, 15, 8, 30, 0, 0, time.UTC)
	if err := cache.PutMint("42", 17_700_000, mintedAt); err != nil {
		t.Fatalf("put mint: %v", err)
	}

	got, ok, err := cache.GetMint("42")
	if err != nil {
		t.Fatalf("get mint: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit after put")
	}
	if !got.Equal(mintedAt) {
		t.Fatalf("minted at = %s, want %s", got, mintedAt)
	}

	// Replacing an entry keeps the latest value.
	later := mintedAt.Add(24 * time.Hour)
	if err := cache.PutMint("42", 17_700_100, later); err != nil {
		t.Fatalf("replace mint: %v", err)
	}
	got, _, err = cache.GetMint("42")
	if err != nil {
		t.Fatalf("get replaced mint: %v", err)
	}
	if !got.Equal(later) {
		t.Fatalf("replaced minted at = %s, want %s", got, later)
	}
}
