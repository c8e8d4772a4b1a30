package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is a local sqlite store for facts that are immutable once learned,
// currently the mint block and timestamp of position NFTs. Scanning mint
// logs is the slow part of valuation, so hits here skip it entirely.
type Cache struct {
	db *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS position_mints (
			token_id TEXT PRIMARY KEY,
			block_number INTEGER NOT NULL,
			minted_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// PutMint records when a position NFT was minted.
func (c *Cache) PutMint(tokenID string, blockNumber uint64, mintedAt time.Time) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO position_mints (token_id, block_number, minted_at) VALUES (?, ?, ?)`,
		tokenID, int64(blockNumber), mintedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("put mint: %w", err)
	}
	return nil
}

// GetMint returns the recorded mint time for a token id, if known.
func (c *Cache) GetMint(tokenID string) (time.Time, bool, error) {
	var mintedAt int64
	row := c.db.QueryRow(`SELECT minted_at FROM position_mints WHERE token_id = ?`, tokenID)
	if err := row.Scan(&mintedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get mint: %w", err)
	}
	return time.Unix(mintedAt, 0).UTC(), true, nil
}
