package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ScanConfig bounds a chunked historical log scan.
type ScanConfig struct {
	FromBlock    uint64
	ChunkSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// FirstMatchingLog walks the chain from cfg.FromBlock to the latest block in
// chunks and returns the earliest log matching the filter, or nil when the
// whole range has no match.
func (c *Client) FirstMatchingLog(
	ctx context.Context,
	cfg ScanConfig,
	address common.Address,
	topics [][]common.Hash,
) (*types.Log, error) {
	if cfg.ChunkSize == 0 {
		return nil, fmt.Errorf("chunk size must be greater than zero")
	}

	latest, err := c.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}

	for start := cfg.FromBlock; start <= latest; start += cfg.ChunkSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := start + cfg.ChunkSize - 1
		if end > latest {
			end = latest
		}

		var logs []types.Log
		err := withRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
			var ferr error
			logs, ferr = c.FilterLogs(ctx, start, end, []common.Address{address}, topics)
			return ferr
		})
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", start, end, err)
		}

		if len(logs) > 0 {
			first := logs[0]
			return &first, nil
		}

		if end == latest {
			break
		}
	}

	return nil, nil
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
