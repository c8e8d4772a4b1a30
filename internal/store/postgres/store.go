package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adellantado/uniswap-manager/internal/store"
)

// Store provides Postgres persistence for valuation history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the valuation history table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS position_valuations (
			wallet TEXT NOT NULL,
			token_id TEXT NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL,
			pool TEXT NOT NULL,
			token0_symbol TEXT NOT NULL,
			token1_symbol TEXT NOT NULL,
			fee_tier INTEGER NOT NULL,
			tick_lower INTEGER NOT NULL,
			tick_upper INTEGER NOT NULL,
			liquidity TEXT NOT NULL,
			amount0 TEXT NOT NULL,
			amount1 TEXT NOT NULL,
			fee0 TEXT NOT NULL,
			fee1 TEXT NOT NULL,
			price_lower TEXT NOT NULL,
			price_upper TEXT NOT NULL,
			active BOOLEAN NOT NULL,
			closed BOOLEAN NOT NULL,
			value_usd TEXT,
			fees_usd TEXT,
			apy_percent TEXT,
			age_days INTEGER NOT NULL,
			PRIMARY KEY (wallet, token_id, captured_at)
		)
	`)
	return err
}

// UpsertValuations inserts or updates valuation snapshots.
func (s *Store) UpsertValuations(ctx context.Context, records []store.ValuationRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO position_valuations (
				wallet, token_id, captured_at, pool, token0_symbol, token1_symbol,
				fee_tier, tick_lower, tick_upper, liquidity, amount0, amount1,
				fee0, fee1, price_lower, price_upper, active, closed,
				value_usd, fees_usd, apy_percent, age_days
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
			ON CONFLICT (wallet, token_id, captured_at)
			DO UPDATE SET
				pool = EXCLUDED.pool,
				token0_symbol = EXCLUDED.token0_symbol,
				token1_symbol = EXCLUDED.token1_symbol,
				fee_tier = EXCLUDED.fee_tier,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				liquidity = EXCLUDED.liquidity,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				fee0 = EXCLUDED.fee0,
				fee1 = EXCLUDED.fee1,
				price_lower = EXCLUDED.price_lower,
				price_upper = EXCLUDED.price_upper,
				active = EXCLUDED.active,
				closed = EXCLUDED.closed,
				value_usd = EXCLUDED.value_usd,
				fees_usd = EXCLUDED.fees_usd,
				apy_percent = EXCLUDED.apy_percent,
				age_days = EXCLUDED.age_days
		`,
			r.Wallet,
			r.TokenID,
			r.CapturedAt,
			r.Pool,
			r.Token0Symbol,
			r.Token1Symbol,
			int64(r.FeeTier),
			r.TickLower,
			r.TickUpper,
			r.Liquidity,
			r.Amount0,
			r.Amount1,
			r.Fee0,
			r.Fee1,
			r.PriceLower,
			r.PriceUpper,
			r.Active,
			r.Closed,
			nullable(r.ValueUSD),
			nullable(r.FeesUSD),
			nullable(r.APYPercent),
			r.AgeDays,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
