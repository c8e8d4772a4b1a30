package manager

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/chain"
	"github.com/adellantado/uniswap-manager/internal/config"
	"github.com/adellantado/uniswap-manager/internal/contracts"
	"github.com/adellantado/uniswap-manager/internal/store"
	"github.com/adellantado/uniswap-manager/internal/univ3"
)

// UniswapManager orchestrates position valuation and trading against the
// Uniswap V3 periphery contracts.
type UniswapManager struct {
	client          *chain.Client
	cfg             config.Config
	positionManager *contracts.PositionManager
	factory         *contracts.Factory
	quoter          *contracts.Quoter
	router          *contracts.Router
	weth            *contracts.WETH
	tokenCache      *contracts.TokenMetaCache
	mintCache       *store.Cache
	prices          PriceSource
	logger          *zap.Logger
}

// NewUniswapManager wires the manager against the configured contract
// addresses. mintCache and prices may be nil; valuation then degrades to
// unknown age and no USD totals.
func NewUniswapManager(client *chain.Client, cfg config.Config, mintCache *store.Cache, prices PriceSource, logger *zap.Logger) *UniswapManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniswapManager{
		client:          client,
		cfg:             cfg,
		positionManager: contracts.NewPositionManager(client, common.HexToAddress(cfg.PositionManager)),
		factory:         contracts.NewFactory(client, common.HexToAddress(cfg.Factory)),
		quoter:          contracts.NewQuoter(client, common.HexToAddress(cfg.Quoter)),
		router:          contracts.NewRouter(common.HexToAddress(cfg.Router)),
		weth:            contracts.NewWETH(common.HexToAddress(cfg.WETH)),
		tokenCache:      contracts.NewTokenMetaCache(),
		mintCache:       mintCache,
		prices:          prices,
		logger:          logger,
	}
}

// PositionReport pairs an on-chain position with its computed valuation.
type PositionReport struct {
	TokenID   *big.Int
	Wallet    common.Address
	Pool      common.Address
	Token0    contracts.TokenMeta
	Token1    contracts.TokenMeta
	FeeTier   uint32
	Snapshot  univ3.PositionSnapshot
	Valuation *univ3.ValuationReport
}

// ListPositions enumerates all position NFTs held by a wallet and values
// each one against current pool state.
func (m *UniswapManager) ListPositions(ctx context.Context, wallet common.Address) ([]PositionReport, error) {
	count, err := m.positionManager.BalanceOf(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("position count: %w", err)
	}

	reports := make([]PositionReport, 0, count.Int64())
	for i := int64(0); i < count.Int64(); i++ {
		tokenID, err := m.positionManager.TokenOfOwnerByIndex(ctx, wallet, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("position %d of %s: %w", i, wallet.Hex(), err)
		}
		report, err := m.ValuePosition(ctx, wallet, tokenID)
		if err != nil {
			return nil, fmt.Errorf("value position %s: %w", tokenID, err)
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// ValuePosition reads one position and its pool and computes the valuation.
func (m *UniswapManager) ValuePosition(ctx context.Context, wallet common.Address, tokenID *big.Int) (*PositionReport, error) {
	data, err := m.positionManager.Positions(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	poolAddr, err := m.factory.GetPool(ctx, data.Token0, data.Token1, data.Fee)
	if err != nil {
		return nil, err
	}
	if poolAddr == (common.Address{}) {
		return nil, ErrNoPool
	}
	pool := contracts.NewPool(m.client, poolAddr)

	slot0, err := pool.Slot0(ctx)
	if err != nil {
		return nil, err
	}
	growth0, err := pool.FeeGrowthGlobal0(ctx)
	if err != nil {
		return nil, err
	}
	growth1, err := pool.FeeGrowthGlobal1(ctx)
	if err != nil {
		return nil, err
	}
	lowerTick, err := pool.Ticks(ctx, data.TickLower)
	if err != nil {
		return nil, err
	}
	upperTick, err := pool.Ticks(ctx, data.TickUpper)
	if err != nil {
		return nil, err
	}

	meta0, err := contracts.NewERC20(m.client, data.Token0).CachedMeta(ctx, m.tokenCache, m.logger)
	if err != nil {
		return nil, err
	}
	meta1, err := contracts.NewERC20(m.client, data.Token1).CachedMeta(ctx, m.tokenCache, m.logger)
	if err != nil {
		return nil, err
	}

	createdAt := m.mintTime(ctx, tokenID)

	poolSnapshot := univ3.PoolSnapshot{
		SqrtPriceX96:     slot0.SqrtPriceX96,
		Tick:             slot0.Tick,
		FeeGrowthGlobal0: growth0,
		FeeGrowthGlobal1: growth1,
		Token0Decimals:   meta0.Decimals,
		Token1Decimals:   meta1.Decimals,
	}
	positionSnapshot := univ3.PositionSnapshot{
		Liquidity:            data.Liquidity,
		TickLower:            data.TickLower,
		TickUpper:            data.TickUpper,
		FeeGrowthInside0Last: data.FeeGrowthInside0LastX128,
		FeeGrowthInside1Last: data.FeeGrowthInside1LastX128,
		CreatedAt:            createdAt,
	}
	lower := univ3.TickInfo{
		FeeGrowthOutside0: lowerTick.FeeGrowthOutside0X128,
		FeeGrowthOutside1: lowerTick.FeeGrowthOutside1X128,
	}
	upper := univ3.TickInfo{
		FeeGrowthOutside0: upperTick.FeeGrowthOutside0X128,
		FeeGrowthOutside1: upperTick.FeeGrowthOutside1X128,
	}

	var quoteUSD *big.Rat
	if m.prices != nil {
		if price, err := m.prices.USDPrice(ctx, meta1.Symbol); err == nil {
			quoteUSD = price
		} else {
			m.logger.Debug("quote token price unavailable",
				zap.String("symbol", meta1.Symbol), zap.Error(err))
		}
	}

	valuation, err := univ3.Valuation(positionSnapshot, poolSnapshot, lower, upper, quoteUSD, time.Now())
	if err != nil {
		return nil, err
	}

	return &PositionReport{
		TokenID:   tokenID,
		Wallet:    wallet,
		Pool:      poolAddr,
		Token0:    meta0,
		Token1:    meta1,
		FeeTier:   data.Fee,
		Snapshot:  positionSnapshot,
		Valuation: valuation,
	}, nil
}

// mintTime resolves when the position NFT was minted, consulting the local
// cache before falling back to a chunked log scan. Failures degrade to the
// zero time, the valuation then reports the age as unknown.
func (m *UniswapManager) mintTime(ctx context.Context, tokenID *big.Int) time.Time {
	key := tokenID.String()
	if m.mintCache != nil {
		if minted, ok, err := m.mintCache.GetMint(key); err == nil && ok {
			return minted
		} else if err != nil {
			m.logger.Warn("mint cache read failed", zap.String("token_id", key), zap.Error(err))
		}
	}

	log, err := m.client.FirstMatchingLog(ctx, chain.ScanConfig{
		FromBlock:    m.cfg.HistoryFromBlock,
		ChunkSize:    m.cfg.ScanChunkSize,
		MaxRetries:   m.cfg.MaxRetries,
		RetryBackoff: m.cfg.RetryBackoff,
	}, m.positionManager.Address, m.positionManager.MintTopics(tokenID))
	if err != nil {
		m.logger.Warn("mint scan failed", zap.String("token_id", key), zap.Error(err))
		return time.Time{}
	}
	if log == nil {
		m.logger.Debug("mint transfer not found", zap.String("token_id", key))
		return time.Time{}
	}

	ts, err := m.client.BlockTimestamp(ctx, log.BlockNumber)
	if err != nil {
		m.logger.Warn("mint block timestamp failed", zap.Uint64("block", log.BlockNumber), zap.Error(err))
		return time.Time{}
	}
	minted := time.Unix(int64(ts), 0).UTC()

	if m.mintCache != nil {
		if err := m.mintCache.PutMint(key, log.BlockNumber, minted); err != nil {
			m.logger.Warn("mint cache write failed", zap.String("token_id", key), zap.Error(err))
		}
	}
	return minted
}

// ToRecord flattens a position report for export and persistence.
func ToRecord(report PositionReport, capturedAt time.Time) store.ValuationRecord {
	v := report.Valuation
	record := store.ValuationRecord{
		Wallet:       report.Wallet.Hex(),
		TokenID:      report.TokenID.String(),
		Pool:         report.Pool.Hex(),
		Token0Symbol: report.Token0.Symbol,
		Token1Symbol: report.Token1.Symbol,
		FeeTier:      report.FeeTier,
		TickLower:    report.Snapshot.TickLower,
		TickUpper:    report.Snapshot.TickUpper,
		Liquidity:    report.Snapshot.Liquidity.String(),
		Amount0:      v.Locked0.FloatString(18),
		Amount1:      v.Locked1.FloatString(18),
		Fee0:         v.UncollectedFee0.FloatString(18),
		Fee1:         v.UncollectedFee1.FloatString(18),
		PriceLower:   v.PriceLower.FloatString(18),
		PriceUpper:   v.PriceUpper.FloatString(18),
		Active:       v.Active,
		Closed:       v.Closed,
		AgeDays:      v.AgeDays,
		CapturedAt:   capturedAt,
	}
	if v.TotalValueUSD != nil {
		record.ValueUSD = v.TotalValueUSD.FloatString(2)
	}
	if v.TotalFeesUSD != nil {
		record.FeesUSD = v.TotalFeesUSD.FloatString(2)
	}
	if v.AgeKnown {
		record.APYPercent = v.APYPercent.FloatString(4)
	}
	return record
}
