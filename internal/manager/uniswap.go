package manager

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/contracts"
)

// feeTiers are the canonical V3 fee tiers probed when quoting.
var feeTiers = []uint32{100, 500, 3000, 10000}

const (
	txDeadlineSeconds = 600

	// Open-position ranges span -15%/+15% around the current price.
	rangeLowerFactor = 0.85
	rangeUpperFactor = 1.15
)

// SwapPlan is a quoted swap with the transactions needed to execute it.
type SwapPlan struct {
	Plan       *TxPlan
	FeeTier    uint32
	TokenIn    contracts.TokenMeta
	TokenOut   contracts.TokenMeta
	AmountIn   *big.Rat
	AmountOut  *big.Rat
	ExactInput bool
}

func (m *UniswapManager) resolveToken(ctx context.Context, symbol string) (common.Address, contracts.TokenMeta, error) {
	address := m.cfg.ResolveToken(symbol)
	if !common.IsHexAddress(address) {
		return common.Address{}, contracts.TokenMeta{}, fmt.Errorf("unknown token %q", symbol)
	}
	addr := common.HexToAddress(address)
	meta, err := contracts.NewERC20(m.client, addr).CachedMeta(ctx, m.tokenCache, m.logger)
	if err != nil {
		return common.Address{}, contracts.TokenMeta{}, err
	}
	return addr, meta, nil
}

func (m *UniswapManager) deadline(ctx context.Context) (*big.Int, error) {
	header, err := m.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("latest header: %w", err)
	}
	return new(big.Int).SetUint64(header.Time + txDeadlineSeconds), nil
}

// Swap quotes a single-hop swap across all fee tiers and plans the best
// one. Exactly one of amountIn and amountOut must be set: amountIn selects
// exact-input mode, amountOut exact-output mode.
func (m *UniswapManager) Swap(ctx context.Context, wallet common.Address, tokenInSymbol string, amountIn *big.Rat, tokenOutSymbol string, amountOut *big.Rat) (*SwapPlan, error) {
	if (amountIn == nil) == (amountOut == nil) {
		return nil, fmt.Errorf("specify an amount on exactly one side of the swap")
	}

	tokenIn, metaIn, err := m.resolveToken(ctx, tokenInSymbol)
	if err != nil {
		return nil, err
	}
	tokenOut, metaOut, err := m.resolveToken(ctx, tokenOutSymbol)
	if err != nil {
		return nil, err
	}

	exactInput := amountIn != nil
	var fixed *big.Int
	if exactInput {
		fixed, err = ToWei(amountIn, metaIn.Decimals)
	} else {
		fixed, err = ToWei(amountOut, metaOut.Decimals)
	}
	if err != nil {
		return nil, err
	}
	if fixed.Sign() == 0 {
		return nil, fmt.Errorf("swap amount rounds to zero")
	}

	bestTier, bestQuote, err := m.bestQuote(ctx, tokenIn, tokenOut, fixed, exactInput)
	if err != nil {
		return nil, err
	}

	var inWei, outWei *big.Int
	if exactInput {
		inWei, outWei = fixed, bestQuote.Amount
	} else {
		inWei, outWei = bestQuote.Amount, fixed
	}

	deadline, err := m.deadline(ctx)
	if err != nil {
		return nil, err
	}

	steps, err := m.fundingSteps(ctx, wallet, tokenIn, metaIn, inWei, m.router.Address)
	if err != nil {
		return nil, err
	}

	params := contracts.SwapParams{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Fee:       bestTier,
		Recipient: wallet,
		Deadline:  deadline,
	}
	var data []byte
	if exactInput {
		params.Amount = inWei
		params.Limit = big.NewInt(0)
		data, err = m.router.ExactInputSingleCalldata(params)
	} else {
		params.Amount = outWei
		params.Limit = inWei
		data, err = m.router.ExactOutputSingleCalldata(params)
	}
	if err != nil {
		return nil, err
	}
	steps = append(steps, TxStep{
		Label: fmt.Sprintf("swap %s for %s", metaIn.Symbol, metaOut.Symbol),
		To:    m.router.Address,
		Data:  data,
	})

	return &SwapPlan{
		Plan:       &TxPlan{From: wallet, Steps: steps},
		FeeTier:    bestTier,
		TokenIn:    metaIn,
		TokenOut:   metaOut,
		AmountIn:   FromWei(inWei, metaIn.Decimals),
		AmountOut:  FromWei(outWei, metaOut.Decimals),
		ExactInput: exactInput,
	}, nil
}

// bestQuote probes every fee tier that has a deployed pool and returns the
// most favorable quote: maximum output in exact-input mode, minimum input
// in exact-output mode.
func (m *UniswapManager) bestQuote(ctx context.Context, tokenIn, tokenOut common.Address, amount *big.Int, exactInput bool) (uint32, contracts.Quote, error) {
	var bestTier uint32
	var best contracts.Quote

	for _, tier := range feeTiers {
		pool, err := m.factory.GetPool(ctx, tokenIn, tokenOut, tier)
		if err != nil {
			return 0, contracts.Quote{}, err
		}
		if pool == (common.Address{}) {
			continue
		}

		var quote contracts.Quote
		if exactInput {
			quote, err = m.quoter.QuoteExactInputSingle(ctx, tokenIn, tokenOut, tier, amount)
		} else {
			quote, err = m.quoter.QuoteExactOutputSingle(ctx, tokenIn, tokenOut, tier, amount)
		}
		if err != nil {
			m.logger.Debug("quote failed", zap.Uint32("fee_tier", tier), zap.Error(err))
			continue
		}

		better := best.Amount == nil ||
			(exactInput && quote.Amount.Cmp(best.Amount) > 0) ||
			(!exactInput && quote.Amount.Cmp(best.Amount) < 0)
		if better {
			bestTier, best = tier, quote
		}
	}

	if best.Amount == nil {
		return 0, contracts.Quote{}, ErrNoQuote
	}
	return bestTier, best, nil
}

// fundingSteps prepends the transactions needed before a contract can pull
// amount of token from the wallet: a WETH deposit when spending WETH the
// wallet does not hold yet, and an allowance top-up for the spender.
func (m *UniswapManager) fundingSteps(ctx context.Context, wallet, token common.Address, meta contracts.TokenMeta, amount *big.Int, spender common.Address) ([]TxStep, error) {
	var steps []TxStep
	erc20 := contracts.NewERC20(m.client, token)

	balance, err := erc20.BalanceOf(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if balance.Cmp(amount) < 0 {
		if token != m.weth.Address {
			return nil, fmt.Errorf("%w: have %s %s, want %s", ErrInsufficientBalance,
				FromWei(balance, meta.Decimals).FloatString(6), meta.Symbol,
				FromWei(amount, meta.Decimals).FloatString(6))
		}

		shortfall := new(big.Int).Sub(amount, balance)
		ethBalance, err := m.client.EthBalance(ctx, wallet)
		if err != nil {
			return nil, err
		}
		if ethBalance.Cmp(shortfall) < 0 {
			return nil, fmt.Errorf("%w: need %s more WETH and ETH cannot cover it",
				ErrInsufficientBalance, FromWei(shortfall, 18).FloatString(6))
		}
		data, err := m.weth.DepositCalldata()
		if err != nil {
			return nil, err
		}
		steps = append(steps, TxStep{
			Label: "wrap ETH",
			To:    m.weth.Address,
			Data:  data,
			Value: shortfall,
		})
	}

	allowance, err := erc20.Allowance(ctx, wallet, spender)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		data, err := erc20.ApproveCalldata(spender, amount)
		if err != nil {
			return nil, err
		}
		steps = append(steps, TxStep{
			Label: "approve " + meta.Symbol,
			To:    token,
			Data:  data,
		})
	}
	return steps, nil
}

// OpenPosition plans minting a new position around the current price with a
// -15%/+15% range snapped to the pool's tick spacing.
func (m *UniswapManager) OpenPosition(ctx context.Context, wallet common.Address, tokenASymbol string, amountA *big.Rat, tokenBSymbol string, amountB *big.Rat, fee uint32) (*TxPlan, error) {
	tokenA, metaA, err := m.resolveToken(ctx, tokenASymbol)
	if err != nil {
		return nil, err
	}
	tokenB, metaB, err := m.resolveToken(ctx, tokenBSymbol)
	if err != nil {
		return nil, err
	}

	// The pool orders tokens by address.
	token0, meta0, amount0 := tokenA, metaA, amountA
	token1, meta1, amount1 := tokenB, metaB, amountB
	if token1.Cmp(token0) < 0 {
		token0, token1 = token1, token0
		meta0, meta1 = meta1, meta0
		amount0, amount1 = amount1, amount0
	}

	poolAddr, err := m.factory.GetPool(ctx, token0, token1, fee)
	if err != nil {
		return nil, err
	}
	if poolAddr == (common.Address{}) {
		return nil, ErrNoPool
	}

	open, err := m.hasOpenPosition(ctx, wallet, token0, token1, fee)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrDuplicatePosition
	}

	pool := contracts.NewPool(m.client, poolAddr)
	slot0, err := pool.Slot0(ctx)
	if err != nil {
		return nil, err
	}
	immutables, err := pool.Immutables(ctx)
	if err != nil {
		return nil, err
	}

	tickLower := snapDownToSpacing(slot0.Tick+tickOffset(rangeLowerFactor), immutables.TickSpacing)
	tickUpper := snapDownToSpacing(slot0.Tick+tickOffset(rangeUpperFactor), immutables.TickSpacing)
	if tickLower >= tickUpper {
		tickUpper = tickLower + immutables.TickSpacing
	}

	wei0, err := ToWei(amount0, meta0.Decimals)
	if err != nil {
		return nil, err
	}
	wei1, err := ToWei(amount1, meta1.Decimals)
	if err != nil {
		return nil, err
	}

	steps, err := m.fundingSteps(ctx, wallet, token0, meta0, wei0, m.positionManager.Address)
	if err != nil {
		return nil, err
	}
	more, err := m.fundingSteps(ctx, wallet, token1, meta1, wei1, m.positionManager.Address)
	if err != nil {
		return nil, err
	}
	steps = append(steps, more...)

	deadline, err := m.deadline(ctx)
	if err != nil {
		return nil, err
	}
	data, err := m.positionManager.MintCalldata(contracts.MintParams{
		Token0:         token0,
		Token1:         token1,
		Fee:            fee,
		TickLower:      tickLower,
		TickUpper:      tickUpper,
		Amount0Desired: wei0,
		Amount1Desired: wei1,
		Amount0Min:     big.NewInt(0),
		Amount1Min:     big.NewInt(0),
		Recipient:      wallet,
		Deadline:       deadline,
	})
	if err != nil {
		return nil, err
	}
	steps = append(steps, TxStep{
		Label: fmt.Sprintf("mint %s/%s position", meta0.Symbol, meta1.Symbol),
		To:    m.positionManager.Address,
		Data:  data,
	})

	m.logger.Info("planned new position",
		zap.String("pool", poolAddr.Hex()),
		zap.Int32("tick_lower", tickLower),
		zap.Int32("tick_upper", tickUpper))
	return &TxPlan{From: wallet, Steps: steps}, nil
}

func (m *UniswapManager) hasOpenPosition(ctx context.Context, wallet, token0, token1 common.Address, fee uint32) (bool, error) {
	count, err := m.positionManager.BalanceOf(ctx, wallet)
	if err != nil {
		return false, err
	}
	for i := int64(0); i < count.Int64(); i++ {
		tokenID, err := m.positionManager.TokenOfOwnerByIndex(ctx, wallet, big.NewInt(i))
		if err != nil {
			return false, err
		}
		data, err := m.positionManager.Positions(ctx, tokenID)
		if err != nil {
			return false, err
		}
		if data.Token0 == token0 && data.Token1 == token1 && data.Fee == fee && data.Liquidity.Sign() > 0 {
			return true, nil
		}
	}
	return false, nil
}

// AddLiquidity plans topping up an existing position.
func (m *UniswapManager) AddLiquidity(ctx context.Context, wallet common.Address, tokenID *big.Int, amount0, amount1 *big.Rat) (*TxPlan, error) {
	data, err := m.positionManager.Positions(ctx, tokenID)
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

	wei0, err := ToWei(amount0, meta0.Decimals)
	if err != nil {
		return nil, err
	}
	wei1, err := ToWei(amount1, meta1.Decimals)
	if err != nil {
		return nil, err
	}

	steps, err := m.fundingSteps(ctx, wallet, data.Token0, meta0, wei0, m.positionManager.Address)
	if err != nil {
		return nil, err
	}
	more, err := m.fundingSteps(ctx, wallet, data.Token1, meta1, wei1, m.positionManager.Address)
	if err != nil {
		return nil, err
	}
	steps = append(steps, more...)

	deadline, err := m.deadline(ctx)
	if err != nil {
		return nil, err
	}
	callData, err := m.positionManager.IncreaseLiquidityCalldata(tokenID, wei0, wei1, deadline)
	if err != nil {
		return nil, err
	}
	steps = append(steps, TxStep{
		Label: "increase liquidity",
		To:    m.positionManager.Address,
		Data:  callData,
	})
	return &TxPlan{From: wallet, Steps: steps}, nil
}

// RemoveLiquidity plans withdrawing a percentage of a position's liquidity
// and collecting the freed amounts.
func (m *UniswapManager) RemoveLiquidity(ctx context.Context, wallet common.Address, tokenID *big.Int, percent int) (*TxPlan, error) {
	if percent < 1 || percent > 100 {
		return nil, fmt.Errorf("percent must be between 1 and 100, got %d", percent)
	}
	data, err := m.positionManager.Positions(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if data.Liquidity.Sign() == 0 {
		return nil, fmt.Errorf("position %s has no liquidity", tokenID)
	}

	share := new(big.Int).Mul(data.Liquidity, big.NewInt(int64(percent)))
	share.Quo(share, big.NewInt(100))
	if share.Sign() == 0 {
		return nil, fmt.Errorf("%d%% of liquidity rounds to zero", percent)
	}

	deadline, err := m.deadline(ctx)
	if err != nil {
		return nil, err
	}
	decrease, err := m.positionManager.DecreaseLiquidityCalldata(tokenID, share, deadline)
	if err != nil {
		return nil, err
	}
	collect, err := m.positionManager.CollectCalldata(tokenID, wallet)
	if err != nil {
		return nil, err
	}

	return &TxPlan{From: wallet, Steps: []TxStep{
		{Label: fmt.Sprintf("decrease liquidity %d%%", percent), To: m.positionManager.Address, Data: decrease},
		{Label: "collect", To: m.positionManager.Address, Data: collect},
	}}, nil
}

// ClosePosition plans removing all liquidity, collecting everything owed,
// and burning the NFT.
func (m *UniswapManager) ClosePosition(ctx context.Context, wallet common.Address, tokenID *big.Int) (*TxPlan, error) {
	data, err := m.positionManager.Positions(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	var steps []TxStep
	if data.Liquidity.Sign() > 0 {
		deadline, err := m.deadline(ctx)
		if err != nil {
			return nil, err
		}
		decrease, err := m.positionManager.DecreaseLiquidityCalldata(tokenID, data.Liquidity, deadline)
		if err != nil {
			return nil, err
		}
		steps = append(steps, TxStep{Label: "decrease all liquidity", To: m.positionManager.Address, Data: decrease})
	}

	collect, err := m.positionManager.CollectCalldata(tokenID, wallet)
	if err != nil {
		return nil, err
	}
	burn, err := m.positionManager.BurnCalldata(tokenID)
	if err != nil {
		return nil, err
	}
	steps = append(steps,
		TxStep{Label: "collect", To: m.positionManager.Address, Data: collect},
		TxStep{Label: "burn position", To: m.positionManager.Address, Data: burn},
	)
	return &TxPlan{From: wallet, Steps: steps}, nil
}

// CollectFees plans collecting everything owed to a position.
func (m *UniswapManager) CollectFees(ctx context.Context, wallet common.Address, tokenID *big.Int) (*TxPlan, error) {
	collect, err := m.positionManager.CollectCalldata(tokenID, wallet)
	if err != nil {
		return nil, err
	}
	return &TxPlan{From: wallet, Steps: []TxStep{
		{Label: "collect fees", To: m.positionManager.Address, Data: collect},
	}}, nil
}

// tickOffset converts a price factor to a tick delta, rounding toward
// negative infinity.
func tickOffset(factor float64) int32 {
	return int32(math.Floor(math.Log(factor) / math.Log(1.0001)))
}

// snapDownToSpacing rounds a tick down to the nearest usable tick.
func snapDownToSpacing(tick, spacing int32) int32 {
	if spacing <= 0 {
		return tick
	}
	snapped := (tick / spacing) * spacing
	if tick < 0 && tick%spacing != 0 {
		snapped -= spacing
	}
	return snapped
}
