package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// Pool reads state from a deployed Uniswap V3 pool contract.
type Pool struct {
	client  *chain.Client
	Address common.Address
}

// Slot0 is the mutable head of pool state.
type Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int32
}

// TickData holds the per-tick fee growth accumulators.
type TickData struct {
	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int
	Initialized           bool
}

// PoolImmutables are the pool fields fixed at deployment.
type PoolImmutables struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickSpacing int32
}

func NewPool(client *chain.Client, address common.Address) *Pool {
	return &Pool{client: client, Address: address}
}

func (p *Pool) Slot0(ctx context.Context) (Slot0, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return Slot0{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, p.client, p.Address, parsed, "slot0", nil)
	if err != nil {
		return Slot0{}, err
	}
	if len(values) < 2 {
		return Slot0{}, fmt.Errorf("slot0: unexpected output arity %d", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return Slot0{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return Slot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return Slot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	return Slot0{SqrtPriceX96: sqrt, Tick: tick}, nil
}

func (p *Pool) FeeGrowthGlobal0(ctx context.Context) (*big.Int, error) {
	return p.feeGrowthGlobal(ctx, "feeGrowthGlobal0X128")
}

func (p *Pool) FeeGrowthGlobal1(ctx context.Context) (*big.Int, error) {
	return p.feeGrowthGlobal(ctx, "feeGrowthGlobal1X128")
}

func (p *Pool) feeGrowthGlobal(ctx context.Context, method string) (*big.Int, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, p.client, p.Address, parsed, method, nil)
	if err != nil {
		return nil, err
	}
	growth, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return growth, nil
}

// Ticks reads the fee growth accumulators stored at a tick boundary.
// Uninitialized ticks return zeroed accumulators, which is exactly what
// the fee decomposition expects for them.
func (p *Pool) Ticks(ctx context.Context, tick int32) (TickData, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return TickData{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, p.client, p.Address, parsed, "ticks", nil, big.NewInt(int64(tick)))
	if err != nil {
		return TickData{}, err
	}
	if len(values) < 8 {
		return TickData{}, fmt.Errorf("ticks: unexpected output arity %d", len(values))
	}
	outside0, err := asBigInt(values[2])
	if err != nil {
		return TickData{}, fmt.Errorf("ticks outside0: %w", err)
	}
	outside1, err := asBigInt(values[3])
	if err != nil {
		return TickData{}, fmt.Errorf("ticks outside1: %w", err)
	}
	initialized, _ := values[7].(bool)
	return TickData{
		FeeGrowthOutside0X128: outside0,
		FeeGrowthOutside1X128: outside1,
		Initialized:           initialized,
	}, nil
}

func (p *Pool) Liquidity(ctx context.Context) (*big.Int, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, p.client, p.Address, parsed, "liquidity", nil)
	if err != nil {
		return nil, err
	}
	liq, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	return liq, nil
}

// Immutables loads the deployment-time pool fields.
func (p *Pool) Immutables(ctx context.Context) (PoolImmutables, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := call(ctx, p.client, p.Address, parsed, "token0", nil)
	if err != nil {
		return PoolImmutables{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("token0: %w", err)
	}

	values, err = call(ctx, p.client, p.Address, parsed, "token1", nil)
	if err != nil {
		return PoolImmutables{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("token1: %w", err)
	}

	values, err = call(ctx, p.client, p.Address, parsed, "fee", nil)
	if err != nil {
		return PoolImmutables{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("fee: %w", err)
	}

	values, err = call(ctx, p.client, p.Address, parsed, "tickSpacing", nil)
	if err != nil {
		return PoolImmutables{}, err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return PoolImmutables{}, fmt.Errorf("tick spacing: %w", err)
	}

	return PoolImmutables{
		Token0:      token0,
		Token1:      token1,
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: spacing,
	}, nil
}
