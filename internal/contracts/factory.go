package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// Factory resolves pool addresses from the Uniswap V3 factory.
type Factory struct {
	client  *chain.Client
	Address common.Address
}

func NewFactory(client *chain.Client, address common.Address) *Factory {
	return &Factory{client: client, Address: address}
}

// GetPool returns the pool for a token pair and fee tier, or the zero
// address when no such pool was deployed.
func (f *Factory) GetPool(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := call(ctx, f.client, f.Address, parsed, "getPool", nil,
		tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	return pool, nil
}
