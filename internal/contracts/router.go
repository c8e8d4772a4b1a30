package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Router packs calldata for the Uniswap V3 SwapRouter.
type Router struct {
	Address common.Address
}

// SwapParams bundle a single-hop router call.
type SwapParams struct {
	TokenIn   common.Address
	TokenOut  common.Address
	Fee       uint32
	Recipient common.Address
	Deadline  *big.Int

	// Exact-input: Amount is amountIn, Limit is amountOutMinimum.
	// Exact-output: Amount is amountOut, Limit is amountInMaximum.
	Amount *big.Int
	Limit  *big.Int
}

func NewRouter(address common.Address) *Router {
	return &Router{Address: address}
}

// ExactInputSingleCalldata packs an exactInputSingle(params) call.
func (r *Router) ExactInputSingleCalldata(p SwapParams) ([]byte, error) {
	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	params := struct {
		TokenIn           common.Address
		TokenOut          common.Address
		Fee               *big.Int
		Recipient         common.Address
		Deadline          *big.Int
		AmountIn          *big.Int
		AmountOutMinimum  *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		Deadline:          p.Deadline,
		AmountIn:          p.Amount,
		AmountOutMinimum:  p.Limit,
		SqrtPriceLimitX96: big.NewInt(0),
	}
	data, err := parsed.Pack("exactInputSingle", params)
	if err != nil {
		return nil, fmt.Errorf("pack exactInputSingle: %w", err)
	}
	return data, nil
}

// ExactOutputSingleCalldata packs an exactOutputSingle(params) call.
func (r *Router) ExactOutputSingleCalldata(p SwapParams) ([]byte, error) {
	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	params := struct {
		TokenIn           common.Address
		TokenOut          common.Address
		Fee               *big.Int
		Recipient         common.Address
		Deadline          *big.Int
		AmountOut         *big.Int
		AmountInMaximum   *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		Deadline:          p.Deadline,
		AmountOut:         p.Amount,
		AmountInMaximum:   p.Limit,
		SqrtPriceLimitX96: big.NewInt(0),
	}
	data, err := parsed.Pack("exactOutputSingle", params)
	if err != nil {
		return nil, fmt.Errorf("pack exactOutputSingle: %w", err)
	}
	return data, nil
}
