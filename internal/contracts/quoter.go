package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// Quoter asks QuoterV2 for swap quotes. The quoter methods are declared
// nonpayable but revert-return their result, so they are still executed
// through eth_call.
type Quoter struct {
	client  *chain.Client
	Address common.Address
}

// Quote is the result of a single-hop quote.
type Quote struct {
	Amount      *big.Int
	GasEstimate *big.Int
}

func NewQuoter(client *chain.Client, address common.Address) *Quoter {
	return &Quoter{client: client, Address: address}
}

// QuoteExactInputSingle quotes the output amount for a fixed input.
func (q *Quoter) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (Quote, error) {
	parsed, err := QuoterV2ABI()
	if err != nil {
		return Quote{}, fmt.Errorf("parse quoter abi: %w", err)
	}
	params := struct {
		TokenIn           common.Address
		TokenOut          common.Address
		AmountIn          *big.Int
		Fee               *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               new(big.Int).SetUint64(uint64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	}
	values, err := call(ctx, q.client, q.Address, parsed, "quoteExactInputSingle", nil, params)
	if err != nil {
		return Quote{}, err
	}
	return quoteFromOutputs("quoteExactInputSingle", values)
}

// QuoteExactOutputSingle quotes the input amount for a fixed output.
func (q *Quoter) QuoteExactOutputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountOut *big.Int) (Quote, error) {
	parsed, err := QuoterV2ABI()
	if err != nil {
		return Quote{}, fmt.Errorf("parse quoter abi: %w", err)
	}
	params := struct {
		TokenIn           common.Address
		TokenOut          common.Address
		Amount            *big.Int
		Fee               *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		Amount:            amountOut,
		Fee:               new(big.Int).SetUint64(uint64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	}
	values, err := call(ctx, q.client, q.Address, parsed, "quoteExactOutputSingle", nil, params)
	if err != nil {
		return Quote{}, err
	}
	return quoteFromOutputs("quoteExactOutputSingle", values)
}

func quoteFromOutputs(method string, values []interface{}) (Quote, error) {
	if len(values) < 4 {
		return Quote{}, fmt.Errorf("%s: unexpected output arity %d", method, len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return Quote{}, fmt.Errorf("%s amount: %w", method, err)
	}
	gas, err := asBigInt(values[3])
	if err != nil {
		return Quote{}, fmt.Errorf("%s gas estimate: %w", method, err)
	}
	return Quote{Amount: amount, GasEstimate: gas}, nil
}
