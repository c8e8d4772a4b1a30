package manager

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// TxStep is one transaction of a planned multi-transaction operation.
type TxStep struct {
	Label string
	To    common.Address
	Data  []byte
	Value *big.Int
}

// TxPlan is an ordered transaction sequence produced by a manager
// operation. Steps must be mined in order, later steps usually depend on
// earlier approvals or deposits.
type TxPlan struct {
	From  common.Address
	Steps []TxStep
}

// GasEstimate pairs a plan step with its estimated gas.
type GasEstimate struct {
	Label string
	Gas   uint64
}

// Executor estimates, signs, and broadcasts transaction plans.
type Executor struct {
	client *chain.Client
	logger *zap.Logger
}

func NewExecutor(client *chain.Client, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: client, logger: logger}
}

// Estimate runs eth_estimateGas for each step without signing anything.
func (e *Executor) Estimate(ctx context.Context, plan *TxPlan) ([]GasEstimate, error) {
	estimates := make([]GasEstimate, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		to := step.To
		msg := ethereum.CallMsg{
			From:  plan.From,
			To:    &to,
			Data:  step.Data,
			Value: step.Value,
		}
		gas, err := e.client.EstimateGas(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("estimate %s: %w", step.Label, err)
		}
		estimates = append(estimates, GasEstimate{Label: step.Label, Gas: gas})
	}
	return estimates, nil
}

// Sign builds and signs each step as a legacy transaction, assigning
// sequential nonces starting at the wallet's pending nonce. It returns the
// signed transactions without broadcasting them.
func (e *Executor) Sign(ctx context.Context, plan *TxPlan, signer *Signer) ([]*types.Transaction, error) {
	if signer == nil {
		return nil, ErrNoKey
	}
	if signer.Address != plan.From {
		return nil, fmt.Errorf("key address %s does not match plan sender %s", signer.Address.Hex(), plan.From.Hex())
	}

	chainID, err := e.client.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	gasPrice, err := e.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	nonce, err := e.client.PendingNonce(ctx, plan.From)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	txSigner := types.LatestSignerForChainID(chainID)
	signed := make([]*types.Transaction, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		to := step.To
		value := step.Value
		if value == nil {
			value = big.NewInt(0)
		}
		msg := ethereum.CallMsg{From: plan.From, To: &to, Data: step.Data, Value: value}
		gas, err := e.client.EstimateGas(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("estimate %s: %w", step.Label, err)
		}

		tx := types.NewTx(&types.LegacyTx{
			Nonce:    nonce + uint64(i),
			To:       &to,
			Value:    value,
			Gas:      gas,
			GasPrice: gasPrice,
			Data:     step.Data,
		})
		tx, err = types.SignTx(tx, txSigner, signer.key)
		if err != nil {
			return nil, fmt.Errorf("sign %s: %w", step.Label, err)
		}
		signed = append(signed, tx)
	}
	return signed, nil
}

// RawHex signs the plan and returns the RLP hex of each transaction.
func (e *Executor) RawHex(ctx context.Context, plan *TxPlan, signer *Signer) ([]string, error) {
	signed, err := e.Sign(ctx, plan, signer)
	if err != nil {
		return nil, err
	}
	raw := make([]string, 0, len(signed))
	for _, tx := range signed {
		encoded, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encode tx: %w", err)
		}
		raw = append(raw, hexutil.Encode(encoded))
	}
	return raw, nil
}

// Send signs the plan and broadcasts the transactions in order.
func (e *Executor) Send(ctx context.Context, plan *TxPlan, signer *Signer) ([]common.Hash, error) {
	signed, err := e.Sign(ctx, plan, signer)
	if err != nil {
		return nil, err
	}
	hashes := make([]common.Hash, 0, len(signed))
	for i, tx := range signed {
		if err := e.client.SendTransaction(ctx, tx); err != nil {
			return hashes, fmt.Errorf("send %s: %w", plan.Steps[i].Label, err)
		}
		e.logger.Info("transaction sent",
			zap.String("step", plan.Steps[i].Label),
			zap.String("hash", tx.Hash().Hex()))
		hashes = append(hashes, tx.Hash())
	}
	return hashes, nil
}
