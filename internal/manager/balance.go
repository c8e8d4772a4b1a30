package manager

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/chain"
	"github.com/adellantado/uniswap-manager/internal/config"
	"github.com/adellantado/uniswap-manager/internal/contracts"
)

// PriceSource quotes a token symbol in USD.
type PriceSource interface {
	USDPrice(ctx context.Context, symbol string) (*big.Rat, error)
}

// BalanceRow is one line of a wallet balance listing.
type BalanceRow struct {
	Symbol string
	Amount *big.Rat
	// USD is nil when no price was available.
	USD *big.Rat
}

// BalanceManager reads ETH and ERC-20 balances and builds transfer plans.
type BalanceManager struct {
	client     *chain.Client
	cfg        config.Config
	tokenCache *contracts.TokenMetaCache
	prices     PriceSource
	logger     *zap.Logger
}

func NewBalanceManager(client *chain.Client, cfg config.Config, prices PriceSource, logger *zap.Logger) *BalanceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceManager{
		client:     client,
		cfg:        cfg,
		tokenCache: contracts.NewTokenMetaCache(),
		prices:     prices,
		logger:     logger,
	}
}

// EthBalance returns the wallet's ETH balance in whole ether.
func (m *BalanceManager) EthBalance(ctx context.Context, wallet common.Address) (*big.Rat, error) {
	wei, err := m.client.EthBalance(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("eth balance: %w", err)
	}
	return FromWei(wei, 18), nil
}

// TokenBalance returns the wallet's balance of one ERC-20 token along with
// the token metadata.
func (m *BalanceManager) TokenBalance(ctx context.Context, wallet, token common.Address) (*big.Rat, contracts.TokenMeta, error) {
	erc20 := contracts.NewERC20(m.client, token)
	meta, err := erc20.CachedMeta(ctx, m.tokenCache, m.logger)
	if err != nil {
		return nil, meta, fmt.Errorf("token metadata for %s: %w", token.Hex(), err)
	}
	raw, err := erc20.BalanceOf(ctx, wallet)
	if err != nil {
		return nil, meta, fmt.Errorf("balance of %s: %w", meta.Symbol, err)
	}
	return FromWei(raw, meta.Decimals), meta, nil
}

// Balances lists the ETH balance plus the requested token symbols, with USD
// values when the price source can quote them.
func (m *BalanceManager) Balances(ctx context.Context, wallet common.Address, symbols []string) ([]BalanceRow, error) {
	eth, err := m.EthBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}
	rows := []BalanceRow{{Symbol: "ETH", Amount: eth, USD: m.usdValue(ctx, "ETH", eth)}}

	for _, symbol := range symbols {
		address := m.cfg.ResolveToken(symbol)
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("unknown token %q", symbol)
		}
		amount, meta, err := m.TokenBalance(ctx, wallet, common.HexToAddress(address))
		if err != nil {
			return nil, err
		}
		name := meta.Symbol
		if name == "" {
			name = symbol
		}
		rows = append(rows, BalanceRow{Symbol: name, Amount: amount, USD: m.usdValue(ctx, name, amount)})
	}
	return rows, nil
}

func (m *BalanceManager) usdValue(ctx context.Context, symbol string, amount *big.Rat) *big.Rat {
	if m.prices == nil || amount == nil {
		return nil
	}
	price, err := m.prices.USDPrice(ctx, symbol)
	if err != nil {
		m.logger.Debug("usd price unavailable", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	return new(big.Rat).Mul(amount, price)
}

// SendPlan builds a one-step plan transferring ETH or an ERC-20 token,
// rejecting amounts above the current balance.
func (m *BalanceManager) SendPlan(ctx context.Context, from, to common.Address, token string, amount *big.Rat) (*TxPlan, error) {
	if token == "" || token == "ETH" {
		balance, err := m.EthBalance(ctx, from)
		if err != nil {
			return nil, err
		}
		if amount.Cmp(balance) > 0 {
			return nil, fmt.Errorf("%w: have %s ETH, want %s", ErrInsufficientBalance,
				balance.FloatString(6), amount.FloatString(6))
		}
		wei, err := ToWei(amount, 18)
		if err != nil {
			return nil, err
		}
		return &TxPlan{
			From:  from,
			Steps: []TxStep{{Label: "send ETH", To: to, Value: wei}},
		}, nil
	}

	address := m.cfg.ResolveToken(token)
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("unknown token %q", token)
	}
	tokenAddr := common.HexToAddress(address)

	balance, meta, err := m.TokenBalance(ctx, from, tokenAddr)
	if err != nil {
		return nil, err
	}
	if amount.Cmp(balance) > 0 {
		return nil, fmt.Errorf("%w: have %s %s, want %s", ErrInsufficientBalance,
			balance.FloatString(6), meta.Symbol, amount.FloatString(6))
	}

	raw, err := ToWei(amount, meta.Decimals)
	if err != nil {
		return nil, err
	}
	data, err := contracts.NewERC20(m.client, tokenAddr).TransferCalldata(to, raw)
	if err != nil {
		return nil, err
	}
	return &TxPlan{
		From:  from,
		Steps: []TxStep{{Label: "transfer " + meta.Symbol, To: tokenAddr, Data: data}},
	}, nil
}
