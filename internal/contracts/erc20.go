package contracts

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// TokenMeta describes an ERC-20 token.
type TokenMeta struct {
	Address  string
	Symbol   string
	Name     string
	Decimals uint8
}

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// ERC20 wraps read calls and calldata packing for a token contract.
type ERC20 struct {
	client  *chain.Client
	Address common.Address
}

func NewERC20(client *chain.Client, address common.Address) *ERC20 {
	return &ERC20{client: client, Address: address}
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := call(ctx, t.client, t.Address, parsed, "balanceOf", nil, owner)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return balance, nil
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := call(ctx, t.client, t.Address, parsed, "allowance", nil, owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	return allowance, nil
}

// ApproveCalldata packs an approve(spender, amount) call.
func (t *ERC20) ApproveCalldata(spender common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	return data, nil
}

// TransferCalldata packs a transfer(recipient, amount) call.
func (t *ERC20) TransferCalldata(recipient common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := parsed.Pack("transfer", recipient, amount)
	if err != nil {
		return nil, fmt.Errorf("pack transfer: %w", err)
	}
	return data, nil
}

// Meta loads token metadata, falling back to the bytes32 symbol/name ABI
// for pre-standard tokens.
func (t *ERC20) Meta(ctx context.Context, logger *zap.Logger) (TokenMeta, error) {
	meta := TokenMeta{Address: t.Address.Hex()}

	stringABI, err := ERC20ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}
	bytes32ABI, err := ERC20Bytes32ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := call(ctx, t.client, t.Address, stringABI, "decimals", nil)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	if values, err := call(ctx, t.client, t.Address, stringABI, "symbol", nil); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call(ctx, t.client, t.Address, bytes32ABI, "symbol", nil); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else if logger != nil {
		logger.Debug("symbol call failed", zap.String("token", t.Address.Hex()), zap.Error(err))
	}

	if values, err := call(ctx, t.client, t.Address, stringABI, "name", nil); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := call(ctx, t.client, t.Address, bytes32ABI, "name", nil); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else if logger != nil {
		logger.Debug("name call failed", zap.String("token", t.Address.Hex()), zap.Error(err))
	}

	return meta, nil
}

// CachedMeta loads token metadata through the cache.
func (t *ERC20) CachedMeta(ctx context.Context, cache *TokenMetaCache, logger *zap.Logger) (TokenMeta, error) {
	if cache != nil {
		if meta, ok := cache.Get(t.Address); ok {
			return meta, nil
		}
	}
	meta, err := t.Meta(ctx, logger)
	if err != nil {
		return meta, err
	}
	if cache != nil {
		cache.Set(t.Address, meta)
	}
	return meta, nil
}
