package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/adellantado/uniswap-manager/internal/chain"
)

// transferTopic is keccak256("Transfer(address,address,uint256)"), shared
// by ERC20 and ERC721 transfers.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// PositionManager reads and mutates NFT liquidity positions through the
// NonfungiblePositionManager contract.
type PositionManager struct {
	client  *chain.Client
	Address common.Address
}

// PositionData mirrors the positions(tokenId) tuple fields the manager
// cares about.
type PositionData struct {
	Token0                   common.Address
	Token1                   common.Address
	Fee                      uint32
	TickLower                int32
	TickUpper                int32
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
}

// MintParams bundle the mint call arguments.
type MintParams struct {
	Token0         common.Address
	Token1         common.Address
	Fee            uint32
	TickLower      int32
	TickUpper      int32
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

func NewPositionManager(client *chain.Client, address common.Address) *PositionManager {
	return &PositionManager{client: client, Address: address}
}

func (m *PositionManager) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := call(ctx, m.client, m.Address, parsed, "balanceOf", nil, owner)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return balance, nil
}

func (m *PositionManager) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := call(ctx, m.client, m.Address, parsed, "tokenOfOwnerByIndex", nil, owner, index)
	if err != nil {
		return nil, err
	}
	tokenID, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("tokenOfOwnerByIndex: %w", err)
	}
	return tokenID, nil
}

func (m *PositionManager) Positions(ctx context.Context, tokenID *big.Int) (PositionData, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return PositionData{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := call(ctx, m.client, m.Address, parsed, "positions", nil, tokenID)
	if err != nil {
		return PositionData{}, err
	}
	if len(values) < 12 {
		return PositionData{}, fmt.Errorf("positions: unexpected output arity %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions token1: %w", err)
	}
	feeInt, err := asBigInt(values[4])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions fee: %w", err)
	}
	lowerInt, err := asBigInt(values[5])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tickLower: %w", err)
	}
	tickLower, err := int24FromBig(lowerInt)
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tickLower: %w", err)
	}
	upperInt, err := asBigInt(values[6])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(upperInt)
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tickUpper: %w", err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions liquidity: %w", err)
	}
	inside0, err := asBigInt(values[8])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions feeGrowthInside0Last: %w", err)
	}
	inside1, err := asBigInt(values[9])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions feeGrowthInside1Last: %w", err)
	}
	owed0, err := asBigInt(values[10])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tokensOwed0: %w", err)
	}
	owed1, err := asBigInt(values[11])
	if err != nil {
		return PositionData{}, fmt.Errorf("positions tokensOwed1: %w", err)
	}

	return PositionData{
		Token0:                   token0,
		Token1:                   token1,
		Fee:                      uint32(feeInt.Uint64()),
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		Liquidity:                liquidity,
		FeeGrowthInside0LastX128: inside0,
		FeeGrowthInside1LastX128: inside1,
		TokensOwed0:              owed0,
		TokensOwed1:              owed1,
	}, nil
}

// MintCalldata packs a mint(params) call.
func (m *PositionManager) MintCalldata(p MintParams) ([]byte, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	params := struct {
		Token0         common.Address
		Token1         common.Address
		Fee            *big.Int
		TickLower      *big.Int
		TickUpper      *big.Int
		Amount0Desired *big.Int
		Amount1Desired *big.Int
		Amount0Min     *big.Int
		Amount1Min     *big.Int
		Recipient      common.Address
		Deadline       *big.Int
	}{
		Token0:         p.Token0,
		Token1:         p.Token1,
		Fee:            new(big.Int).SetUint64(uint64(p.Fee)),
		TickLower:      big.NewInt(int64(p.TickLower)),
		TickUpper:      big.NewInt(int64(p.TickUpper)),
		Amount0Desired: p.Amount0Desired,
		Amount1Desired: p.Amount1Desired,
		Amount0Min:     p.Amount0Min,
		Amount1Min:     p.Amount1Min,
		Recipient:      p.Recipient,
		Deadline:       p.Deadline,
	}
	data, err := parsed.Pack("mint", params)
	if err != nil {
		return nil, fmt.Errorf("pack mint: %w", err)
	}
	return data, nil
}

// IncreaseLiquidityCalldata packs an increaseLiquidity(params) call.
func (m *PositionManager) IncreaseLiquidityCalldata(tokenID, amount0Desired, amount1Desired, deadline *big.Int) ([]byte, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	params := struct {
		TokenId        *big.Int
		Amount0Desired *big.Int
		Amount1Desired *big.Int
		Amount0Min     *big.Int
		Amount1Min     *big.Int
		Deadline       *big.Int
	}{
		TokenId:        tokenID,
		Amount0Desired: amount0Desired,
		Amount1Desired: amount1Desired,
		Amount0Min:     big.NewInt(0),
		Amount1Min:     big.NewInt(0),
		Deadline:       deadline,
	}
	data, err := parsed.Pack("increaseLiquidity", params)
	if err != nil {
		return nil, fmt.Errorf("pack increaseLiquidity: %w", err)
	}
	return data, nil
}

// DecreaseLiquidityCalldata packs a decreaseLiquidity(params) call.
func (m *PositionManager) DecreaseLiquidityCalldata(tokenID, liquidity, deadline *big.Int) ([]byte, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	params := struct {
		TokenId    *big.Int
		Liquidity  *big.Int
		Amount0Min *big.Int
		Amount1Min *big.Int
		Deadline   *big.Int
	}{
		TokenId:    tokenID,
		Liquidity:  liquidity,
		Amount0Min: big.NewInt(0),
		Amount1Min: big.NewInt(0),
		Deadline:   deadline,
	}
	data, err := parsed.Pack("decreaseLiquidity", params)
	if err != nil {
		return nil, fmt.Errorf("pack decreaseLiquidity: %w", err)
	}
	return data, nil
}

// CollectCalldata packs a collect(params) call taking everything owed.
func (m *PositionManager) CollectCalldata(tokenID *big.Int, recipient common.Address) ([]byte, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	maxUint128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	params := struct {
		TokenId    *big.Int
		Recipient  common.Address
		Amount0Max *big.Int
		Amount1Max *big.Int
	}{
		TokenId:    tokenID,
		Recipient:  recipient,
		Amount0Max: maxUint128,
		Amount1Max: new(big.Int).Set(maxUint128),
	}
	data, err := parsed.Pack("collect", params)
	if err != nil {
		return nil, fmt.Errorf("pack collect: %w", err)
	}
	return data, nil
}

// BurnCalldata packs a burn(tokenId) call.
func (m *PositionManager) BurnCalldata(tokenID *big.Int) ([]byte, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	data, err := parsed.Pack("burn", tokenID)
	if err != nil {
		return nil, fmt.Errorf("pack burn: %w", err)
	}
	return data, nil
}

// MintTopics builds the log filter for the NFT mint transfer of a token id,
// the transfer from the zero address.
func (m *PositionManager) MintTopics(tokenID *big.Int) [][]common.Hash {
	return [][]common.Hash{
		{transferTopic},
		{common.Hash{}},
		nil,
		{common.BigToHash(tokenID)},
	}
}
