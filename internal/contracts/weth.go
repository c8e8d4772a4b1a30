package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WETH packs calldata for the canonical wrapped-ether contract.
type WETH struct {
	Address common.Address
}

func NewWETH(address common.Address) *WETH {
	return &WETH{Address: address}
}

// DepositCalldata packs a deposit() call. The wrap amount travels as the
// transaction value.
func (w *WETH) DepositCalldata() ([]byte, error) {
	parsed, err := WETH9ABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	data, err := parsed.Pack("deposit")
	if err != nil {
		return nil, fmt.Errorf("pack deposit: %w", err)
	}
	return data, nil
}

// WithdrawCalldata packs a withdraw(wad) call.
func (w *WETH) WithdrawCalldata(amount *big.Int) ([]byte, error) {
	parsed, err := WETH9ABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	data, err := parsed.Pack("withdraw", amount)
	if err != nil {
		return nil, fmt.Errorf("pack withdraw: %w", err)
	}
	return data, nil
}
