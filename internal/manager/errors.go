package manager

import "errors"

var (
	// ErrDuplicatePosition is returned when a wallet already holds an open
	// position for the same pair and fee tier.
	ErrDuplicatePosition = errors.New("open position for this pair and fee tier already exists")

	// ErrInsufficientBalance is returned when a transfer or swap would
	// exceed the wallet's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoKey is returned when a signing operation targets a wallet with
	// no configured key file.
	ErrNoKey = errors.New("no key file configured for wallet")

	// ErrNoPool is returned when no pool exists for a pair and fee tier.
	ErrNoPool = errors.New("pool does not exist")

	// ErrNoQuote is returned when no fee tier produced a usable quote.
	ErrNoQuote = errors.New("no fee tier returned a quote")
)
