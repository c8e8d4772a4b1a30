package manager

import (
	"fmt"
	"math/big"
	"strings"
)

// SplitTokenAmount parses the CLI token argument syntax "TOKEN" or
// "TOKEN=1.5" into a symbol and an optional decimal amount.
func SplitTokenAmount(arg string) (string, *big.Rat, error) {
	token, amount, found := strings.Cut(arg, "=")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, fmt.Errorf("empty token in %q", arg)
	}
	if !found {
		return token, nil, nil
	}
	value, err := ParseDecimal(strings.TrimSpace(amount))
	if err != nil {
		return "", nil, fmt.Errorf("amount for %s: %w", token, err)
	}
	return token, value, nil
}

// ParseDecimal parses a non-negative decimal literal into an exact rational.
func ParseDecimal(s string) (*big.Rat, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(s, "/eE") {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	value, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return value, nil
}

// ToWei scales a decimal token amount to its integer representation,
// truncating anything below one base unit.
func ToWei(amount *big.Rat, decimals uint8) (*big.Int, error) {
	if amount == nil {
		return nil, fmt.Errorf("nil amount")
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %s", amount.RatString())
	}
	scaled := new(big.Rat).Mul(amount, new(big.Rat).SetInt(pow10(decimals)))
	return new(big.Int).Quo(scaled.Num(), scaled.Denom()), nil
}

// FromWei converts an integer token amount to an exact decimal value.
func FromWei(value *big.Int, decimals uint8) *big.Rat {
	if value == nil {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).Set(value), pow10(decimals))
}

// WeiPerGwei converts a wei gas price to gwei for display.
func WeiPerGwei(wei *big.Int) *big.Rat {
	return FromWei(wei, 9)
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
