package cli

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/params"
)

// parseWei parses a decimal or 0x-prefixed hex amount of wei.
func parseWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, usageErrorf("empty wei amount")
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, usageErrorf("invalid wei amount %q", s)
	}
	return v, nil
}

// parseEther parses a decimal ether amount such as "0.5" into wei.
// Amounts finer than one wei are rejected.
func parseEther(s string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() < 0 {
		return nil, usageErrorf("invalid ether amount %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.Ether))
	if !r.IsInt() {
		return nil, usageErrorf("ether amount %q is not a whole number of wei", s)
	}
	return new(big.Int).Set(r.Num()), nil
}

// formatEther renders wei as a decimal ether string without trailing zeros.
func formatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// amountFlags reads a payment given as --value (wei) or --ether.
// It returns nil when neither flag is set.
type amountFlags struct {
	value string
	ether string
}

func (f amountFlags) parse() (*big.Int, error) {
	switch {
	case f.value != "" && f.ether != "":
		return nil, usageErrorf("--value and --ether are mutually exclusive")
	case f.value != "":
		return parseWei(f.value)
	case f.ether != "":
		return parseEther(f.ether)
	default:
		return nil, nil
	}
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
