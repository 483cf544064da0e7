package task

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// DefaultValueDecimals is the native-unit precision of the payable value
// sent with createTask (the relay expects 18-decimal units).
const DefaultValueDecimals = 18

var decimalPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount parses user input in plain decimal notation. Exponents,
// fractions, signs, hex and NaN/Inf are refused.
func ParseAmount(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return nil, fmt.Errorf("%q is not a decimal number", s)
	}
	r, ok := new(big.Rat).SetString(strings.TrimSuffix(s, "."))
	if !ok {
		return nil, fmt.Errorf("%q is not a decimal number", s)
	}
	return r, nil
}

// ToUnits scales amount by 10^decimals. Amounts finer than one unit are an
// error rather than being silently truncated.
func ToUnits(amount *big.Rat, decimals int) (*big.Int, error) {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Rat).Mul(amount, new(big.Rat).SetInt(scale))
	if !scaled.IsInt() {
		return nil, fmt.Errorf("more than %d decimal places", decimals)
	}
	return new(big.Int).Set(scaled.Num()), nil
}

// FormatUnits renders a raw integer amount with the given decimals, trimming
// trailing zeros.
func FormatUnits(raw *big.Int, decimals int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	s := new(big.Rat).SetFrac(raw, scale).FloatString(decimals)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
