// Package money holds VND amount helpers. Prices in this system are whole
// dong; decimals only appear transiently while multiplying and summing.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VND is an amount in Vietnamese dong.
type VND int64

// LineTotal returns price * quantity.
func LineTotal(unitPrice VND, quantity int) VND {
	total := decimal.NewFromInt(int64(unitPrice)).Mul(decimal.NewFromInt(int64(quantity)))
	return VND(total.IntPart())
}

// Sum adds the provided amounts.
func Sum(amounts ...VND) VND {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromInt(int64(a)))
	}
	return VND(total.IntPart())
}

// Format renders the amount with vi-VN thousands grouping, e.g. 100000 -> "100.000".
func (v VND) Format() string {
	digits := decimal.NewFromInt(int64(v)).Abs().String()
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	out := strings.Join(groups, ".")
	if v < 0 {
		return "-" + out
	}
	return out
}

// Int64 returns the raw amount.
func (v VND) Int64() int64 {
	return int64(v)
}
