package enums

import (
	"fmt"
	"strings"
)

// Currency is a lowercase ISO 4217 code, the form Stripe expects.
type Currency string

const (
	CurrencyJPY Currency = "jpy"
	CurrencyUSD Currency = "usd"
)

// minorUnits is the number of decimal places a unit amount carries.
var minorUnits = map[Currency]int{
	CurrencyJPY: 0,
	CurrencyUSD: 2,
}

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool {
	_, ok := minorUnits[c]
	return ok
}

// MinorUnits reports the decimal places of amounts in c; prices are stored in
// the smallest unit, so 1200 means ¥1200 but $12.00.
func (c Currency) MinorUnits() int {
	return minorUnits[c]
}

func (c Currency) IsZeroDecimal() bool {
	return c.IsValid() && c.MinorUnits() == 0
}

func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", value)
	}
	return c, nil
}
