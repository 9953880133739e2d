package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CommoditySide says which side of the quantity the commodity is written on.
type CommoditySide int

const (
	// CommodityLeft renders as "GBP 10.00" or "$10.00".
	CommodityLeft CommoditySide = iota
	// CommodityRight renders as "10.00 GBP".
	CommodityRight
)

// Commodity names the unit of an Amount and how it is rendered.
type Commodity struct {
	Name string
	Side CommoditySide
}

// Amount is a signed decimal quantity of a single commodity. Amounts of
// different commodities never compare equal and are never coerced.
type Amount struct {
	Quantity  decimal.Decimal
	Commodity Commodity
}

// NewAmount creates an Amount with the commodity on its conventional side.
func NewAmount(quantity decimal.Decimal, commodity string) Amount {
	return Amount{Quantity: quantity, Commodity: Commodity{Name: commodity, Side: CommodityLeft}}
}

// Equal reports exact equality: same commodity name and the same normalized
// decimal value.
func (a Amount) Equal(b Amount) bool {
	return a.Commodity.Name == b.Commodity.Name && a.Quantity.Equal(b.Quantity)
}

// Neg returns the amount with its quantity negated.
func (a Amount) Neg() Amount {
	return Amount{Quantity: a.Quantity.Neg(), Commodity: a.Commodity}
}

// String renders the amount in Ledger style.
func (a Amount) String() string {
	q := a.Quantity.String()
	if a.Commodity.Name == "" {
		return q
	}
	if a.Commodity.Side == CommodityRight {
		return q + " " + a.Commodity.Name
	}
	// Symbol commodities attach directly; word commodities get a space.
	if isCommoditySymbol(a.Commodity.Name) {
		if strings.HasPrefix(q, "-") {
			return "-" + a.Commodity.Name + q[1:]
		}
		return a.Commodity.Name + q
	}
	return a.Commodity.Name + " " + q
}

func isCommoditySymbol(name string) bool {
	for _, r := range name {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return false
		}
	}
	return name != ""
}
