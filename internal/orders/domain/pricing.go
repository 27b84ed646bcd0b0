package domain

import "github.com/shopspring/decimal"

// Pricing constants, in VND
var (
	TaxRate               = decimal.NewFromFloat(0.10)
	FreeShippingThreshold = decimal.NewFromInt(1_000_000)
	StandardShippingFee   = decimal.NewFromInt(50_000)
)

// Pricing holds the monetary breakdown of an order.
// Total is always Subtotal + Tax + Shipping - Discount.
type Pricing struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal returns unit price × quantity
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// ShippingFor returns the shipping fee for a subtotal; the threshold is inclusive.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return StandardShippingFee
}

// CalculatePricing computes the pricing breakdown for priced items.
func CalculatePricing(items []OrderItem) Pricing {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}

	p := Pricing{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(TaxRate),
		Shipping: ShippingFor(subtotal),
		Discount: decimal.Zero,
	}
	p.Total = p.Subtotal.Add(p.Tax).Add(p.Shipping).Sub(p.Discount)
	return p
}
