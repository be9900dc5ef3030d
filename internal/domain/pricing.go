package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyScale is the number of decimal places kept for currency amounts
const MoneyScale = 2

// Totals is the computed pricing of a quote or order
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineSubtotal returns quantity*unitPrice - discount.
// The discount is a flat amount in currency units.
func LineSubtotal(quantity int, unitPrice, discount decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, NewValidationError("quantity", "must be a positive integer")
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, NewValidationError("unitPrice", "must not be negative")
	}
	if discount.IsNegative() {
		return decimal.Zero, NewValidationError("discount", "must not be negative")
	}
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
	if subtotal.IsNegative() {
		return decimal.Zero, ErrInvalidDiscount
	}
	return subtotal, nil
}

// ComputeTotals derives subtotal, tax and total from the line items. Each line's
// Subtotal field is refreshed in place.
func ComputeTotals(items []LineItem, taxRate, documentDiscount decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Totals{}, NewValidationError("taxRate", "must be between 0 and 1")
	}
	if documentDiscount.IsNegative() {
		return Totals{}, NewValidationError("discount", "must not be negative")
	}

	subtotal := decimal.Zero
	for i := range items {
		line, err := LineSubtotal(items[i].Quantity, items[i].UnitPrice, items[i].Discount)
		if err != nil {
			return Totals{}, err
		}
		items[i].Subtotal = line
		subtotal = subtotal.Add(line)
	}

	taxAmount := subtotal.Mul(taxRate).Round(MoneyScale)
	total := subtotal.Add(taxAmount).Sub(documentDiscount)
	if total.IsNegative() {
		return Totals{}, ErrInvalidDiscount
	}

	return Totals{Subtotal: subtotal, TaxAmount: taxAmount, Total: total}, nil
}

var arsPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatARS renders an amount as Argentine pesos, e.g. "$ 1.234,56"
func FormatARS(amount decimal.Decimal) string {
	f, _ := amount.Round(MoneyScale).Float64()
	return arsPrinter.Sprintf("$ %v", number.Decimal(f, number.Scale(MoneyScale)))
}
