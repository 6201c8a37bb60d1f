package delivery

import "basketly/models"

// DefaultInvoiceFee is the fixed fee charged when a printed invoice is requested.
const DefaultInvoiceFee = 4.0

// CalculateTax returns GST plus cess for a single cart line.
func CalculateTax(item models.CartItem) float64 {
	line := item.LineTotal()
	return line*item.GSTRate/100 + line*item.CessRate/100
}

// Aggregate computes the checkout total for a cart and the current selection.
// It holds no state and is safe to call on every pass.
func Aggregate(in models.PricingInputs) models.PricingBreakdown {
	var out models.PricingBreakdown

	for _, item := range in.Items {
		out.ItemSubtotal += item.LineTotal()
		out.TaxTotal += CalculateTax(item)
	}
	if in.InvoiceFeeEnabled {
		out.InvoiceFee = in.InvoiceFee
	}
	if in.Selection.IsSelected() {
		out.SlotCharge = in.Selection.Slot.DeliveryCharge
		out.CheckoutEligible = in.Selection.Slot.MeetsMinimum(out.ItemSubtotal)
	}
	out.Discount = in.DiscountAmount
	out.FinalTotal = out.ItemSubtotal + out.TaxTotal + out.InvoiceFee + out.SlotCharge - out.Discount
	return out
}
