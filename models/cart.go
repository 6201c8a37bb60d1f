package models

// CartItem is a cart line as supplied by the cart surface.
type CartItem struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity" binding:"gte=0"`
	GSTRate   float64 `json:"gstRate" binding:"gte=0"`  // percent
	CessRate  float64 `json:"cessRate" binding:"gte=0"` // percent
}

// LineTotal is price times quantity, before tax.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartState is everything the cart surface feeds into pricing.
type CartState struct {
	Items             []CartItem `json:"items" binding:"dive"`
	InvoiceFeeEnabled bool       `json:"invoiceFeeEnabled"`
	DiscountAmount    float64    `json:"discountAmount" binding:"gte=0"`
}

// Subtotal sums the line totals of the cart.
func (c CartState) Subtotal() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// PricingInputs is the ephemeral input of a single pricing pass.
type PricingInputs struct {
	Items             []CartItem
	InvoiceFeeEnabled bool
	InvoiceFee        float64
	Selection         Selection
	DiscountAmount    float64
}

// PricingBreakdown is the result of a pricing pass.
type PricingBreakdown struct {
	ItemSubtotal     float64 `json:"itemSubtotal"`
	TaxTotal         float64 `json:"taxTotal"`
	InvoiceFee       float64 `json:"invoiceFee"`
	SlotCharge       float64 `json:"slotCharge"`
	Discount         float64 `json:"discount"`
	FinalTotal       float64 `json:"finalTotal"`
	CheckoutEligible bool    `json:"checkoutEligible"`
}
