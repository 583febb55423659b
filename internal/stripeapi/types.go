package stripeapi

// Price — цена продукта в Stripe.
type Price struct {
	ID         string `json:"id"`
	Currency   string `json:"currency"`
	UnitAmount int64  `json:"unit_amount"`
	Product    string `json:"product"`
}

// CheckoutSession — сессия оплаты Stripe Checkout.
type CheckoutSession struct {
	ID            string          `json:"id"`
	URL           string          `json:"url"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CustomerEmail string          `json:"customer_email"`
	CustomerInfo  *CustomerDetail `json:"customer_details"`
}

// CustomerDetail — сведения о плательщике из завершённой сессии.
type CustomerDetail struct {
	Email string `json:"email"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
