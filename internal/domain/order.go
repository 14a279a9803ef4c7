package domain

// OrderLine is the per-item slice of the order-creation payload.
type OrderLine struct {
	ID      int    `json:"id"`
	Comment string `json:"comment"`
}

// OrderRequest is the order-creation body. Field names are fixed by the
// backend contract.
type OrderRequest struct {
	Order         []OrderLine   `json:"order"`
	Price         float64       `json:"price"`
	PhoneNumber   string        `json:"phone_number"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	DeliveryType  DeliveryType  `json:"deliveryType"`
	UserID        int           `json:"userId"`
	PreferenceID  string        `json:"preferenceId,omitempty"`
}

// PreferenceItem is one payable line shaped for the hosted-payment provider.
// Quantity is always 1; each cart line becomes its own item.
type PreferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CurrencyID string  `json:"currency_id"`
	PictureURL *string `json:"picture_url"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

// Preference is the provider-issued hosted-payment record. InitPoint is the
// hosted-checkout redirect URL.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}
