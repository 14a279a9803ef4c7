package domain

import "time"

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodHosted PaymentMethod = "hosted-payment"
)

// PickupAddress is the address sentinel submitted for pickup orders.
const PickupAddress = "Retiro en local"

// Line is one item added to the in-progress order. Seq is assigned by the
// cart store, is unique for the lifetime of the session, and is the only key
// used for removal; two lines may reference the same product.
type Line struct {
	Product
	Comment string    `json:"comment"`
	AddedAt time.Time `json:"addedAt"`
	AddedBy int       `json:"addedBy"`
	Seq     uint64    `json:"seq"`
}

// Checkout carries the order form fields collected from the user.
type Checkout struct {
	PhoneNumber   string        `json:"phone_number"`
	Address       string        `json:"address"`
	DeliveryType  DeliveryType  `json:"deliveryType"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}
