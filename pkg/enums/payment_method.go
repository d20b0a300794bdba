package enums

// PaymentMethod selects the settlement mode for an order: cash settles
// immediately at creation, gateway settles asynchronously after the payment
// processor confirms.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodGateway PaymentMethod = "gateway"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGateway:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}
