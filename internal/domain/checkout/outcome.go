package checkout

import "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"

// StatusPendingPayment marks an authorized but unsettled checkout.
const StatusPendingPayment = "Pending Payment"

type Kind string

const (
	KindConfirmed Kind = "confirmed"
	KindRejected  Kind = "rejected"
)

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOutOfStock      Reason = "out_of_stock"
	ReasonPaymentDeclined Reason = "payment_declined"
)

const (
	MessageNoStock             = "No stock available"
	MessageProductNotAvailable = "Product not available"
)

// Outcome is the result of a checkout. Rejections are expected business results, not faults.
type Outcome struct {
	Kind    Kind
	Status  string
	Order   *order.Order
	Reason  Reason
	Message string
}

func Confirmed(o *order.Order) *Outcome {
	return &Outcome{Kind: KindConfirmed, Status: StatusPendingPayment, Order: o}
}

func Rejected(reason Reason, message string) *Outcome {
	return &Outcome{Kind: KindRejected, Reason: reason, Message: message}
}

func (o *Outcome) IsConfirmed() bool { return o != nil && o.Kind == KindConfirmed }

// Label is a low-cardinality value for metrics and logs.
func (o *Outcome) Label() string {
	if o == nil {
		return "error"
	}
	if o.Kind == KindConfirmed {
		return string(KindConfirmed)
	}
	return string(o.Reason)
}
