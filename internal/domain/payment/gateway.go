package payment

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

// DefaultDeclineMessage is reported when a gateway declines without a reason.
const DefaultDeclineMessage = "Payment rejected"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the gateway's answer to a charge request.
type Result struct {
	Success      bool
	ErrorMessage string
}

func Ok() Result { return Result{Success: true} }

func Fail(message string) Result { return Result{Success: false, ErrorMessage: message} }

func (r Result) Status() Status {
	if r.Success {
		return StatusSuccess
	}
	return StatusFailed
}

// DeclineMessage returns the gateway reason, or DefaultDeclineMessage when none was given.
func (r Result) DeclineMessage() string {
	if r.ErrorMessage == "" {
		return DefaultDeclineMessage
	}
	return r.ErrorMessage
}

// Gateway charges an order. Timeouts are the implementation's concern.
type Gateway interface {
	Charge(ctx context.Context, o *order.Order) (Result, error)
}
