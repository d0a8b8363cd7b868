package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// Instruments holds the logger, tracer and RED instruments a use case records against.
type Instruments struct {
	Log    observability.Logger
	Tracer observability.Tracer

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewInstruments resolves instruments from tel, falling back to no-ops when tel is nil.
func NewInstruments(tel observability.Observability, service string) Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return Instruments{
		Log:          tel.Logger().With(observability.F("service", service)),
		Tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Done records one use case invocation and returns its latency in seconds.
func (i Instruments) Done(useCase, outcome string, start time.Time) float64 {
	lat := time.Since(start).Seconds()
	if i.reqCounter != nil {
		i.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
	if i.durHistogram != nil {
		i.durHistogram.Observe(lat,
			observability.L("use_case", useCase),
		)
	}
	return lat
}

// CallExternal runs fn under a timeout and records it as a call to peer/endpoint.
// A deadline hit by fn is reported as "canceled" and returned as the context error.
func (i Instruments) CallExternal(ctx context.Context, timeout time.Duration, peer, endpoint string, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	start := time.Now()
	err := fn(callCtx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if callCtx.Err() != nil {
		outcome = "canceled"
		err = callCtx.Err()
	}
	cancel()

	i.ObserveExternal(peer, endpoint, outcome, start)
	return err
}

// ObserveExternal records one finished call to peer/endpoint.
func (i Instruments) ObserveExternal(peer, endpoint, outcome string, start time.Time) {
	if i.extCounter != nil {
		i.extCounter.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if i.extHistogram != nil {
		i.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
}
