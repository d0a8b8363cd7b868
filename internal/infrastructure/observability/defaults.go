package observability

import (
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

// Label keys per instrument. Call sites must pass exactly these labels.
var (
	counterLabels = map[observability.MetricKey][]string{
		observability.MUsecaseRequests:          {"use_case", "outcome"},
		observability.MHTTPRequests:             {"method", "route", "status"},
		observability.MExternalRequests:         {"peer", "endpoint", "outcome"},
		observability.MCheckoutOutcomes:         {"outcome", "reason"},
		observability.MCheckoutSideEffectFailed: {"effect"},
	}
	histogramLabels = map[observability.MetricKey][]string{
		observability.MUsecaseDuration:         {"use_case"},
		observability.MHTTPRequestDuration:     {"method", "route", "status"},
		observability.MExternalRequestDuration: {"peer", "endpoint"},
	}
	help = map[observability.MetricKey]string{
		observability.MUsecaseRequests:          "Total number of use case invocations.",
		observability.MUsecaseDuration:          "Duration of use case execution in seconds.",
		observability.MHTTPRequests:             "Total number of HTTP requests.",
		observability.MHTTPRequestDuration:      "HTTP request latency in seconds.",
		observability.MExternalRequests:         "Calls made to external collaborators.",
		observability.MExternalRequestDuration:  "Latency of calls to external collaborators in seconds.",
		observability.MCheckoutOutcomes:         "Checkout results by outcome and rejection reason.",
		observability.MCheckoutSideEffectFailed: "Best-effort checkout side effects that failed.",
	}
)

// RegisterDefaultMetrics creates every instrument the service records and returns them keyed
// for New.
func RegisterDefaultMetrics(r prometrics.Registry) (
	map[observability.MetricKey]observability.Counter,
	map[observability.MetricKey]observability.Histogram,
) {
	counters := make(map[observability.MetricKey]observability.Counter, len(counterLabels))
	for key, labels := range counterLabels {
		counters[key] = r.Counter(string(key), help[key], labels...)
	}
	histograms := make(map[observability.MetricKey]observability.Histogram, len(histogramLabels))
	for key, labels := range histogramLabels {
		histograms[key] = r.Histogram(string(key), help[key], nil, labels...)
	}
	return counters, histograms
}
