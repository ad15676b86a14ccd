// Package metrics exposes the marketplace's domain metrics through
// OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the domain instruments. A nil Registry is safe to
// call; every method no-ops.
type Registry struct {
	offersCreated    metric.Int64Counter
	offerTransitions metric.Int64Counter
	reviewsRecorded  metric.Int64Counter
	reviewScores     metric.Int64Histogram
	offerAmounts     metric.Float64Histogram
}

// NewRegistry creates the instrument set on the global meter provider.
func NewRegistry() (*Registry, error) {
	meter := otel.Meter("agroconnect.marketplace")
	r := &Registry{}

	var err error
	if r.offersCreated, err = meter.Int64Counter("offers.created",
		metric.WithDescription("Offers opened by buyers")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if r.offerTransitions, err = meter.Int64Counter("offers.transitions",
		metric.WithDescription("Offer status transitions by target status")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if r.reviewsRecorded, err = meter.Int64Counter("reviews.recorded",
		metric.WithDescription("Reviews stored after completed deals")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if r.reviewScores, err = meter.Int64Histogram("reviews.score",
		metric.WithDescription("Distribution of review scores")); err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	if r.offerAmounts, err = meter.Float64Histogram("offers.amount",
		metric.WithDescription("Offer amounts in the listing currency"),
		metric.WithUnit("BRL")); err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	return r, nil
}

func (r *Registry) OfferCreated(ctx context.Context, amount float64) {
	if r == nil {
		return
	}
	r.offersCreated.Add(ctx, 1)
	r.offerAmounts.Record(ctx, amount)
}

func (r *Registry) OfferTransition(ctx context.Context, to string) {
	if r == nil {
		return
	}
	r.offerTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", to)))
}

func (r *Registry) ReviewRecorded(ctx context.Context, score int) {
	if r == nil {
		return
	}
	r.reviewsRecorded.Add(ctx, 1)
	r.reviewScores.Record(ctx, int64(score))
}
