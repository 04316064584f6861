package service

import (
	"go.opentelemetry.io/otel/metric"
)

const meterName = "product-service"

type serviceMetrics struct {
	created           metric.Int64Counter
	purchasedUnits    metric.Int64Counter
	purchasesRejected metric.Int64Counter
}

func newServiceMetrics(mp metric.MeterProvider) (*serviceMetrics, error) {
	meter := mp.Meter(meterName)

	created, err := meter.Int64Counter("products_created",
		metric.WithDescription("Number of products registered"))
	if err != nil {
		return nil, err
	}
	purchasedUnits, err := meter.Int64Counter("products_purchased_units",
		metric.WithDescription("Number of product units sold"))
	if err != nil {
		return nil, err
	}
	purchasesRejected, err := meter.Int64Counter("purchases_rejected",
		metric.WithDescription("Number of purchases rejected for insufficient stock"))
	if err != nil {
		return nil, err
	}
	return &serviceMetrics{
		created:           created,
		purchasedUnits:    purchasedUnits,
		purchasesRejected: purchasesRejected,
	}, nil
}
