package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/internal/cart"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/metrics"
	"github.com/kadapaimran/grocery-storefront/pkg/payments"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingRate      = decimal.RequireFromString("15.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// OrderSummary is the legacy flow's price breakdown.
type OrderSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

/// LegacyService is the superseded payment flow: no card validation, a
// simulated fixed-delay charge that always succeeds, then a completed
// payment. Kept as its own endpoint rather than merged into the validated
// flow.
type LegacyService struct {
	cart      cartStore
	processor payments.Processor
	logger    *logger.Logger
	metrics   *metrics.StorefrontMetrics

	now func() time.Time
}

// NewLegacyService builds the legacy payment flow.
func NewLegacyService(cartStore cartStore, processor payments.Processor, logg *logger.Logger, m *metrics.StorefrontMetrics) (*LegacyService, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	return &LegacyService{
		cart:      cartStore,
		processor: processor,
		logger:    logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// Summarize builds the legacy order summary from the current cart: shipping
// is free over 100, flat 15.99 otherwise, and tax is 8% of the subtotal.
func (s *LegacyService) Summarize() OrderSummary {
	subtotal := s.cart.TotalPrice()

	shipping := flatShippingRate
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate).Round(2)

	return OrderSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Submit runs the simulated charge and completes the payment. The only
// failure modes are an empty cart and an interrupted simulation.
func (s *LegacyService) Submit(ctx context.Context) (*cart.PaymentRecord, error) {
	if len(s.cart.Items()) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	summary := s.Summarize()

	if _, err := s.processor.Charge(ctx, payments.ChargeRequest{
		AmountCents: summary.Total.Shift(2).Round(0).IntPart(),
		Currency:    "USD",
	}); err != nil {
		s.metrics.IncCheckout("legacy", "failure")
		return nil, err
	}

	record := s.cart.CompletePayment(ctx, cart.OrderData{
		Subtotal: summary.Subtotal,
		Shipping: summary.Shipping,
		Tax:      summary.Tax,
		Total:    summary.Total,
	})
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart changed during payment")
	}

	s.metrics.IncCheckout("legacy", "success")
	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "record_id", record.ID), "legacy payment completed")
	}
	return record, nil
}
