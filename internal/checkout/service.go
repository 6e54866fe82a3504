package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/metrics"
	"github.com/kadapaimran/grocery-storefront/pkg/payments"
)

type cartStore interface {
	Items() []cart.Item
	TotalPrice() decimal.Decimal
	CompletePayment(ctx context.Context, order cart.OrderData) *cart.PaymentRecord
}

// Service runs the validated checkout flow against a payment processor.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Confirmation, error)
}

type service struct {
	cart      cartStore
	processor payments.Processor
	currency  string
	logger    *logger.Logger
	metrics   *metrics.StorefrontMetrics

	now func() time.Time
}

// NewService builds the checkout service.
func NewService(cartStore cartStore, processor payments.Processor, cfg config.PaymentConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	return &service{
		cart:      cartStore,
		processor: processor,
		currency:  cfg.Currency,
		logger:    logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// SubmitInput is the checkout submission: the billing form plus the payment
// token the card form produced.
type SubmitInput struct {
	Form
	PaymentToken string `json:"paymentToken"`
}

// Confirmation is returned after a successful charge. The card is reported
// by its last four digits only.
type Confirmation struct {
	RecordID   int64           `json:"recordId"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
	Items      []cart.Item     `json:"items"`
	CardLast4  string          `json:"cardLast4"`
	Email      string          `json:"email"`
	Receipt    string          `json:"receipt,omitempty"`
}

// Submit validates the form, charges the processor, and on success completes
// the payment against the cart. A failed charge leaves the cart untouched.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Confirmation, error) {
	if fieldErrs := ValidateForm(input.Form, s.now()); len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").WithDetails(fieldErrs)
	}
	if len(s.cart.Items()) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	number := stripSpaces(input.CardNumber)
	total := s.cart.TotalPrice()

	result, err := s.processor.Charge(ctx, payments.ChargeRequest{
		AmountCents: total.Shift(2).Round(0).IntPart(),
		Currency:    s.currency,
		SourceID:    input.PaymentToken,
		Note:        fmt.Sprintf("grocery order for %s", input.Email),
	})
	if err != nil {
		s.metrics.IncCheckout("refined", "failure")
		if s.logger != nil {
			s.logger.Error(ctx, "checkout charge failed", err)
		}
		return nil, err
	}

	order := cart.OrderData{
		Total:     total,
		Email:     input.Email,
		CardLast4: lastFour(number),
		Reference: result.ReceiptID,
	}
	record := s.cart.CompletePayment(ctx, order)
	if record == nil {
		// Guarded above; only reachable if the cart emptied mid-flight.
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")
	}

	s.metrics.IncCheckout("refined", "success")
	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "record_id", record.ID), "checkout completed")
	}

	return &Confirmation{
		RecordID:   record.ID,
		OrderTotal: total,
		Items:      record.Items,
		CardLast4:  order.CardLast4,
		Email:      input.Email,
		Receipt:    result.ReceiptID,
	}, nil
}

func lastFour(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
