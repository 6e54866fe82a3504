package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

// SimulatedProcessor approves every charge after a fixed delay. It backs the
// legacy payment flow and local development, where no real gateway is wired.
type SimulatedProcessor struct {
	delay  time.Duration
	logger *logger.Logger

	// now and newID are swappable in tests.
	now   func() time.Time
	newID func() string
}

func NewSimulatedProcessor(cfg config.PaymentConfig, logg *logger.Logger) *SimulatedProcessor {
	return &SimulatedProcessor{
		delay:  cfg.SimulatedDelay,
		logger: logg,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Charge waits out the configured delay and reports success. Cancelling the
// context aborts the wait without charging.
func (p *SimulatedProcessor) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "payment simulation interrupted")
		case <-timer.C:
		}
	}

	receipt := fmt.Sprintf("sim-%s", p.newID())
	if p.logger != nil {
		lctx := p.logger.WithFields(ctx, map[string]any{
			"operation": "simulated_payment",
			"amount":    req.AmountCents,
			"receipt":   receipt,
		})
		p.logger.Info(lctx, "simulated charge approved")
	}

	return &ChargeResult{
		ReceiptID: receipt,
		Status:    "COMPLETED",
	}, nil
}
