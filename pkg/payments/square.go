package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errInvalidSquareEnv    = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// SquareProcessor charges cards through the Square Payments API.
type SquareProcessor struct {
	sdk         *sqclient.Client
	environment string
	logger      *logger.Logger
}

// NewSquareProcessor validates the credentials and builds the SDK client.
func NewSquareProcessor(ctx context.Context, cfg config.PaymentConfig, logg *logger.Logger) (*SquareProcessor, error) {
	env, err := normalizeEnv(cfg.SquareEnv)
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.SquareToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURLs[env]),
		sqoption.WithToken(accessToken),
	)

	p := &SquareProcessor{
		sdk:         sdk,
		environment: env,
		logger:      logg,
	}
	if logg != nil {
		logg.Info(ctx, "square processor initialized")
	}
	return p, nil
}

// Environment reports the normalized Square environment.
func (p *SquareProcessor) Environment() string {
	if p == nil {
		return ""
	}
	return p.environment
}

// Charge submits a payment for the provided amount and source token.
func (p *SquareProcessor) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if strings.TrimSpace(req.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}

	sqReq := &sq.CreatePaymentRequest{
		IdempotencyKey: fmt.Sprintf("checkout-%s", uuid.NewString()),
		SourceID:       req.SourceID,
		AmountMoney:    moneyPtr(req.AmountCents, req.Currency),
	}
	if trimmed := strings.TrimSpace(req.Note); trimmed != "" {
		sqReq.Note = &trimmed
	}
	if trimmed := strings.TrimSpace(req.ReferenceID); trimmed != "" {
		sqReq.ReferenceID = &trimmed
	}

	if p.logger != nil {
		lctx := p.logger.WithFields(ctx, map[string]any{
			"operation": "create_payment",
			"amount":    req.AmountCents,
		})
		p.logger.Info(lctx, "square request")
	}

	resp, err := p.sdk.Payments.Create(ctx, sqReq)
	if err != nil {
		return nil, p.mapSquareError(err)
	}

	payment := resp.GetPayment()
	return &ChargeResult{
		ReceiptID: stringValue(payment.GetID()),
		Status:    stringValue(payment.GetStatus()),
	}, nil
}

func (p *SquareProcessor) mapSquareError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *sqcore.APIError
	if errors.As(err, &apiErr) {
		code := pkgerrors.CodeDependency
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			code = pkgerrors.CodeUnauthorized
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			code = pkgerrors.CodePayment
		}
		return pkgerrors.Wrap(code, err, "square charge failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square charge failed")
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func moneyPtr(amount int64, currency string) *sq.Money {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	c := sq.Currency(code)
	return &sq.Money{
		Amount:   &amount,
		Currency: &c,
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
