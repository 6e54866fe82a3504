package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
	"github.com/kadapaimran/grocery-storefront/pkg/payments"
)

type stubProcessor struct {
	requests []payments.ChargeRequest
	result   *payments.ChargeResult
	err      error
}

func (s *stubProcessor) Charge(_ context.Context, req payments.ChargeRequest) (*payments.ChargeResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newCartWithItems(t *testing.T, items ...cart.Item) *cart.Store {
	t.Helper()
	store, err := cart.NewStore(localstore.NewMemory(), nil, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, it := range items {
		store.Add(context.Background(), it)
	}
	return store
}

func TestSubmitChargesAndCompletesPayment(t *testing.T) {
	store := newCartWithItems(t,
		cart.Item{ID: 1, Name: "Apples", Price: decimal.RequireFromString("3.50"), Quantity: 2},
		cart.Item{ID: 2, Name: "Milk", Price: decimal.RequireFromString("2.25"), Quantity: 1},
	)
	processor := &stubProcessor{result: &payments.ChargeResult{ReceiptID: "pay-1", Status: "COMPLETED"}}

	svc, err := NewService(store, processor, config.PaymentConfig{Currency: "USD"}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	conf, err := svc.Submit(context.Background(), SubmitInput{Form: validForm(), PaymentToken: "tok-1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(processor.requests) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(processor.requests))
	}
	if got, want := processor.requests[0].AmountCents, int64(925); got != want {
		t.Fatalf("amount = %d cents, want %d", got, want)
	}
	if processor.requests[0].SourceID != "tok-1" {
		t.Fatalf("source = %q, want tok-1", processor.requests[0].SourceID)
	}

	if conf.CardLast4 != "0366" {
		t.Fatalf("CardLast4 = %q, want 0366", conf.CardLast4)
	}
	if !conf.OrderTotal.Equal(decimal.RequireFromString("9.25")) {
		t.Fatalf("OrderTotal = %s, want 9.25", conf.OrderTotal)
	}
	if len(conf.Items) != 2 {
		t.Fatalf("confirmation has %d items, want 2", len(conf.Items))
	}

	if got := len(store.Items()); got != 0 {
		t.Fatalf("cart should be empty after checkout, got %d lines", got)
	}
	history := store.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if history[0].OrderData.Reference != "pay-1" {
		t.Fatalf("recorded reference = %q, want pay-1", history[0].OrderData.Reference)
	}
}

func TestSubmitRejectsInvalidFormBeforeCharging(t *testing.T) {
	store := newCartWithItems(t, cart.Item{ID: 1, Price: decimal.RequireFromString("1.00")})
	processor := &stubProcessor{result: &payments.ChargeResult{}}

	svc, err := NewService(store, processor, config.PaymentConfig{Currency: "USD"}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	form := validForm()
	form.CardNumber = "4532015112830367"
	_, err = svc.Submit(context.Background(), SubmitInput{Form: form})

	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fieldErrs, ok := domainErr.Details().([]FieldError)
	if !ok || len(fieldErrs) != 1 || fieldErrs[0].Field != "cardNumber" {
		t.Fatalf("expected cardNumber field error, got %+v", domainErr.Details())
	}
	if len(processor.requests) != 0 {
		t.Fatal("processor must not be called for an invalid form")
	}
}

func TestSubmitLeavesCartUntouchedOnChargeFailure(t *testing.T) {
	store := newCartWithItems(t, cart.Item{ID: 1, Price: decimal.RequireFromString("5.00"), Quantity: 1})
	processor := &stubProcessor{err: errors.New("card declined")}

	svc, err := NewService(store, processor, config.PaymentConfig{Currency: "USD"}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), SubmitInput{Form: validForm(), PaymentToken: "tok-1"})
	if err == nil {
		t.Fatal("expected charge failure to propagate")
	}

	if got := len(store.Items()); got != 1 {
		t.Fatalf("cart must be untouched after failure, got %d lines", got)
	}
	if got := len(store.History()); got != 0 {
		t.Fatalf("no payment record expected, got %d", got)
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	store := newCartWithItems(t)
	processor := &stubProcessor{result: &payments.ChargeResult{}}

	svc, err := NewService(store, processor, config.PaymentConfig{Currency: "USD"}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), SubmitInput{Form: validForm()})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}
