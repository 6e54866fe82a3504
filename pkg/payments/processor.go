package payments

import "context"

// ChargeRequest carries the normalized inputs for a payment attempt. SourceID
// is the tokenized card reference produced by the payment form; processors
// that simulate charges ignore it.
type ChargeRequest struct {
	AmountCents int64
	Currency    string
	SourceID    string
	Note        string
	ReferenceID string
}

// ChargeResult reports a completed charge.
type ChargeResult struct {
	ReceiptID string
	Status    string
}

// Processor is the payment gateway port used by the checkout flows.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
