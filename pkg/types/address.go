package types

// BillingAddress carries the checkout billing fields. State is optional.
type BillingAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zipCode"`
}
