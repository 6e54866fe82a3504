package controllers

import (
	"net/http"
	"time"

	"github.com/kadapaimran/grocery-storefront/api/responses"
	"github.com/kadapaimran/grocery-storefront/api/validators"
	"github.com/kadapaimran/grocery-storefront/internal/checkout"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

// timeNow is swappable in tests that exercise expiry validation.
var timeNow = time.Now

type checkoutRequest struct {
	CardholderName string               `json:"cardholderName" validate:"required"`
	CardNumber     string               `json:"cardNumber" validate:"required"`
	ExpiryMonth    int                  `json:"expiryMonth" validate:"required"`
	ExpiryYear     int                  `json:"expiryYear" validate:"required"`
	CVV            string               `json:"cvv" validate:"required"`
	Email          string               `json:"email" validate:"required"`
	BillingAddress types.BillingAddress `json:"billingAddress"`
	PaymentToken   string               `json:"paymentToken,omitempty"`
}

// SubmitCheckout runs the validated checkout flow. Field-level failures come
// back as validation details so the client can focus the first invalid input.
func SubmitCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.Submit(r.Context(), checkout.SubmitInput{
			Form: checkout.Form{
				CardholderName: payload.CardholderName,
				CardNumber:     payload.CardNumber,
				ExpiryMonth:    payload.ExpiryMonth,
				ExpiryYear:     payload.ExpiryYear,
				CVV:            payload.CVV,
				Email:          payload.Email,
				Billing:        payload.BillingAddress,
			},
			PaymentToken: payload.PaymentToken,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmation)
	}
}

// ValidateCheckoutField is the blur-level validation endpoint: it checks one
// field of the form and reports the failure, if any.
func ValidateCheckoutField(logg *logger.Logger) http.HandlerFunc {
	// The form itself carries no validator tags here: a blur check runs
	// against a partially filled form by definition.
	type request struct {
		Field string        `json:"field" validate:"required"`
		Form  checkout.Form `json:"form"`
	}
	type response struct {
		Valid bool                 `json:"valid"`
		Error *checkout.FieldError `json:"error,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var payload request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fieldErr := checkout.ValidateField(payload.Form, payload.Field, timeNow())
		responses.WriteSuccess(w, response{Valid: fieldErr == nil, Error: fieldErr})
	}
}

// SubmitLegacyPayment runs the superseded payment flow: simulated charge,
// unconditional success, order summary math included in the record.
func SubmitLegacyPayment(svc *checkout.LegacyService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.Submit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// GetOrderSummary exposes the legacy flow's price breakdown for the current
// cart.
func GetOrderSummary(svc *checkout.LegacyService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Summarize())
	}
}
