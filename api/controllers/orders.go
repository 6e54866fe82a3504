package controllers

import (
	"net/http"

	"github.com/kadapaimran/grocery-storefront/api/responses"
	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

// ListOrders returns the payment history, most recent last.
func ListOrders(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, store.History())
	}
}
