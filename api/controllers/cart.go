package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/api/responses"
	"github.com/kadapaimran/grocery-storefront/api/validators"
	"github.com/kadapaimran/grocery-storefront/internal/cart"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

type cartView struct {
	Items      []cart.Item     `json:"items"`
	Count      int             `json:"count"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func viewOf(store *cart.Store) cartView {
	return cartView{
		Items:      store.Items(),
		Count:      store.Count(),
		TotalPrice: store.TotalPrice(),
	}
}

// GetCart returns the current cart lines and totals.
func GetCart(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, viewOf(store))
	}
}

type addItemRequest struct {
	ID        int64           `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	ImagePath string          `json:"imagePath,omitempty"`
	Quantity  int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// AddCartItem appends a line to the cart. Repeats of the same product id are
// kept as separate lines.
func AddCartItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Add(r.Context(), cart.Item{
			ID:        payload.ID,
			Name:      payload.Name,
			Price:     payload.Price,
			ImagePath: payload.ImagePath,
			Quantity:  payload.Quantity,
		})
		responses.WriteSuccessStatus(w, http.StatusCreated, viewOf(store))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItemQuantity sets the quantity on matching lines. A quantity
// below one removes the lines instead, mirroring how the cart view routes
// decrements.
func UpdateCartItemQuantity(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Quantity < 1 {
			store.Remove(r.Context(), id)
		} else {
			store.SetQuantity(r.Context(), id, payload.Quantity)
		}
		responses.WriteSuccess(w, viewOf(store))
	}
}

// RemoveCartItem drops every line with the given id.
func RemoveCartItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Remove(r.Context(), id)
		responses.WriteSuccess(w, viewOf(store))
	}
}

// ClearCart empties the cart.
func ClearCart(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Clear(r.Context())
		responses.WriteSuccess(w, viewOf(store))
	}
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}
