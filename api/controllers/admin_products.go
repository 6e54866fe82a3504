package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/api/responses"
	"github.com/kadapaimran/grocery-storefront/api/validators"
	"github.com/kadapaimran/grocery-storefront/internal/admin"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

type productInputRequest struct {
	Name      string          `json:"name" validate:"required"`
	Category  string          `json:"category" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	ImagePath string          `json:"imagePath,omitempty"`
}

func (r productInputRequest) toInput() types.ProductInput {
	return types.ProductInput{
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		ImagePath: r.ImagePath,
	}
}

// AdminListProducts returns the panel's working list. Pass refresh=true to
// re-fetch server truth first; a failed refresh reports the error and keeps
// the previously loaded list intact for the next read.
func AdminListProducts(panel *admin.Panel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "true" {
			if err := panel.Refresh(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, panel.Products())
	}
}

// AdminCreateProduct creates a product through the gateway and returns the
// record with its assigned id.
func AdminCreateProduct(panel *admin.Panel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productInputRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := panel.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type productUpdateRequest struct {
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	ImagePath string          `json:"imagePath,omitempty"`
}

// AdminUpdateProduct applies a partial edit. Empty fields are left unchanged.
func AdminUpdateProduct(panel *admin.Panel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := types.ProductInput{
			Name:      payload.Name,
			Category:  payload.Category,
			Price:     payload.Price,
			ImagePath: payload.ImagePath,
		}
		if err := panel.Update(r.Context(), id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, panel.Products())
	}
}

// AdminDeleteProduct removes a product. The client confirms the delete by
// sending confirm=true; without it the request is a no-op, mirroring a
// declined confirmation dialog.
func AdminDeleteProduct(panel *admin.Panel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmed := r.URL.Query().Get("confirm") == "true"
		confirm := func(types.Product) bool { return confirmed }
		if err := panel.Delete(r.Context(), id, confirm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": confirmed})
	}
}
