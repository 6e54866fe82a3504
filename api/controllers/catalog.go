package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kadapaimran/grocery-storefront/api/responses"
	"github.com/kadapaimran/grocery-storefront/internal/catalog"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
)

// ListProducts serves the full catalog.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ListProductsByCategory serves one category of the catalog.
func ListProductsByCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(chi.URLParam(r, "category"))
		if category == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category is required"))
			return
		}

		products, err := svc.ListByCategory(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
