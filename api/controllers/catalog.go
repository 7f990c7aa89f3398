package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/internal/catalog"
	"github.com/popeyesteak/pos-backend/internal/options"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

type catalogResponse struct {
	Products   []catalog.Product  `json:"products"`
	Categories []catalog.Category `json:"categories"`
}

// CatalogList serves the product grid. ?q= searches across all languages;
// ?category= filters by category id ("all" disables the filter). Search
// wins when both are present.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, categories, err := svc.Products(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if q := r.URL.Query().Get("q"); q != "" {
			products, err = svc.Search(r.Context(), q)
		} else if category := r.URL.Query().Get("category"); category != "" {
			products, err = svc.FilterByCategory(r.Context(), category)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalogResponse{Products: products, Categories: categories})
	}
}

// CatalogRefresh forces a re-pull of the upstream menu snapshot.
func CatalogRefresh(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		if err := svc.Load(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "refreshed"})
	}
}

// TableList serves the dining tables for the table picker.
func TableList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		tables, err := svc.Tables(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tables)
	}
}

// ProductOptionGroups serves the resolved option groups for one product, in
// the shape the selection dialog renders directly.
func ProductOptionGroups(resolver options.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "option resolver unavailable"))
			return
		}

		productID, err := int64URLParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groups, err := resolver.ResolveGroups(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func int64URLParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return value, nil
}
