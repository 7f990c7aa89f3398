package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/api/validators"
	cartsvc "github.com/popeyesteak/pos-backend/internal/cart"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID  int64              `json:"product_id" validate:"required"`
	Selections []selectionPayload `json:"selections" validate:"dive"`
}

type selectionPayload struct {
	Group  string `json:"group" validate:"required"`
	Choice string `json:"choice" validate:"required"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// CartView serves the table's current cart with recomputed totals.
func CartView(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.View(r.Context(), tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartAddItem adds a product with its option selections; identical slots
// merge by bumping the quantity.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selections := make([]cartsvc.Selection, len(payload.Selections))
		for i, sel := range payload.Selections {
			selections[i] = cartsvc.Selection{Group: sel.Group, Choice: sel.Choice}
		}

		snap, err := svc.AddItem(r.Context(), tableID, payload.ProductID, selections)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Info(logg.WithTable(r.Context(), tableID), "cart item added")
		responses.WriteSuccess(w, snap)
	}
}

// CartUpdateItem changes a slot's quantity or note. Quantity zero removes
// the slot.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slotKey := chi.URLParam(r, "slotKey")
		if slotKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slot key required"))
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == nil && payload.Note == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		// Note first: a quantity of zero removes the slot, and the note
		// should go with it rather than 404 afterwards.
		var snap *cartsvc.Snapshot
		if payload.Note != nil {
			snap, err = svc.SetNote(r.Context(), tableID, slotKey, *payload.Note)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.Quantity != nil {
			snap, err = svc.SetQuantity(r.Context(), tableID, slotKey, *payload.Quantity)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartRemoveItem drops a slot regardless of quantity.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slotKey := chi.URLParam(r, "slotKey")
		if slotKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slot key required"))
			return
		}

		snap, err := svc.RemoveItem(r.Context(), tableID, slotKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartClear empties the table's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Clear(r.Context(), tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Info(logg.WithTable(r.Context(), tableID), "cart cleared")
		responses.WriteSuccess(w, snap)
	}
}
