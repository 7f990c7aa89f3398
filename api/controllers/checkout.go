package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/api/validators"
	checkoutsvc "github.com/popeyesteak/pos-backend/internal/checkout"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card qr"`
	CashReceived  *decimal.Decimal `json:"cash_received,omitempty"`
	CustomerName  string           `json:"customer_name,omitempty"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
}

// Checkout composes the table's cart into an order and submits it upstream.
// The cart survives a failed submission.
func Checkout(composer checkoutsvc.Composer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if composer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}
		tableID, err := int64URLParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := composer.Submit(r.Context(), tableID, checkoutsvc.Request{
			PaymentMethod: payload.PaymentMethod,
			CashReceived:  payload.CashReceived,
			CustomerName:  payload.CustomerName,
			CustomerPhone: payload.CustomerPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Info(logg.WithTable(r.Context(), tableID), "order submitted")
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
