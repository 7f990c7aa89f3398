package controllers

import (
	"net/http"
	"time"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/api/validators"
	"github.com/popeyesteak/pos-backend/internal/reports"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

// ReportsSales serves the daily sales summary. ?date= defaults to today.
func ReportsSales(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		report, err := svc.Sales(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportsProfit runs the operator-entered profit calculator. No upstream
// calls; every figure comes from the request body.
func ReportsProfit(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload reports.ProfitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reports.Profit(payload))
	}
}
