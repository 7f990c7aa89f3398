package controllers

import (
	"net/http"

	"github.com/popeyesteak/pos-backend/api/responses"
	"github.com/popeyesteak/pos-backend/api/validators"
	"github.com/popeyesteak/pos-backend/internal/staff"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
)

type loginRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

// AuthLogin exchanges the terminal PIN for a session token.
func AuthLogin(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(payload.PIN)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Info(logg.WithStaff(r.Context(), session.Username), "terminal login")
		responses.WriteSuccess(w, session)
	}
}
