package controllers

import (
	"net/http"

	"github.com/popeyesteak/pos-backend/api/responses"
)

// VersionInfo reports the build version so the desktop shell can prompt
// for updates.
func VersionInfo(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"version": version})
	}
}
