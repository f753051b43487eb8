package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/physiokit/physiokit/modules/auth"
	"github.com/physiokit/physiokit/modules/billing"
	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/session"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses. Unknown errors are
// logged and collapsed to a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, catalog.ErrPlanNotFound),
		errors.Is(err, cabinet.ErrCabinetNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, auth.ErrEmailAlreadyInUse),
		errors.Is(err, cabinet.ErrCabinetNameTaken):
		return http.StatusConflict

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, patient.ErrQuotaReached),
		errors.Is(err, patient.ErrSubscriptionRequired):
		return http.StatusForbidden

	case errors.Is(err, billing.ErrWebhookSignature):
		return http.StatusUnauthorized

	case errors.Is(err, subscription.ErrPlanInactive),
		errors.Is(err, subscription.ErrPlanNotPurchasable),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, cabinet.ErrInvalidType),
		errors.Is(err, cabinet.ErrInvalidName),
		errors.Is(err, patient.ErrNameRequired),
		errors.Is(err, billing.ErrInvalidWebhook),
		errors.Is(err, billing.ErrInvalidCheckoutRequest),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("malformed request body")

// decodeJSON reads the request body into v, capping it at 1 MiB.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
