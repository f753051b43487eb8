package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/auth"
	"github.com/physiokit/physiokit/modules/billing"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
)

type handlers struct {
	auth     *auth.Service
	subs     *subscription.Service
	billing  *billing.Service
	patients *patient.Service
	log      *slog.Logger
}

// --- public ---

type authResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	CabinetID   uuid.UUID `json:"cabinet_id"`
	CabinetName string    `json:"cabinet_name"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
}

func toAuthResponse(res *auth.Result) authResponse {
	return authResponse{
		Token:       res.Session.Token,
		ExpiresAt:   res.Session.ExpiresAt,
		CabinetID:   res.Cabinet.ID,
		CabinetName: res.Cabinet.Name,
		UserID:      res.User.ID,
		Email:       res.User.Email,
	}
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- subscription ---

func (h *handlers) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	ent, err := h.subs.Info(r.Context(), scope)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

type upgradeResponse struct {
	PlanID       string    `json:"plan_id"`
	Status       string    `json:"status"`
	LeftoverDays int       `json:"leftover_days"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
}

func (h *handlers) upgradeSubscription(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	var in struct {
		PlanID string `json:"plan_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.subs.Upgrade(r.Context(), scope, in.PlanID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, upgradeResponse{
		PlanID:       res.Subscription.PlanID,
		Status:       string(res.Subscription.Status),
		LeftoverDays: res.LeftoverDays,
		PeriodStart:  res.PeriodStart,
		PeriodEnd:    res.PeriodEnd,
	})
}

func (h *handlers) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	sub, err := h.subs.Cancel(r.Context(), scope)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               string(sub.Status),
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	})
}

// --- billing ---

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	var in struct {
		PlanID string `json:"plan_id"`
		Email  string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	link, err := h.billing.Checkout(r.Context(), scope, in.PlanID, in.Email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"checkout_url":   link.URL,
		"transaction_id": link.TransactionID,
		"expires_at":     link.ExpiresAt,
	})
}

func (h *handlers) billingPortal(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	link, err := h.billing.Portal(r.Context(), scope)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"portal_url": link.URL,
		"cancel_url": link.CancelURL,
	})
}

func (h *handlers) paddleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, r, h.log, errBadRequest)
		return
	}

	signature := r.Header.Get("Paddle-Signature")
	if err := h.billing.HandleWebhook(r.Context(), payload, signature); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- patients ---

type patientResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

func toPatientResponse(p *patient.Patient) patientResponse {
	return patientResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Archived:  p.Archived,
		CreatedAt: p.CreatedAt,
	}
}

func (h *handlers) listPatients(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("archived") == "true"
	list, err := h.patients.List(r.Context(), scope, includeArchived)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	out := make([]patientResponse, 0, len(list))
	for i := range list {
		out = append(out, toPatientResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) createPatient(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}

	var in patient.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	p, err := h.patients.Create(r.Context(), scope, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientResponse(p))
}

func (h *handlers) getPatient(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}
	id, err := patientID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	p, err := h.patients.Get(r.Context(), scope, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (h *handlers) updatePatient(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}
	id, err := patientID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var in patient.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	p, err := h.patients.Update(r.Context(), scope, id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (h *handlers) archivePatient(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r, h.log)
	if !ok {
		return
	}
	id, err := patientID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.patients.Archive(r.Context(), scope, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func patientID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}
