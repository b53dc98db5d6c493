package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/http/response"
	"github.com/tenantry/tenantry/internal/service"
	"github.com/tenantry/tenantry/pkg/logger"
)

// InvitationHandler serves the unauthenticated invitation endpoints. The
// emailed token is the only credential.
type InvitationHandler struct {
	invitations service.InvitationService
}

func NewInvitationHandler(invitations service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

func (h *InvitationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.lookup)      // ?token=...
	r.Post("/claim", h.claim) // ?token=... {password, name, phone}
	return r
}

type lookupResponse struct {
	Success    bool                      `json:"success"`
	Invitation *domain.InvitationDetails `json:"invitation"`
}

func (h *InvitationHandler) lookup(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "Token parameter is required")
		return
	}

	details, err := h.invitations.Lookup(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFoundOrExpired) {
			response.NotFound(w, "Invitation not found or expired")
			return
		}
		logger.ErrorContext(r.Context(), "Invitation lookup failed", "error", err)
		response.InternalError(w, "Failed to look up invitation")
		return
	}

	response.WriteJSON(w, http.StatusOK, lookupResponse{Success: true, Invitation: details})
}

type claimResponse struct {
	Success      bool           `json:"success"`
	SessionToken string         `json:"session_token"`
	ExpiresIn    int64          `json:"expires_in"`
	Tenant       *domain.Tenant `json:"tenant"`
}

func (h *InvitationHandler) claim(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "Token parameter is required")
		return
	}

	var req domain.ClaimInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.invitations.Claim(r.Context(), token, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFoundOrExpired):
			response.NotFound(w, "Invitation not found or expired")
		case errors.Is(err, domain.ErrAlreadyClaimed):
			response.WriteError(w, http.StatusConflict, "Invitation has already been claimed", response.CodeAlreadyClaimed)
		case errors.Is(err, domain.ErrTransitionFailed), errors.Is(err, domain.ErrUpstreamDependencyFailed):
			logger.ErrorContext(r.Context(), "Invitation claim failed", "error", err)
			response.InternalError(w, "Failed to claim invitation")
		default:
			response.BadRequest(w, err.Error())
		}
		return
	}

	response.WriteJSON(w, http.StatusCreated, claimResponse{
		Success:      true,
		SessionToken: res.SessionToken,
		ExpiresIn:    res.ExpiresIn,
		Tenant:       res.Tenant,
	})
}
