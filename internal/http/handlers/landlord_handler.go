package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenantry/tenantry/internal/domain"
	mw "github.com/tenantry/tenantry/internal/http/middleware"
	"github.com/tenantry/tenantry/internal/http/response"
	"github.com/tenantry/tenantry/internal/service"
	"github.com/tenantry/tenantry/pkg/logger"
)

// LandlordHandler serves the authenticated creation endpoints: issuing
// tenant invitations and opening maintenance requests.
type LandlordHandler struct {
	invitations service.InvitationService
	maintenance service.MaintenanceService
}

func NewLandlordHandler(invitations service.InvitationService, maintenance service.MaintenanceService) *LandlordHandler {
	return &LandlordHandler{invitations: invitations, maintenance: maintenance}
}

func (h *LandlordHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/invitations", h.createInvitation)
	r.Post("/maintenance", h.createMaintenance)
	return r
}

func (h *LandlordHandler) createInvitation(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "Landlord session required")
		return
	}

	var req domain.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	inv, err := h.invitations.Create(r.Context(), claims.Sub, &req)
	if err != nil {
		logger.WarnContext(r.Context(), "Invitation creation rejected", "error", err, "landlord_id", claims.Sub)
		response.BadRequest(w, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"invitation": inv,
	})
}

func (h *LandlordHandler) createMaintenance(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "Landlord session required")
		return
	}

	var req domain.CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	created, err := h.maintenance.Create(r.Context(), &req)
	if err != nil {
		logger.WarnContext(r.Context(), "Maintenance creation rejected", "error", err, "landlord_id", claims.Sub)
		response.BadRequest(w, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"request": created,
	})
}
