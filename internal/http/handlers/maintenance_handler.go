package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/http/web"
	"github.com/tenantry/tenantry/internal/service"
	"github.com/tenantry/tenantry/pkg/logger"
)

// MaintenanceConfirmHandler serves the emailed confirmation link. The caller
// is a browser with no script, so every outcome is an HTML page.
type MaintenanceConfirmHandler struct {
	maintenance service.MaintenanceService
	pages       *web.Renderer
}

func NewMaintenanceConfirmHandler(maintenance service.MaintenanceService, pages *web.Renderer) *MaintenanceConfirmHandler {
	return &MaintenanceConfirmHandler{maintenance: maintenance, pages: pages}
}

func (h *MaintenanceConfirmHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.pages.BadRequest(w)
		return
	}

	result, err := h.maintenance.Confirm(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFoundOrExpired) {
			h.pages.NotFound(w)
			return
		}
		logger.ErrorContext(r.Context(), "Maintenance confirmation failed", "error", err)
		h.pages.Error(w)
		return
	}

	h.pages.Confirmed(w, web.ConfirmedPage{
		Description:   result.Description,
		ScheduledTime: result.ScheduledTime.Format(time.RFC1123),
		VendorName:    result.VendorName,
	})
}
