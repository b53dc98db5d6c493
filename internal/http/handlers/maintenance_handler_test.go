package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/http/web"
)

type stubMaintenanceService struct {
	confirmFn func(ctx context.Context, tok string) (*domain.ConfirmationResult, error)
	createFn  func(ctx context.Context, req *domain.CreateMaintenanceRequest) (*domain.MaintenanceRequest, error)
}

func (s *stubMaintenanceService) Confirm(ctx context.Context, tok string) (*domain.ConfirmationResult, error) {
	return s.confirmFn(ctx, tok)
}

func (s *stubMaintenanceService) Create(ctx context.Context, req *domain.CreateMaintenanceRequest) (*domain.MaintenanceRequest, error) {
	return s.createFn(ctx, req)
}

func newConfirmHandler(t *testing.T, svc *stubMaintenanceService) *MaintenanceConfirmHandler {
	t.Helper()
	pages, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}
	return NewMaintenanceConfirmHandler(svc, pages)
}

func TestConfirmMissingToken(t *testing.T) {
	h := newConfirmHandler(t, &stubMaintenanceService{})

	req := httptest.NewRequest(http.MethodGet, "/confirm", nil)
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("confirmation pages must be HTML, got %q", ct)
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	h := newConfirmHandler(t, &stubMaintenanceService{
		confirmFn: func(ctx context.Context, tok string) (*domain.ConfirmationResult, error) {
			return nil, domain.ErrNotFoundOrExpired
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/confirm?token=xyz", nil)
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("confirmation pages must be HTML, got %q", ct)
	}
}

func TestConfirmTransitionError(t *testing.T) {
	h := newConfirmHandler(t, &stubMaintenanceService{
		confirmFn: func(ctx context.Context, tok string) (*domain.ConfirmationResult, error) {
			return nil, errors.New("database unavailable")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/confirm?token=abc123", nil)
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestConfirmRendersScheduledVisit(t *testing.T) {
	scheduledAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	h := newConfirmHandler(t, &stubMaintenanceService{
		confirmFn: func(ctx context.Context, tok string) (*domain.ConfirmationResult, error) {
			if tok != "abc123" {
				t.Errorf("expected token abc123, got %q", tok)
			}
			return &domain.ConfirmationResult{
				RequestID:     1,
				Description:   "Leaking kitchen faucet",
				ScheduledTime: scheduledAt,
				VendorName:    "Ace Plumbing",
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/confirm?token=abc123", nil)
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Leaking kitchen faucet") {
		t.Errorf("expected description on the page: %s", body)
	}
	if !strings.Contains(body, scheduledAt.Format(time.RFC1123)) {
		t.Errorf("expected scheduled time on the page: %s", body)
	}
	if !strings.Contains(body, "Ace Plumbing") {
		t.Errorf("expected vendor name on the page: %s", body)
	}
}
