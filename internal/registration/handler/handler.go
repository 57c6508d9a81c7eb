// Package handler exposes the registration engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/registration/models"
	"gatherly/internal/registration/service"
	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
	"gatherly/pkg/platform/httputil"
	"gatherly/pkg/requestcontext"
)

// Service defines the registration operations the handler needs.
type Service interface {
	Register(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error)
	RegisterByStaff(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error)
	Cancel(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*service.CancelResult, error)
}

// Handler wires registration endpoints to the registration service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registration handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts registration endpoints on the router. The employee route
// must be mounted behind staff authorization by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations", h.HandleRegister)
	r.Delete("/registrations/event/{eventID}", h.HandleCancel)
}

// RegisterStaff mounts the staff-only registration endpoint.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/employee/registrations", h.HandleStaffRegister)
}

// HandleRegister handles POST /registrations requests. The member comes from
// the session.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	memberID := requestcontext.MemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.Register(ctx, memberID, req.ParsedEventID())
	if err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"member_id", memberID,
			"event_id", req.ParsedEventID(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration created",
		"request_id", requestID,
		"registration_id", reg.ID,
		"member_id", memberID,
		"event_id", reg.EventID,
		"status", reg.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(reg))
}

// HandleStaffRegister handles POST /employee/registrations requests. Staff
// register another member on their behalf.
func (h *Handler) HandleStaffRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StaffRegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.RegisterByStaff(ctx, req.ParsedMemberID(), req.ParsedEventID())
	if err != nil {
		h.logger.ErrorContext(ctx, "staff registration failed",
			"request_id", requestID,
			"member_id", req.ParsedMemberID(),
			"event_id", req.ParsedEventID(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "staff registration created",
		"request_id", requestID,
		"registration_id", reg.ID,
		"member_id", reg.MemberID,
		"event_id", reg.EventID,
		"status", reg.Status,
		"staff_id", requestcontext.MemberID(ctx),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(reg))
}

// HandleCancel handles DELETE /registrations/event/{eventID} requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	memberID := requestcontext.MemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "authentication required"))
		return
	}

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Cancel(ctx, memberID, eventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "cancellation failed",
			"request_id", requestID,
			"member_id", memberID,
			"event_id", eventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration cancelled",
		"request_id", requestID,
		"registration_id", result.Cancelled.ID,
		"member_id", memberID,
		"event_id", eventID,
		"promoted", result.Promoted != nil,
	)

	httputil.WriteJSON(w, http.StatusOK, FromRegistration(result.Cancelled))
}
