// Package handler exposes the attendance tracking endpoints used by staff
// at the door and the occupancy dashboard.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/attendance/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/httputil"
	"gatherly/pkg/requestcontext"
)

// Service defines the attendance operations the handler needs.
type Service interface {
	CheckIn(ctx context.Context, eventID id.EventID, memberID id.MemberID) (*models.Snapshot, error)
	UndoCheckIn(ctx context.Context, eventID id.EventID, memberID id.MemberID) (*models.Snapshot, error)
	ListEventSummaries(ctx context.Context) ([]models.EventSummary, error)
	ListAttendees(ctx context.Context, eventID id.EventID) (*models.AttendeeList, error)
}

// Handler wires attendance endpoints to the attendance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an attendance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts attendance endpoints on the router. All routes are staff
// only; the caller mounts them behind staff authorization.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendance/events", h.HandleListEvents)
	r.Get("/attendance/events/{eventID}/attendees", h.HandleListAttendees)
	r.Put("/attendance/events/{eventID}/checkin/{userID}", h.HandleCheckIn)
	r.Put("/attendance/events/{eventID}/checkin/{userID}/undo", h.HandleUndoCheckIn)
}

// HandleListEvents handles GET /attendance/events requests.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := h.service.ListEventSummaries(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "event summary listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": summaries})
}

// HandleListAttendees handles GET /attendance/events/{eventID}/attendees.
func (h *Handler) HandleListAttendees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListAttendees(ctx, eventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "attendee listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", eventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleCheckIn handles PUT /attendance/events/{eventID}/checkin/{userID}.
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// HandleUndoCheckIn handles PUT /attendance/events/{eventID}/checkin/{userID}/undo.
func (h *Handler) HandleUndoCheckIn(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, checkIn bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	memberID, err := id.ParseMemberID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var snapshot *models.Snapshot
	if checkIn {
		snapshot, err = h.service.CheckIn(ctx, eventID, memberID)
	} else {
		snapshot, err = h.service.UndoCheckIn(ctx, eventID, memberID)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "check-in update failed",
			"request_id", requestID,
			"event_id", eventID,
			"member_id", memberID,
			"check_in", checkIn,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "check-in updated",
		"request_id", requestID,
		"event_id", eventID,
		"member_id", memberID,
		"check_in", checkIn,
		"staff_id", requestcontext.MemberID(ctx),
	)

	httputil.WriteJSON(w, http.StatusOK, snapshot)
}
