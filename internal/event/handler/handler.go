// Package handler exposes event creation and lookup over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatherly/internal/event/models"
	"gatherly/internal/event/service"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/httputil"
	"gatherly/pkg/requestcontext"
)

// Service defines the event operations the handler needs.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// Handler wires event endpoints to the event service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an event handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the read endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.HandleList)
	r.Get("/events/{eventID}", h.HandleGet)
}

// RegisterStaff mounts the staff-only creation endpoint.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/events", h.HandleCreate)
}

// HandleCreate handles POST /events requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.Create(ctx, service.CreateRequest{
		Name:        req.Name,
		MaxCapacity: req.MaxCapacity,
		StartsAt:    req.ParsedStartsAt(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "event creation failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleGet handles GET /events/{eventID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.Get(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, event)
}

// HandleList handles GET /events requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
