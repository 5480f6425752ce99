package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/services"
)

// Dispatcher is the dispatch pipeline surface the handlers call.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *models.NotificationRequest) (*services.DispatchResult, error)
}

// StatusService is the tracker surface for worker callbacks and queries.
type StatusService interface {
	Update(ctx context.Context, notificationID, state, channel, detail string) error
	Get(ctx context.Context, notificationID string) (*models.StatusRecord, error)
}

// UserProxy forwards create-user requests to the user service.
type UserProxy interface {
	Create(ctx context.Context, body []byte) (int, []byte, error)
}

// Handler owns the gateway's HTTP endpoints.
type Handler struct {
	dispatcher Dispatcher
	status     StatusService
	users      UserProxy
	ready      func() bool
	logger     *slog.Logger
	started    time.Time
}

func NewHandler(dispatcher Dispatcher, status StatusService, users UserProxy, ready func() bool, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		status:     status,
		users:      users,
		ready:      ready,
		logger:     logger,
		started:    time.Now(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	env := models.OK("ok", nil)
	env.Meta = map[string]interface{}{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"timestamp":      time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, env)
}

// Ready answers 503 until the broker bootstrap reached Ready; traffic must
// not be routed here before that.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, models.Err("amqp_not_ready", "rabbitmq not connected"))
		return
	}
	writeJSON(w, http.StatusOK, models.OK("ready", nil))
}

// CreateNotification is POST /api/v1/notifications/.
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Err("invalid_request_body", "invalid_json"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Err(err.Error(), "validation_error"))
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), &req)
	if err != nil {
		h.writeDispatchError(w, &req, err)
		return
	}

	message := "queued"
	if result.Duplicate {
		message = "duplicate_request"
	}
	writeJSON(w, http.StatusAccepted, models.OK(message, map[string]interface{}{
		"notification_id": result.NotificationID,
	}))
}

func (h *Handler) writeDispatchError(w http.ResponseWriter, req *models.NotificationRequest, err error) {
	switch {
	case apperr.IsBackendUnavailable(err):
		writeJSON(w, http.StatusInternalServerError, models.Err("idempotency_error", "redis_error"))
	case errors.Is(err, apperr.ErrUserLookup):
		writeJSON(w, http.StatusBadGateway, models.Err("user_lookup_failed", "user_service_error"))
	case errors.Is(err, apperr.ErrTemplateLookup):
		writeJSON(w, http.StatusBadGateway, models.Err("template_lookup_failed", "template_service_error"))
	case errors.Is(err, apperr.ErrSerialization):
		writeJSON(w, http.StatusInternalServerError, models.Err("serialization_failed", "internal_error"))
	case apperr.IsPublishFailure(err):
		writeJSON(w, http.StatusBadGateway, models.Err("queue_publish_failed", "rabbitmq_error"))
	default:
		h.logger.Error("dispatch failed",
			slog.String("request_id", req.RequestID),
			slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, models.Err("dispatch_failed", "internal_error"))
	}
}

// UpdateStatus is POST /api/v1/{channel}/status/, the worker callback that
// reports terminal outcomes. Writes are last-write-wins by design.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Err("invalid_request_body", "invalid_json"))
		return
	}
	if req.NotificationID == "" {
		writeJSON(w, http.StatusBadRequest, models.Err("notification_id is required", "validation_error"))
		return
	}
	if !models.ValidStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, models.Err("status must be one of: pending, delivered, failed", "validation_error"))
		return
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if err := h.status.Update(r.Context(), req.NotificationID, req.Status, channel, req.Error); err != nil {
		h.logger.Error("status callback write failed",
			slog.String("notification_id", req.NotificationID),
			slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, models.Err("status_update_failed", "redis_error"))
		return
	}

	writeJSON(w, http.StatusOK, models.OK("status_updated", map[string]interface{}{
		"notification_id": req.NotificationID,
		"status":          req.Status,
		"channel":         channel,
		"timestamp":       req.Timestamp,
		"error":           req.Error,
	}))
}

// GetStatus is GET /api/v1/notifications/{id}/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.status.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.Err("status_read_failed", "redis_error"))
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, models.Err("unknown notification id", "not_found"))
		return
	}
	writeJSON(w, http.StatusOK, models.OK("status", record))
}

// CreateUser proxies POST /api/v1/users/ to the user service.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeJSON(w, http.StatusBadGateway, models.Err("user_service_unreachable", "user_service_not_configured"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.Err("invalid_request_body", "read_error"))
		return
	}

	status, respBody, err := h.users.Create(r.Context(), body)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.Err("user_service_unreachable", "user_service_error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(respBody)
}

func writeJSON(w http.ResponseWriter, status int, env models.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
