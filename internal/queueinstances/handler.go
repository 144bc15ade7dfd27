package queueinstances

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/queues"
	"github.com/filaflow/filaflow/internal/queueusers"
	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
)

// WaitTimeNotifier requests an asynchronous wait-time recalculation after a
// membership change. Failures are logged, never surfaced to the caller.
type WaitTimeNotifier interface {
	NotifyWaitTimeRecalc(ctx context.Context, queueID string) error
}

// AdmissionCounter records the outcome of admission attempts.
type AdmissionCounter interface {
	CountAdmission(outcome string)
}

type Handler struct {
	logger     *slog.Logger
	service    *Service
	verifier   *queues.UnityAccessVerifier
	notifier   WaitTimeNotifier
	admissions AdmissionCounter
	validator  *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, verifier *queues.UnityAccessVerifier, notifier WaitTimeNotifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, verifier: verifier, notifier: notifier, validator: validator.New()}
}

// WithAdmissionCounter attaches an outcome counter to the admission path.
func (h *Handler) WithAdmissionCounter(counter AdmissionCounter) *Handler {
	h.admissions = counter
	return h
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Patch("/add-user", h.addUser)
	r.Patch("/remove-user", h.removeUser)
	r.Get("/{instanceID}", h.get)
}

type createInstanceRequest struct {
	QueueID string `json:"queueId" validate:"required"`
}

// create is the explicit open-instance path. Same-day duplicates conflict;
// the lazy admission path reuses them instead.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if err := roles.RequireAtLeast(identity.Role, roles.UnityAdmin); err != nil {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
		return
	}

	var req createInstanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.verifier.Verify(r.Context(), identity, req.QueueID); err != nil {
		h.respondInstanceError(w, err)
		return
	}

	instance, err := h.service.AddInstance(r.Context(), req.QueueID)
	if err != nil {
		h.respondInstanceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, instance)
}

type addUserRequest struct {
	QueueID string `json:"queueId" validate:"required"`
}

// addUser admits the caller's own identity into today's instance of the
// queue, creating the instance on first use.
func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req addUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	instance, err := h.service.GetOrCreateToday(r.Context(), req.QueueID)
	if err != nil {
		h.respondInstanceError(w, err)
		return
	}

	waiting, err := h.service.AdmitUser(r.Context(), instance.ID, identity.ID)
	if err != nil {
		h.countAdmission(admissionOutcome(err))
		h.respondInstanceError(w, err)
		return
	}
	h.countAdmission("admitted")

	h.notifyRecalc(r.Context(), instance.QueueID)
	httpx.JSON(w, http.StatusCreated, map[string]bool{"success": slices.Contains(waiting, identity.ID)})
}

type removeUserRequest struct {
	QueueInstanceID string `json:"queueInstanceId" validate:"required"`
	UserID          string `json:"userId" validate:"required"`
}

// removeUser takes a user out of the waiting list. Callers always may remove
// themselves; removing someone else needs the unity-admin gate plus unity
// scope over the instance's queue.
func (h *Handler) removeUser(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req removeUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	instance, err := h.service.GetInstance(r.Context(), req.QueueInstanceID)
	if err != nil {
		h.respondInstanceError(w, err)
		return
	}

	if req.UserID != identity.ID {
		if err := roles.RequireAtLeast(identity.Role, roles.UnityAdmin); err != nil {
			httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
			return
		}
		if err := h.verifier.Verify(r.Context(), identity, instance.QueueID); err != nil {
			h.respondInstanceError(w, err)
			return
		}
	}

	waiting, err := h.service.RemoveUser(r.Context(), req.QueueInstanceID, req.UserID)
	if err != nil {
		h.respondInstanceError(w, err)
		return
	}

	h.notifyRecalc(r.Context(), instance.QueueID)
	httpx.JSON(w, http.StatusCreated, map[string]bool{"success": !slices.Contains(waiting, req.UserID)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	instance, err := h.service.GetInstance(r.Context(), chi.URLParam(r, "instanceID"))
	if err != nil {
		h.respondInstanceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, instance)
}

func (h *Handler) countAdmission(outcome string) {
	if h.admissions != nil {
		h.admissions.CountAdmission(outcome)
	}
}

func admissionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrUserAlreadyQueued):
		return "duplicate"
	case errors.Is(err, ErrQueueFull):
		return "full"
	case errors.Is(err, ErrQueueDisabled):
		return "disabled"
	default:
		return "error"
	}
}

func (h *Handler) notifyRecalc(ctx context.Context, queueID string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifyWaitTimeRecalc(ctx, queueID); err != nil {
		h.logger.Warn("enqueue wait time recalc", slog.Any("error", err), slog.String("queue_id", queueID))
	}
}

func (h *Handler) respondInstanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInstanceNotFound),
		errors.Is(err, queues.ErrNotFound),
		errors.Is(err, queueusers.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInstanceAlreadyCreated),
		errors.Is(err, ErrUserAlreadyQueued),
		errors.Is(err, ErrUserNotInQueue),
		errors.Is(err, ErrQueueFull),
		errors.Is(err, ErrQueueDisabled):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
