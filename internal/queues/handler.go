package queues

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	verifier  *UnityAccessVerifier
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, verifier *UnityAccessVerifier) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, verifier: verifier, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.getByIDs)
	r.Patch("/{queueID}", h.update)
	r.Patch("/{queueID}/disable", h.disable)
	r.Patch("/{queueID}/enable", h.enable)
}

type createQueueRequest struct {
	Name                    string  `json:"name" validate:"required"`
	Type                    string  `json:"type" validate:"required"`
	UnityID                 string  `json:"unityId" validate:"required"`
	AdminID                 *string `json:"adminId"`
	StartQueueAt            *string `json:"startQueueAt"`
	EndQueueAt              *string `json:"endQueueAt"`
	MaxUsersInQueue         *int    `json:"maxUsersInQueue"`
	MinWaitingTimeInMinutes *int    `json:"minWaitingTimeInMinutes"`
	MaxWaitingTimeInMinutes *int    `json:"maxWaitingTimeInMinutes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRank(w, r, roles.UnityAdmin)
	if !ok {
		return
	}

	var req createQueueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.verifier.VerifyUnityScope(identity, req.UnityID); err != nil {
		httpx.RespondError(w, err)
		return
	}

	queue, err := h.service.Create(r.Context(), CreateQueueInput{
		Name:                    req.Name,
		Type:                    Type(req.Type),
		ClientID:                identity.ClientID,
		UnityID:                 req.UnityID,
		AdminID:                 req.AdminID,
		StartQueueAt:            req.StartQueueAt,
		EndQueueAt:              req.EndQueueAt,
		MaxUsersInQueue:         req.MaxUsersInQueue,
		MinWaitingTimeInMinutes: req.MinWaitingTimeInMinutes,
		MaxWaitingTimeInMinutes: req.MaxWaitingTimeInMinutes,
	})
	if err != nil {
		h.logger.Error("create queue", slog.Any("error", err), slog.String("client_id", identity.ClientID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, queue)
}

// getByIDs serves the batch lookup, ?ids=a,b,c. Every id passes the unity
// verifier before the fetch; ids the client does not own are dropped from
// the response rather than erred, while an id outside the admin's unity
// scope rejects the whole request.
func (h *Handler) getByIDs(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRank(w, r, roles.UnityAdmin)
	if !ok {
		return
	}

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "queue id is required")
		return
	}

	visible := make([]string, 0, len(ids))
	for _, id := range ids {
		err := h.verifier.Verify(r.Context(), identity, id)
		switch {
		case err == nil:
			visible = append(visible, id)
		case errors.Is(err, httpx.ErrNotFound):
			// Missing or foreign ids are silently omitted.
		default:
			httpx.RespondError(w, err)
			return
		}
	}

	result := []Queue{}
	if len(visible) > 0 {
		found, err := h.service.GetByIDs(r.Context(), visible, identity.ClientID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result = append(result, found...)
	}
	httpx.JSON(w, http.StatusOK, result)
}

type updateQueueRequest struct {
	Name                        *string `json:"name"`
	Type                        *string `json:"type"`
	IsActive                    *bool   `json:"isActive"`
	StartQueueAt                *string `json:"startQueueAt"`
	EndQueueAt                  *string `json:"endQueueAt"`
	MaxUsersInQueue             *int    `json:"maxUsersInQueue"`
	MinWaitingTimeInMinutes     *int    `json:"minWaitingTimeInMinutes"`
	MaxWaitingTimeInMinutes     *int    `json:"maxWaitingTimeInMinutes"`
	CurrentWaitingTimeInMinutes *int    `json:"currentWaitingTimeInMinutes"`
	AdminID                     *string `json:"adminId"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity, queueID, ok := h.requireQueueAccess(w, r)
	if !ok {
		return
	}

	var req updateQueueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	patch := UpdatePatch{
		Name:                        req.Name,
		IsActive:                    req.IsActive,
		StartQueueAt:                req.StartQueueAt,
		EndQueueAt:                  req.EndQueueAt,
		MaxUsersInQueue:             req.MaxUsersInQueue,
		MinWaitingTimeInMinutes:     req.MinWaitingTimeInMinutes,
		MaxWaitingTimeInMinutes:     req.MaxWaitingTimeInMinutes,
		CurrentWaitingTimeInMinutes: req.CurrentWaitingTimeInMinutes,
		AdminID:                     req.AdminID,
	}
	if req.Type != nil {
		t := Type(*req.Type)
		patch.Type = &t
	}

	queue, err := h.service.Update(r.Context(), queueID, identity.ClientID, patch)
	if err != nil {
		h.respondQueueError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, queue)
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	identity, queueID, ok := h.requireQueueAccess(w, r)
	if !ok {
		return
	}
	queue, err := h.service.Disable(r.Context(), queueID, identity.ClientID)
	if err != nil {
		h.respondQueueError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, queue)
}

func (h *Handler) enable(w http.ResponseWriter, r *http.Request) {
	identity, queueID, ok := h.requireQueueAccess(w, r)
	if !ok {
		return
	}
	queue, err := h.service.Enable(r.Context(), queueID, identity.ClientID)
	if err != nil {
		h.respondQueueError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, queue)
}

// requireRank enforces authentication plus the coarse role gate.
func (h *Handler) requireRank(w http.ResponseWriter, r *http.Request, min roles.Role) (*shared.Identity, bool) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return nil, false
	}
	if err := roles.RequireAtLeast(identity.Role, min); err != nil {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
		return nil, false
	}
	return identity, true
}

// requireQueueAccess runs the full mutation gate: rank, then unity scope on
// the target queue. The rank floor is UNITY_ADMIN; unity scoping is checked
// by the verifier.
func (h *Handler) requireQueueAccess(w http.ResponseWriter, r *http.Request) (*shared.Identity, string, bool) {
	identity, ok := h.requireRank(w, r, roles.UnityAdmin)
	if !ok {
		return nil, "", false
	}
	queueID := chi.URLParam(r, "queueID")
	if err := h.verifier.Verify(r.Context(), identity, queueID); err != nil {
		h.respondQueueError(w, err)
		return nil, "", false
	}
	return identity, queueID, true
}

func (h *Handler) respondQueueError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.RespondError(w, err)
}
