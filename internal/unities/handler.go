package unities

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{unityID}", h.get)
}

type createUnityRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if err := roles.RequireAtLeast(identity.Role, roles.ClientAdmin); err != nil {
		h.respondRoleError(w, err)
		return
	}

	var req createUnityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	unity, err := h.service.Create(r.Context(), identity.ClientID, req.Name, req.Address)
	if err != nil {
		h.logger.Error("create unity", slog.Any("error", err), slog.String("client_id", identity.ClientID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, unity)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if err := roles.RequireAtLeast(identity.Role, roles.UnityAdmin); err != nil {
		h.respondRoleError(w, err)
		return
	}

	unities, err := h.service.ListByClient(r.Context(), identity.ClientID)
	if err != nil {
		h.logger.Error("list unities", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if unities == nil {
		unities = []Unity{}
	}
	httpx.JSON(w, http.StatusOK, unities)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	unity, err := h.service.Get(r.Context(), chi.URLParam(r, "unityID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, unity)
}

func (h *Handler) respondRoleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roles.ErrInsufficientRole):
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
	case errors.Is(err, roles.ErrUnknownRole):
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
