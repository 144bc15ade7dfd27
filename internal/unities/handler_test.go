package unities_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
	"github.com/filaflow/filaflow/internal/unities"
	_ "github.com/filaflow/filaflow/testing"
)

func newRouter() *chi.Mux {
	handler := unities.NewHandler(nil, newTestService())
	router := chi.NewRouter()
	router.Route("/unities", handler.MountRoutes)
	return router
}

func doAs(router *chi.Mux, identity *shared.Identity, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), identity))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateUnityHandler(t *testing.T) {
	router := newRouter()
	owner := &shared.Identity{ID: "own-1", Name: "Dana", Role: roles.ClientOwner, ClientID: "cli-1"}

	res := doAs(router, owner, http.MethodPost, "/unities", `{"name":"Downtown","address":"Main St 1"}`)
	require.Equal(t, http.StatusCreated, res.Code)
}

func TestCreateUnityHandlerRequiresClientAdmin(t *testing.T) {
	router := newRouter()
	unityAdmin := &shared.Identity{ID: "adm-1", Name: "Rafa", Role: roles.UnityAdmin, ClientID: "cli-1", UnityIDs: []string{"uni-1"}}

	res := doAs(router, unityAdmin, http.MethodPost, "/unities", `{"name":"Downtown"}`)
	require.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestCreateUnityHandlerRequiresAuth(t *testing.T) {
	router := newRouter()

	res := doAs(router, nil, http.MethodPost, "/unities", `{"name":"Downtown"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestListUnitiesHandler(t *testing.T) {
	router := newRouter()
	admin := &shared.Identity{ID: "adm-1", Name: "Rafa", Role: roles.UnityAdmin, ClientID: "cli-1", UnityIDs: []string{"uni-1"}}

	res := doAs(router, admin, http.MethodGet, "/unities", "")
	require.Equal(t, http.StatusOK, res.Code)
}
