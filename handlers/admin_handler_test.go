package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozownz/meme-battles/middleware"
	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/services"
)

type fakeAdminService struct {
	listResult models.UserListResponse
	listErr    error
	assignRes  *models.UserRole
	assignErr  error
}

func (s *fakeAdminService) ListUsers(_ context.Context, _ int, _ string, _ models.UserFilter) (models.UserListResponse, error) {
	return s.listResult, s.listErr
}

func (s *fakeAdminService) AssignRole(_ context.Context, _ int, _ string, _ int, _ models.Role) (*models.UserRole, error) {
	return s.assignRes, s.assignErr
}

func newAdminTestRouter(svc services.AdminService) *chi.Mux {
	h := NewAdminHandler(svc)
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(testJWTSecret)))
		r.Get("/admin/users", h.ListUsers)
		r.Put("/admin/users/{id}/role", h.AssignRole)
	})
	return router
}

func TestAdminHandler_ListUsers(t *testing.T) {
	svc := &fakeAdminService{
		listResult: models.UserListResponse{
			Users:      []models.User{{ID: 1, Nickname: "one", Email: "one@example.com"}},
			TotalCount: 1,
			Page:       1,
			Limit:      20,
		},
	}
	router := newAdminTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "admin@example.com"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "one", resp.Users[0].Nickname)
}

func TestAdminHandler_ListUsers_Forbidden(t *testing.T) {
	svc := &fakeAdminService{listErr: services.ErrForbiddenOperation}
	router := newAdminTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 2, "user@example.com"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminHandler_AssignRole(t *testing.T) {
	svc := &fakeAdminService{
		assignRes: &models.UserRole{UserID: 5, Email: "target@example.com", Role: models.RoleAdmin},
	}
	router := newAdminTestRouter(svc)

	body := bytes.NewBufferString(`{"role": "admin"}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/users/5/role", body)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "admin@example.com"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserRole models.UserRole `json:"user_role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp.UserRole.Role)
}

func TestAdminHandler_AssignRole_InvalidRole(t *testing.T) {
	svc := &fakeAdminService{assignErr: services.ErrInvalidRole}
	router := newAdminTestRouter(svc)

	body := bytes.NewBufferString(`{"role": "superuser"}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/users/5/role", body)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "admin@example.com"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
