package handler

import (
	"encoding/json"
	"fmt"
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlerLogin(t *testing.T) {
	svc := new(MockUserService)
	h := NewAuthHandler(svc, testLogger)

	t.Run("returns token and user", func(t *testing.T) {
		svc.On("Login", mock.Anything, "ana@example.com", "secret1").
			Return("signed-token", &user.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: user.RoleAdmin, Active: true}, nil).Once()

		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"secret1"}`, nil, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.LoginResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "admin", resp.User.Role)
	})

	t.Run("wrong credentials are unauthorized", func(t *testing.T) {
		svc.On("Login", mock.Anything, "ana@example.com", "nope").
			Return("", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)).Once()

		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"nope"}`, nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing password fails validation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(http.MethodPost, "/auth/login", `{"email":"ana@example.com"}`, nil, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "password", decodeError(t, rec).Field)
	})
	svc.AssertExpectations(t)
}

func TestAuthHandlerProfile(t *testing.T) {
	h := NewAuthHandler(new(MockUserService), testLogger)

	rec := httptest.NewRecorder()
	h.Profile(rec, newRequest(http.MethodGet, "/auth/profile", nil, nil, &collectorActor))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dto.ProfileResponse{ID: "7", Email: "cobrador@example.com", Role: "cobrador"}, resp)
}

func TestUserHandler(t *testing.T) {
	t.Run("create user defaults to the service role handling", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, testLogger)
		svc.On("Register", mock.Anything, user.RegisterInput{Name: "Carlos", Email: "carlos@example.com", Password: "secret1"}).
			Return(&user.User{ID: 8, Name: "Carlos", Email: "carlos@example.com", Role: user.RoleCollector, Active: true}, nil)

		rec := httptest.NewRecorder()
		body := `{"nombre":"Carlos","email":"carlos@example.com","password":"secret1"}`
		h.CreateUser(rec, newRequest(http.MethodPost, "/users", body, nil, &adminActor))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "8", resp.ID)
		assert.Equal(t, "cobrador", resp.Role)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, testLogger)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: email taken", apperrors.ErrConflict))

		rec := httptest.NewRecorder()
		body := `{"nombre":"Carlos","email":"carlos@example.com","password":"secret1","rol":"admin"}`
		h.CreateUser(rec, newRequest(http.MethodPost, "/users", body, nil, &adminActor))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("deleting yourself is refused", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, testLogger)
		svc.On("DeleteUser", mock.Anything, int64(1), adminActor).
			Return(fmt.Errorf("%w: users cannot delete themselves", apperrors.ErrConflict))

		rec := httptest.NewRecorder()
		h.DeleteUser(rec, newRequest(http.MethodDelete, "/users/1", nil, map[string]string{"userID": "1"}, &adminActor))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("lists collectors", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, testLogger)
		svc.On("ListCollectors", mock.Anything).Return([]user.User{{ID: 7, Name: "Carlos", Role: user.RoleCollector, Active: true}}, nil)

		rec := httptest.NewRecorder()
		h.ListCollectors(rec, newRequest(http.MethodGet, "/users/collectors", nil, nil, &collectorActor))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 1)
	})

	t.Run("update passes the patch through", func(t *testing.T) {
		svc := new(MockUserService)
		h := NewUserHandler(svc, testLogger)
		active := false
		svc.On("UpdateUser", mock.Anything, int64(8), user.UpdateInput{Active: &active}).
			Return(&user.User{ID: 8, Name: "Carlos", Role: user.RoleCollector, Active: false}, nil)

		rec := httptest.NewRecorder()
		h.UpdateUser(rec, newRequest(http.MethodPut, "/users/8", `{"activo":false}`, map[string]string{"userID": "8"}, &adminActor))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}
