package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messenger-service/internal/email"
	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

func setupAuthHandler(userRepo *mocks.UserRepositoryMock, cacheMock *mocks.CacheMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := middleware.NewTokens("secret", "messenger-service", time.Hour)
	audit := telemetry.NewAuditEmitter(nil, "", "messenger-service", "test")
	handler := NewAuthHandler(userRepo, tokens, cacheMock, email.NoopSender{}, audit)

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/password-reset", handler.ResetPassword)
	return r
}

func TestRegisterCreatesUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	cacheMock := new(mocks.CacheMock)
	router := setupAuthHandler(userRepo, cacheMock)

	userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" && u.PasswordHash != "hunter2secret"
	})).Return(nil).Once()
	cacheMock.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"Alice@Example.com","password":"hunter2secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router := setupAuthHandler(new(mocks.UserRepositoryMock), new(mocks.CacheMock))

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandler(userRepo, new(mocks.CacheMock))

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(models.User{UserID: "u-1", Username: "alice", Email: "alice@example.com", PasswordHash: string(hash), IsActive: true}, nil).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"hunter2secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "accessToken")
	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandler(userRepo, new(mocks.CacheMock))

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").
		Return(models.User{UserID: "u-1", PasswordHash: string(hash), IsActive: true}, nil).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmailDoesNotLeak(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandler(userRepo, new(mocks.CacheMock))

	userRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"email":"ghost@example.com","password":"whatever123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetPasswordConsumesToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	cacheMock := new(mocks.CacheMock)
	router := setupAuthHandler(userRepo, cacheMock)

	cacheMock.On("Get", mock.Anything, "password-reset:tok-1", mock.Anything).
		Run(func(args mock.Arguments) {
			if dest, ok := args.Get(2).(*string); ok {
				*dest = "u-1"
			}
		}).Return(true, nil).Once()
	userRepo.On("UpdatePassword", mock.Anything, "u-1", mock.Anything).Return(nil).Once()
	cacheMock.On("Del", mock.Anything, "password-reset:tok-1").Return(nil).Once()

	body := bytes.NewBufferString(`{"token":"tok-1","password":"newpassword1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	cacheMock.AssertExpectations(t)
}

func TestResetPasswordRejectsUnknownToken(t *testing.T) {
	cacheMock := new(mocks.CacheMock)
	router := setupAuthHandler(new(mocks.UserRepositoryMock), cacheMock)

	cacheMock.On("Get", mock.Anything, "password-reset:tok-2", mock.Anything).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"token":"tok-2","password":"newpassword1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
