package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emmanuelnwankwo/api-template/internal/auth"
	"github.com/emmanuelnwankwo/api-template/internal/domain"
	mailermock "github.com/emmanuelnwankwo/api-template/internal/mailer/mock"
	"github.com/emmanuelnwankwo/api-template/internal/service"
	apperrors "github.com/emmanuelnwankwo/api-template/pkg/errors"
	"github.com/emmanuelnwankwo/api-template/pkg/health"
)

// ============================================================================
// Mocks
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// stubPublisher drops all events.
type stubPublisher struct{}

func (stubPublisher) PublishUserRegistered(context.Context, *domain.User) error { return nil }
func (stubPublisher) PublishUserVerified(context.Context, *domain.User) error   { return nil }
func (stubPublisher) PublishUserUpdated(context.Context, *domain.User) error    { return nil }
func (stubPublisher) PublishUserPasswordReset(context.Context, string) error    { return nil }

// ============================================================================
// Helpers
// ============================================================================

const testBaseURL = "http://localhost:3000"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret-key-for-testing", 24*time.Hour, 24*time.Hour)
}

func newTestRouter(users *mockUserRepo) http.Handler {
	logger := newTestLogger()
	tokens := newTestTokens()
	svc := service.NewAccountService(users, tokens, mailermock.New(logger), stubPublisher{}, testBaseURL, logger)
	return NewRouter(svc, tokens, health.NewHandler(), logger)
}

// envelope mirrors the response body shape for assertions.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	} `json:"error"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

// ============================================================================
// Signup
// ============================================================================

func TestSignup_Success(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	users.On("GetByEmail", mock.Anything, "tony@x.com").Return(nil, apperrors.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"firstName": "Tony",
		"lastName":  "Stark",
		"email":     "tony@x.com",
		"password":  "Passw0rd1",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "success", env.Status)

	var data struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		IsVerified bool   `json:"isVerified"`
		Token      string `json:"token"`
		EmailSent  bool   `json:"emailSent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.ID)
	assert.Equal(t, "tony@x.com", data.Email)
	assert.False(t, data.IsVerified)
	assert.NotEmpty(t, data.Token)
	assert.True(t, data.EmailSent)

	// Password hash must never appear on the wire.
	assert.NotContains(t, rr.Body.String(), "passwordHash")
	assert.NotContains(t, rr.Body.String(), "password_hash")

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Equal(t, data.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 86400, cookie.MaxAge)
}

func TestSignup_ValidationFailure(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"firstName": "To",
		"lastName":  "Stark",
		"email":     "not-an-email",
		"password":  "has spaces!",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "fail", env.Status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Errors, "FirstName")
	assert.Contains(t, env.Error.Errors, "Email")
	assert.Contains(t, env.Error.Errors, "Password")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	existing := &domain.User{ID: "user-1", Email: "tony@x.com"}
	users.On("GetByEmail", mock.Anything, "tony@x.com").Return(existing, nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"firstName": "Tony",
		"lastName":  "Stark",
		"email":     "tony@x.com",
		"password":  "Passw0rd1",
	})

	require.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User with email: tony@x.com already exists", env.Error.Message)
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	stored := &domain.User{
		ID:           "user-1",
		Email:        "tony@x.com",
		PasswordHash: hashForTest("Passw0rd1"),
	}
	users.On("GetByEmail", mock.Anything, "tony@x.com").Return(stored, nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "tony@x.com",
		"password": "Passw0rd1",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", env.Status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	require.NotNil(t, sessionCookie(rr))
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	users.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrNotFound)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ghost@x.com",
		"password": "Passw0rd1",
	})

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User does not exists", env.Error.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	stored := &domain.User{
		ID:           "user-1",
		Email:        "tony@x.com",
		PasswordHash: hashForTest("Passw0rd1"),
	}
	users.On("GetByEmail", mock.Anything, "tony@x.com").Return(stored, nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "tony@x.com",
		"password": "WrongPass1",
	})

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Password is not correct, try again", env.Error.Message)
}

// ============================================================================
// Email Verification
// ============================================================================

func TestVerifyEmail_Success(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	token, err := newTestTokens().IssueSession("user-1", "tony@x.com")
	require.NoError(t, err)

	stored := &domain.User{ID: "user-1", Email: "tony@x.com", IsVerified: false}
	users.On("GetByID", mock.Anything, "user-1").Return(stored, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/verify?token="+token, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", env.Status)

	var data struct {
		IsVerified bool `json:"isVerified"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.IsVerified)
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/verify?token=bogus", nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid token, verification unsuccessful", env.Error.Message)
}

func TestVerifyEmail_UserNotFound(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	token, err := newTestTokens().IssueSession("gone", "gone@x.com")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound)

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/verify?token="+token, nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "No user found to verify", env.Error.Message)
}

// ============================================================================
// Password Reset
// ============================================================================

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	users.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrNotFound)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email": "ghost@x.com",
	})

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User account does not exist", env.Error.Message)
}

func TestRequestPasswordReset_Success(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	stored := &domain.User{ID: "user-1", FirstName: "Tony", Email: "tony@x.com"}
	users.On("GetByEmail", mock.Anything, "tony@x.com").Return(stored, nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email": "tony@x.com",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", env.Status)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "Password reset link sent successfully", msg)
}

func TestConfirmPasswordResetLink_InvalidToken(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/reset-password?token=8767668", nil)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Verification unsuccessful, Invalid Token", env.Error.Message)
}

func TestConfirmPasswordResetLink_Success(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	token, err := newTestTokens().IssueReset("user-1", "tony@x.com")
	require.NoError(t, err)

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/reset-password?token="+token, nil)

	require.Equal(t, http.StatusOK, rr.Code)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Contains(t, msg, "/api/auth/password/reset/tony@x.com")
}

func TestResetPassword_Success(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	users.On("UpdatePasswordByEmail", mock.Anything, "tony@x.com", mock.AnythingOfType("string")).Return(int64(1), nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/password/reset/tony@x.com", map[string]string{
		"password":        "NewPassw0rd",
		"confirmPassword": "NewPassw0rd",
	})

	require.Equal(t, http.StatusOK, rr.Code)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "Password has been changed successfully", msg)
}

func TestResetPassword_ConfirmMismatch(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/password/reset/tony@x.com", map[string]string{
		"password":        "NewPassw0rd",
		"confirmPassword": "Different1",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Errors, "ConfirmPassword")
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	router := newTestRouter(users)

	users.On("UpdatePasswordByEmail", mock.Anything, "ghost@x.com", mock.AnythingOfType("string")).Return(int64(0), nil)

	rr, env := doJSON(t, router, http.MethodPost, "/api/auth/password/reset/ghost@x.com", map[string]string{
		"password":        "NewPassw0rd",
		"confirmPassword": "NewPassw0rd",
	})

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User account does not exist", env.Error.Message)
}

// ============================================================================
// Logout
// ============================================================================

func TestLogout(t *testing.T) {
	router := newTestRouter(new(mockUserRepo))

	rr, env := doJSON(t, router, http.MethodGet, "/api/auth/logout", nil)

	require.Equal(t, http.StatusOK, rr.Code)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "You have been successfully logged out", msg)

	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
