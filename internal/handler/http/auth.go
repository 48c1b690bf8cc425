package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emmanuelnwankwo/api-template/internal/domain"
	"github.com/emmanuelnwankwo/api-template/internal/service"
	"github.com/emmanuelnwankwo/api-template/pkg/httputil"
	"github.com/emmanuelnwankwo/api-template/pkg/validator"
)

// sessionCookieMaxAge is the lifetime of the session cookie in seconds (24h).
const sessionCookieMaxAge = 86400

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for registration.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,min=3,max=25"`
	LastName  string `json:"lastName" validate:"required,min=3,max=25"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,alphanum,min=3,max=30"`
	Gender    string `json:"gender" validate:"omitempty,oneof=Male Female male female"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,alphanum,min=3,max=30"`
}

// ResetPasswordEmailRequest is the JSON request body for requesting a reset link.
type ResetPasswordEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest is the JSON request body for completing a password reset.
type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required,alphanum,min=3,max=30"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// --- Response types ---

// sessionResponse is an authenticated user payload carrying a session token.
type sessionResponse struct {
	*domain.User
	Token string `json:"token"`
}

// signupResponse additionally carries the advisory email delivery flag.
type signupResponse struct {
	*domain.User
	Token     string `json:"token"`
	EmailSent bool   `json:"emailSent"`
}

// --- Handlers ---

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SignupRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Gender:    req.Gender,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setSessionCookie(w, result.Token)
	httputil.Success(w, http.StatusCreated, signupResponse{
		User:      result.User,
		Token:     result.Token,
		EmailSent: result.EmailSent,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setSessionCookie(w, token)
	httputil.Success(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// VerifyEmail handles GET /api/auth/verify?token=
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	user, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// RequestPasswordReset handles POST /api/auth/reset-password
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ResetPasswordEmailRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Success(w, http.StatusOK, "Password reset link sent successfully")
}

// ConfirmPasswordResetLink handles GET /api/auth/reset-password?token=
func (h *AuthHandler) ConfirmPasswordResetLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	instruction, err := h.service.ConfirmPasswordResetLink(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Success(w, http.StatusOK, instruction)
}

// ResetPassword handles POST /api/auth/password/reset/{email}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ChangePasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	email := chi.URLParam(r, "email")
	if err := h.service.ResetPassword(r.Context(), email, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Success(w, http.StatusOK, "Password has been changed successfully")
}

// Logout handles GET /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	httputil.Success(w, http.StatusOK, "You have been successfully logged out")
}

// --- Helpers ---

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
