package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/emmanuelnwankwo/api-template/pkg/errors"
	"github.com/emmanuelnwankwo/api-template/pkg/logger"
	"github.com/emmanuelnwankwo/api-template/pkg/validator"
)

// Response is the JSON envelope used by every endpoint. Successful responses
// carry "status": "success" and a data payload; failures carry
// "status": "fail" and an error body.
type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody holds the failure message and optional field-level details.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// Headers are already sent if encoding fails, so the error is dropped.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes a success envelope with the given payload.
func Success(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Status: "success", Data: data})
}

// Fail writes a failure envelope for the given message and status.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Status: "fail",
		Error:  &ErrorBody{Message: message},
	})
}

// WriteError writes a failure envelope based on the error type. AppErrors map
// to their own status and message; anything else is reduced to a generic 500
// so internal detail never reaches the wire. Internal errors are logged with
// the request-scoped logger when the RequestLogging middleware is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		Fail(w, appErr.Status, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "Some error occurred while processing your Request"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	Fail(w, status, message)
}

// WriteValidationError writes a 400 failure envelope with field-level messages
// when the error comes from the structural validator, or the plain decode
// error otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Status: "fail",
			Error: &ErrorBody{
				Message: "request validation failed",
				Errors:  valErr.Fields(),
			},
		})
		return
	}

	Fail(w, http.StatusBadRequest, err.Error())
}
