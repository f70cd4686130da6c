// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/halalan/models"
)

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	models.CodePhaseViolation:      http.StatusConflict,
	models.CodeNotEligible:         http.StatusForbidden,
	models.CodeStudentBlocked:      http.StatusForbidden,
	models.CodeNotContinuing:       http.StatusForbidden,
	models.CodeDuplicateSubmission: http.StatusConflict,
	models.CodeCapacityExceeded:    http.StatusConflict,
	models.CodeInvalidCredential:   http.StatusUnauthorized,
	models.CodeInvalidCode:         http.StatusUnauthorized,
	models.CodeInvalidInput:        http.StatusBadRequest,
	models.CodeNotFound:            http.StatusNotFound,
	models.CodeAlreadyDecided:      http.StatusConflict,
	models.CodeAlreadyResolved:     http.StatusConflict,
}

// DomainError writes a domain-rule violation with its stable code, or a
// 500 for infrastructure errors. Domain errors are expected outcomes and
// are not logged here; callers log infrastructure errors before handing
// them over.
func DomainError(w http.ResponseWriter, err error) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		JSONResponse(w, status, models.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Reason,
		})
		return
	}

	ErrorResponse(w, http.StatusInternalServerError, "Internal error")
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
