package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"items-api/internal/apperror"

	"go.uber.org/zap"
)

// Envelope is the uniform response body
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func setHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Credentials", "true")
}

func writeEnvelope(w http.ResponseWriter, statusCode int, envelope Envelope) {
	setHeaders(w)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

// RespondWithData sends a success envelope
func RespondWithData(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, Envelope{Success: true, Data: data})
}

// RespondWithError sends an error envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends an error envelope with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details any) {
	writeEnvelope(w, statusCode, Envelope{Success: false, Error: message, Details: details})
}

// RespondWithValidationErrors sends a 400 carrying field level errors
func RespondWithValidationErrors(w http.ResponseWriter, message string, fields []apperror.FieldError) {
	RespondWithErrorDetails(w, http.StatusBadRequest, message, fields)
}

// RespondNoContent sends a 204 with the fixed headers and no body
func RespondNoContent(w http.ResponseWriter) {
	setHeaders(w)
	w.Header().Del("Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

// RespondWithAppError maps a failure onto its status code. Anything that is
// not classified becomes a 500 with fallback as the only message.
func RespondWithAppError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.Unclassified {
		RespondWithError(w, http.StatusInternalServerError, fallback)
		return
	}

	if appErr.Kind == apperror.SchemaViolation {
		RespondWithValidationErrors(w, appErr.Message, appErr.Fields)
		return
	}

	RespondWithError(w, appErr.Kind.Status(), appErr.Message)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
