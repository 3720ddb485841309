package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   ErrorBody `json:"error"`
}

// JSON writes fields as a success envelope. The success flag is always set.
func JSON(w http.ResponseWriter, r *http.Request, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	write(w, r, status, body)
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, r, status, ErrorEnvelope{
		Success: false,
		Message: message,
		Error:   ErrorBody{Code: code, Details: details},
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, body any) {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.WarnContext(r.Context(), "write response failed", "status", status, "error", err)
	}
}
