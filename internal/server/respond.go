package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/apperr"
)

const jsonContentType = "application/json; charset=utf-8"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v with non-ASCII and HTML characters left unescaped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// logBoundaryError records an error that is about to become a JSON payload.
func logBoundaryError(logger *zerolog.Logger, endpoint string, err error) {
	logger.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Str("code", apperr.Code(err)).
		Msg("request failed")
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
