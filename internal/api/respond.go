package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/report"
	"github.com/sells-group/geo-analytics/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps service errors onto status codes. Unexpected errors carry
// the backend's own message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *geo.ValidationError
	var inputErr *auth.InputError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, vErr)
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: inputErr.Message})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, report.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Authentication required"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Analysis not found"})
	case errors.Is(err, store.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: "An account with this email already exists"})
	default:
		zap.L().Error("api: request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: eris.Cause(err).Error()})
	}
}
