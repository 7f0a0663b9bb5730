package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	jwtutil "github.com/Dias221467/Tenvin_Social/pkg/jwt"
	"github.com/Dias221467/Tenvin_Social/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps domain errors to status codes. Anything unknown is a 500
// with a generic message naming the failed action.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrSelfFollow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrWineNotFound),
		errors.Is(err, models.ErrPostNotFound),
		errors.Is(err, models.ErrNotificationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Errorf("Failed to %s", action)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (*jwtutil.Claims, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.WithError(err).Warn("Failed to decode request body")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
