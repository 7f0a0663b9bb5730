package handlers

import (
	"net/http"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user profiles.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// POST /users/me
func (h *UserHandler) EnsureUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, created, err := h.Service.EnsureUser(r.Context(), claims)
	if err != nil {
		writeError(w, err, "create user")
		return
	}

	status := http.StatusOK
	if created {
		log.WithField("userID", user.ID).Info("User registered on first sign-in")
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

// GET /users/me
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PATCH /users/me
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.UpdateProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), claims.UserID, &input)
	if err != nil {
		writeError(w, err, "update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GET /users/search?q=&limit=
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	users := h.Service.SearchUsers(r.Context(), claims.UserID, r.URL.Query().Get("q"), queryInt(r, "limit"))
	writeJSON(w, http.StatusOK, users)
}

// GET /users/{id}
// Other users get the public projection.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err, "get user")
		return
	}
	if id == claims.UserID {
		writeJSON(w, http.StatusOK, user)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		models.PublicUser
		WinesTasted    []string `json:"wines_tasted"`
		FollowingCount int64    `json:"following_count"`
		FollowersCount int64    `json:"followers_count"`
	}{user.Public(), user.WinesTasted, user.FollowingCount, user.FollowersCount})
}
