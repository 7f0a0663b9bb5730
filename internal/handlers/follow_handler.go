package handlers

import (
	"net/http"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/gorilla/mux"
)

type FollowHandler struct {
	Service *services.FollowService
	Users   *services.UserService
}

func NewFollowHandler(service *services.FollowService, users *services.UserService) *FollowHandler {
	return &FollowHandler{Service: service, Users: users}
}

type followListResponse struct {
	UserIDs []string            `json:"user_ids"`
	Users   []models.PublicUser `json:"users"`
}

// POST /users/{id}/follow
func (h *FollowHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	target := mux.Vars(r)["id"]
	if target == claims.UserID {
		writeError(w, models.ErrSelfFollow, "follow user")
		return
	}

	created, err := h.Service.Follow(r.Context(), claims.UserID, target)
	if err != nil {
		writeError(w, err, "follow user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"created": created})
}

// DELETE /users/{id}/follow
func (h *FollowHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	removed, err := h.Service.Unfollow(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "unfollow user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// GET /users/{id}/follow
func (h *FollowHandler) IsFollowingHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	following, err := h.Service.IsFollowing(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "check follow")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// GET /users/{id}/following
func (h *FollowHandler) ListFollowingHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.ListFollowing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "list following")
		return
	}
	writeJSON(w, http.StatusOK, followListResponse{UserIDs: ids, Users: h.Users.GetUsersByIDs(r.Context(), ids)})
}

// GET /users/{id}/followers
func (h *FollowHandler) ListFollowersHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.ListFollowers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "list followers")
		return
	}
	writeJSON(w, http.StatusOK, followListResponse{UserIDs: ids, Users: h.Users.GetUsersByIDs(r.Context(), ids)})
}

// GET /users/{id}/stats?exact=true
func (h *FollowHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	exact := r.URL.Query().Get("exact") == "true"
	stats, err := h.Service.FollowStats(r.Context(), mux.Vars(r)["id"], exact)
	if err != nil {
		writeError(w, err, "load follow stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
