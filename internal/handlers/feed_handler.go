package handlers

import (
	"net/http"
	"strings"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/gorilla/mux"
)

type FeedHandler struct {
	Service *services.FeedService
	Posts   *services.PostService
}

func NewFeedHandler(service *services.FeedService, posts *services.PostService) *FeedHandler {
	return &FeedHandler{Service: service, Posts: posts}
}

// GET /feed?known=w1,w2
// known lists wine ids the client already holds; they are not resent.
func (h *FeedHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var known []string
	if raw := r.URL.Query().Get("known"); raw != "" {
		known = strings.Split(raw, ",")
	}

	posts, err := h.Service.GetFeed(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "load feed")
		return
	}
	writeJSON(w, http.StatusOK, models.FeedResponse{
		Posts: posts,
		Wines: h.Service.ResolveWines(r.Context(), posts, known),
	})
}

// GET /users/{id}/posts
func (h *FeedHandler) GetUserPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Service.GetUserPosts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "load posts")
		return
	}
	writeJSON(w, http.StatusOK, models.FeedResponse{
		Posts: posts,
		Wines: h.Service.ResolveWines(r.Context(), posts, nil),
	})
}

// POST /posts/{id}/like
func (h *FeedHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	liked, err := h.Posts.ToggleLike(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		writeError(w, err, "like post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// POST /posts/{id}/comments
func (h *FeedHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.AddCommentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	comment, err := h.Posts.AddComment(r.Context(), mux.Vars(r)["id"], claims.UserID, &input)
	if err != nil {
		writeError(w, err, "add comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
