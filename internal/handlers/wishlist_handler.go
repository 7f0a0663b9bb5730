package handlers

import (
	"net/http"

	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/gorilla/mux"
)

type WishlistHandler struct {
	Service *services.WishlistService
}

func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{Service: service}
}

// GET /wishlist
func (h *WishlistHandler) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.Service.ListWishlist(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "load wishlist")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// PUT /wishlist/{wineId}
func (h *WishlistHandler) AddToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.AddToWishlist(r.Context(), claims.UserID, mux.Vars(r)["wineId"], ""); err != nil {
		writeError(w, err, "add to wishlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /wishlist/{wineId}
func (h *WishlistHandler) RemoveFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.RemoveFromWishlist(r.Context(), claims.UserID, mux.Vars(r)["wineId"]); err != nil {
		writeError(w, err, "remove from wishlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /wishlist/{wineId}/tasted
func (h *WishlistHandler) MarkTastedHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.MarkTasted(r.Context(), claims.UserID, mux.Vars(r)["wineId"]); err != nil {
		writeError(w, err, "mark wine as tasted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /users/{id}/recommendations  {"wine_id": "..."}
func (h *WishlistHandler) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body struct {
		WineID string `json:"wine_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := h.Service.Recommend(r.Context(), claims.UserID, mux.Vars(r)["id"], body.WineID); err != nil {
		writeError(w, err, "recommend wine")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /users/{id}/tasted
func (h *WishlistHandler) GetTastedHandler(w http.ResponseWriter, r *http.Request) {
	tasted, err := h.Service.ListTasted(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "load tasted wines")
		return
	}
	writeJSON(w, http.StatusOK, tasted)
}
