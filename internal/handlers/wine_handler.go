package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxPhotoSize = 10 << 20

type WineHandler struct {
	Service *services.WineService
}

func NewWineHandler(service *services.WineService) *WineHandler {
	return &WineHandler{Service: service}
}

// POST /wines
// Accepts a JSON body, or multipart/form-data with the JSON in "wine" and an
// optional "photo" file.
func (h *WineHandler) CreateWineHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var (
		input models.CreateWineInput
		photo io.Reader
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("wine")), &input); err != nil {
			http.Error(w, "Invalid wine payload", http.StatusBadRequest)
			return
		}
		if file, _, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			photo = file
		}
	} else if !decodeJSON(w, r, &input) {
		return
	}

	wine, post, err := h.Service.CreateWine(r.Context(), claims.UserID, &input, photo)
	if err != nil {
		writeError(w, err, "create wine")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"wine": wine,
		"post": post,
	})
}

// GET /wines/{id}
func (h *WineHandler) GetWineHandler(w http.ResponseWriter, r *http.Request) {
	wine, err := h.Service.GetWine(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "get wine")
		return
	}
	writeJSON(w, http.StatusOK, wine)
}

// PATCH /wines/{id}
func (h *WineHandler) UpdateWineHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.UpdateWineInput
	if !decodeJSON(w, r, &input) {
		return
	}

	wine, err := h.Service.UpdateWine(r.Context(), claims.UserID, mux.Vars(r)["id"], &input)
	if err != nil {
		writeError(w, err, "update wine")
		return
	}
	writeJSON(w, http.StatusOK, wine)
}

// POST /wines/{id}/photo
func (h *WineHandler) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Failed to read photo", http.StatusBadRequest)
		return
	}
	defer file.Close()

	wine, err := h.Service.AttachImage(r.Context(), claims.UserID, mux.Vars(r)["id"], file)
	if err != nil {
		writeError(w, err, "upload photo")
		return
	}
	log.WithField("wineID", wine.ID).Info("Wine photo attached")
	writeJSON(w, http.StatusOK, wine)
}

// GET /users/{id}/wines
func (h *WineHandler) ListUserWinesHandler(w http.ResponseWriter, r *http.Request) {
	wines, err := h.Service.ListUserWines(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "list wines")
		return
	}
	writeJSON(w, http.StatusOK, wines)
}
