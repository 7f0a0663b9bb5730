package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	jwtutil "github.com/Dias221467/Tenvin_Social/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// SearchMessage is sent by the client on every keystroke.
type SearchMessage struct {
	Query string `json:"query"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SearchSocketHandler streams type-ahead user search results. Each
// connection owns one SearchSession, so a slow older query can never
// overwrite the result of a newer one.
type SearchSocketHandler struct {
	Users     *services.UserService
	JWTSecret string
	JWTIssuer string
	Debounce  time.Duration
	Limit     int
}

func NewSearchSocketHandler(users *services.UserService, jwtSecret, jwtIssuer string, debounce time.Duration, limit int) *SearchSocketHandler {
	return &SearchSocketHandler{
		Users:     users,
		JWTSecret: jwtSecret,
		JWTIssuer: jwtIssuer,
		Debounce:  debounce,
		Limit:     limit,
	}
}

// GET /ws/search?token=
func (h *SearchSocketHandler) SearchWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret, h.JWTIssuer)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(1024)
	log.WithField("userID", userID).Debug("Search socket connected")

	search := func(ctx context.Context, query string) []models.PublicUser {
		return h.Users.SearchUsers(ctx, userID, query, h.Limit)
	}
	deliver := func(res services.SearchResult) {
		if err := conn.WriteJSON(res); err != nil {
			log.WithError(err).Debug("Failed to write search result")
		}
	}
	session := services.NewSearchSession(r.Context(), h.Debounce, search, deliver)

	defer func() {
		session.Close()
		conn.Close()
		log.WithField("userID", userID).Debug("Search socket disconnected")
	}()

	for {
		var msg SearchMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Search socket read error")
			}
			return
		}
		session.Submit(msg.Query)
	}
}
