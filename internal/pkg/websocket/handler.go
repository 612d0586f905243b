package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/yigit/deptportal/internal/app/models"
)

// Upgrader upgrades notification connections from the allowed origins
type Upgrader struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewUpgrader creates an Upgrader. An empty origin list accepts any origin.
func NewUpgrader(hub *Hub, allowedOrigins []string) *Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Upgrader{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Serve upgrades the request and attaches the connection to caller's subscriptions
func (u *Upgrader) Serve(w http.ResponseWriter, r *http.Request, caller *models.Caller) error {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    u.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: caller.ID,
		role:   caller.Role,
		logger: u.hub.logger,
	}
	select {
	case u.hub.register <- client:
	case <-u.hub.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}
