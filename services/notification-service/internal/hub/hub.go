// Package hub pushes notifications to browsers over WebSocket.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/notifier"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type client struct {
	userID string
	role   string
	send   chan []byte
}

// Hub is a registry of live connections keyed by user id. It implements
// notifier.Notifier so the worker can fan events out to it.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

func New(allowedOrigins []string) *Hub {
	h := &Hub{clients: map[string]map[*client]struct{}{}}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
	return h
}

func (h *Hub) Register(r gin.IRouter) {
	r.GET("/ws", h.Serve)
}

// Serve upgrades an authenticated request. The JWT comes from the token
// query parameter because browsers cannot set headers on a WebSocket.
func (h *Hub) Serve(c *gin.Context) {
	claims, err := auth.ParseValidate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[notify] ws upgrade: %v", err)
		return
	}
	cl := &client{userID: claims.Sub, role: claims.Role, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	log.Printf("[notify] ws connected user=%s", cl.userID)

	go h.writeLoop(conn, cl)
	h.readLoop(conn, cl)
}

// readLoop only watches for close and pong frames.
func (h *Hub) readLoop(conn *websocket.Conn, cl *client) {
	defer func() {
		h.remove(cl)
		_ = conn.Close()
		log.Printf("[notify] ws disconnected user=%s", cl.userID)
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[cl.userID]
	if !ok {
		set = map[*client]struct{}{}
		h.clients[cl.userID] = set
	}
	set[cl] = struct{}{}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[cl.userID]
	if _, ok := set[cl]; !ok {
		return
	}
	delete(set, cl)
	close(cl.send)
	if len(set) == 0 {
		delete(h.clients, cl.userID)
	}
}

// Connected reports how many sockets userID has open.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Notify queues m for every connection of m.Users and of users holding one
// of m.Roles. A client whose buffer is full misses the message.
func (h *Hub) Notify(_ context.Context, m notifier.Message) error {
	if len(m.Users) == 0 && len(m.Roles) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	users := map[string]bool{}
	for _, u := range m.Users {
		if u != "" {
			users[u] = true
		}
	}
	roles := map[string]bool{}
	for _, r := range m.Roles {
		roles[r] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for uid, set := range h.clients {
		for cl := range set {
			if !users[uid] && !roles[cl.role] {
				continue
			}
			select {
			case cl.send <- b:
			default:
				log.Printf("[notify] ws buffer full user=%s, dropping %s", uid, m.Key)
			}
		}
	}
	return nil
}
