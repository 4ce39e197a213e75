package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
)

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "ask", "role" or "status"
	Content string `json:"content"`
	Role    string `json:"role,omitempty"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type         string `json:"type"` // "answer", "role", "status" or "error"
	ConnectionID string `json:"connection_id"`
	Content      string `json:"content"`
	Role         string `json:"role,omitempty"`
}

// chatConn is the per-connection state. Roles are scoped to one socket.
type chatConn struct {
	id   string
	conn *websocket.Conn
	role assistant.Role
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := &chatConn{id: uuid.NewString(), conn: conn, role: assistant.Customer}
	log.Printf("server: chat %s connected", c.id)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: chat %s read: %v", c.id, err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			c.sendError("invalid message format")
			continue
		}

		switch req.Type {
		case "ask":
			s.handleAsk(r, c, req)
		case "role":
			role, err := assistant.ParseRole(req.Role)
			if err != nil {
				c.sendError(err.Error())
				continue
			}
			c.role = role
			c.send(chatResponse{Type: "role", Content: "role set to " + string(role), Role: string(role)})
		case "status":
			c.send(chatResponse{Type: "status", Content: s.assistant.BackendStatus()})
		default:
			c.sendError("unknown message type: " + req.Type)
		}
	}
}

func (s *Server) handleAsk(r *http.Request, c *chatConn, req chatRequest) {
	if req.Content == "" {
		c.sendError("⚠️ Enter a valid question.")
		return
	}
	role := c.role
	if req.Role != "" {
		parsed, err := assistant.ParseRole(req.Role)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		role = parsed
	}

	ctx := assistant.WithSurface(r.Context(), assistant.SurfaceWebSocket)
	answer := s.assistant.Answer(ctx, req.Content, role)
	c.send(chatResponse{Type: "answer", Content: answer, Role: string(role)})
}

func (c *chatConn) send(resp chatResponse) {
	resp.ConnectionID = c.id
	if err := c.conn.WriteJSON(resp); err != nil {
		log.Printf("server: chat %s write: %v", c.id, err)
	}
}

func (c *chatConn) sendError(message string) {
	c.send(chatResponse{Type: "error", Content: message})
}
