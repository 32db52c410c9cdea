// Package ws provides the WebSocket chat transport server.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/livechat/internal/config"
	"github.com/xiaot623/livechat/internal/domain"
	"github.com/xiaot623/livechat/internal/hub"
	"github.com/xiaot623/livechat/internal/protocol"
	"github.com/xiaot623/livechat/internal/service"
)

// Server handles chat WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.ChatHub
	svc      *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.ChatHub, svc *service.Service) *Server {
	return &Server{
		cfg: cfg,
		hub: h,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for MVP
				return true
			},
		},
	}
}

// HandleChat upgrades GET /ws/chat/:session_id and runs the connection
// lifecycle. Membership is checked before the upgrade so rejections
// surface as plain HTTP statuses.
func (s *Server) HandleChat(c echo.Context) error {
	sessionID := c.Param("session_id")
	senderID := c.QueryParam("sender_id")
	if senderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sender_id is required")
	}

	if err := s.svc.AuthorizeChatJoin(c.Request().Context(), sessionID, senderID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		case errors.Is(err, domain.ErrSessionAlreadyEnded):
			return echo.NewHTTPError(http.StatusConflict, "session already ended")
		case errors.Is(err, domain.ErrNotSessionParticipant):
			return echo.NewHTTPError(http.StatusForbidden, "not a session participant")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to validate session")
		}
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws, sessionID, senderID)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	// Ack to this connection only
	s.hub.SendJSONToConnection(conn, domain.NewPushEvent(domain.EventTypeChatConnected, domain.ChatConnectedData{
		SessionID: sessionID,
	}))

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads frames from the WebSocket connection. Each frame is
// handled synchronously, so one connection's messages keep their send
// order.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage persists an inbound chat frame and fans it out to the
// session's connections.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var msg protocol.ChatSendMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}
	if msg.Message == "" {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "message is required")
		return
	}

	senderID := msg.SenderID
	if senderID == "" {
		senderID = conn.UserID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.svc.SendChatMessage(ctx, conn.SessionID, senderID, msg.Message); err != nil {
		log.Printf("Failed to send chat message: %v", err)
		s.sendError(conn, protocol.ErrorCodeInternalError, "failed to send message")
	}
}

// sendError sends an error frame to a connection.
func (s *Server) sendError(conn *hub.Connection, code, message string) {
	s.hub.SendJSONToConnection(conn, protocol.NewError(code, message))
}
