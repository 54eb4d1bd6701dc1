package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/san-kum/roadrisk/server/processor"
	"github.com/san-kum/roadrisk/server/risk"
	"go.uber.org/zap"
)

// WebSocketHandler streams risk assessments over a long-lived connection:
// the client sends condition updates as it drives, the server answers each
// with a fresh assessment.
type WebSocketHandler struct {
	processor *processor.AssessmentProcessor
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

type ClientMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewWebSocketHandler(processor *processor.AssessmentProcessor, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		processor: processor,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", zap.Error(err))
		return
	}
	defer conn.Close()

	clientIP := c.ClientIP()
	h.logger.Info("WebSocket client connected", zap.String("client_ip", clientIP))

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	done := make(chan struct{})

	go h.pingRoutine(conn, ticker, done)

	for {
		select {
		case <-done:
			return
		default:
			var message ClientMessage
			err := conn.ReadJSON(&message)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Error("websocket error", zap.Error(err))
				}
				close(done)
				return
			}
			h.handleMessage(conn, &message)
		}
	}
}

func (h *WebSocketHandler) handleMessage(conn *websocket.Conn, message *ClientMessage) {
	switch message.Type {
	case "assess":
		h.handleAssess(conn, message)
	case "ping":
		h.sendMessage(conn, "pong", map[string]any{"timestamp": time.Now().Unix()})
	default:
		h.logger.Warn("unknown message type received", zap.String("type", message.Type))
		h.sendError(conn, "Unknown message type: "+message.Type)
	}
}

func (h *WebSocketHandler) handleAssess(conn *websocket.Conn, message *ClientMessage) {
	var request PredictRequest
	if err := json.Unmarshal(message.Data, &request); err != nil || request.Location == "" {
		h.sendError(conn, "invalid assessment request")
		return
	}

	assessment, err := h.processor.Assess(request.Location, request.Conditions())
	if err != nil {
		if errors.Is(err, risk.ErrInvalidCondition) {
			h.sendError(conn, err.Error())
			return
		}
		h.logger.Error("websocket assessment failed", zap.Error(err))
		h.sendError(conn, "assessment failed")
		return
	}

	h.sendMessage(conn, "assessment", assessment)
}

func (h *WebSocketHandler) sendMessage(conn *websocket.Conn, messageType string, data interface{}) {
	message := ServerMessage{
		Type: messageType,
		Data: data,
	}

	if err := conn.WriteJSON(message); err != nil {
		h.logger.Error("failed to send WebSocket message", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	h.sendMessage(conn, "error", map[string]interface{}{
		"message":   errorMsg,
		"timestamp": time.Now().Unix(),
	})
}

func (h *WebSocketHandler) pingRoutine(conn *websocket.Conn, ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Error("failed to send ping", zap.Error(err))
				close(done)
				return
			}
		case <-done:
			return
		}
	}
}
