package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"quizlive-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades HTTP requests to websockets and feeds decoded frames to
// the coordinator. All protocol state lives in the coordinator; this layer
// only parses, dispatches, and reports rejections back to the sender.
type WSHandler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
}

func NewWSHandler(coordinator *app.Coordinator) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// wsConn guards the gorilla connection with a single-writer mutex so the
// broadcaster can write from any goroutine.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinData struct {
	SessionCode string `json:"sessionCode"`
	Nickname    string `json:"nickname"`
}

type hostData struct {
	SessionCode string `json:"sessionCode"`
	UserID      string `json:"userId"`
}

type answerData struct {
	QuestionIndex  int    `json:"questionIndex"`
	Answer         string `json:"answer"`
	ResponseTimeMs int    `json:"responseTime"`
}

type errorData struct {
	Message string `json:"message"`
}

// ServeWS runs the read loop for one connection. Inbound frames on a single
// connection are handled in order; rejections go back to the sender only and
// never close the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	conn := &wsConn{conn: raw}
	defer conn.Close()
	defer h.coordinator.Disconnect(conn)

	ctx := r.Context()
	for {
		_, frame, err := raw.ReadMessage()
		if err != nil {
			return
		}

		var inbound inboundMessage
		if err := json.Unmarshal(frame, &inbound); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}

		switch inbound.Type {
		case "join":
			var data joinData
			if err := json.Unmarshal(inbound.Data, &data); err != nil {
				h.sendError(conn, "invalid join payload")
				continue
			}
			if err := h.coordinator.Join(ctx, conn, data.SessionCode, data.Nickname); err != nil {
				h.sendError(conn, err.Error())
			}
		case "host":
			var data hostData
			if err := json.Unmarshal(inbound.Data, &data); err != nil {
				h.sendError(conn, "invalid host payload")
				continue
			}
			if err := h.coordinator.ConnectHost(ctx, conn, data.SessionCode, data.UserID); err != nil {
				h.sendError(conn, err.Error())
			}
		case "start":
			if err := h.coordinator.Start(ctx, conn); err != nil {
				h.sendError(conn, err.Error())
			}
		case "pause":
			if err := h.coordinator.Pause(ctx, conn); err != nil {
				h.sendError(conn, err.Error())
			}
		case "next_question":
			if err := h.coordinator.NextQuestion(ctx, conn); err != nil {
				h.sendError(conn, err.Error())
			}
		case "end":
			if err := h.coordinator.End(ctx, conn); err != nil {
				h.sendError(conn, err.Error())
			}
		case "answer":
			var data answerData
			if err := json.Unmarshal(inbound.Data, &data); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			if err := h.coordinator.SubmitAnswer(ctx, conn, data.QuestionIndex, data.Answer, data.ResponseTimeMs); err != nil {
				h.sendError(conn, err.Error())
			}
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) sendError(conn app.Conn, message string) {
	if err := conn.WriteJSON(app.Message{Type: "error", Data: errorData{Message: message}}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
