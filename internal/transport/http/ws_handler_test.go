package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizlive-service/internal/app"
	"quizlive-service/internal/domain"
	"quizlive-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.Coordinator) {
	t.Helper()
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	registry := app.NewRegistry()
	coordinator := app.NewCoordinator(store, quizRepo, registry, app.NewBroadcaster(registry))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(coordinator).ServeWS)
	mux.HandleFunc("/sessions", NewSessionHandler(coordinator).CreateSession)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, coordinator
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "data": data}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	var msg struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Data)
	}
	return msg.Data
}

func TestWebSocketSessionFlow(t *testing.T) {
	server, coordinator := newTestServer(t)

	session, err := coordinator.CreateSession(context.Background(), "quiz-1", "host-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	host := dial(t, server)
	send(t, host, "host", map[string]any{"sessionCode": session.Code, "userId": "host-1"})
	readNext(t, host, "host_connected")

	participant := dial(t, server)
	send(t, participant, "join", map[string]any{"sessionCode": session.Code, "nickname": "Asha"})
	joined := readNext(t, participant, "join_success")
	if joined["participantId"] == "" || joined["participantId"] == nil {
		t.Fatalf("join_success missing participantId: %v", joined)
	}
	if joined["quiz"] == nil {
		t.Fatalf("join_success missing quiz payload: %v", joined)
	}

	readNext(t, host, "participant_joined")

	send(t, host, "start", nil)
	readNext(t, host, "session_started")
	readNext(t, participant, "session_started")

	send(t, participant, "answer", map[string]any{"questionIndex": 0, "answer": "4", "responseTime": 400})
	received := readNext(t, participant, "answer_received")
	if received["isCorrect"] != true {
		t.Fatalf("expected correct answer, got %v", received)
	}
	if points, ok := received["points"].(float64); !ok || int(points) != 1100 {
		t.Fatalf("expected 1100 points, got %v", received["points"])
	}

	answered := readNext(t, host, "participant_answered")
	if total, ok := answered["totalResponses"].(float64); !ok || int(total) != 1 {
		t.Fatalf("expected totalResponses 1, got %v", answered)
	}
}

func TestWebSocketRejectionsStayOnSender(t *testing.T) {
	server, coordinator := newTestServer(t)
	session, err := coordinator.CreateSession(context.Background(), "quiz-1", "host-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := dial(t, server)

	// malformed frame: connection survives and gets an error message
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	errData := readNext(t, conn, "error")
	if errData["message"] == nil {
		t.Fatalf("error missing message field: %v", errData)
	}

	// unknown type
	send(t, conn, "teleport", nil)
	readNext(t, conn, "error")

	// lifecycle message from an unregistered connection
	send(t, conn, "start", nil)
	readNext(t, conn, "error")

	// the same connection can still join normally afterwards
	send(t, conn, "join", map[string]any{"sessionCode": session.Code, "nickname": "Asha"})
	readNext(t, conn, "join_success")
}

func TestWebSocketJoinUnknownCode(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "join", map[string]any{"sessionCode": "ZZZZZZ", "nickname": "Nobody"})
	errData := readNext(t, conn, "error")
	if errData["message"] != domain.ErrSessionNotFound.Error() {
		t.Fatalf("expected session not found message, got %v", errData)
	}
}

func sampleQuiz() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					Text:          "What is 2 + 2?",
					Type:          domain.QuestionMCQ,
					Options:       []string{"3", "4", "5"},
					CorrectAnswer: "4",
				},
				{
					Text:          "The sky is blue.",
					Type:          domain.QuestionTrueFalse,
					Options:       []string{"true", "false"},
					CorrectAnswer: "true",
				},
			},
		},
	}
}
