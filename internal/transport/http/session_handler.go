package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizlive-service/internal/app"
	"quizlive-service/internal/domain"
)

// SessionHandler exposes the minimal HTTP surface hosts need to mint a
// session and its join code before connecting over the websocket.
type SessionHandler struct {
	coordinator *app.Coordinator
}

func NewSessionHandler(coordinator *app.Coordinator) *SessionHandler {
	return &SessionHandler{coordinator: coordinator}
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
	HostID string `json:"hostId"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.QuizID == "" || req.HostID == "" {
		http.Error(w, "quizId and hostId are required", http.StatusBadRequest)
		return
	}

	session, err := h.coordinator.CreateSession(r.Context(), req.QuizID, req.HostID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(session)
}
