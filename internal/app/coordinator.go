package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"quizlive-service/internal/domain"
)

// SessionRepository abstracts how sessions and responses are stored
// (in-memory, Redis, etc). Sessions are written back whole; the coordinator
// serializes read-modify-write cycles per session.
type SessionRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	GetSessionByCode(ctx context.Context, code string) (domain.Session, error)
	UpdateSession(ctx context.Context, session domain.Session) error
	CreateResponse(ctx context.Context, response domain.Response) error
	ResponsesBySession(ctx context.Context, sessionID string) ([]domain.Response, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Coordinator drives the session protocol: every inbound message type maps
// to one method, and each method follows the same shape of authorize, lock
// the session, read-modify-write through the store, then broadcast.
type Coordinator struct {
	store     SessionRepository
	quizzes   QuizRepository
	registry  *Registry
	broadcast *Broadcaster
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(store SessionRepository, quizzes QuizRepository, registry *Registry, broadcast *Broadcaster) *Coordinator {
	return &Coordinator{
		store:     store,
		quizzes:   quizzes,
		registry:  registry,
		broadcast: broadcast,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing mutations of one session.
// Operations on different sessions proceed in parallel; two concurrent
// answers to the same session must not overwrite each other's score update.
func (c *Coordinator) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[sessionID] = l
	}
	return l
}

// Event payloads.

type JoinSuccess struct {
	ParticipantID string         `json:"participantId"`
	Quiz          domain.Quiz    `json:"quiz"`
	Session       domain.Session `json:"session"`
}

type ParticipantJoined struct {
	Participant       domain.Participant `json:"participant"`
	TotalParticipants int                `json:"totalParticipants"`
}

type HostConnected struct {
	Session domain.Session `json:"session"`
}

type SessionStarted struct {
	QuestionIndex int `json:"questionIndex"`
}

type NextQuestion struct {
	QuestionIndex int `json:"questionIndex"`
}

type SessionEnded struct {
	Participants []domain.Participant `json:"participants"`
}

type AnswerReceived struct {
	IsCorrect  bool `json:"isCorrect"`
	Points     int  `json:"points"`
	Streak     int  `json:"streak"`
	TotalScore int  `json:"totalScore"`
}

type ParticipantAnswered struct {
	TotalResponses int `json:"totalResponses"`
}

type ParticipantLeft struct {
	ParticipantID string `json:"participantId"`
}

// CreateSession mints a new waiting session with a unique join code.
func (c *Coordinator) CreateSession(ctx context.Context, quizID, hostID string) (domain.Session, error) {
	if _, err := c.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Session{}, err
	}

	for attempt := 0; attempt < 5; attempt++ {
		session := domain.Session{
			ID:           newID(),
			QuizID:       quizID,
			HostID:       hostID,
			Code:         newSessionCode(),
			Status:       domain.StatusWaiting,
			Participants: []domain.Participant{},
			CreatedAt:    c.now(),
		}
		err := c.store.CreateSession(ctx, session)
		if errors.Is(err, domain.ErrCodeInUse) {
			continue
		}
		if err != nil {
			return domain.Session{}, c.storeErr("create session", err)
		}
		return session, nil
	}
	return domain.Session{}, domain.ErrCodeInUse
}

// Join adds a participant to the session behind the join code and registers
// the connection. Completed sessions reject joins.
func (c *Coordinator) Join(ctx context.Context, conn Conn, code, nickname string) error {
	found, err := c.store.GetSessionByCode(ctx, code)
	if err != nil {
		return c.storeErr("lookup session by code", err)
	}

	l := c.sessionLock(found.ID)
	l.Lock()
	defer l.Unlock()

	session, err := c.store.GetSession(ctx, found.ID)
	if err != nil {
		return c.storeErr("load session", err)
	}
	if session.Status == domain.StatusCompleted {
		return domain.ErrInvalidState
	}

	quiz, err := c.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return c.storeErr("load quiz", err)
	}

	participant := domain.Participant{
		ID:       newID(),
		Nickname: nickname,
		JoinedAt: c.now(),
	}
	session.Participants = append(session.Participants, participant)
	if err := c.store.UpdateSession(ctx, session); err != nil {
		return c.storeErr("update session", err)
	}

	// Notify existing connections before the joiner is registered, so the
	// joiner sees only its join_success.
	c.broadcast.ToSession(session.ID, Message{Type: "participant_joined", Data: ParticipantJoined{
		Participant:       participant,
		TotalParticipants: len(session.Participants),
	}})

	c.registry.Register(conn, ConnContext{
		SessionID:     session.ID,
		Role:          RoleParticipant,
		ParticipantID: participant.ID,
	})
	c.broadcast.SendTo(conn, Message{Type: "join_success", Data: JoinSuccess{
		ParticipantID: participant.ID,
		Quiz:          quiz,
		Session:       session,
	}})
	return nil
}

// ConnectHost registers a connection as the session's host. Only the user id
// the session was created with may claim the host role.
func (c *Coordinator) ConnectHost(ctx context.Context, conn Conn, code, userID string) error {
	session, err := c.store.GetSessionByCode(ctx, code)
	if err != nil {
		return c.storeErr("lookup session by code", err)
	}
	if session.HostID != userID {
		return domain.ErrUnauthorized
	}

	c.registry.Register(conn, ConnContext{
		SessionID:  session.ID,
		Role:       RoleHost,
		HostUserID: userID,
	})
	c.broadcast.SendTo(conn, Message{Type: "host_connected", Data: HostConnected{Session: session}})
	return nil
}

// Start moves a waiting or paused session to active.
func (c *Coordinator) Start(ctx context.Context, conn Conn) error {
	return c.hostMutation(ctx, conn, func(session *domain.Session) (Message, error) {
		if session.Status != domain.StatusWaiting && session.Status != domain.StatusPaused {
			return Message{}, domain.ErrInvalidState
		}
		session.Status = domain.StatusActive
		if session.StartedAt == nil {
			now := c.now()
			session.StartedAt = &now
		}
		return Message{Type: "session_started", Data: SessionStarted{QuestionIndex: session.CurrentQuestionIndex}}, nil
	})
}

// Pause moves an active session to paused.
func (c *Coordinator) Pause(ctx context.Context, conn Conn) error {
	return c.hostMutation(ctx, conn, func(session *domain.Session) (Message, error) {
		if session.Status != domain.StatusActive {
			return Message{}, domain.ErrInvalidState
		}
		session.Status = domain.StatusPaused
		return Message{Type: "session_paused", Data: struct{}{}}, nil
	})
}

// NextQuestion advances the question index of an active session. There is no
// upper-bound check; the host is expected to end the session after the last
// question.
func (c *Coordinator) NextQuestion(ctx context.Context, conn Conn) error {
	return c.hostMutation(ctx, conn, func(session *domain.Session) (Message, error) {
		if session.Status != domain.StatusActive {
			return Message{}, domain.ErrInvalidState
		}
		session.CurrentQuestionIndex++
		return Message{Type: "next_question", Data: NextQuestion{QuestionIndex: session.CurrentQuestionIndex}}, nil
	})
}

// End completes the session and tears down all of its connections.
// Completed is terminal.
func (c *Coordinator) End(ctx context.Context, conn Conn) error {
	connCtx, ok := c.registry.ContextOf(conn)
	if !ok || connCtx.Role != RoleHost {
		return domain.ErrUnauthorized
	}

	l := c.sessionLock(connCtx.SessionID)
	l.Lock()
	defer l.Unlock()

	session, err := c.store.GetSession(ctx, connCtx.SessionID)
	if err != nil {
		return c.storeErr("load session", err)
	}
	if session.Status == domain.StatusCompleted {
		return domain.ErrInvalidState
	}
	session.Status = domain.StatusCompleted
	now := c.now()
	session.CompletedAt = &now
	if err := c.store.UpdateSession(ctx, session); err != nil {
		return c.storeErr("update session", err)
	}

	c.broadcast.ToSession(session.ID, Message{Type: "session_ended", Data: SessionEnded{Participants: session.Participants}})
	for _, dropped := range c.registry.DropSession(session.ID) {
		_ = dropped.Close()
	}
	return nil
}

// SubmitAnswer scores one answer for a registered participant of an active
// session, updates the participant's score and streak, and appends the audit
// response. Duplicate submissions for the same question are not deduplicated.
func (c *Coordinator) SubmitAnswer(ctx context.Context, conn Conn, questionIndex int, answer string, responseTimeMs int) error {
	connCtx, ok := c.registry.ContextOf(conn)
	if !ok || connCtx.Role != RoleParticipant {
		return domain.ErrUnauthorized
	}

	l := c.sessionLock(connCtx.SessionID)
	l.Lock()
	defer l.Unlock()

	session, err := c.store.GetSession(ctx, connCtx.SessionID)
	if err != nil {
		return c.storeErr("load session", err)
	}
	if session.Status != domain.StatusActive {
		return domain.ErrInvalidState
	}

	quiz, err := c.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return c.storeErr("load quiz", err)
	}
	if questionIndex < 0 || questionIndex >= len(quiz.Questions) {
		return domain.ErrQuestionNotFound
	}

	idx := -1
	for i := range session.Participants {
		if session.Participants[i].ID == connCtx.ParticipantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrParticipantNotFound
	}

	participant := &session.Participants[idx]
	isCorrect, points, streak := Score(quiz.Questions[questionIndex], answer, responseTimeMs, participant.Streak)
	participant.Score += points
	participant.Streak = streak
	if err := c.store.UpdateSession(ctx, session); err != nil {
		return c.storeErr("update session", err)
	}

	if err := c.store.CreateResponse(ctx, domain.Response{
		SessionID:      session.ID,
		ParticipantID:  participant.ID,
		QuestionIndex:  questionIndex,
		Answer:         answer,
		IsCorrect:      isCorrect,
		ResponseTimeMs: responseTimeMs,
		Points:         points,
		Streak:         streak,
		SubmittedAt:    c.now(),
	}); err != nil {
		return c.storeErr("record response", err)
	}

	c.broadcast.SendTo(conn, Message{Type: "answer_received", Data: AnswerReceived{
		IsCorrect:  isCorrect,
		Points:     points,
		Streak:     streak,
		TotalScore: participant.Score,
	}})
	c.broadcast.ToHosts(session.ID, Message{Type: "participant_answered", Data: ParticipantAnswered{
		TotalResponses: c.responseCount(ctx, session.ID, questionIndex),
	}})
	return nil
}

// Disconnect reaps a dropped connection. Participants trigger a
// participant_left broadcast; stored scores are untouched so the session's
// analytics keep the participant.
func (c *Coordinator) Disconnect(conn Conn) {
	connCtx, ok := c.registry.ContextOf(conn)
	if !ok {
		return
	}
	c.registry.Unregister(conn)
	if connCtx.Role == RoleParticipant {
		c.broadcast.ToSession(connCtx.SessionID, Message{Type: "participant_left", Data: ParticipantLeft{
			ParticipantID: connCtx.ParticipantID,
		}})
	}
}

// hostMutation is the shared authorize, lock, read, mutate, write back,
// broadcast cycle for host-only lifecycle messages.
func (c *Coordinator) hostMutation(ctx context.Context, conn Conn, mutate func(*domain.Session) (Message, error)) error {
	connCtx, ok := c.registry.ContextOf(conn)
	if !ok || connCtx.Role != RoleHost {
		return domain.ErrUnauthorized
	}

	l := c.sessionLock(connCtx.SessionID)
	l.Lock()
	defer l.Unlock()

	session, err := c.store.GetSession(ctx, connCtx.SessionID)
	if err != nil {
		return c.storeErr("load session", err)
	}
	msg, err := mutate(&session)
	if err != nil {
		return err
	}
	if err := c.store.UpdateSession(ctx, session); err != nil {
		return c.storeErr("update session", err)
	}
	c.broadcast.ToSession(session.ID, msg)
	return nil
}

func (c *Coordinator) responseCount(ctx context.Context, sessionID string, questionIndex int) int {
	responses, err := c.store.ResponsesBySession(ctx, sessionID)
	if err != nil {
		log.Printf("count responses for %s failed: %v", sessionID, err)
		return 0
	}
	count := 0
	for _, response := range responses {
		if response.QuestionIndex == questionIndex {
			count++
		}
	}
	return count
}

// storeErr passes domain rejections through untouched and wraps storage I/O
// failures with the operation name, logging them for operability.
func (c *Coordinator) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrCodeInUse):
		return err
	}
	log.Printf("storage failure (%s): %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}
