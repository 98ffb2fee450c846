package domain

import "time"

// SessionStatus is the lifecycle phase of a live session.
type SessionStatus string

const (
	StatusWaiting   SessionStatus = "waiting"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
)

// QuestionType distinguishes how a question is answered on the client.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
	QuestionPoll        QuestionType = "poll"
)

// Participant is a player who joined a session. Score never decreases within
// a session; Streak counts consecutive correct answers.
type Participant struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joinedAt"`
	Score    int       `json:"score"`
	Streak   int       `json:"streak"`
	IsReady  bool      `json:"isReady"`
}

// Session is one live instance of a quiz, located by a unique 6-char code.
type Session struct {
	ID                   string        `json:"id"`
	QuizID               string        `json:"quizId"`
	HostID               string        `json:"hostId"`
	Code                 string        `json:"sessionCode"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	Participants         []Participant `json:"participants"`
	CreatedAt            time.Time     `json:"createdAt"`
	StartedAt            *time.Time    `json:"startedAt,omitempty"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
}

// Response is an append-only audit record of one scored answer.
type Response struct {
	SessionID      string    `json:"sessionId"`
	ParticipantID  string    `json:"participantId"`
	QuestionIndex  int       `json:"questionIndex"`
	Answer         string    `json:"answer"`
	IsCorrect      bool      `json:"isCorrect"`
	ResponseTimeMs int       `json:"responseTime"`
	Points         int       `json:"points"`
	Streak         int       `json:"streak"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Question is immutable once its quiz is created and is referenced by index
// within the quiz's question list.
type Question struct {
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Difficulty    string       `json:"difficulty,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Quiz is a titled list of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}
