package app

import "quizlive-service/internal/domain"

const (
	basePoints     = 500
	maxTimeBonusMs = 1000
)

// Score computes the outcome of one submitted answer. Correctness is an
// exact, case-sensitive match against the question's correct answer. Correct
// answers earn 500 plus a bonus of up to 1000 that shrinks with response
// time; answers at or past 1000ms still earn the base 500. The response time
// comes from the client and is trusted as-is.
func Score(question domain.Question, answer string, responseTimeMs, priorStreak int) (isCorrect bool, points, newStreak int) {
	if answer != question.CorrectAnswer {
		return false, 0, 0
	}
	bonus := maxTimeBonusMs - responseTimeMs
	if bonus < 0 {
		bonus = 0
	}
	return true, basePoints + bonus, priorStreak + 1
}
