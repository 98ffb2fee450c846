package app

import (
	"testing"

	"quizlive-service/internal/domain"
)

func TestScoreCorrectAnswer(t *testing.T) {
	question := domain.Question{CorrectAnswer: "42"}

	tests := []struct {
		name           string
		answer         string
		responseTimeMs int
		priorStreak    int
		wantCorrect    bool
		wantPoints     int
		wantStreak     int
	}{
		{"fast correct", "42", 400, 0, true, 1100, 1},
		{"instant correct", "42", 0, 2, true, 1500, 3},
		{"slow correct keeps base", "42", 1000, 0, true, 500, 1},
		{"very slow correct keeps base", "42", 5000, 4, true, 500, 5},
		{"incorrect resets streak", "41", 100, 7, false, 0, 0},
		{"case sensitive", "fortytwo", 100, 1, false, 0, 0},
		{"empty answer", "", 100, 1, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points, streak := Score(question, tt.answer, tt.responseTimeMs, tt.priorStreak)
			if correct != tt.wantCorrect || points != tt.wantPoints || streak != tt.wantStreak {
				t.Fatalf("Score(%q, %d, %d) = (%v, %d, %d), want (%v, %d, %d)",
					tt.answer, tt.responseTimeMs, tt.priorStreak,
					correct, points, streak, tt.wantCorrect, tt.wantPoints, tt.wantStreak)
			}
		})
	}
}

func TestScoreNoNormalization(t *testing.T) {
	question := domain.Question{CorrectAnswer: "Paris"}
	if correct, _, _ := Score(question, "paris", 100, 0); correct {
		t.Fatalf("expected case-sensitive mismatch to be incorrect")
	}
	if correct, _, _ := Score(question, " Paris", 100, 0); correct {
		t.Fatalf("expected whitespace mismatch to be incorrect")
	}
}

func TestScoreCorrectAlwaysAtLeastBase(t *testing.T) {
	question := domain.Question{CorrectAnswer: "x"}
	for _, rt := range []int{0, 1, 500, 999, 1000, 1001, 60000} {
		_, points, _ := Score(question, "x", rt, 0)
		if points < 500 {
			t.Fatalf("correct answer at %dms earned %d points, want >= 500", rt, points)
		}
	}
}
