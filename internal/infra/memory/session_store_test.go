package memory

import (
	"context"
	"errors"
	"testing"

	"quizlive-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := domain.Session{ID: "s1", QuizID: "quiz-1", HostID: "h1", Code: "AB12CD", Status: domain.StatusWaiting}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil || got.Code != "AB12CD" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	byCode, err := store.GetSessionByCode(ctx, "AB12CD")
	if err != nil || byCode.ID != "s1" {
		t.Fatalf("get by code: %+v, %v", byCode, err)
	}

	// code lookup is exact, case-sensitive
	if _, err := store.GetSessionByCode(ctx, "ab12cd"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected case-sensitive miss, got %v", err)
	}

	got.Status = domain.StatusActive
	if err := store.UpdateSession(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := store.GetSession(ctx, "s1")
	if updated.Status != domain.StatusActive {
		t.Fatalf("update not persisted: %+v", updated)
	}
}

func TestSessionStoreCodeCollision(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.CreateSession(ctx, domain.Session{ID: "s1", Code: "AB12CD"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.CreateSession(ctx, domain.Session{ID: "s2", Code: "AB12CD"})
	if !errors.Is(err, domain.ErrCodeInUse) {
		t.Fatalf("expected code in use, got %v", err)
	}
}

func TestSessionStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, err := store.GetSession(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.UpdateSession(ctx, domain.Session{ID: "nope"}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected update of missing session to fail, got %v", err)
	}
}

func TestResponsesAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	for i := 0; i < 3; i++ {
		err := store.CreateResponse(ctx, domain.Response{SessionID: "s1", ParticipantID: "p1", QuestionIndex: i})
		if err != nil {
			t.Fatalf("create response: %v", err)
		}
	}

	responses, err := store.ResponsesBySession(ctx, "s1")
	if err != nil || len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d (%v)", len(responses), err)
	}
	if responses[2].QuestionIndex != 2 {
		t.Fatalf("expected insertion order preserved, got %+v", responses)
	}

	// duplicate (participant, questionIndex) pairs are not deduplicated
	_ = store.CreateResponse(ctx, domain.Response{SessionID: "s1", ParticipantID: "p1", QuestionIndex: 2})
	responses, _ = store.ResponsesBySession(ctx, "s1")
	if len(responses) != 4 {
		t.Fatalf("expected duplicate appended, got %d", len(responses))
	}
}
