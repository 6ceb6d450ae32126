package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/quizx/internal/model"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestQuiz(n int, difficulty model.Difficulty) *model.Quiz {
	q := &model.Quiz{
		ID:              "quiz-1",
		Title:           "Physics basics",
		Subject:         model.SubjectPhysics,
		Difficulty:      difficulty,
		Language:        model.LanguageEnglish,
		DurationSeconds: difficulty.DurationSeconds(),
		CreatedAt:       testNow,
	}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, model.Question{
			ID:           fmt.Sprintf("q-%d", i),
			Text:         fmt.Sprintf("Question %d", i),
			Type:         model.QuestionMultipleChoice,
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % model.OptionsPerQuestion,
		})
	}
	return q
}

func correctAnswers(q *model.Quiz) []int {
	answers := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		answers[i] = question.CorrectIndex
	}
	return answers
}

func freeUser(id string, count int, resetAt time.Time) *model.User {
	return &model.User{
		ID:               id,
		Name:             "Ada",
		Email:            id + "@example.com",
		Avatar:           "🎓",
		CreatedAt:        testNow.Add(-24 * time.Hour),
		SubscriptionTier: model.TierFree,
		QuizUsage:        &model.QuizUsage{Count: count, ResetAt: resetAt},
	}
}

// fakeQuizSource blocks each call until released, so tests control ordering.
type fakeQuizSource struct {
	mu      sync.Mutex
	calls   int
	quiz    *model.Quiz
	err     error
	release chan struct{}
}

func newFakeQuizSource(quiz *model.Quiz) *fakeQuizSource {
	return &fakeQuizSource{quiz: quiz}
}

func (f *fakeQuizSource) Generate(ctx context.Context, subject model.Subject, difficulty model.Difficulty, language model.Language) (*model.Quiz, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	quiz, err := f.quiz, f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, &GenerationError{Reason: "cancelled", Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (f *fakeQuizSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIdentity struct {
	user    *model.User
	err     error
	signOut []string
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _, name string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := f.user.Clone()
	u.Name = name
	return u, nil
}

func (f *fakeIdentity) SignIn(context.Context, string, string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user.Clone(), nil
}

func (f *fakeIdentity) SignInFederated(context.Context, string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user.Clone(), nil
}

func (f *fakeIdentity) SignOut(_ context.Context, userID string) error {
	f.signOut = append(f.signOut, userID)
	return nil
}

type fakeCertificates struct {
	err error
	req CertificateRequest
}

func (f *fakeCertificates) Generate(_ context.Context, req CertificateRequest) (*Certificate, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &Certificate{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}, Source: "fake"}, nil
}
