package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/quizx/internal/model"
)

// Score counts answers equal to the question's correct index. Missing and
// unanswered slots never match.
func Score(quiz *model.Quiz, answers []int) int {
	if quiz == nil {
		return 0
	}
	score := 0
	for i, q := range quiz.Questions {
		if i < len(answers) && answers[i] != model.Unanswered && answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

// Percentage rounds half up, so 2/3 is 67 and 1/8 is 13.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(score)*100/float64(total) + 0.5))
}

// attemptNamespace seeds deterministic attempt ids.
var attemptNamespace = uuid.MustParse("5b0f6f1e-3c1a-4f53-9d2e-7a1c2b9e4d10")

// NewAttempt builds the immutable record of one submission.
func NewAttempt(quiz *model.Quiz, answers []int, userID string, timeTakenSeconds int, submittedAt time.Time, run uint64) model.QuizAttempt {
	if userID == "" {
		userID = model.GuestUserID
	}
	recorded := make([]int, len(quiz.Questions))
	for i := range recorded {
		recorded[i] = model.Unanswered
		if i < len(answers) {
			recorded[i] = answers[i]
		}
	}
	seed := fmt.Sprintf("%s/%d/%d", quiz.ID, run, submittedAt.UnixNano())
	return model.QuizAttempt{
		ID:               uuid.NewSHA1(attemptNamespace, []byte(seed)).String(),
		QuizID:           quiz.ID,
		UserID:           userID,
		Score:            Score(quiz, recorded),
		TotalQuestions:   len(quiz.Questions),
		TimeTakenSeconds: timeTakenSeconds,
		Answers:          recorded,
		Timestamp:        submittedAt,
		Subject:          quiz.Subject,
		Difficulty:       quiz.Difficulty,
	}
}

// VerifyAttempt re-derives the score of a stored attempt against its quiz.
func VerifyAttempt(quiz *model.Quiz, attempt model.QuizAttempt) error {
	if quiz == nil || quiz.ID != attempt.QuizID {
		return fmt.Errorf("attempt %s does not belong to the given quiz", attempt.ID)
	}
	if attempt.TotalQuestions != len(quiz.Questions) {
		return fmt.Errorf("attempt %s has %d questions, quiz has %d", attempt.ID, attempt.TotalQuestions, len(quiz.Questions))
	}
	if got := Score(quiz, attempt.Answers); got != attempt.Score {
		return fmt.Errorf("attempt %s records score %d, answers score %d", attempt.ID, attempt.Score, got)
	}
	return nil
}
