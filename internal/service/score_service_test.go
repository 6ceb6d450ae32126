package service

import (
	"testing"

	"github.com/lshigami/quizx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreTenQuestionScenario(t *testing.T) {
	quiz := newTestQuiz(10, model.DifficultyMedium)
	answers := correctAnswers(quiz)
	answers[3] = (answers[3] + 1) % model.OptionsPerQuestion
	answers[7] = model.Unanswered

	score := Score(quiz, answers)
	assert.Equal(t, 8, score)
	assert.Equal(t, 80, Percentage(score, len(quiz.Questions)))
	assert.Equal(t, score, Score(quiz, answers), "scoring is deterministic")
}

func TestScoreBounds(t *testing.T) {
	quiz := newTestQuiz(5, model.DifficultyEasy)
	assert.Equal(t, 5, Score(quiz, correctAnswers(quiz)))
	assert.Equal(t, 0, Score(quiz, []int{-1, -1, -1, -1, -1}))
	assert.Equal(t, 2, Score(quiz, correctAnswers(quiz)[:2]), "missing slots count as wrong")
	assert.Equal(t, 0, Score(nil, nil))
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 13, Percentage(1, 8))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 0, Percentage(0, 0))
}

func TestNewAttemptAndVerify(t *testing.T) {
	quiz := newTestQuiz(4, model.DifficultyHard)
	answers := []int{0, 1, -1}

	attempt := NewAttempt(quiz, answers, "", 95, testNow, 1)

	assert.Equal(t, model.GuestUserID, attempt.UserID)
	assert.Equal(t, []int{0, 1, -1, -1}, attempt.Answers)
	assert.Equal(t, 2, attempt.Score)
	assert.Equal(t, 4, attempt.TotalQuestions)
	assert.Equal(t, model.SubjectPhysics, attempt.Subject)
	assert.Equal(t, model.DifficultyHard, attempt.Difficulty)
	require.NoError(t, VerifyAttempt(quiz, attempt))

	again := NewAttempt(quiz, answers, "", 95, testNow, 2)
	assert.NotEqual(t, attempt.ID, again.ID, "each run gets its own id")

	attempt.Score = 3
	assert.Error(t, VerifyAttempt(quiz, attempt))
}

func TestDifficultyDurations(t *testing.T) {
	assert.Equal(t, 600, model.DifficultyEasy.DurationSeconds())
	assert.Equal(t, 1200, model.DifficultyMedium.DurationSeconds())
	assert.Equal(t, 1800, model.DifficultyHard.DurationSeconds())
}

func TestComputeStats(t *testing.T) {
	history := []model.QuizAttempt{
		{ID: "1", Subject: model.SubjectPhysics, Score: 8, TotalQuestions: 10, TimeTakenSeconds: 300},
		{ID: "2", Subject: model.SubjectPhysics, Score: 5, TotalQuestions: 10, TimeTakenSeconds: 200},
		{ID: "3", Subject: model.SubjectBiology, Score: 1, TotalQuestions: 4, TimeTakenSeconds: 100},
	}

	all := ComputeStats(history, "")
	assert.Equal(t, 3, all.TotalQuizzes)
	assert.Equal(t, 3, all.FilteredCount)
	assert.Equal(t, 600, all.TotalTimeSpentSeconds)
	assert.Equal(t, 2, all.SubjectBreakdown[model.SubjectPhysics])
	assert.Equal(t, 1, all.SubjectBreakdown[model.SubjectBiology])
	assert.Equal(t, 0, all.SubjectBreakdown[model.SubjectChemistry])
	assert.Equal(t, 58, all.Accuracy, "14 of 24")
	assert.Equal(t, 52, all.AverageScore, "mean of 80, 50 and 25")

	physics := ComputeStats(history, model.SubjectPhysics)
	assert.Equal(t, 2, physics.FilteredCount)
	assert.Equal(t, 65, physics.Accuracy)
	assert.Equal(t, 3, physics.TotalQuizzes)

	empty := ComputeStats(nil, model.SubjectChemistry)
	assert.Zero(t, empty.TotalQuizzes)
	assert.Zero(t, empty.Accuracy)
}

func TestShareText(t *testing.T) {
	attempt := model.QuizAttempt{Score: 8, TotalQuestions: 10, Subject: model.SubjectChemistry}
	assert.Equal(t, "I scored 8/10 (80%) in Chemistry on Quiz X.ai!", ShareText(attempt))
}
