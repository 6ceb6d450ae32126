package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `{
  "title": "Forces",
  "questions": [
    {"text": "F = m * ____", "type": "fill-in-the-blank", "options": ["a", "v", "t", "x"], "correctIndex": 0, "explanation": "Newton's second law"},
    {"text": "Light is a wave.", "type": "true-false", "options": ["True", "False", "-", "-"], "correctIndex": 0, "explanation": "It is both"},
    {"text": "Unit of force?", "options": ["N", "J", "W", "Pa"], "correctIndex": 0, "explanation": "Newton"}
  ]
}`

func TestParseQuizDocument(t *testing.T) {
	quiz, err := ParseQuizDocument([]byte(validDocument), model.SubjectPhysics, model.DifficultyHard, model.LanguageVietnamese, testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, quiz.ID)
	assert.Equal(t, "Forces", quiz.Title)
	assert.Equal(t, 1800, quiz.DurationSeconds)
	assert.Equal(t, model.LanguageVietnamese, quiz.Language)
	assert.Equal(t, testNow, quiz.CreatedAt)
	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, "q-0", quiz.Questions[0].ID)
	assert.Equal(t, model.QuestionFillInBlank, quiz.Questions[0].Type)
	assert.Equal(t, model.QuestionTrueFalse, quiz.Questions[1].Type)
	assert.Equal(t, model.QuestionMultipleChoice, quiz.Questions[2].Type, "missing type defaults to multiple-choice")
}

func TestParseQuizDocumentDefaultsTitle(t *testing.T) {
	doc := `{"questions":[{"text":"x","type":"matching","options":["1","2","3","4"],"correctIndex":3,"explanation":""}]}`
	quiz, err := ParseQuizDocument([]byte(doc), model.SubjectBiology, model.DifficultyEasy, model.LanguageEnglish, testNow)
	require.NoError(t, err)
	assert.Equal(t, "biology - easy", quiz.Title)
}

func TestParseQuizDocumentRejectsContractViolations(t *testing.T) {
	cases := map[string]string{
		"not json":           `Here is your quiz!`,
		"no questions":       `{"title":"x","questions":[]}`,
		"three options":      `{"questions":[{"text":"x","options":["a","b","c"],"correctIndex":0}]}`,
		"index out of range": `{"questions":[{"text":"x","options":["a","b","c","d"],"correctIndex":4}]}`,
		"missing index":      `{"questions":[{"text":"x","options":["a","b","c","d"]}]}`,
		"empty text":         `{"questions":[{"text":"","options":["a","b","c","d"],"correctIndex":1}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuizDocument([]byte(doc), model.SubjectMathematics, model.DifficultyMedium, model.LanguageEnglish, testNow)
			var genErr *GenerationError
			assert.True(t, errors.As(err, &genErr), "got %v", err)
		})
	}
}

func TestBuildQuizPrompt(t *testing.T) {
	prompt := BuildQuizPrompt(model.SubjectChemistry, model.DifficultyMedium, model.LanguageThai, 10)
	assert.Contains(t, prompt, "10-question")
	assert.Contains(t, prompt, "chemistry at medium difficulty")
	assert.Contains(t, prompt, "MUST be in Thai")
	assert.Contains(t, prompt, "Exactly 4 options")
	assert.Contains(t, prompt, `Option index 0 must be "True"`)
}

func TestGeminiQuizServiceWithoutKeyIsDegraded(t *testing.T) {
	svc, err := NewGeminiQuizService(nil, &config.Config{})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), model.SubjectPhysics, model.DifficultyEasy, model.LanguageEnglish)
	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}
