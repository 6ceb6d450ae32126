package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// QuizSource produces a quiz for the chosen subject, difficulty and language.
// Failures are reported as *GenerationError.
type QuizSource interface {
	Generate(ctx context.Context, subject model.Subject, difficulty model.Difficulty, language model.Language) (*model.Quiz, error)
}

type geminiQuizService struct {
	model         *genai.GenerativeModel
	questionCount int
	now           func() time.Time
}

func NewGeminiQuizService(lc fx.Lifecycle, cfg *config.Config) (QuizSource, error) {
	count := cfg.Quiz.QuestionCount
	if count <= 0 {
		count = 10
	}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Quiz generation will be unavailable.")
		return &geminiQuizService{questionCount: count, now: time.Now}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	appendCloseHook(lc, "gemini quiz client", client.Close)

	m := client.GenerativeModel(cfg.GeminiQuizModel)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = quizResponseSchema
	return &geminiQuizService{model: m, questionCount: count, now: time.Now}, nil
}

var quizResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text": {Type: genai.TypeString},
					"type": {
						Type:        genai.TypeString,
						Description: "One of: multiple-choice, true-false, fill-in-the-blank, matching",
					},
					"options":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"correctIndex": {Type: genai.TypeInteger},
					"explanation":  {Type: genai.TypeString},
				},
				Required: []string{"text", "options", "correctIndex", "explanation", "type"},
			},
		},
	},
	Required: []string{"title", "questions"},
}

// BuildQuizPrompt renders the generation instructions for one quiz.
func BuildQuizPrompt(subject model.Subject, difficulty model.Difficulty, language model.Language, count int) string {
	lang := language.Name()
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %d-question comprehensive and diverse quiz for %s at %s difficulty level in %s language.\n\n", count, subject, difficulty, lang)
	b.WriteString("You MUST include a balanced mix of the following 4 question types:\n")
	b.WriteString("1. Conceptual Multiple-Choice: Standard conceptual questions.\n")
	b.WriteString("2. Fill-in-the-blank: Use \"____\" in the question text. Options are words to complete it.\n")
	b.WriteString("3. True/False: The question is a statement. Option index 0 must be \"True\" and index 1 must be \"False\" (translated appropriately).\n")
	b.WriteString("4. Matching/Sequence: List item sets in the question (e.g. 1. A, 2. B) and provide mapping combinations in the options (e.g. A: 1-X, 2-Y).\n\n")
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Language: All content (title, questions, options, explanations) MUST be in %s.\n", lang)
	fmt.Fprintf(&b, "- Structure: Exactly %d options for every question.\n", model.OptionsPerQuestion)
	fmt.Fprintf(&b, "- Accuracy: Scientifically and educationally accurate for the %s level.\n", difficulty)
	b.WriteString("- Explanation: Provide a detailed, helpful pedagogical explanation for each answer.")
	return b.String()
}

func (s *geminiQuizService) Generate(ctx context.Context, subject model.Subject, difficulty model.Difficulty, language model.Language) (*model.Quiz, error) {
	if s.model == nil {
		return nil, &GenerationError{Reason: "quiz source is not configured"}
	}

	prompt := BuildQuizPrompt(subject, difficulty, language, s.questionCount)
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Str("subject", string(subject)).Str("difficulty", string(difficulty)).Msg("Gemini API error during quiz generation")
		return nil, &GenerationError{Reason: "upstream request failed", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return nil, &GenerationError{Reason: "empty response"}
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	quiz, err := ParseQuizDocument([]byte(raw.String()), subject, difficulty, language, s.now())
	if err != nil {
		log.Warn().Err(err).Str("subject", string(subject)).Msg("Rejected malformed quiz document")
		return nil, err
	}
	log.Info().Str("quizID", quiz.ID).Int("questions", len(quiz.Questions)).Str("language", string(language)).Msg("Quiz generated")
	return quiz, nil
}

type quizDocument struct {
	Title     string `json:"title"`
	Questions []struct {
		Text         string   `json:"text"`
		Type         string   `json:"type"`
		Options      []string `json:"options"`
		CorrectIndex *int     `json:"correctIndex"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

// ParseQuizDocument validates an upstream quiz document and completes it into
// a Quiz. Any contract violation yields a *GenerationError.
func ParseQuizDocument(data []byte, subject model.Subject, difficulty model.Difficulty, language model.Language, now time.Time) (*model.Quiz, error) {
	var doc quizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &GenerationError{Reason: "unparsable content", Err: err}
	}
	if len(doc.Questions) == 0 {
		return nil, &GenerationError{Reason: "quiz has no questions"}
	}

	quiz := &model.Quiz{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(doc.Title),
		Subject:         subject,
		Difficulty:      difficulty,
		Language:        language,
		DurationSeconds: difficulty.DurationSeconds(),
		CreatedAt:       now,
		Questions:       make([]model.Question, 0, len(doc.Questions)),
	}
	if quiz.Title == "" {
		quiz.Title = fmt.Sprintf("%s - %s", subject, difficulty)
	}

	for idx, raw := range doc.Questions {
		q := model.Question{
			ID:          fmt.Sprintf("q-%d", idx),
			Text:        strings.TrimSpace(raw.Text),
			Type:        model.QuestionType(raw.Type),
			Options:     raw.Options,
			Explanation: raw.Explanation,
		}
		if !q.Type.Valid() {
			q.Type = model.QuestionMultipleChoice
		}
		if raw.CorrectIndex == nil {
			return nil, &GenerationError{Reason: fmt.Sprintf("question %s has no correct index", q.ID)}
		}
		q.CorrectIndex = *raw.CorrectIndex
		if err := q.Validate(); err != nil {
			return nil, &GenerationError{Reason: "invalid question", Err: err}
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}
