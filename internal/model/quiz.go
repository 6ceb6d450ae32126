package model

import (
	"fmt"
	"time"
)

type Subject string

const (
	SubjectMathematics Subject = "mathematics"
	SubjectPhysics     Subject = "physics"
	SubjectChemistry   Subject = "chemistry"
	SubjectBiology     Subject = "biology"
)

// Subjects lists every subject in display order.
var Subjects = []Subject{SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology}

func (s Subject) Valid() bool {
	switch s {
	case SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology:
		return true
	}
	return false
}

// Label is the English display name used in share texts and certificates.
func (s Subject) Label() string {
	switch s {
	case SubjectMathematics:
		return "Mathematics"
	case SubjectPhysics:
		return "Physics"
	case SubjectChemistry:
		return "Chemistry"
	case SubjectBiology:
		return "Biology"
	}
	return string(s)
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// DurationSeconds is the fixed time limit of a quiz at this difficulty.
func (d Difficulty) DurationSeconds() int {
	switch d {
	case DifficultyEasy:
		return 600
	case DifficultyMedium:
		return 1200
	default:
		return 1800
	}
}

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageKhmer      Language = "km"
	LanguageThai       Language = "th"
	LanguageVietnamese Language = "vi"
)

var languageNames = map[Language]string{
	LanguageEnglish:    "English",
	LanguageKhmer:      "Khmer",
	LanguageThai:       "Thai",
	LanguageVietnamese: "Vietnamese",
}

func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// Name returns the English name of the language, as used in generation prompts.
func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return "English"
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionFillInBlank    QuestionType = "fill-in-the-blank"
	QuestionMatching       QuestionType = "matching"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionFillInBlank, QuestionMatching:
		return true
	}
	return false
}

// OptionsPerQuestion is the number of options every question carries.
const OptionsPerQuestion = 4

// Unanswered marks an answer slot with no selected option.
const Unanswered = -1

type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correctIndex"`
	Explanation  string       `json:"explanation"`
}

// Validate checks the structural contract with the quiz source.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question %s has no text", q.ID)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("question %s has %d options, want %d", q.ID, len(q.Options), OptionsPerQuestion)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %s correct index %d out of range", q.ID, q.CorrectIndex)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("question %s has unknown type %q", q.ID, q.Type)
	}
	return nil
}

// Quiz is immutable once generated.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         Subject    `json:"subject"`
	Difficulty      Difficulty `json:"difficulty"`
	Language        Language   `json:"language"`
	DurationSeconds int        `json:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt"`
	Questions       []Question `json:"questions"`
}
