package dto

import (
	"time"

	"github.com/lshigami/quizx/internal/model"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type SessionTokenResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

type UserResponse struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Email              string                 `json:"email"`
	Avatar             string                 `json:"avatar"`
	CreatedAt          time.Time              `json:"createdAt"`
	SubscriptionTier   model.SubscriptionTier `json:"subscriptionTier"`
	SubscriptionExpiry *time.Time             `json:"subscriptionExpiry,omitempty"`
	QuizUsage          *model.QuizUsage       `json:"quizUsage,omitempty"`
}

// QuestionView is a question as shown while the quiz runs: no answer key.
type QuestionView struct {
	ID      string             `json:"id"`
	Text    string             `json:"text"`
	Type    model.QuestionType `json:"type"`
	Options []string           `json:"options"`
}

// ReviewQuestion is a question as shown on the result screen.
type ReviewQuestion struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Type         model.QuestionType `json:"type"`
	Options      []string           `json:"options"`
	CorrectIndex int                `json:"correctIndex"`
	Explanation  string             `json:"explanation"`
}

type QuizResponse struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Subject         model.Subject    `json:"subject"`
	Difficulty      model.Difficulty `json:"difficulty"`
	Language        model.Language   `json:"language"`
	DurationSeconds int              `json:"durationSeconds"`
	CreatedAt       time.Time        `json:"createdAt"`
	Questions       []QuestionView   `json:"questions,omitempty"`
	Review          []ReviewQuestion `json:"review,omitempty"`
}

type AttemptResponse struct {
	ID               string           `json:"id"`
	QuizID           string           `json:"quizId"`
	UserID           string           `json:"userId"`
	Score            int              `json:"score"`
	TotalQuestions   int              `json:"totalQuestions"`
	Percentage       int              `json:"percentage"`
	TimeTakenSeconds int              `json:"timeTakenSeconds"`
	Answers          []int            `json:"answers"`
	Timestamp        time.Time        `json:"timestamp"`
	Subject          model.Subject    `json:"subject"`
	Difficulty       model.Difficulty `json:"difficulty"`
}

type NoticeResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type SessionResponse struct {
	View             string           `json:"view"`
	Loading          bool             `json:"loading"`
	Language         model.Language   `json:"language"`
	Theme            model.Theme      `json:"theme"`
	User             *UserResponse    `json:"user,omitempty"`
	QuotaRemaining   int              `json:"quotaRemaining"` // -1 when unlimited
	Quiz             *QuizResponse    `json:"quiz,omitempty"`
	Answers          []int            `json:"answers,omitempty"`
	CurrentIndex     int              `json:"currentIndex"`
	RemainingSeconds int              `json:"remainingSeconds"`
	TimeTakenSeconds int              `json:"timeTakenSeconds"`
	LastAttempt      *AttemptResponse `json:"lastAttempt,omitempty"`
	ShareText        string           `json:"shareText,omitempty"`
	ShowAuthModal    bool             `json:"showAuthModal"`
	ShowUpgradeModal bool             `json:"showUpgradeModal"`
	AuthError        string           `json:"authError,omitempty"`
	Notice           *NoticeResponse  `json:"notice,omitempty"`
}

type StatsResponse struct {
	TotalQuizzes          int                   `json:"totalQuizzes"`
	AverageScore          int                   `json:"averageScore"`
	SubjectBreakdown      map[model.Subject]int `json:"subjectBreakdown"`
	TotalTimeSpentSeconds int                   `json:"totalTimeSpentSeconds"`
	FilteredCount         int                   `json:"filteredCount"`
	Accuracy              int                   `json:"accuracy"`
}

type CertificateUnavailableResponse struct {
	Available bool `json:"available"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
