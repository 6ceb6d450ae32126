package model

import "time"

// QuizAttempt is written once at submission and never mutated afterwards.
type QuizAttempt struct {
	ID               string     `json:"id"`
	QuizID           string     `json:"quizId"`
	UserID           string     `json:"userId"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"totalQuestions"`
	TimeTakenSeconds int        `json:"timeTakenSeconds"`
	Answers          []int      `json:"answers"`
	Timestamp        time.Time  `json:"timestamp"`
	Subject          Subject    `json:"subject"`
	Difficulty       Difficulty `json:"difficulty"`
}

// UserStats is derived from history on every read and never stored.
type UserStats struct {
	TotalQuizzes          int             `json:"totalQuizzes"`
	AverageScore          int             `json:"averageScore"`
	SubjectBreakdown      map[Subject]int `json:"subjectBreakdown"`
	TotalTimeSpentSeconds int             `json:"totalTimeSpentSeconds"`
	FilteredCount         int             `json:"filteredCount"`
	Accuracy              int             `json:"accuracy"`
}
