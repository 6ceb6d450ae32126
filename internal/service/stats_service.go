package service

import (
	"fmt"

	"github.com/lshigami/quizx/internal/model"
)

// ComputeStats aggregates a user's history. Totals and the subject breakdown
// cover the whole history; FilteredCount and Accuracy cover only attempts
// matching subjectFilter (all attempts when empty).
func ComputeStats(history []model.QuizAttempt, subjectFilter model.Subject) model.UserStats {
	stats := model.UserStats{SubjectBreakdown: make(map[model.Subject]int, len(model.Subjects))}
	for _, s := range model.Subjects {
		stats.SubjectBreakdown[s] = 0
	}
	if len(history) == 0 {
		return stats
	}

	percentSum := 0
	earned, possible := 0, 0
	for _, a := range history {
		stats.TotalQuizzes++
		stats.SubjectBreakdown[a.Subject]++
		stats.TotalTimeSpentSeconds += a.TimeTakenSeconds
		percentSum += Percentage(a.Score, a.TotalQuestions)

		if subjectFilter != "" && a.Subject != subjectFilter {
			continue
		}
		stats.FilteredCount++
		earned += a.Score
		possible += a.TotalQuestions
	}

	stats.AverageScore = int(float64(percentSum)/float64(stats.TotalQuizzes) + 0.5)
	stats.Accuracy = Percentage(earned, possible)
	return stats
}

// ShareText is the one-line result summary offered for sharing.
func ShareText(attempt model.QuizAttempt) string {
	return fmt.Sprintf("I scored %d/%d (%d%%) in %s on Quiz X.ai!",
		attempt.Score, attempt.TotalQuestions, Percentage(attempt.Score, attempt.TotalQuestions), attempt.Subject.Label())
}
