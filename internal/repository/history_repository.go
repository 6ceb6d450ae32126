package repository

import (
	"fmt"

	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/store"
)

// HistoryRepository is the append-only attempt log.
type HistoryRepository interface {
	Append(attempt model.QuizAttempt) error
	All() []model.QuizAttempt
	ForUser(userID string) []model.QuizAttempt
}

type historyRepository struct {
	store store.Store
}

func NewHistoryRepository(s store.Store) HistoryRepository {
	return &historyRepository{store: s}
}

func (r *historyRepository) Append(attempt model.QuizAttempt) error {
	history := r.All()
	for _, existing := range history {
		if existing.ID == attempt.ID {
			return nil
		}
	}
	history = append(history, attempt)
	if err := writeJSON(r.store, KeyHistory, history); err != nil {
		return fmt.Errorf("failed to append attempt %s: %w", attempt.ID, err)
	}
	return nil
}

func (r *historyRepository) All() []model.QuizAttempt {
	var history []model.QuizAttempt
	if !readJSON(r.store, KeyHistory, &history) {
		return nil
	}
	return history
}

// ForUser returns the user's attempts, newest first.
func (r *historyRepository) ForUser(userID string) []model.QuizAttempt {
	all := r.All()
	out := make([]model.QuizAttempt, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == userID {
			out = append(out, all[i])
		}
	}
	return out
}
