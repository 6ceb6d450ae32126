package controller

import (
	"github.com/jinzhu/copier"
	"github.com/lshigami/quizx/internal/dto"
	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/service"
	"github.com/rs/zerolog/log"
)

func toSessionResponse(snap service.Snapshot) dto.SessionResponse {
	resp := dto.SessionResponse{
		View:             string(snap.View),
		Loading:          snap.Loading,
		Language:         snap.Language,
		Theme:            snap.Theme,
		User:             toUserResponse(snap.User),
		QuotaRemaining:   snap.QuotaRemaining,
		Answers:          snap.Answers,
		CurrentIndex:     snap.CurrentIndex,
		RemainingSeconds: snap.RemainingSeconds,
		TimeTakenSeconds: snap.TimeTakenSeconds,
		ShareText:        snap.ShareText,
		ShowAuthModal:    snap.ShowAuthModal,
		ShowUpgradeModal: snap.ShowUpgradeModal,
		AuthError:        snap.AuthError,
	}
	if snap.ActiveQuiz != nil {
		resp.Quiz = toQuizResponse(snap.ActiveQuiz, snap.View == service.ViewResult)
	}
	if snap.LastAttempt != nil {
		attempt := toAttemptResponse(*snap.LastAttempt)
		resp.LastAttempt = &attempt
	}
	if snap.Notice != nil {
		resp.Notice = &dto.NoticeResponse{Kind: string(snap.Notice.Kind), Message: snap.Notice.Message}
	}
	return resp
}

func toUserResponse(user *model.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to map user")
	}
	return &resp
}

// toQuizResponse hides the answer key unless the quiz is under review.
func toQuizResponse(quiz *model.Quiz, review bool) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Subject:         quiz.Subject,
		Difficulty:      quiz.Difficulty,
		Language:        quiz.Language,
		DurationSeconds: quiz.DurationSeconds,
		CreatedAt:       quiz.CreatedAt,
	}
	var err error
	if review {
		err = copier.Copy(&resp.Review, &quiz.Questions)
	} else {
		err = copier.Copy(&resp.Questions, &quiz.Questions)
	}
	if err != nil {
		log.Error().Err(err).Str("quizID", quiz.ID).Msg("Failed to map quiz questions")
	}
	return resp
}

func toAttemptResponse(attempt model.QuizAttempt) dto.AttemptResponse {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, &attempt); err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Msg("Failed to map attempt")
	}
	resp.Percentage = service.Percentage(attempt.Score, attempt.TotalQuestions)
	return resp
}

func toStatsResponse(stats model.UserStats) dto.StatsResponse {
	var resp dto.StatsResponse
	if err := copier.Copy(&resp, &stats); err != nil {
		log.Error().Err(err).Msg("Failed to map stats")
	}
	return resp
}
