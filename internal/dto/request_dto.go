package dto

import "github.com/lshigami/quizx/internal/model"

type StartQuizRequest struct {
	Subject    model.Subject    `json:"subject" binding:"required,oneof=mathematics physics chemistry biology"`
	Difficulty model.Difficulty `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Language   model.Language   `json:"language" binding:"omitempty,oneof=en km th vi"`
}

// SelectAnswerRequest sets the option for one question. -1 clears it.
type SelectAnswerRequest struct {
	Option *int `json:"option" binding:"required,min=-1,max=3"`
}

type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FederatedSignInRequest carries the Google ID token obtained by the browser.
// An empty credential means the user dismissed the provider popup.
type FederatedSignInRequest struct {
	Credential string `json:"credential"`
}

type UpgradeRequest struct {
	Plan model.UpgradePlan `json:"plan" binding:"required,oneof=monthly annually"`
}

type ModalRequest struct {
	Modal string `json:"modal" binding:"required,oneof=auth upgrade"`
	Open  bool   `json:"open"`
}

type ThemeRequest struct {
	Theme model.Theme `json:"theme" binding:"required,oneof=light dark"`
}
