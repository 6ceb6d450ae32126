package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizx/internal/dto"
	"github.com/lshigami/quizx/internal/middleware"
	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/service"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	sessions service.SessionManager
	tokens   service.SessionTokenService
}

func NewSessionController(sessions service.SessionManager, tokens service.SessionTokenService) *SessionController {
	return &SessionController{sessions: sessions, tokens: tokens}
}

func (c *SessionController) session(ctx *gin.Context) *service.SessionController {
	return c.sessions.Acquire(middleware.SessionID(ctx))
}

// run applies intent to the client's session. A session evicted between
// lookup and dispatch is reloaded and the intent applied once more.
func (c *SessionController) run(ctx *gin.Context, intent func(*service.SessionController) (service.Snapshot, error)) (service.Snapshot, error) {
	snap, err := intent(c.session(ctx))
	if errors.Is(err, service.ErrSessionClosed) {
		log.Debug().Str("sessionID", middleware.SessionID(ctx)).Msg("Session evicted mid-request, reloading")
		snap, err = intent(c.session(ctx))
	}
	return snap, err
}

// respond writes the session snapshot, or maps err to an error response.
func (c *SessionController) respond(ctx *gin.Context, snap service.Snapshot, err error) {
	if err != nil {
		if errors.Is(err, service.ErrInvalidIntent) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Action not available right now", Details: []string{err.Error()}})
			return
		}
		if errors.Is(err, service.ErrSessionClosed) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session expired. Please reload.", Details: []string{err.Error()}})
			return
		}
		log.Error().Err(err).Str("sessionID", middleware.SessionID(ctx)).Msg("Session intent failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(snap))
}

// CreateSession godoc
// @Summary Open a session for a new browser context
// @Description Issues the bearer token that scopes local storage to this browser, and returns the initial session.
// @Tags Session
// @Produce json
// @Success 201 {object} dto.SessionTokenResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	token, clientID, err := c.tokens.Issue()
	if err != nil {
		log.Error().Err(err).Msg("CreateSession: failed to issue token")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create session", Details: []string{err.Error()}})
		return
	}
	snap := c.sessions.Acquire(clientID).Snapshot()
	ctx.JSON(http.StatusCreated, dto.SessionTokenResponse{Token: token, Session: toSessionResponse(snap)})
}

// GetSession godoc
// @Summary Current session state
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /session [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, toSessionResponse(c.session(ctx).Snapshot()))
}

// StartQuiz godoc
// @Summary Start a quiz
// @Description Checks the usage quota and requests a quiz. Generation is asynchronous: poll the session until loading is false.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartQuizRequest true "Subject, difficulty and language"
// @Success 200 {object} dto.SessionResponse "showUpgradeModal is set when the quota is exhausted"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /session/quiz [post]
func (c *SessionController) StartQuiz(ctx *gin.Context) {
	var req dto.StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz settings", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		language := req.Language
		if language == "" {
			language = s.Snapshot().Language
		}
		return s.StartQuiz(req.Subject, req.Difficulty, language)
	})
	c.respond(ctx, snap, err)
}

// SelectAnswer godoc
// @Summary Answer a question
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param index path int true "Question index"
// @Param request body dto.SelectAnswerRequest true "Option index, or -1 to clear"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /session/answers/{index} [put]
func (c *SessionController) SelectAnswer(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question index format"})
		return
	}
	var req dto.SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid answer", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.SelectAnswer(index, *req.Option)
	})
	c.respond(ctx, snap, err)
}

// Navigate godoc
// @Summary Move to another question
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NavigateRequest true "Question index"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /session/position [put]
func (c *SessionController) Navigate(ctx *gin.Context) {
	var req dto.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question index", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.Navigate(*req.Index)
	})
	c.respond(ctx, snap, err)
}

// Finish godoc
// @Summary Submit the running quiz
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /session/finish [post]
func (c *SessionController) Finish(ctx *gin.Context) {
	snap, err := c.run(ctx, (*service.SessionController).Finish)
	c.respond(ctx, snap, err)
}

// Retry godoc
// @Summary Retake the finished quiz
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /session/retry [post]
func (c *SessionController) Retry(ctx *gin.Context) {
	snap, err := c.run(ctx, (*service.SessionController).Retry)
	c.respond(ctx, snap, err)
}

// Home godoc
// @Summary Return to quiz setup
// @Description Leaves the quiz or result view. A pending generation is abandoned.
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Router /session/home [post]
func (c *SessionController) Home(ctx *gin.Context) {
	snap, err := c.run(ctx, (*service.SessionController).Home)
	c.respond(ctx, snap, err)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrFederatedCancelled):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserDisabled), errors.Is(err, service.ErrOperationNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEmailInUse), errors.Is(err, service.ErrSessionClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (c *SessionController) respondAuth(ctx *gin.Context, snap service.Snapshot, err error) {
	if err != nil {
		ctx.JSON(authStatus(err), dto.ErrorResponse{Message: service.AuthErrorMessage(err)})
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(snap))
}

// SignUp godoc
// @Summary Create an account and sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SignUpRequest true "Credentials"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /session/auth/signup [post]
func (c *SessionController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid sign-up request", Details: []string{err.Error()}})
		return
	}
	snap, err := c.session(ctx).SignUp(ctx.Request.Context(), req.Email, req.Password, req.Name)
	c.respondAuth(ctx, snap, err)
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SignInRequest true "Credentials"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Router /session/auth/signin [post]
func (c *SessionController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid sign-in request", Details: []string{err.Error()}})
		return
	}
	snap, err := c.session(ctx).SignIn(ctx.Request.Context(), req.Email, req.Password)
	c.respondAuth(ctx, snap, err)
}

// SignInFederated godoc
// @Summary Sign in with a Google ID token
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FederatedSignInRequest true "Google credential"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Sign-in cancelled"
// @Failure 401 {object} dto.ErrorResponse
// @Router /session/auth/federated [post]
func (c *SessionController) SignInFederated(ctx *gin.Context) {
	var req dto.FederatedSignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid sign-in request", Details: []string{err.Error()}})
		return
	}
	snap, err := c.session(ctx).SignInFederated(ctx.Request.Context(), req.Credential)
	c.respondAuth(ctx, snap, err)
}

// Logout godoc
// @Summary Sign out
// @Description Clears the active identity. History and entitlements stay stored.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Router /session/logout [post]
func (c *SessionController) Logout(ctx *gin.Context) {
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.Logout(ctx.Request.Context())
	})
	c.respond(ctx, snap, err)
}

// Upgrade godoc
// @Summary Upgrade to pro
// @Description Without a signed-in user this opens the sign-in modal instead.
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpgradeRequest true "Plan"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /session/upgrade [post]
func (c *SessionController) Upgrade(ctx *gin.Context) {
	var req dto.UpgradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid plan", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.Upgrade(req.Plan)
	})
	c.respond(ctx, snap, err)
}

// SetModal godoc
// @Summary Open or close a modal
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ModalRequest true "Modal and visibility"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /session/modals [put]
func (c *SessionController) SetModal(ctx *gin.Context) {
	var req dto.ModalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid modal", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.SetModal(service.Modal(req.Modal), req.Open)
	})
	c.respond(ctx, snap, err)
}

// SetTheme godoc
// @Summary Change the colour theme
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ThemeRequest true "Theme"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /session/theme [put]
func (c *SessionController) SetTheme(ctx *gin.Context) {
	var req dto.ThemeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid theme", Details: []string{err.Error()}})
		return
	}
	snap, err := c.run(ctx, func(s *service.SessionController) (service.Snapshot, error) {
		return s.SetTheme(req.Theme)
	})
	c.respond(ctx, snap, err)
}

// DismissNotice godoc
// @Summary Dismiss the current notice
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Router /session/notice [delete]
func (c *SessionController) DismissNotice(ctx *gin.Context) {
	snap, err := c.run(ctx, (*service.SessionController).DismissNotice)
	c.respond(ctx, snap, err)
}

// GetHistory godoc
// @Summary Attempt history of the active identity
// @Description Newest first. Without a signed-in user the guest history is returned.
// @Tags History
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AttemptResponse
// @Router /session/history [get]
func (c *SessionController) GetHistory(ctx *gin.Context) {
	history := c.session(ctx).History()
	resp := make([]dto.AttemptResponse, 0, len(history))
	for _, attempt := range history {
		resp = append(resp, toAttemptResponse(attempt))
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetStats godoc
// @Summary Aggregated statistics
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Restrict accuracy to one subject" Enums(mathematics, physics, chemistry, biology)
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /session/stats [get]
func (c *SessionController) GetStats(ctx *gin.Context) {
	stats, err := c.session(ctx).Stats(model.Subject(ctx.Query("subject")))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid subject", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, toStatsResponse(stats))
}

// GetCertificate godoc
// @Summary Certificate image for the result on screen
// @Description Returns a PNG, or {"available": false} when none could be produced.
// @Tags History
// @Produce png
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CertificateUnavailableResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /session/certificate [get]
func (c *SessionController) GetCertificate(ctx *gin.Context) {
	cert, err := c.session(ctx).Certificate(ctx.Request.Context())
	if errors.Is(err, service.ErrInvalidIntent) {
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "No result to certify", Details: []string{err.Error()}})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusOK, dto.CertificateUnavailableResponse{Available: false})
		return
	}
	ctx.Header("Content-Disposition", `inline; filename="QuizX_Certificate.png"`)
	ctx.Data(http.StatusOK, cert.MIMEType, cert.Data)
}

// Health godoc
// @Summary Liveness check
// @Tags Ops
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /healthz [get]
func (c *SessionController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Sessions: c.sessions.Count()})
}
