package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/monitoring"
	"github.com/lshigami/quizx/internal/repository"
	"github.com/lshigami/quizx/internal/store"
	"github.com/rs/zerolog/log"
)

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Policy            QuotaPolicy
	Quizzes           QuizSource
	Identity          IdentityProvider
	Certificates      CertificateGenerator
	TickInterval      time.Duration
	GenerationTimeout time.Duration
	Clock             func() time.Time
}

// Snapshot is the state handed to the presentation layer.
type Snapshot struct {
	State
	QuotaRemaining int
	ShareText      string
}

// SessionController owns one client's session. Intents are applied one at a
// time under mu; effects run before the lock is released, so storage always
// reflects the order in which intents were accepted.
type SessionController struct {
	id   string
	deps SessionDeps

	users   repository.UserRepository
	history repository.HistoryRepository
	prefs   repository.PreferenceRepository

	mu        sync.Mutex
	state     State
	closed    bool
	countdown *Countdown

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	lastSeen atomic.Int64
}

// NewSessionController loads the client's stored profile and theme into a
// fresh session in the setup view.
func NewSessionController(id string, s store.Store, deps SessionDeps) *SessionController {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Policy.FreeLimit <= 0 || deps.Policy.Window <= 0 {
		deps.Policy = DefaultQuotaPolicy()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &SessionController{
		id:      id,
		deps:    deps,
		users:   repository.NewUserRepository(s),
		history: repository.NewHistoryRepository(s),
		prefs:   repository.NewPreferenceRepository(s),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.countdown = NewCountdown(deps.TickInterval, c.onTick)

	now := deps.Clock()
	user := c.users.Active()
	if deps.Policy.Rollover(user, now) {
		if err := c.users.SaveActive(user); err != nil {
			log.Error().Err(err).Str("sessionID", id).Msg("Failed to persist quota rollover")
		}
	}
	c.state = NewState(user, c.prefs.Theme())
	c.lastSeen.Store(now.UnixNano())
	return c
}

func (c *SessionController) ID() string { return c.id }

// Closed reports whether Close has run.
func (c *SessionController) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// LastSeen is the time of the last intent received from the client.
func (c *SessionController) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *SessionController) touch() {
	c.lastSeen.Store(c.deps.Clock().UnixNano())
}

// Dispatch applies ev and runs its effects.
func (c *SessionController) Dispatch(ev Event) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(ev)
}

func (c *SessionController) dispatchLocked(ev Event) (Snapshot, error) {
	if c.closed {
		return c.snapshotLocked(), ErrSessionClosed
	}
	next, effects, err := Reduce(c.state, ev, c.deps.Clock(), c.deps.Policy)
	if err != nil {
		log.Debug().Err(err).Str("sessionID", c.id).Str("event", fmt.Sprintf("%T", ev)).Msg("Intent rejected")
		return c.snapshotLocked(), err
	}
	c.observe(ev, c.state, next)
	c.state = next
	for _, eff := range effects {
		c.apply(eff)
	}
	return c.snapshotLocked(), nil
}

func (c *SessionController) observe(ev Event, before, after State) {
	if _, ok := ev.(StartQuiz); !ok {
		return
	}
	switch {
	case before.Loading:
		monitoring.QuizStarts.WithLabelValues("ignored").Inc()
	case after.Loading:
		monitoring.QuizStarts.WithLabelValues("accepted").Inc()
	case after.ShowUpgradeModal:
		monitoring.QuizStarts.WithLabelValues("quota_exceeded").Inc()
	}
}

func (c *SessionController) apply(eff Effect) {
	switch e := eff.(type) {
	case PersistUser:
		if err := c.users.SaveActive(e.User); err != nil {
			log.Error().Err(err).Str("sessionID", c.id).Msg("Failed to persist user")
		}
	case ClearUser:
		if err := c.users.ClearActive(); err != nil {
			log.Error().Err(err).Str("sessionID", c.id).Msg("Failed to clear user")
		}
	case AppendAttempt:
		if err := c.history.Append(e.Attempt); err != nil {
			log.Error().Err(err).Str("sessionID", c.id).Str("attemptID", e.Attempt.ID).Msg("Failed to record attempt")
			return
		}
		identity := "user"
		if e.Attempt.UserID == model.GuestUserID {
			identity = "guest"
		}
		monitoring.AttemptsRecorded.WithLabelValues(string(e.Attempt.Subject), identity).Inc()
	case RequestQuiz:
		c.inflight.Add(1)
		go c.generate(e)
	case StartTimer:
		c.countdown.Start(e.Epoch)
	case StopTimer:
		c.countdown.Stop()
	case PersistTheme:
		if err := c.prefs.SaveTheme(e.Theme); err != nil {
			log.Error().Err(err).Str("sessionID", c.id).Msg("Failed to persist theme")
		}
	default:
		log.Warn().Str("sessionID", c.id).Str("effect", fmt.Sprintf("%T", eff)).Msg("Unhandled effect")
	}
}

func (c *SessionController) generate(req RequestQuiz) {
	defer c.inflight.Done()

	ctx := c.ctx
	if c.deps.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.GenerationTimeout)
		defer cancel()
	}

	start := time.Now()
	quiz, err := c.deps.Quizzes.Generate(ctx, req.Subject, req.Difficulty, req.Language)
	if err != nil {
		monitoring.QuizGenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		log.Error().Err(err).Str("sessionID", c.id).Uint64("generation", req.Generation).Msg("Quiz generation failed")
		c.Dispatch(QuizGenerationFailed{Generation: req.Generation, Err: err})
		return
	}
	monitoring.QuizGenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	c.Dispatch(QuizGenerated{Generation: req.Generation, Quiz: quiz})
}

func (c *SessionController) onTick(epoch uint64) {
	c.Dispatch(TimerTick{Epoch: epoch})
}

func (c *SessionController) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          c.state.clone(),
		QuotaRemaining: c.deps.Policy.Remaining(c.state.User),
	}
	if c.state.View == ViewResult && c.state.LastAttempt != nil {
		snap.ShareText = ShareText(*c.state.LastAttempt)
	}
	return snap
}

func (c *SessionController) Snapshot() Snapshot {
	c.touch()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *SessionController) StartQuiz(subject model.Subject, difficulty model.Difficulty, language model.Language) (Snapshot, error) {
	c.touch()
	return c.Dispatch(StartQuiz{Subject: subject, Difficulty: difficulty, Language: language})
}

func (c *SessionController) SelectAnswer(index, option int) (Snapshot, error) {
	c.touch()
	return c.Dispatch(SelectAnswer{Index: index, Option: option})
}

func (c *SessionController) Navigate(index int) (Snapshot, error) {
	c.touch()
	return c.Dispatch(Navigate{Index: index})
}

func (c *SessionController) Finish() (Snapshot, error) {
	c.touch()
	return c.Dispatch(Finish{})
}

// Tick advances the running attempt by one interval, as the countdown would.
func (c *SessionController) Tick() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(TimerTick{Epoch: c.state.timerEpoch})
}

func (c *SessionController) Retry() (Snapshot, error) {
	c.touch()
	return c.Dispatch(Retry{})
}

func (c *SessionController) Home() (Snapshot, error) {
	c.touch()
	return c.Dispatch(Home{})
}

func (c *SessionController) SignUp(ctx context.Context, email, password, name string) (Snapshot, error) {
	return c.authenticate(func() (*model.User, error) {
		return c.deps.Identity.SignUp(ctx, email, password, name)
	})
}

func (c *SessionController) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	return c.authenticate(func() (*model.User, error) {
		return c.deps.Identity.SignIn(ctx, email, password)
	})
}

func (c *SessionController) SignInFederated(ctx context.Context, credential string) (Snapshot, error) {
	return c.authenticate(func() (*model.User, error) {
		return c.deps.Identity.SignInFederated(ctx, credential)
	})
}

// authenticate calls the identity provider without holding the session lock.
func (c *SessionController) authenticate(call func() (*model.User, error)) (Snapshot, error) {
	c.touch()
	if c.deps.Identity == nil {
		snap, _ := c.Dispatch(AuthFailed{Message: AuthErrorMessage(ErrOperationNotAllowed)})
		return snap, ErrOperationNotAllowed
	}
	payload, err := call()
	if err != nil {
		log.Info().Err(err).Str("sessionID", c.id).Msg("Authentication failed")
		snap, _ := c.Dispatch(AuthFailed{Message: AuthErrorMessage(err)})
		return snap, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	user := NormalizeIdentity(payload, c.users.Profile(payload.ID), c.deps.Clock(), c.deps.Policy.Window)
	return c.dispatchLocked(LoginSucceeded{User: user})
}

func (c *SessionController) Logout(ctx context.Context) (Snapshot, error) {
	c.touch()
	c.mu.Lock()
	var userID string
	if c.state.User != nil {
		userID = c.state.User.ID
	}
	snap, err := c.dispatchLocked(Logout{})
	c.mu.Unlock()
	if err != nil || userID == "" {
		return snap, err
	}
	if c.deps.Identity != nil {
		if err := c.deps.Identity.SignOut(ctx, userID); err != nil {
			log.Warn().Err(err).Str("sessionID", c.id).Msg("Identity provider sign-out failed")
		}
	}
	return snap, nil
}

func (c *SessionController) Upgrade(plan model.UpgradePlan) (Snapshot, error) {
	c.touch()
	return c.Dispatch(Upgrade{Plan: plan})
}

func (c *SessionController) SetModal(modal Modal, open bool) (Snapshot, error) {
	c.touch()
	return c.Dispatch(SetModal{Modal: modal, Open: open})
}

func (c *SessionController) SetTheme(theme model.Theme) (Snapshot, error) {
	c.touch()
	return c.Dispatch(SetTheme{Theme: theme})
}

func (c *SessionController) DismissNotice() (Snapshot, error) {
	c.touch()
	return c.Dispatch(DismissNotice{})
}

// History returns the active identity's attempts, newest first. Without a
// user it returns the guest history.
func (c *SessionController) History() []model.QuizAttempt {
	c.touch()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyLocked()
}

func (c *SessionController) historyLocked() []model.QuizAttempt {
	userID := model.GuestUserID
	if c.state.User != nil {
		userID = c.state.User.ID
	}
	return c.history.ForUser(userID)
}

// Stats is recomputed from history on every call.
func (c *SessionController) Stats(subject model.Subject) (model.UserStats, error) {
	if subject != "" && !subject.Valid() {
		return model.UserStats{}, invalidIntent("unknown subject %q", subject)
	}
	return ComputeStats(c.History(), subject), nil
}

// Certificate renders the certificate for the result on screen. Any generator
// failure is reported as ErrCertificateUnavailable.
func (c *SessionController) Certificate(ctx context.Context) (*Certificate, error) {
	c.touch()
	c.mu.Lock()
	if c.state.View != ViewResult || c.state.LastAttempt == nil {
		c.mu.Unlock()
		return nil, invalidIntent("no result to certify")
	}
	attempt := *c.state.LastAttempt
	name := "Learner"
	if c.state.User != nil && c.state.User.Name != "" {
		name = c.state.User.Name
	}
	c.mu.Unlock()

	if c.deps.Certificates == nil {
		return nil, ErrCertificateUnavailable
	}
	cert, err := c.deps.Certificates.Generate(ctx, CertificateRequest{
		Name:     name,
		Subject:  attempt.Subject,
		Score:    attempt.Score,
		Total:    attempt.TotalQuestions,
		IssuedAt: attempt.Timestamp,
	})
	if err != nil || cert == nil || len(cert.Data) == 0 {
		log.Warn().Err(err).Str("sessionID", c.id).Msg("Certificate unavailable")
		return nil, errors.Join(ErrCertificateUnavailable, err)
	}
	return cert, nil
}

// Wait blocks until in-flight quiz generations have been applied or dropped.
func (c *SessionController) Wait() {
	c.inflight.Wait()
}

// Close records a pending guest result, stops the countdown and drops any
// in-flight generation. Later intents fail with ErrSessionClosed.
func (c *SessionController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, err := c.dispatchLocked(Leave{}); err != nil {
		log.Error().Err(err).Str("sessionID", c.id).Msg("Failed to leave session")
	}
	c.closed = true
	c.countdown.Stop()
	c.cancel()
	c.mu.Unlock()
	c.inflight.Wait()
}
