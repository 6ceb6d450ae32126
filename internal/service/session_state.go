package service

import (
	"fmt"
	"time"

	"github.com/lshigami/quizx/internal/model"
)

type View string

const (
	ViewSetup  View = "setup"
	ViewQuiz   View = "quiz"
	ViewResult View = "result"
)

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

const generationFailedMessage = "Something went wrong generating the quiz. Please try again."

// State is one client's session. It lives in memory only.
type State struct {
	View             View
	ActiveQuiz       *model.Quiz
	Answers          []int
	CurrentIndex     int
	RemainingSeconds int
	TimeTakenSeconds int
	Loading          bool
	ShowAuthModal    bool
	ShowUpgradeModal bool
	AuthError        string
	Language         model.Language
	Theme            model.Theme
	User             *model.User
	LastAttempt      *model.QuizAttempt
	// AttemptRecorded is false while a guest result has not reached history yet.
	AttemptRecorded bool
	Notice          *Notice

	generation uint64
	timerEpoch uint64
	charged    bool
}

// NewState is the state of a freshly loaded session.
func NewState(user *model.User, theme model.Theme) State {
	if !theme.Valid() {
		theme = model.ThemeLight
	}
	return State{
		View:     ViewSetup,
		Language: model.LanguageEnglish,
		Theme:    theme,
		User:     user.Clone(),
	}
}

func (s State) clone() State {
	c := s
	if s.Answers != nil {
		c.Answers = append([]int(nil), s.Answers...)
	}
	c.User = s.User.Clone()
	if s.LastAttempt != nil {
		a := *s.LastAttempt
		a.Answers = append([]int(nil), s.LastAttempt.Answers...)
		c.LastAttempt = &a
	}
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return c
}

// Event is an intent or an asynchronous completion fed to Reduce.
type Event interface{ isEvent() }

type StartQuiz struct {
	Subject    model.Subject
	Difficulty model.Difficulty
	Language   model.Language
}

type QuizGenerated struct {
	Generation uint64
	Quiz       *model.Quiz
}

type QuizGenerationFailed struct {
	Generation uint64
	Err        error
}

type SelectAnswer struct {
	Index  int
	Option int
}

type Navigate struct{ Index int }

type Finish struct{}

type TimerTick struct{ Epoch uint64 }

type Retry struct{}

type Home struct{}

type LoginSucceeded struct{ User *model.User }

type AuthFailed struct{ Message string }

type Logout struct{}

type Upgrade struct{ Plan model.UpgradePlan }

type SetModal struct {
	Modal Modal
	Open  bool
}

type SetTheme struct{ Theme model.Theme }

type DismissNotice struct{}

// Leave is fed once when the session is torn down. A result nobody claimed is
// recorded; the view is left as is.
type Leave struct{}

func (StartQuiz) isEvent()            {}
func (QuizGenerated) isEvent()        {}
func (QuizGenerationFailed) isEvent() {}
func (SelectAnswer) isEvent()         {}
func (Navigate) isEvent()             {}
func (Finish) isEvent()               {}
func (TimerTick) isEvent()            {}
func (Retry) isEvent()                {}
func (Home) isEvent()                 {}
func (LoginSucceeded) isEvent()       {}
func (AuthFailed) isEvent()           {}
func (Logout) isEvent()               {}
func (Upgrade) isEvent()              {}
func (SetModal) isEvent()             {}
func (SetTheme) isEvent()             {}
func (DismissNotice) isEvent()        {}
func (Leave) isEvent()                {}

type Modal string

const (
	ModalAuth    Modal = "auth"
	ModalUpgrade Modal = "upgrade"
)

// Effect is I/O requested by Reduce. The controller runs effects in order.
type Effect interface{ isEffect() }

type PersistUser struct{ User *model.User }

type ClearUser struct{ UserID string }

type AppendAttempt struct{ Attempt model.QuizAttempt }

type RequestQuiz struct {
	Generation uint64
	Subject    model.Subject
	Difficulty model.Difficulty
	Language   model.Language
}

type StartTimer struct{ Epoch uint64 }

type StopTimer struct{}

type PersistTheme struct{ Theme model.Theme }

func (PersistUser) isEffect()   {}
func (ClearUser) isEffect()     {}
func (AppendAttempt) isEffect() {}
func (RequestQuiz) isEffect()   {}
func (StartTimer) isEffect()    {}
func (StopTimer) isEffect()     {}
func (PersistTheme) isEffect()  {}

// Reduce applies one event. It never mutates s and performs no I/O; the
// returned effects describe the I/O. Illegal intents return ErrInvalidIntent
// with s unchanged. Stale asynchronous results are dropped silently.
func Reduce(s State, ev Event, now time.Time, policy QuotaPolicy) (State, []Effect, error) {
	next := s.clone()
	var effects []Effect

	switch e := ev.(type) {
	case StartQuiz:
		if next.Loading {
			return s, nil, nil
		}
		if next.View != ViewSetup {
			return s, nil, invalidIntent("cannot start a quiz from %s", next.View)
		}
		if !e.Subject.Valid() || !e.Difficulty.Valid() || !e.Language.Valid() {
			return s, nil, invalidIntent("unknown subject %q, difficulty %q or language %q", e.Subject, e.Difficulty, e.Language)
		}
		next.Language = e.Language
		next.Notice = nil
		if next.User != nil {
			rolled := policy.Rollover(next.User, now)
			if !policy.Allows(next.User) {
				next.ShowUpgradeModal = true
				if rolled {
					effects = append(effects, PersistUser{User: next.User.Clone()})
				}
				return next, effects, nil
			}
			next.charged = policy.Consume(next.User)
			if rolled || next.charged {
				effects = append(effects, PersistUser{User: next.User.Clone()})
			}
		}
		next.Loading = true
		next.generation++
		effects = append(effects, RequestQuiz{
			Generation: next.generation,
			Subject:    e.Subject,
			Difficulty: e.Difficulty,
			Language:   e.Language,
		})

	case QuizGenerated:
		if !next.Loading || e.Generation != next.generation || e.Quiz == nil {
			return s, nil, nil
		}
		next.Loading = false
		next.charged = false
		next.ActiveQuiz = e.Quiz
		effects = append(effects, next.beginRun()...)

	case QuizGenerationFailed:
		if !next.Loading || e.Generation != next.generation {
			return s, nil, nil
		}
		next.Loading = false
		next.Notice = &Notice{Kind: NoticeError, Message: generationFailedMessage}
		if next.charged && policy.RefundOnFailure && next.User != nil {
			policy.Refund(next.User)
			effects = append(effects, PersistUser{User: next.User.Clone()})
		}
		next.charged = false

	case SelectAnswer:
		if next.View != ViewQuiz {
			return s, nil, invalidIntent("no quiz in progress")
		}
		if e.Index < 0 || e.Index >= len(next.Answers) {
			return s, nil, invalidIntent("question index %d out of range", e.Index)
		}
		if e.Option != model.Unanswered && (e.Option < 0 || e.Option >= len(next.ActiveQuiz.Questions[e.Index].Options)) {
			return s, nil, invalidIntent("option %d out of range", e.Option)
		}
		next.Answers[e.Index] = e.Option

	case Navigate:
		if next.View != ViewQuiz {
			return s, nil, invalidIntent("no quiz in progress")
		}
		if e.Index < 0 || e.Index >= len(next.ActiveQuiz.Questions) {
			return s, nil, invalidIntent("question index %d out of range", e.Index)
		}
		next.CurrentIndex = e.Index

	case Finish:
		if next.View != ViewQuiz {
			return s, nil, invalidIntent("no quiz in progress")
		}
		effects = append(effects, next.submit(now)...)

	case TimerTick:
		if next.View != ViewQuiz || e.Epoch != next.timerEpoch {
			return s, nil, nil
		}
		next.RemainingSeconds--
		if next.RemainingSeconds <= 0 {
			next.RemainingSeconds = 0
			effects = append(effects, next.submit(now)...)
		}

	case Retry:
		if next.View != ViewResult || next.ActiveQuiz == nil {
			return s, nil, invalidIntent("nothing to retry")
		}
		effects = append(effects, next.flushGuestAttempt()...)
		effects = append(effects, next.beginRun()...)

	case Home:
		switch {
		case next.View == ViewResult:
			effects = append(effects, next.flushGuestAttempt()...)
		case next.View == ViewQuiz:
			effects = append(effects, StopTimer{})
		case next.Loading:
			next.generation++
			next.Loading = false
			next.charged = false
		}
		next.View = ViewSetup
		next.ActiveQuiz = nil
		next.Answers = nil
		next.CurrentIndex = 0
		next.RemainingSeconds = 0
		next.TimeTakenSeconds = 0
		next.LastAttempt = nil
		next.AttemptRecorded = false

	case LoginSucceeded:
		if e.User == nil || e.User.ID == "" {
			return s, nil, invalidIntent("login without identity")
		}
		next.User = e.User.Clone()
		policy.Rollover(next.User, now)
		next.ShowAuthModal = false
		next.AuthError = ""
		effects = append(effects, PersistUser{User: next.User.Clone()})
		if next.View == ViewResult && next.LastAttempt != nil && !next.AttemptRecorded {
			next.LastAttempt.UserID = next.User.ID
			next.AttemptRecorded = true
			effects = append(effects, AppendAttempt{Attempt: *cloneAttempt(next.LastAttempt)})
		}

	case AuthFailed:
		next.AuthError = e.Message

	case Logout:
		if next.User == nil {
			return s, nil, nil
		}
		effects = append(effects, ClearUser{UserID: next.User.ID})
		next.User = nil
		next.ShowUpgradeModal = false

	case Upgrade:
		if !e.Plan.Valid() {
			return s, nil, invalidIntent("unknown plan %q", e.Plan)
		}
		if next.User == nil {
			next.ShowUpgradeModal = false
			next.ShowAuthModal = true
			return next, nil, nil
		}
		expiry := now.Add(e.Plan.Duration())
		next.User.SubscriptionTier = model.TierPro
		next.User.SubscriptionExpiry = &expiry
		next.ShowUpgradeModal = false
		next.Notice = &Notice{Kind: NoticeSuccess, Message: fmt.Sprintf("Success! You are now a PRO member. Plan: %s", e.Plan)}
		effects = append(effects, PersistUser{User: next.User.Clone()})

	case SetModal:
		switch e.Modal {
		case ModalAuth:
			next.ShowAuthModal = e.Open
			next.AuthError = ""
		case ModalUpgrade:
			next.ShowUpgradeModal = e.Open
		default:
			return s, nil, invalidIntent("unknown modal %q", e.Modal)
		}

	case SetTheme:
		if !e.Theme.Valid() {
			return s, nil, invalidIntent("unknown theme %q", e.Theme)
		}
		next.Theme = e.Theme
		effects = append(effects, PersistTheme{Theme: e.Theme})

	case DismissNotice:
		next.Notice = nil

	case Leave:
		switch next.View {
		case ViewResult:
			effects = append(effects, next.flushGuestAttempt()...)
		case ViewQuiz:
			effects = append(effects, StopTimer{})
		}

	default:
		return s, nil, invalidIntent("unsupported event %T", ev)
	}

	return next, effects, nil
}

// beginRun starts a fresh timed run of the active quiz.
func (s *State) beginRun() []Effect {
	s.View = ViewQuiz
	s.Answers = make([]int, len(s.ActiveQuiz.Questions))
	for i := range s.Answers {
		s.Answers[i] = model.Unanswered
	}
	s.CurrentIndex = 0
	s.RemainingSeconds = s.ActiveQuiz.DurationSeconds
	s.TimeTakenSeconds = 0
	s.LastAttempt = nil
	s.AttemptRecorded = false
	s.timerEpoch++
	return []Effect{StartTimer{Epoch: s.timerEpoch}}
}

// submit scores the current answers and moves to the result view.
func (s *State) submit(now time.Time) []Effect {
	s.TimeTakenSeconds = s.ActiveQuiz.DurationSeconds - s.RemainingSeconds
	userID := model.GuestUserID
	if s.User != nil {
		userID = s.User.ID
	}
	attempt := NewAttempt(s.ActiveQuiz, s.Answers, userID, s.TimeTakenSeconds, now, s.timerEpoch)
	s.LastAttempt = &attempt
	s.View = ViewResult

	effects := []Effect{StopTimer{}}
	if s.User != nil {
		s.AttemptRecorded = true
		effects = append(effects, AppendAttempt{Attempt: *cloneAttempt(&attempt)})
	}
	return effects
}

// flushGuestAttempt records a guest result that nobody claimed by signing in.
func (s *State) flushGuestAttempt() []Effect {
	if s.LastAttempt == nil || s.AttemptRecorded {
		return nil
	}
	s.AttemptRecorded = true
	return []Effect{AppendAttempt{Attempt: *cloneAttempt(s.LastAttempt)}}
}

func cloneAttempt(a *model.QuizAttempt) *model.QuizAttempt {
	c := *a
	c.Answers = append([]int(nil), a.Answers...)
	return &c
}
