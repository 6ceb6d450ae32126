package service

import (
	"time"

	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
)

const (
	DefaultFreeQuizLimit = 3
	DefaultQuotaWindow   = 7 * 24 * time.Hour
)

// QuotaPolicy bounds free-tier quiz starts to FreeLimit per fixed window.
// The window restarts when it elapses; it does not slide.
type QuotaPolicy struct {
	FreeLimit       int
	Window          time.Duration
	RefundOnFailure bool
}

func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{FreeLimit: DefaultFreeQuizLimit, Window: DefaultQuotaWindow}
}

func NewQuotaPolicy(cfg *config.Config) QuotaPolicy {
	p := DefaultQuotaPolicy()
	if cfg.Quota.FreeLimit > 0 {
		p.FreeLimit = cfg.Quota.FreeLimit
	}
	if cfg.Quota.Window > 0 {
		p.Window = cfg.Quota.Window
	}
	p.RefundOnFailure = cfg.Quota.RefundOnFailure
	return p
}

// Rollover brings the user's entitlement up to date with now and reports
// whether anything changed. An expired pro subscription reverts to free with a
// fresh window; an elapsed window resets the counter.
func (p QuotaPolicy) Rollover(user *model.User, now time.Time) bool {
	if user == nil {
		return false
	}
	changed := false
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = model.TierFree
		changed = true
	}
	if user.SubscriptionTier == model.TierPro && user.SubscriptionExpiry != nil && !now.Before(*user.SubscriptionExpiry) {
		user.SubscriptionTier = model.TierFree
		user.SubscriptionExpiry = nil
		user.QuizUsage = &model.QuizUsage{Count: 0, ResetAt: now.Add(p.Window)}
		return true
	}
	if user.QuizUsage == nil {
		user.QuizUsage = &model.QuizUsage{Count: 0, ResetAt: now.Add(p.Window)}
		return true
	}
	if !now.Before(user.QuizUsage.ResetAt) {
		user.QuizUsage.Count = 0
		user.QuizUsage.ResetAt = now.Add(p.Window)
		changed = true
	}
	return changed
}

// Allows reports whether the user may start another quiz. Pro always may.
func (p QuotaPolicy) Allows(user *model.User) bool {
	if user == nil || user.IsPro() {
		return true
	}
	if user.QuizUsage == nil {
		return true
	}
	return user.QuizUsage.Count < p.FreeLimit
}

// Consume charges one start against a free user and reports whether it did.
func (p QuotaPolicy) Consume(user *model.User) bool {
	if user == nil || user.IsPro() || user.QuizUsage == nil {
		return false
	}
	user.QuizUsage.Count++
	return true
}

func (p QuotaPolicy) Refund(user *model.User) {
	if user == nil || user.QuizUsage == nil || user.QuizUsage.Count == 0 {
		return
	}
	user.QuizUsage.Count--
}

// Remaining returns starts left in the current window, or -1 when unlimited.
func (p QuotaPolicy) Remaining(user *model.User) int {
	if user == nil || user.IsPro() {
		return -1
	}
	if user.QuizUsage == nil {
		return p.FreeLimit
	}
	if left := p.FreeLimit - user.QuizUsage.Count; left > 0 {
		return left
	}
	return 0
}
