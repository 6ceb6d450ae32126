package service

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/lshigami/quizx/internal/model"
)

var avatars = []string{"🎓", "🧠", "🚀", "🧪", "🔭", "🧬", "⚛️", "📐"}

// NormalizeIdentity turns a possibly partial provider payload into a fully
// populated user. Entitlements come from the identity's stored profile when one
// exists, then from the payload, then from free-tier defaults.
func NormalizeIdentity(payload, prior *model.User, now time.Time, window time.Duration) *model.User {
	user := &model.User{}
	if payload != nil {
		user = payload.Clone()
	}
	if prior != nil && prior.ID == user.ID {
		if user.Name == "" {
			user.Name = prior.Name
		}
		if user.Email == "" {
			user.Email = prior.Email
		}
		if prior.Avatar != "" {
			user.Avatar = prior.Avatar
		}
		if !prior.CreatedAt.IsZero() {
			user.CreatedAt = prior.CreatedAt
		}
		if prior.SubscriptionTier != "" {
			user.SubscriptionTier = prior.SubscriptionTier
			user.SubscriptionExpiry = prior.Clone().SubscriptionExpiry
		}
		if prior.QuizUsage != nil {
			usage := *prior.QuizUsage
			user.QuizUsage = &usage
		}
	}

	if strings.TrimSpace(user.Name) == "" {
		user.Name = "User"
	}
	if user.Avatar == "" {
		user.Avatar = avatars[rand.IntN(len(avatars))]
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = model.TierFree
	}
	if user.SubscriptionTier == model.TierFree {
		user.SubscriptionExpiry = nil
	}
	if user.QuizUsage == nil {
		user.QuizUsage = &model.QuizUsage{Count: 0, ResetAt: now.Add(window)}
	}
	return user
}
