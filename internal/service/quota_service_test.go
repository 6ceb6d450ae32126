package service

import (
	"testing"
	"time"

	"github.com/lshigami/quizx/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestQuotaRolloverResetsElapsedWindow(t *testing.T) {
	p := DefaultQuotaPolicy()
	user := freeUser("u1", 3, testNow)

	assert.True(t, p.Rollover(user, testNow), "now == resetAt counts as elapsed")
	assert.Equal(t, 0, user.QuizUsage.Count)
	assert.Equal(t, testNow.Add(7*24*time.Hour), user.QuizUsage.ResetAt)
	assert.True(t, p.Allows(user))
}

func TestQuotaBlocksFreeUserAtLimit(t *testing.T) {
	p := DefaultQuotaPolicy()
	user := freeUser("u1", 3, testNow.Add(time.Hour))

	assert.False(t, p.Rollover(user, testNow))
	assert.False(t, p.Allows(user))
	assert.Equal(t, 0, p.Remaining(user))
}

func TestQuotaProBypass(t *testing.T) {
	p := DefaultQuotaPolicy()
	expiry := testNow.Add(24 * time.Hour)
	user := freeUser("u1", 999, testNow.Add(time.Hour))
	user.SubscriptionTier = model.TierPro
	user.SubscriptionExpiry = &expiry

	assert.True(t, p.Allows(user))
	assert.False(t, p.Consume(user))
	assert.Equal(t, 999, user.QuizUsage.Count)
	assert.Equal(t, -1, p.Remaining(user))
}

func TestQuotaExpiredProReverts(t *testing.T) {
	p := DefaultQuotaPolicy()
	expiry := testNow.Add(-time.Minute)
	user := freeUser("u1", 999, testNow.Add(time.Hour))
	user.SubscriptionTier = model.TierPro
	user.SubscriptionExpiry = &expiry

	assert.True(t, p.Rollover(user, testNow))
	assert.Equal(t, model.TierFree, user.SubscriptionTier)
	assert.Nil(t, user.SubscriptionExpiry)
	assert.Equal(t, 0, user.QuizUsage.Count)
	assert.Equal(t, 3, p.Remaining(user))
}

func TestQuotaConsumeAndRefund(t *testing.T) {
	p := DefaultQuotaPolicy()
	user := freeUser("u1", 0, testNow.Add(time.Hour))

	assert.True(t, p.Consume(user))
	assert.True(t, p.Consume(user))
	assert.Equal(t, 1, p.Remaining(user))

	p.Refund(user)
	assert.Equal(t, 1, user.QuizUsage.Count)

	user.QuizUsage.Count = 0
	p.Refund(user)
	assert.Equal(t, 0, user.QuizUsage.Count, "never negative")
}

func TestQuotaMissingUsageIsInitialised(t *testing.T) {
	p := DefaultQuotaPolicy()
	user := &model.User{ID: "u1"}

	assert.True(t, p.Rollover(user, testNow))
	assert.Equal(t, model.TierFree, user.SubscriptionTier)
	assert.NotNil(t, user.QuizUsage)
	assert.False(t, p.Rollover(nil, testNow), "nil users are left alone")
}
