package service

import (
	"testing"
	"time"

	"github.com/lshigami/quizx/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentityFillsDefaults(t *testing.T) {
	payload := &model.User{ID: "u1", Email: "ada@example.com"}

	user := NormalizeIdentity(payload, nil, testNow, DefaultQuotaWindow)

	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "User", user.Name)
	assert.Contains(t, avatars, user.Avatar)
	assert.Equal(t, testNow, user.CreatedAt)
	assert.Equal(t, model.TierFree, user.SubscriptionTier)
	assert.Nil(t, user.SubscriptionExpiry)
	require.NotNil(t, user.QuizUsage)
	assert.Equal(t, 0, user.QuizUsage.Count)
	assert.Equal(t, testNow.Add(7*24*time.Hour), user.QuizUsage.ResetAt)
	assert.Empty(t, payload.Avatar, "payload is not mutated")
}

func TestNormalizeIdentityKeepsStoredEntitlements(t *testing.T) {
	expiry := testNow.Add(10 * 24 * time.Hour)
	prior := &model.User{
		ID:                 "u1",
		Name:               "Old Name",
		Avatar:             "🚀",
		CreatedAt:          testNow.Add(-48 * time.Hour),
		SubscriptionTier:   model.TierPro,
		SubscriptionExpiry: &expiry,
		QuizUsage:          &model.QuizUsage{Count: 2, ResetAt: testNow.Add(time.Hour)},
	}
	payload := &model.User{ID: "u1", Name: "Ada Lovelace"}

	user := NormalizeIdentity(payload, prior, testNow, DefaultQuotaWindow)

	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "🚀", user.Avatar)
	assert.Equal(t, prior.CreatedAt, user.CreatedAt)
	assert.Equal(t, model.TierPro, user.SubscriptionTier)
	require.NotNil(t, user.SubscriptionExpiry)
	assert.True(t, user.SubscriptionExpiry.Equal(expiry))
	assert.Equal(t, 2, user.QuizUsage.Count)

	user.QuizUsage.Count = 5
	assert.Equal(t, 2, prior.QuizUsage.Count, "prior profile is not aliased")
}

func TestNormalizeIdentityIgnoresOtherProfiles(t *testing.T) {
	prior := &model.User{ID: "someone-else", SubscriptionTier: model.TierPro}
	user := NormalizeIdentity(&model.User{ID: "u1", Name: "Ada"}, prior, testNow, DefaultQuotaWindow)
	assert.Equal(t, model.TierFree, user.SubscriptionTier)
}
