package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	now := time.Now()
	svc := newSessionTokenService("secret", time.Hour, func() time.Time { return now })

	token, clientID, err := svc.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, clientID)

	parsed, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, clientID, parsed)
}

func TestSessionTokenRejects(t *testing.T) {
	now := time.Now()
	svc := newSessionTokenService("secret", time.Hour, func() time.Time { return now })
	token, _, err := svc.Issue()
	require.NoError(t, err)

	other := newSessionTokenService("other-secret", time.Hour, func() time.Time { return now })
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	later := newSessionTokenService("secret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken, "expired")

	_, err = svc.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}
