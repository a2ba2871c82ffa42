package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/typerace-go/internal/dependencies/mocks"
	"github.com/mcoot/typerace-go/internal/model"
)

func newTestService(secret string) (*Service, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(secret, clk), clk
}

func TestVerifyRoundTrip(t *testing.T) {
	svc, _ := newTestService("test-secret")

	token, err := svc.Sign("sub-1", "u1", "alice", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "sub-1", claims.Subject)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, clk := newTestService("test-secret")

	token, err := svc.Sign("sub-1", "u1", "alice", time.Hour)
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, model.ErrAuthFailed)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, _ := newTestService("secret-a")
	verifier, _ := newTestService("secret-b")

	token, err := issuer.Sign("sub-1", "u1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, model.ErrAuthFailed)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc, _ := newTestService("test-secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, model.ErrAuthFailed, "token %q", token)
	}
}
