package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	email, code string
	err         error
}

func (c *captureSender) SendCode(_ context.Context, email, code string) error {
	c.email, c.code = email, code
	return c.err
}

func TestOTPService_Handshake(t *testing.T) {
	sender := &captureSender{}
	svc := NewOTPService(sender, time.Minute)

	id, err := svc.RequestCode(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "alice@example.com", sender.email)
	assert.Len(t, sender.code, 6)

	sess, err := svc.SubmitCode(id, sender.code)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sess.UserID)
	assert.Equal(t, "alice", sess.Name)

	// A challenge is single use
	_, err = svc.SubmitCode(id, sender.code)
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}

func TestOTPService_WrongCode(t *testing.T) {
	sender := &captureSender{}
	svc := NewOTPService(sender, time.Minute)

	id, err := svc.RequestCode(context.Background(), "bob@example.com")
	require.NoError(t, err)

	_, err = svc.SubmitCode(id, "not-it")
	assert.ErrorIs(t, err, ErrInvalidChallenge)

	// Wrong code does not burn the challenge
	_, err = svc.SubmitCode(id, sender.code)
	assert.NoError(t, err)
}

func TestOTPService_Expired(t *testing.T) {
	sender := &captureSender{}
	svc := NewOTPService(sender, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id, err := svc.RequestCode(context.Background(), "bob@example.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.SubmitCode(id, sender.code)
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}

func TestOTPService_InvalidEmail(t *testing.T) {
	svc := NewOTPService(&captureSender{}, time.Minute)

	_, err := svc.RequestCode(context.Background(), "not an email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestOTPService_SenderFailure(t *testing.T) {
	svc := NewOTPService(&captureSender{err: errors.New("smtp down")}, time.Minute)

	_, err := svc.RequestCode(context.Background(), "bob@example.com")
	assert.ErrorContains(t, err, "smtp down")
}

func TestOTPService_RevokesAfterRepeatedWrongCodes(t *testing.T) {
	sender := &captureSender{}
	svc := NewOTPService(sender, time.Minute)

	id, err := svc.RequestCode(context.Background(), "mallory@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if sender.code == wrong {
		wrong = "111111"
	}
	for i := 0; i < MaxCodeAttempts; i++ {
		_, err = svc.SubmitCode(id, wrong)
		assert.ErrorIs(t, err, ErrInvalidChallenge)
	}

	// The real code no longer works once the attempts are used up
	_, err = svc.SubmitCode(id, sender.code)
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}

func TestOTPService_MintsLoginIDPerHandshake(t *testing.T) {
	sender := &captureSender{}
	svc := NewOTPService(sender, time.Minute)

	login := func() string {
		id, err := svc.RequestCode(context.Background(), "erin@example.com")
		require.NoError(t, err)
		sess, err := svc.SubmitCode(id, sender.code)
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
		return sess.ID
	}
	assert.NotEqual(t, login(), login())
}
