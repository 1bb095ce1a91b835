package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/models"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidChallenge = errors.New("invalid or expired code")
)

// CodeSender delivers a one-time code to an email address
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogCodeSender writes codes to the log. Useful when no mail relay is configured.
type LogCodeSender struct{}

func (LogCodeSender) SendCode(_ context.Context, email, code string) error {
	logging.L().Info("one-time code issued", logging.String("email", email), logging.String("code", code))
	return nil
}

// MaxCodeAttempts is how many wrong codes a challenge tolerates before it is revoked
const MaxCodeAttempts = 5

type challenge struct {
	email     string
	code      string
	expiresAt time.Time
	failures  int
}

// OTPService runs the two-phase email code handshake and resolves a Session
type OTPService struct {
	sender CodeSender
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	challenges map[string]challenge
}

// NewOTPService creates a service issuing codes valid for ttl
func NewOTPService(sender CodeSender, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPService{
		sender:     sender,
		ttl:        ttl,
		now:        time.Now,
		challenges: make(map[string]challenge),
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestCode sends a fresh code to email and returns the opaque challenge id
func (s *OTPService) RequestCode(ctx context.Context, email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", ErrInvalidEmail
	}
	email = strings.ToLower(addr.Address)

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.sender.SendCode(ctx, email, code); err != nil {
		return "", fmt.Errorf("send code: %w", err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.challenges[id] = challenge{email: email, code: code, expiresAt: s.now().Add(s.ttl)}
	return id, nil
}

// SubmitCode consumes the challenge and returns the resolved session
func (s *OTPService) SubmitCode(challengeID, code string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[challengeID]
	if !ok || s.now().After(c.expiresAt) {
		delete(s.challenges, challengeID)
		return nil, ErrInvalidChallenge
	}
	if subtle.ConstantTimeCompare([]byte(c.code), []byte(strings.TrimSpace(code))) != 1 {
		c.failures++
		if c.failures >= MaxCodeAttempts {
			delete(s.challenges, challengeID)
			logging.L().Warn("challenge revoked after failed attempts", logging.String("email", c.email))
		} else {
			s.challenges[challengeID] = c
		}
		return nil, ErrInvalidChallenge
	}
	delete(s.challenges, challengeID)

	name := c.email
	if idx := strings.Index(name, "@"); idx > 0 {
		name = name[:idx]
	}
	return &models.Session{ID: uuid.NewString(), UserID: c.email, Email: c.email, Name: name}, nil
}

// prune drops expired challenges. Callers hold mu.
func (s *OTPService) prune() {
	now := s.now()
	for id, c := range s.challenges {
		if now.After(c.expiresAt) {
			delete(s.challenges, id)
		}
	}
}
