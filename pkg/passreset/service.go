package passreset

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/mailer"
	"github.com/sonatahq/sonata-api/pkg/sanitizer"
)

const minPasswordLen = 8

// Service drives the forgot/reset/change password flows against the identity
// provider.
type Service struct {
	provider identity.Provider
	tokens   UsedTokenSet
	sender   mailer.EmailSender
	log      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMailer enables the best-effort confirmation email after a successful
// password reset.
func WithMailer(sender mailer.EmailSender) ServiceOption {
	return func(s *Service) { s.sender = sender }
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a password reset service.
func NewService(provider identity.Provider, tokens UsedTokenSet, opts ...ServiceOption) *Service {
	s := &Service{
		provider: provider,
		tokens:   tokens,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forgot initiates recovery. It always reports success so callers cannot
// probe which emails are registered; provider failures are logged only.
func (s *Service) Forgot(ctx context.Context, email string) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return
	}

	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		s.log.WarnContext(ctx, "failed to initiate password recovery",
			slog.String("email", email), slog.Any("error", err))
	}
}

// Reset consumes a recovery token and sets a new password. The token is
// reserved before verification; if verification or the update fails, the
// reservation is released so the token stays spendable.
func (s *Service) Reset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	ok, err := s.tokens.Reserve(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenReused
	}

	rec, err := s.provider.VerifyResetToken(ctx, token)
	if err != nil {
		s.release(ctx, token)
		if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.provider.UpdatePassword(ctx, rec.ID, newPassword); err != nil {
		s.release(ctx, token)
		return err
	}

	s.notifyPasswordChanged(ctx, rec.Email)
	return nil
}

// Change replaces the password of an authenticated user after re-verifying
// the current credential.
func (s *Service) Change(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	if newPassword == currentPassword {
		return ErrSamePassword
	}

	rec, err := s.provider.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.provider.Authenticate(ctx, rec.Email, currentPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := s.provider.UpdatePassword(ctx, userID, newPassword); err != nil {
		return err
	}

	s.notifyPasswordChanged(ctx, rec.Email)
	return nil
}

func (s *Service) release(ctx context.Context, token string) {
	if err := s.tokens.Release(ctx, token); err != nil {
		s.log.WarnContext(ctx, "failed to release reset token", slog.Any("error", err))
	}
}

// notifyPasswordChanged is best-effort; the password change already landed.
func (s *Service) notifyPasswordChanged(ctx context.Context, email string) {
	if s.sender == nil || email == "" {
		return
	}

	err := s.sender.SendEmail(ctx, mailer.SendEmailParams{
		SendTo:   email,
		Subject:  "Your password was changed",
		BodyHTML: "<p>Your account password was just changed. If this wasn't you, reset your password immediately.</p>",
		Tag:      "password-changed",
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to send password change notification",
			slog.String("email", email), slog.Any("error", err))
	}
}
