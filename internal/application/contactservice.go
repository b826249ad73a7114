package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// ContactService validates contact form messages, checks the captcha and
// forwards them to the backend.
type ContactService struct {
	backend driven.BackendFactory
	captcha driven.CaptchaVerifier
	logger  *slog.Logger
}

// NewContactService creates a ContactService.
func NewContactService(backend driven.BackendFactory, captcha driven.CaptchaVerifier, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{backend: backend, captcha: captcha, logger: logger}
}

// Submit validates msg, verifies captchaToken for remoteIP and forwards the
// message. Validation failures are *driven.Error of KindValidation; captcha
// rejections wrap driven.ErrCaptchaFailed.
func (s *ContactService) Submit(ctx context.Context, msg model.ContactMessage, captchaToken, remoteIP string) error {
	msg = normalizeContact(msg)
	if err := validateContact(msg); err != nil {
		return err
	}

	if err := s.captcha.Verify(ctx, captchaToken, remoteIP); err != nil {
		return fmt.Errorf("verify captcha: %w", err)
	}

	if err := s.backend.Session(nil).SubmitContact(ctx, msg); err != nil {
		return fmt.Errorf("forward contact message: %w", err)
	}

	s.logger.Info("contact message forwarded", "subject", msg.Subject)
	return nil
}

func normalizeContact(msg model.ContactMessage) model.ContactMessage {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	return msg
}

func validateContact(msg model.ContactMessage) error {
	fields := map[string]string{}
	if msg.Name == "" {
		fields["name"] = "Name is required"
	}
	if msg.Email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(msg.Email); err != nil {
		fields["email"] = "Email address is not valid"
	}
	if msg.Message == "" {
		fields["message"] = "Message is required"
	}
	if len(fields) > 0 {
		return driven.NewValidationError(fields)
	}
	return nil
}
