package driven

import (
	"context"
	"errors"
)

// ErrCaptchaFailed is returned when the captcha provider rejects a response token.
var ErrCaptchaFailed = errors.New("captcha verification failed")

// CaptchaVerifier checks a client-supplied captcha response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, responseToken, remoteIP string) error
}
