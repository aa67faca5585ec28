// domain/auth.go
package domain

import (
	"context"
	"errors"

	"github.com/mahapatra12/vitam-cms/utils"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Handlers must not tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidVerificationCode is a wrong, expired or malformed second
	// factor. Retryable until the pending token or the codes expire.
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// ErrPendingTokenInvalid forces the client back to step one.
	ErrPendingTokenInvalid = errors.New("invalid or expired pending token")

	ErrAuthenticatorNotProvisioned = errors.New("authenticator secret not provisioned")
)

type Channel string

const (
	ChannelSMS           Channel = "sms"
	ChannelEmail         Channel = "email"
	ChannelAuthenticator Channel = "authenticator"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelAuthenticator:
		return true
	}
	return false
}

// SecondFactor is one submitted verification attempt: a code and the channel
// it claims to belong to. The wire layer normalizes both request shapes into
// an ordered slice of these; order is the legacy precedence (sms, email,
// authenticator).
type SecondFactor struct {
	Channel Channel
	Code    string
}

// DevBypassPolicy accepts one fixed code on every channel. The zero value is
// disabled; main only enables it outside production.
type DevBypassPolicy struct {
	Enabled bool
	Code    string
}

func (p DevBypassPolicy) Matches(code string) bool {
	return p.Enabled && p.Code != "" && code == p.Code
}

// OTPSender delivers a login code over one channel (SMS gateway, SMTP).
// Sends are best-effort: Login logs failed dispatches and moves on, so the
// authenticator channel stays usable even when both network channels are
// down.
type OTPSender interface {
	Send(ctx context.Context, to, code string) utils.DispatchResult
}

type LoginChallenge struct {
	RequireMfa   bool   `json:"requireMfa"`
	PendingToken string `json:"pendingToken"`
}

type AuthenticatedUser struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type AuthenticatorProvisioning struct {
	ProvisioningURI string `json:"provisioningUri"`
	Secret          string `json:"secret"`
	SetupComplete   bool   `json:"setupComplete"`
}

type AuthUseCase interface {
	// Login runs step one: password check, fresh code pairs, channel
	// fan-out, pending token.
	Login(ctx context.Context, email, password string) (*LoginChallenge, error)

	// VerifySecondFactor runs step two against the ordered candidate
	// factors and promotes the pending token to a session.
	VerifySecondFactor(ctx context.Context, pendingToken string, factors []SecondFactor) (*AuthenticatedUser, error)

	// AuthenticatorSetup returns the stored secret and its otpauth URI.
	// Session-authenticated callers only; it never regenerates the secret.
	AuthenticatorSetup(ctx context.Context, uuid string) (*AuthenticatorProvisioning, error)

	Me(ctx context.Context, uuid string) (*User, error)

	GetTokenManager() *utils.TokenManager
}
