package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/utils"
)

// loginCodeTTL is how long the SMS and email codes stay valid. It matches
// the pending token TTL so neither credential outlives the other.
const loginCodeTTL = 10 * time.Minute

// dummyHash keeps the unknown-email path doing one bcrypt comparison, the
// same work as a wrong password, so response timing does not leak which
// half of the credentials failed.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type authService struct {
	users  domain.UserRepository
	sms    domain.OTPSender
	email  domain.OTPSender
	audit  domain.AuditRecorder
	tokens *utils.TokenManager
	bypass domain.DevBypassPolicy
}

func NewAuthService(
	users domain.UserRepository,
	sms, email domain.OTPSender,
	audit domain.AuditRecorder,
	jwtSecret string,
	bypass domain.DevBypassPolicy,
) domain.AuthUseCase {
	return &authService{
		users:  users,
		sms:    sms,
		email:  email,
		audit:  audit,
		tokens: utils.NewTokenManager(jwtSecret),
		bypass: bypass,
	}
}

// Login is step one: password check, fresh code pairs, best-effort channel
// fan-out, pending token. Nothing is mutated on the failure path.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.LoginChallenge, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		s.audit.Record(ctx, nil, domain.AuditLoginFailed, map[string]any{"email": email})
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.audit.Record(ctx, &user.UUID, domain.AuditLoginFailed, map[string]any{"email": email})
		return nil, domain.ErrInvalidCredentials
	}

	smsCode, err := utils.GenerateOTP(6)
	if err != nil {
		return nil, err
	}
	emailCode, err := utils.GenerateOTP(6)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(loginCodeTTL)
	if err := s.users.StoreLoginCodes(ctx, user.UUID, smsCode, emailCode, expiresAt); err != nil {
		return nil, err
	}

	// Delivery failures must not fail the login: the authenticator app
	// remains available as a fallback channel.
	if res := s.sms.Send(ctx, user.Phone, smsCode); res.Err != nil {
		log.Warn().Err(res.Err).Str("user", user.UUID).Msg("sms otp dispatch failed")
	}
	if res := s.email.Send(ctx, user.Email, emailCode); res.Err != nil {
		log.Warn().Err(res.Err).Str("user", user.UUID).Msg("email otp dispatch failed")
	}

	pendingToken, err := s.tokens.IssuePending(user.UUID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &user.UUID, domain.AuditLoginAttempt, map[string]any{"status": "MFA_INITIATED"})

	return &domain.LoginChallenge{
		RequireMfa:   true,
		PendingToken: pendingToken,
	}, nil
}

// VerifySecondFactor is step two. Factors arrive in legacy precedence order
// (sms, email, authenticator); the first one that validates wins. Failed
// attempts leave the stored codes untouched, so a still-valid code can be
// retried until it expires.
func (s *authService) VerifySecondFactor(ctx context.Context, pendingToken string, factors []domain.SecondFactor) (*domain.AuthenticatedUser, error) {
	claims, err := s.tokens.Verify(pendingToken)
	if err != nil || !claims.Pending {
		return nil, domain.ErrPendingTokenInvalid
	}

	user, err := s.users.GetUserByUUID(ctx, claims.UserUUID)
	if err != nil {
		return nil, domain.ErrPendingTokenInvalid
	}

	method, ok := s.resolveFactor(user, factors)
	if !ok {
		return nil, domain.ErrInvalidVerificationCode
	}

	// Terminal state change of the flow: both code pairs cleared, the
	// confirmed flag ratcheted, whichever channel won.
	if err := s.users.CompleteSecondFactor(ctx, user.UUID); err != nil {
		return nil, err
	}

	sessionToken, err := s.tokens.IssueSession(user.UUID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &user.UUID, domain.AuditLoginSuccess, map[string]any{"method": string(method)})

	return &domain.AuthenticatedUser{
		UUID:  user.UUID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: sessionToken,
	}, nil
}

func (s *authService) resolveFactor(user *domain.User, factors []domain.SecondFactor) (domain.Channel, bool) {
	now := time.Now()

	for _, f := range factors {
		if f.Code != "" && s.bypass.Matches(f.Code) {
			return f.Channel, true
		}
	}

	for _, f := range factors {
		if f.Code == "" {
			continue
		}
		switch f.Channel {
		case domain.ChannelSMS:
			if user.SmsCode != nil && *user.SmsCode == f.Code &&
				user.SmsCodeExpiresAt != nil && user.SmsCodeExpiresAt.After(now) {
				return domain.ChannelSMS, true
			}
		case domain.ChannelEmail:
			if user.EmailCode != nil && *user.EmailCode == f.Code &&
				user.EmailCodeExpiresAt != nil && user.EmailCodeExpiresAt.After(now) {
				return domain.ChannelEmail, true
			}
		case domain.ChannelAuthenticator:
			if user.TotpSecret != "" && utils.ValidateTOTP(user.TotpSecret, f.Code, now) {
				return domain.ChannelAuthenticator, true
			}
		}
	}

	return "", false
}

// AuthenticatorSetup exposes the stored secret for enrollment. It is only
// reachable with a full session token and never regenerates the secret; that
// happens once, at user creation.
func (s *authService) AuthenticatorSetup(ctx context.Context, uuid string) (*domain.AuthenticatorProvisioning, error) {
	user, err := s.users.GetUserByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if user.TotpSecret == "" {
		return nil, domain.ErrAuthenticatorNotProvisioned
	}

	return &domain.AuthenticatorProvisioning{
		ProvisioningURI: utils.TOTPProvisioningURI(user.TotpSecret, user.Email),
		Secret:          user.TotpSecret,
		SetupComplete:   user.TotpConfirmed,
	}, nil
}

func (s *authService) Me(ctx context.Context, uuid string) (*domain.User, error) {
	return s.users.GetUserByUUID(ctx, uuid)
}

func (s *authService) GetTokenManager() *utils.TokenManager {
	return s.tokens
}

// DevBypassFromEnv builds the bypass policy for non-production runs. In
// production it is always disabled, whatever the env says.
func DevBypassFromEnv(appEnv, code string) domain.DevBypassPolicy {
	if appEnv == "production" || code == "" {
		return domain.DevBypassPolicy{}
	}
	return domain.DevBypassPolicy{Enabled: true, Code: code}
}
