package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// PendingTokenTTL bounds the whole second-factor window: OTP retries
	// after this force a fresh login.
	PendingTokenTTL = 10 * time.Minute
	SessionTokenTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken is the only failure Verify reports. Signature mismatch,
// malformed payload and expiry all collapse into it.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the decoded payload of either token kind. Pending marks a
// step-one credential that no protected endpoint accepts.
type TokenClaims struct {
	UserUUID string
	Pending  bool
}

// TokenManager signs and verifies the two token kinds of the login flow:
// the short-lived pending token minted after a password check, and the
// session token minted after second-factor verification. Both are
// self-contained HS256 JWTs; there is no revocation list.
type TokenManager struct {
	secretKey []byte
}

func NewTokenManager(secretKey string) *TokenManager {
	return &TokenManager{secretKey: []byte(secretKey)}
}

func (m *TokenManager) IssuePending(userUUID string) (string, error) {
	return m.sign(userUUID, true, PendingTokenTTL)
}

func (m *TokenManager) IssueSession(userUUID string) (string, error) {
	return m.sign(userUUID, false, SessionTokenTTL)
}

func (m *TokenManager) sign(userUUID string, pending bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userUUID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if pending {
		claims["mfa_pending"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify fails closed: anything short of a well-formed, correctly signed,
// unexpired token yields ErrInvalidToken with no partial claims.
func (m *TokenManager) Verify(tokenStr string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	pending, _ := claims["mfa_pending"].(bool)
	return &TokenClaims{UserUUID: sub, Pending: pending}, nil
}
