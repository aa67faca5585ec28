package utils

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPIssuer is the label authenticator apps show next to the account.
const TOTPIssuer = "VITAM CMS"

// GenerateTOTPSecret creates a fresh base32 secret for a user. Called once,
// when the user record is created; the login flow only ever reads it.
func GenerateTOTPSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: email,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), nil
}

// TOTPProvisioningURI rebuilds the otpauth URL for a stored secret. It is
// deterministic, so the setup endpoint returns the same URI on every call.
func TOTPProvisioningURI(secret, email string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", TOTPIssuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", "6")
	q.Set("period", "30")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + TOTPIssuer + ":" + email,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ValidateTOTP checks a 6-digit code against a secret at the given time,
// accepting the previous, current and next 30-second step. Pure and
// stateless; safe under any number of concurrent verifications.
func ValidateTOTP(secret, code string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
