package utils

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog/log"
)

// EmailOTPSender delivers login codes over SMTP. When the SMTP host is not
// configured (local development), it logs the code instead of sending.
type EmailOTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewEmailOTPSenderFromEnv() *EmailOTPSender {
	return &EmailOTPSender{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (s *EmailOTPSender) Send(ctx context.Context, to, code string) DispatchResult {
	subject := "VITAM CMS - Login Verification Code"
	body := fmt.Sprintf("Your VITAM CMS login OTP is: %s. Valid for 10 minutes. Do not share this code.", code)

	if s.host == "" {
		log.Info().Str("to", to).Msg("[MOCK EMAIL] OTP logged instead of sent")
		return DispatchResult{Sent: true}
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	msg := []byte(
		"From: " + s.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body + "\r\n")

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return DispatchResult{Err: fmt.Errorf("send otp email: %w", err)}
	}
	return DispatchResult{Sent: true}
}
