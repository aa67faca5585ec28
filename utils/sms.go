package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// SMSOTPSender posts login codes to an SMS gateway over its REST API. When
// no gateway URL is configured it logs the code instead, mirroring the
// mailer's development behavior.
type SMSOTPSender struct {
	gatewayURL string
	authToken  string
	sender     string
	client     *http.Client
}

func NewSMSOTPSenderFromEnv() *SMSOTPSender {
	return &SMSOTPSender{
		gatewayURL: os.Getenv("SMS_GATEWAY_URL"),
		authToken:  os.Getenv("SMS_GATEWAY_TOKEN"),
		sender:     os.Getenv("SMS_SENDER_ID"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type smsPayload struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Body string `json:"body"`
}

func (s *SMSOTPSender) Send(ctx context.Context, to, code string) DispatchResult {
	if s.gatewayURL == "" {
		log.Info().Str("to", to).Msg("[MOCK SMS] OTP logged instead of sent")
		return DispatchResult{Sent: true}
	}

	body, err := json.Marshal(smsPayload{
		To:   to,
		From: s.sender,
		Body: fmt.Sprintf("Your VITAM CMS login OTP is: %s. Valid for 10 minutes. Do not share this code.", code),
	})
	if err != nil {
		return DispatchResult{Err: fmt.Errorf("encode sms payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return DispatchResult{Err: fmt.Errorf("build sms request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return DispatchResult{Err: fmt.Errorf("send otp sms: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return DispatchResult{Err: fmt.Errorf("sms gateway returned %s", resp.Status)}
	}
	return DispatchResult{Sent: true}
}
