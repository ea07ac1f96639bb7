package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crisis-service/internal/config"
	"crisis-service/internal/models"
)

type smsConfig struct {
	PhoneNumber string `json:"phone_number"`
}

// SendSMS sends a dispatch Task as an SMS through the Twilio REST API.
func SendSMS(ctx context.Context, task models.Task, cp models.ContactPoint, cfg config.Config) error {
	configBytes, err := json.Marshal(cp.Configuration)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for contact point %s: %w", cp.ID, err)
	}
	var sConfig smsConfig
	if err := json.Unmarshal(configBytes, &sConfig); err != nil {
		return fmt.Errorf("failed to parse SMS configuration for contact point %s: %w", cp.ID, err)
	}
	if sConfig.PhoneNumber == "" {
		return fmt.Errorf("phone_number not set in configuration for contact point %s", cp.ID)
	}

	accountSID := cfg.SMS.AccountSID
	authToken := cfg.SMS.AuthToken
	fromNumber := cfg.SMS.FromNumber
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("missing SMS configuration: AccountSID, AuthToken, or FromNumber is empty")
	}

	urlStr := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", accountSID)
	msgData := url.Values{}
	msgData.Set("To", sConfig.PhoneNumber)
	msgData.Set("From", fromNumber)
	msgData.Set("Body", fmt.Sprintf("[%s] %s: %s", task.Severity, task.Subject, task.Body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(msgData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", sConfig.PhoneNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio API returned %d for %s", resp.StatusCode, sConfig.PhoneNumber)
	}
	return nil
}
