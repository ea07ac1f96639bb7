package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"crisis-service/internal/config"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
)

type emailConfig struct {
	Email string `json:"email"`
}

// SendEmail sends a dispatch Task over SMTP to the contact point's address.
func SendEmail(ctx context.Context, task models.Task, cp models.ContactPoint, cfg config.Config, logger *logging.Logger) error {
	configBytes, err := json.Marshal(cp.Configuration)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for contact point %s: %w", cp.ID, err)
	}
	var eConfig emailConfig
	if err := json.Unmarshal(configBytes, &eConfig); err != nil {
		return fmt.Errorf("failed to parse Email configuration for contact point %s: %w", cp.ID, err)
	}
	if eConfig.Email == "" {
		return fmt.Errorf("email not set in configuration for contact point %s", cp.ID)
	}

	smtpServer := cfg.Email.SMTPServer
	smtpPort := cfg.Email.SMTPPort
	username := cfg.Email.Username
	password := cfg.Email.Password
	if smtpServer == "" || smtpPort == 0 || username == "" || password == "" {
		return fmt.Errorf("missing Email configuration: SMTPServer, SMTPPort, Username, or Password is empty")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("[%s] %s", task.Severity, task.Subject)
	message := fmt.Sprintf("Subject: %s\n\n%s\n\nAlert: %s\nSubject id: %s",
		subject, task.Body, task.AlertID, task.SubjectID)

	auth := smtp.PlainAuth("", username, password, smtpServer)
	to := []string{eConfig.Email}
	addr := fmt.Sprintf("%s:%d", smtpServer, smtpPort)

	if err := smtp.SendMail(addr, auth, username, to, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", eConfig.Email, err)
	}
	logger.Debugf("Email sent to %s for alert %s", eConfig.Email, task.AlertID)
	return nil
}
