package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/alerting"
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
	"github.com/ISWebster1401/PlantCare--sub000/pkg/config"
)

// EmailNotifier sends email notifications for alert events
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

// SendAlertNotification sends an email for a published alert event
func (e *EmailNotifier) SendAlertNotification(event *alerting.Event) error {
	var marker string
	switch event.Severity {
	case telemetry.SeverityLow:
		marker = "⚠️"
	case telemetry.SeverityMedium:
		marker = "🚨"
	case telemetry.SeverityHigh:
		marker = "🔥"
	default:
		return fmt.Errorf("unknown alert severity: %s", event.Severity)
	}

	name := event.DeviceName
	if name == "" {
		name = event.DeviceID
	}

	subject := fmt.Sprintf("%s PlantCare Alert [%s] - %s", marker, strings.ToUpper(string(event.Severity)), name)
	body, err := e.renderAlertTemplate(event)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

func (e *EmailNotifier) renderAlertTemplate(event *alerting.Event) (string, error) {
	tmpl := `
PlantCare Alert
===============

Device: {{.DeviceName}} ({{.DeviceID}})
Severity: {{.Severity}}
Alert ID: {{.ID}}
Emitted: {{.EmittedAt}}

Description:
{{.Message}}

Suggested action:
{{.Action}}

The alert was raised from the device's latest soil reading. It will not
be re-sent for the same reading; a new reading that still breaches the
threshold raises a fresh alert.

---
PlantCare Notification System
`

	t, err := template.New("alert").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, event); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email:\nSubject: %s\n%s\n", subject, body)
		return nil
	}

	// Construct message
	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body

	// Setup authentication
	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	// Send email
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Email sent successfully: %s\n", subject)
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	// Try to connect
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	fmt.Println("SMTP connection test successful")
	return nil
}
