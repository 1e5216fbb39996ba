// Package mail provides SMTP email delivery for notification events.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

// Config holds email service configuration
type Config struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	BaseURL      string
}

// LoadConfig loads email configuration from environment
func LoadConfig() *Config {
	return &Config{
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("SMTP_FROM_EMAIL", "noreply@khojpayo.com"),
		FromName:     getEnv("SMTP_FROM_NAME", "KhojPayo"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Configured reports whether SMTP credentials are present
func (c *Config) Configured() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != ""
}

var notificationTemplate = template.Must(template.New("notification").Parse(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>{{.Title}}</h2>
	<p>{{.Body}}</p>
	<p><a href="{{.Link}}">Open KhojPayo</a></p>
	<hr>
	<p style="color: #888; font-size: 12px;">You are receiving this because of activity on your KhojPayo account.</p>
</body>
</html>
`))

type notificationEmailData struct {
	Title string
	Body  string
	Link  string
}

// SendNotificationEmail delivers a notification by email. When SMTP is not
// configured the message is printed to the log instead.
func SendNotificationEmail(config *Config, to, title, body string) error {
	if !config.Configured() {
		fmt.Printf(`
════════════════════════════════════════════════════════════════
📧 EMAIL NOT CONFIGURED - NOTIFICATION
════════════════════════════════════════════════════════════════

To:      %s
Subject: %s

%s

════════════════════════════════════════════════════════════════
`, to, title, body)
		return nil
	}

	data := notificationEmailData{
		Title: title,
		Body:  body,
		Link:  config.BaseURL,
	}

	var rendered bytes.Buffer
	if err := notificationTemplate.Execute(&rendered, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return sendEmail(config, to, title, rendered.String())
}

func sendEmail(config *Config, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		config.FromName, config.FromEmail, to, subject, htmlBody)

	addr := config.SMTPHost + ":" + config.SMTPPort
	return smtp.SendMail(addr, auth, config.FromEmail, []string{to}, []byte(msg))
}
