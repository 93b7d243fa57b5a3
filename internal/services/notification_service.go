// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/sealtrace/sealtrace-backend/internal/config"
)

// NotificationSink is the outbound-email surface the rest of the service
// depends on. Deliveries are advisory: callers log failures and move on, a
// notification never fails the request that triggered it.
type NotificationSink interface {
	Send(templateID string, recipient string, fields map[string]interface{}) error
}

type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config: config,
	}
}

func (s *NotificationService) Send(templateID string, recipient string, fields map[string]interface{}) error {
	tmpl, exists := emailTemplates[templateID]
	if !exists {
		return fmt.Errorf("unknown email template: %s", templateID)
	}

	subject, err := s.renderTemplate(tmpl.Subject, fields)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}

	body, err := s.renderTemplate(tmpl.Body, fields)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		to, s.config.Email.FromName, s.config.Email.FromEmail, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

var emailTemplates = map[string]EmailTemplate{
	"welcome": {
		Subject: "Welcome to SealTrace",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Username}}!</h2>
	<p>Thank you for joining SealTrace. Please verify your email address by clicking the link below:</p>
	<a href="{{.VerificationURL}}">Verify Email</a>
	<p>Best regards,<br>The SealTrace Team</p>
</body>
</html>`,
	},
	"password_reset": {
		Subject: "Password Reset Request",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Password Reset</h2>
	<p>Hello {{.Username}},</p>
	<p>We received a request to reset your password. Click the link below to choose a new one. The link expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>If you did not request this, you can safely ignore this email.</p>
	<p>Best regards,<br>The SealTrace Team</p>
</body>
</html>`,
	},
	"counterfeit_alert": {
		Subject: "Counterfeit Alert - {{.ProductName}}",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Possible Counterfeit Detected</h2>
	<p>Hello {{.ManufacturerName}},</p>
	<p>A verification attempt for your product "{{.ProductName}}" ({{.ProductID}}) failed the credential check.
	Someone may be circulating counterfeit copies of this product.</p>
	{{if .Location}}<p>Reported scan location: {{.Location}}</p>{{end}}
	<p>Best regards,<br>The SealTrace Team</p>
</body>
</html>`,
	},
	"product_recalled": {
		Subject: "Product Recall Confirmation - {{.ProductName}}",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Recall Recorded</h2>
	<p>Hello {{.ManufacturerName}},</p>
	<p>Your product "{{.ProductName}}" ({{.ProductID}}) has been marked as recalled.
	All future verification scans will report it as recalled.</p>
	<p>Best regards,<br>The SealTrace Team</p>
</body>
</html>`,
	},
	"user_status_change": {
		Subject: "Account Status Update",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Account Status Update</h2>
	<p>Hello {{.Username}},</p>
	<p>Your account status has changed from {{.OldStatus}} to {{.NewStatus}}.</p>
	{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
	<p>Best regards,<br>The SealTrace Team</p>
</body>
</html>`,
	},
}
