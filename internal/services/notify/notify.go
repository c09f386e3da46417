package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EmailService handles sending transactional emails
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
}

// NewEmailService creates a new email service
func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:     os.Getenv("SMTP_HOST"),
		smtpPort:     os.Getenv("SMTP_PORT"),
		smtpUsername: os.Getenv("SMTP_USERNAME"),
		smtpPassword: os.Getenv("SMTP_PASSWORD"),
		fromEmail:    os.Getenv("FROM_EMAIL"),
	}
}

// SendReviewerNotification tells the review team a submission needs attention
func (s *EmailService) SendReviewerNotification(toEmails []string, title string, version int, versionNotes string) error {
	subject := fmt.Sprintf("Reward submission awaiting review: %s", title)
	reviewLink := fmt.Sprintf("%s/admin/submissions", os.Getenv("FRONTEND_URL"))

	intro := "A new reward submission is waiting for review."
	notesBlock := ""
	if version > 1 {
		intro = fmt.Sprintf("Version %d of a reward submission is waiting for review.", version)
		notesBlock = fmt.Sprintf("<p><strong>What changed:</strong> %s</p>", versionNotes)
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Arial, sans-serif; line-height: 1.6; }
			.container { max-width: 600px; margin: 0 auto; padding: 20px; }
			.header { background-color: #1B2430; color: white; padding: 10px; text-align: center; }
			.content { padding: 20px; }
			.button { display: inline-block; background-color: #1B2430; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Crescendo</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				<p>%s</p>
				%s
				<p><a href="%s" class="button">Open Review Queue</a></p>
			</div>
		</div>
	</body>
	</html>
	`, title, intro, notesBlock, reviewLink)

	return s.sendEmail(toEmails, subject, body)
}

// SendDecisionEmail tells a contributor their submission was approved or
// rejected. reason is only rendered for rejections.
func (s *EmailService) SendDecisionEmail(toEmail, title, status, reason string) error {
	var subject, message string
	switch status {
	case "approved":
		subject = fmt.Sprintf("Your reward \"%s\" was approved", title)
		message = "<p>Great news! Your reward submission was approved and is now live in the catalog.</p>"
	case "rejected":
		subject = fmt.Sprintf("Your reward \"%s\" needs changes", title)
		message = fmt.Sprintf(`<p>Your reward submission was not approved this time.</p>
				<p><strong>Reason:</strong> %s</p>
				<p>You can resubmit with a description of what you changed.</p>`, reason)
	default:
		return fmt.Errorf("no decision template for status %q", status)
	}

	dashboardLink := fmt.Sprintf("%s/submissions", os.Getenv("FRONTEND_URL"))

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Arial, sans-serif; line-height: 1.6; }
			.container { max-width: 600px; margin: 0 auto; padding: 20px; }
			.header { background-color: #1B2430; color: white; padding: 10px; text-align: center; }
			.content { padding: 20px; }
			.button { display: inline-block; background-color: #1B2430; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Crescendo</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
				<p><a href="%s" class="button">View My Submissions</a></p>
				<p>Best regards,<br>The Crescendo Team</p>
			</div>
		</div>
	</body>
	</html>
	`, title, message, dashboardLink)

	return s.sendEmail([]string{toEmail}, subject, body)
}

// sendEmail sends an email with HTML content
func (s *EmailService) sendEmail(toEmails []string, subject, htmlBody string) error {
	if s.smtpHost == "" || s.smtpPort == "" || s.smtpUsername == "" || s.smtpPassword == "" {
		log.Println("Email service not configured properly. Check environment variables.")
		return fmt.Errorf("email service not configured")
	}

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	from := fmt.Sprintf("From: Crescendo <%s>\n", s.fromEmail)
	to := fmt.Sprintf("To: %s\n", strings.Join(toEmails, ", "))
	subject = fmt.Sprintf("Subject: %s\n", subject)

	message := []byte(from + to + subject + mime + htmlBody)

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)

	return smtp.SendMail(addr, auth, s.fromEmail, toEmails, message)
}
