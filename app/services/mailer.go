package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/models"
)

// SendMail delivers one HTML mail over SMTP. Failures are logged, never
// surfaced; notification mail must not break the triggering request.
func SendMail(smtpConfig config.SMTPConfig, to, subject, htmlBody string) {
	if smtpConfig.Username == "" || smtpConfig.From == "" {
		log.Printf("SMTP is not configured, skipping mail to %s", to)
		return
	}

	headers := []string{
		"From: " + smtpConfig.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	addr := fmt.Sprintf("%s:%d", smtpConfig.Host, smtpConfig.Port)
	auth := smtp.PlainAuth("", smtpConfig.Username, smtpConfig.Password, smtpConfig.Host)

	if err := smtp.SendMail(addr, auth, smtpConfig.From, []string{to}, []byte(message)); err != nil {
		log.Printf("Unable to send mail to %s: %v", to, err)
		return
	}
	log.Printf("Successfully sent mail to %s", to)
}

func websiteRootURI() string {
	if uri := os.Getenv("WEBSITE_ROOT_URI"); uri != "" {
		return uri
	}
	return "http://localhost:8080"
}

// RegistrationMail is the notification carrying the verification code.
func RegistrationMail(user *models.User, registration *models.Registration) string {
	return fmt.Sprintf(`<h1>Registration success</h1>
		<p>You "%s (%s)" just registered as "%s" for contest of %d year.</p>
		<p>Below is your verification code for this registration.</p>
		<br>
		<p><strong>Verification Code:</strong> %s</p>
		<br>
		<p>You can change your password for practice session before the end of registration phase.</p>
		<p>And please keep following <a href="%s">PCSHOI Site</a> to get latest informations.</p>
		<br>
		<p>Best regards,<br>
		PCSHOI Site</p>`,
		user.Nickname, user.Username, user.Realname, registration.RegisterYear,
		registration.VerificationCode, websiteRootURI())
}

// ResetPasswordMail carries the one-hour reset link.
func ResetPasswordMail(user *models.User, token string) string {
	resetLink := fmt.Sprintf("%s/forgotpwd/resetpwd?token=%s", websiteRootURI(), token)
	return fmt.Sprintf(`<h1>Reset password</h1>
		<p>You "%s (%s)" just requested to reset your password for <a href="%s" target="_blank">PCSHOI Site</a>.</p>
		<p>If you never sent the request, please ignore this mail.</p>
		<p>Please use the following link to reset your password. If you request a new link, the old link will expire.</p>
		<p><strong><font color="red">This link will expire in 1 hour.</font></strong></p>
		<p>Reset password link: <a href="%s">%s</a></p>
		<br>
		<p>Best regards,<br>
		PCSHOI Site</p>`,
		user.Nickname, user.Username, websiteRootURI(), resetLink, resetLink)
}
