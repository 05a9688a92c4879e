package service

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ResetMailer delivers a password reset link out of band. Failures are
// an operator concern, never something the reset requester gets to see
type ResetMailer interface {
	SendResetMail(sendTo, resetURL string) error
}

// NewMailerFromConfig returns the SMTP mailer when mail delivery is
// configured and the log-only fallback otherwise
func NewMailerFromConfig() ResetMailer {
	if viper.GetString("mail.host") == "" {
		return &LogMailer{}
	}

	return &SMTPMailer{
		Host:     viper.GetString("mail.host"),
		Port:     viper.GetInt("mail.port"),
		Sender:   viper.GetString("mail.sender_address"),
		Password: viper.GetString("mail.password"),
	}
}

type SMTPMailer struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

func (s *SMTPMailer) SendResetMail(sendTo, resetURL string) error {
	if sendTo == s.Sender {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()

	m.SetHeader("From", fmt.Sprintf("TodoApp <%s>", s.Sender))
	m.SetHeader("To", sendTo)
	m.SetHeader("Subject", "Password Reset Request - TodoApp")
	m.SetBody("text/html", fmt.Sprintf(
		"You requested to reset your password for your TodoApp account.<br><br>"+
			"Click <a href='%v'>here</a> to reset your password.<br><br>"+
			"This link will expire in 1 hour. If you didn't request this, please ignore this email.", resetURL))

	d := gomail.NewDialer(s.Host, s.Port, s.Sender, s.Password)

	return d.DialAndSend(m)
}

// LogMailer writes the reset link to the log instead of sending it.
// Used when no mail settings are configured, e.g. local development
type LogMailer struct{}

func (l *LogMailer) SendResetMail(sendTo, resetURL string) error {
	zap.L().Info("Password reset requested (mail delivery not configured)",
		zap.String("email", sendTo),
		zap.String("reset_url", resetURL),
	)

	return nil
}
