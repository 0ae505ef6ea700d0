package notify

import (
	"fmt"
	"sync"

	gomail "github.com/wneessen/go-mail"

	"upkeep/internal/api/models"
)

// SMTPConfig carries the app-level SMTP settings from .env.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// EmailChannel delivers notifications over SMTP.
type EmailChannel struct {
	cfg SMTPConfig

	probe     sync.Once
	available bool
}

func NewEmailChannel(cfg SMTPConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (slf *EmailChannel) Name() string { return "email" }

func (slf *EmailChannel) Available() bool {
	slf.probe.Do(func() {
		slf.available = slf.cfg.Host != "" && slf.cfg.Username != ""
	})
	return slf.available
}

func (slf *EmailChannel) Enabled(prefs models.NotificationPrefs) bool {
	return prefs.EmailEnabled
}

func (slf *EmailChannel) Send(user models.User, n Notification) error {
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", user.ID)
	}

	from := slf.cfg.From
	if from == "" {
		from = slf.cfg.Username
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return fmt.Errorf("failed to set from: %w", err)
	}
	if err := m.To(user.Email); err != nil {
		return fmt.Errorf("failed to set to: %w", err)
	}
	m.Subject(fmt.Sprintf("[Upkeep] %s", n.Title))
	m.SetBodyString(gomail.TypeTextPlain, n.Body)

	tlsPolicy := gomail.TLSOpportunistic
	if slf.cfg.UseTLS {
		tlsPolicy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(slf.cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if slf.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(slf.cfg.Username),
			gomail.WithPassword(slf.cfg.Password),
		)
	}
	client, err := gomail.NewClient(slf.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
