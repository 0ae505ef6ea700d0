package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"

	"upkeep/internal/api/models"
)

// SMSChannel delivers notifications as transactional SMS through Brevo.
// Without an API key the channel reports unavailable and is silently
// skipped, which is the degraded mode for every local/dev setup.
type SMSChannel struct {
	client *brevo.APIClient
	sender string

	probe     sync.Once
	available bool
}

func NewSMSChannel(apiKey, sender string) *SMSChannel {
	ch := &SMSChannel{sender: sender}
	if apiKey != "" {
		cfg := brevo.NewConfiguration()
		cfg.AddDefaultHeader("api-key", apiKey)
		ch.client = brevo.NewAPIClient(cfg)
	}
	return ch
}

func (slf *SMSChannel) Name() string { return "sms" }

func (slf *SMSChannel) Available() bool {
	slf.probe.Do(func() {
		slf.available = slf.client != nil
	})
	return slf.available
}

func (slf *SMSChannel) Enabled(prefs models.NotificationPrefs) bool {
	return prefs.SMSEnabled
}

func (slf *SMSChannel) Send(user models.User, n Notification) error {
	if user.Phone == "" {
		return fmt.Errorf("user %s has no phone number", user.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := slf.client.TransactionalSMSApi.SendTransacSms(ctx, brevo.SendTransacSms{
		Sender:    slf.sender,
		Recipient: user.Phone,
		Content:   fmt.Sprintf("%s: %s", n.Title, n.Body),
		Type_:     "transactional",
		Tag:       n.Tag,
	})
	if err != nil {
		return fmt.Errorf("brevo send sms: %w", err)
	}
	return nil
}
