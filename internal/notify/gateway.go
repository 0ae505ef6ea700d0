// Package notify delivers alerts to humans over independent channels:
// in-app push, e-mail and SMS. Delivery is best-effort and non-blocking;
// the caller never learns or cares whether a channel succeeded.
package notify

import (
	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
)

// Notification is one alert to deliver. Tag is the dedup tag (the job ID)
// that receiving surfaces use to collapse repeats.
type Notification struct {
	Title              string
	Body               string
	Priority           models.JobPriority
	Tag                string
	RequireInteraction bool
}

// Channel is one delivery mechanism. Available is a one-shot capability
// probe: implementations must memoize it, never re-check per call.
type Channel interface {
	Name() string
	Available() bool
	Enabled(prefs models.NotificationPrefs) bool
	Send(user models.User, n Notification) error
}

// UserDirectory resolves a user ID to the contact details channels need.
type UserDirectory interface {
	FindByID(id string) (models.User, error)
}

// PrefStore reads per-user channel preferences from the local cache.
type PrefStore interface {
	ReadPreferences(userID string) (models.NotificationPrefs, bool)
}

type Gateway struct {
	users    UserDirectory
	prefs    PrefStore
	channels []Channel
	logger   zerolog.Logger
}

func NewGateway(users UserDirectory, prefs PrefStore, logger zerolog.Logger, channels ...Channel) *Gateway {
	return &Gateway{
		users:    users,
		prefs:    prefs,
		channels: channels,
		logger:   logger,
	}
}

// Notify delivers n to one user over every enabled, available channel.
// It returns immediately; channels run concurrently with each other and
// a failing channel never blocks the rest.
func (slf *Gateway) Notify(userID string, n Notification) {
	prefs, ok := slf.prefs.ReadPreferences(userID)
	if !ok {
		prefs = models.DefaultNotificationPrefs()
	}

	if prefs.HighPriorityOnly && n.Priority != models.JobPriorityHigh {
		slf.logger.Debug().Str("userId", userID).Str("tag", n.Tag).Msg("Dropped by highPriorityOnly preference")
		return
	}

	user, err := slf.users.FindByID(userID)
	if err != nil {
		// Still usable by the push channel, which only needs the ID
		slf.logger.Warn().Err(err).Str("userId", userID).Msg("Could not resolve notification recipient")
		user = models.User{ID: userID}
	}

	for _, ch := range slf.channels {
		if !ch.Available() || !ch.Enabled(prefs) {
			continue
		}
		go slf.deliver(ch, user, n)
	}
}

// Broadcast pushes n to every connected client, in-app only. Used for
// alerts that have no owner yet (e.g. an unassigned high priority intake).
func (slf *Gateway) Broadcast(n Notification) {
	for _, ch := range slf.channels {
		b, ok := ch.(Broadcaster)
		if !ok || !ch.Available() {
			continue
		}
		if err := b.SendBroadcast(n); err != nil {
			slf.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Broadcast delivery failed")
		}
	}
}

// Broadcaster is implemented by channels that can address everyone at once.
type Broadcaster interface {
	SendBroadcast(n Notification) error
}

func (slf *Gateway) deliver(ch Channel, user models.User, n Notification) {
	if err := ch.Send(user, n); err != nil {
		slf.logger.Warn().
			Err(err).
			Str("channel", ch.Name()).
			Str("userId", user.ID).
			Str("tag", n.Tag).
			Msg("Notification delivery failed")
		return
	}
	slf.logger.Debug().
		Str("channel", ch.Name()).
		Str("userId", user.ID).
		Str("tag", n.Tag).
		Msg("Notification delivered")
}
