package notify

import (
	"fmt"
	"sync"

	"upkeep/internal/api/models"
	"upkeep/internal/api/websocket"
)

// PushChannel delivers in-app notifications through the websocket hub.
type PushChannel struct {
	hub *websocket.Hub

	probe     sync.Once
	available bool
}

func NewPushChannel(hub *websocket.Hub) *PushChannel {
	return &PushChannel{hub: hub}
}

func (slf *PushChannel) Name() string { return "push" }

func (slf *PushChannel) Available() bool {
	slf.probe.Do(func() {
		slf.available = slf.hub != nil
	})
	return slf.available
}

func (slf *PushChannel) Enabled(prefs models.NotificationPrefs) bool {
	return prefs.PushEnabled
}

func (slf *PushChannel) Send(user models.User, n Notification) error {
	return slf.enqueue(websocket.Message{
		Type:               websocket.MessageAlert,
		UserID:             user.ID,
		Title:              n.Title,
		Body:               n.Body,
		Priority:           string(n.Priority),
		Tag:                n.Tag,
		RequireInteraction: n.RequireInteraction,
	})
}

func (slf *PushChannel) SendBroadcast(n Notification) error {
	return slf.enqueue(websocket.Message{
		Type:               websocket.MessageAlert,
		Title:              n.Title,
		Body:               n.Body,
		Priority:           string(n.Priority),
		Tag:                n.Tag,
		RequireInteraction: n.RequireInteraction,
	})
}

func (slf *PushChannel) enqueue(msg websocket.Message) error {
	select {
	case slf.hub.Broadcast <- msg:
		return nil
	default:
		return fmt.Errorf("push queue full")
	}
}
