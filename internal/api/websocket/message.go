package websocket

type MessageType string

const (
	// MessageAlert carries a notification to render in-app.
	MessageAlert MessageType = "alert"
	// MessageJobsChanged tells connected UIs to refetch their job list.
	MessageJobsChanged MessageType = "jobs.changed"
)

// Message is the envelope pushed to connected clients. UserID empty means
// broadcast to everyone. Tag is the dedup tag the client uses to collapse
// repeated alerts for the same job.
type Message struct {
	Type               MessageType `json:"type"`
	UserID             string      `json:"userId,omitempty"`
	Title              string      `json:"title,omitempty"`
	Body               string      `json:"body,omitempty"`
	Priority           string      `json:"priority,omitempty"`
	Tag                string      `json:"tag,omitempty"`
	RequireInteraction bool        `json:"requireInteraction,omitempty"`
}
