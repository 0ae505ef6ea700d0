// Package bus is the process-wide signal channel between the sync engine,
// the monitor and the mutation path. It wraps NATS with typed subjects so
// every producer and consumer is discoverable, instead of ambient events.
package bus

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
)

const (
	// SubjectJobsChanged is the coarse "something changed, reconcile" signal
	// emitted after every successful mutation.
	SubjectJobsChanged = "upkeep.jobs.changed"

	// subjectRowPattern carries row-level change notifications from the
	// repositories: upkeep.jobs.row.<insert|update>.
	subjectRowPattern = "upkeep.jobs.row.*"
	subjectRowFormat  = "upkeep.jobs.row.%s"
)

// RowChange is the payload of a row-level change notification.
type RowChange struct {
	Op  string     `json:"op"`
	Job models.Job `json:"job"`
}

type Bus struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

func Connect(url string, logger zerolog.Logger) (*Bus, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Bus{conn: nc, logger: logger}, nil
}

// Close drains the connection so queued publishes still go out.
func (slf *Bus) Close() {
	if err := slf.conn.Drain(); err != nil {
		slf.logger.Warn().Err(err).Msg("Error draining NATS connection")
	}
}

// PublishJobsChanged emits the generic reconcile signal. Fire-and-forget:
// subscribers registered after the publish simply miss it.
func (slf *Bus) PublishJobsChanged() {
	if err := slf.conn.Publish(SubjectJobsChanged, nil); err != nil {
		slf.logger.Warn().Err(err).Msg("Failed to publish jobs-changed signal")
	}
}

// PublishRowChange emits a row-level change notification with the affected job.
func (slf *Bus) PublishRowChange(op string, job models.Job) {
	payload, err := json.Marshal(RowChange{Op: op, Job: job})
	if err != nil {
		slf.logger.Warn().Err(err).Str("jobID", job.ID).Msg("Failed to marshal row change")
		return
	}
	subject := fmt.Sprintf(subjectRowFormat, op)
	if err := slf.conn.Publish(subject, payload); err != nil {
		slf.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish row change")
	}
}

// SubscribeJobsChanged registers fn for the coarse reconcile signal and
// returns a synchronous unsubscribe.
func (slf *Bus) SubscribeJobsChanged(fn func()) (func() error, error) {
	sub, err := slf.conn.Subscribe(SubjectJobsChanged, func(*nats.Msg) { fn() })
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %q: %w", SubjectJobsChanged, err)
	}
	return sub.Unsubscribe, nil
}

// SubscribeRowChanges registers fn for row-level change notifications and
// returns a synchronous unsubscribe. Malformed payloads are dropped.
func (slf *Bus) SubscribeRowChanges(fn func(op string, job models.Job)) (func() error, error) {
	sub, err := slf.conn.Subscribe(subjectRowPattern, func(msg *nats.Msg) {
		var change RowChange
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			slf.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Bad row change payload")
			return
		}
		fn(change.Op, change.Job)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %q: %w", subjectRowPattern, err)
	}
	return sub.Unsubscribe, nil
}
