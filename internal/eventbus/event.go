package eventbus

import "time"

type EventType string

const (
	EventSessionConnected    EventType = "session.connected"
	EventSessionDisconnected EventType = "session.disconnected"
	EventAccountChanged      EventType = "session.account_changed"
	EventChainChanged        EventType = "session.chain_changed"
	EventTabSelected         EventType = "session.tab_selected"
	EventTasksRefreshed      EventType = "tasks.refreshed"
	EventTxSubmitted         EventType = "tx.submitted"
	EventTxConfirmed         EventType = "tx.confirmed"
	EventNotification        EventType = "notification"
)

// Severity of a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ResourceID string            `json:"resource_id,omitempty"`
	Payload    string            `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Severity reads the severity of a notification event.
func (e *Event) Severity() Severity {
	return Severity(e.Metadata["severity"])
}
