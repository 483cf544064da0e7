package pushnotification

import (
	"context"
	"log/slog"

	"github.com/kazz187/taskbounty/internal/eventbus"
)

// Dispatcher forwards session notifications to push subscribers.
type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.EventNotification {
				d.sender.SendToAll(ctx, payloadFor(event))
			}
		}
	}
}

func payloadFor(event *eventbus.Event) *NotificationPayload {
	title := "TaskBounty"
	switch event.Severity() {
	case eventbus.SeverityError:
		title = "TaskBounty: action failed"
	case eventbus.SeverityWarning:
		title = "TaskBounty: check input"
	case eventbus.SeveritySuccess:
		title = "TaskBounty: done"
	}
	p := &NotificationPayload{
		Title: title,
		Body:  event.Payload,
		Tag:   event.ID,
	}
	if event.ResourceID != "" {
		p.URL = "/tasks/" + event.ResourceID
	}
	return p
}
