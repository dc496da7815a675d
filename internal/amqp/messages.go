package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

var ErrIncompleteEvent = errors.New("activity event is missing required fields")

// ActivityMessage carries one activity event from the API to the worker.
type ActivityMessage struct {
	Event       core.ActivityEvent `json:"event"`
	PublishedAt time.Time          `json:"publishedAt"`
}

func NewActivityMessage(ev core.ActivityEvent) *ActivityMessage {
	return &ActivityMessage{
		Event:       ev,
		PublishedAt: time.Now(),
	}
}

func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON decodes a message and rejects events the worker
// could not store.
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	ev := msg.Event
	if ev.UserID == "" || ev.Action == "" || ev.EntityType == "" {
		return nil, fmt.Errorf("%w: %+v", ErrIncompleteEvent, ev)
	}
	return &msg, nil
}
