package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Actions carried by EntityEvent.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// EntityEvent announces a committed workspace mutation. Consumers read the
// entity itself from the store if they need more than the id.
type EntityEvent struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntityEvent(kind, action, id string, version uint64) EntityEvent {
	return EntityEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

func (e EntityEvent) RoutingKey() string {
	return e.Kind + "." + e.Action
}

func (e EntityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntityEventFromJSON decodes and sanity-checks an event body.
func EntityEventFromJSON(data []byte) (EntityEvent, error) {
	var e EntityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return EntityEvent{}, err
	}
	if e.Kind == "" || e.Action == "" || e.ID == "" {
		return EntityEvent{}, fmt.Errorf("incomplete entity event: kind=%q action=%q id=%q", e.Kind, e.Action, e.ID)
	}
	return e, nil
}
