package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	TypeRecordCreated = "record_created"
	TypeRunFinished   = "run_finished"
	TypeSweepFinished = "sweep_finished"
)

type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Make renders an event as the JSON string the hub carries.
func Make(typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	b, _ := json.Marshal(Event{Type: typ, At: time.Now().UTC(), Data: raw})
	return string(b)
}
