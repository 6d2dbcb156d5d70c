package alerts

import (
	"encoding/json"
	"time"

	"herdbook/internal/countdown"
)

// Message types
const (
	TypeWatch      = "watch"
	TypeUnwatch    = "unwatch"
	TypeHeartbeat  = "heartbeat"
	TypeConnection = "connection"
	TypeCountdown  = "countdown"
	TypeUnwatched  = "unwatched"
	TypeError      = "error"
)

// ClientMessage is a frame sent by a websocket client
type ClientMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Target string `json:"target,omitempty"`
}

// ServerMessage is a frame pushed to a websocket client
type ServerMessage struct {
	Type      string            `json:"type"`
	ID        string            `json:"id,omitempty"`
	ClientID  string            `json:"client_id,omitempty"`
	Status    *countdown.Status `json:"status,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func encode(msg ServerMessage, now time.Time) []byte {
	msg.Timestamp = now.Format(time.RFC3339)
	// ServerMessage holds only marshalable fields
	data, _ := json.Marshal(msg)
	return data
}
