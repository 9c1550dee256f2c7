package storage

import (
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AuditEntry records one job outcome. Keep it compact and schema-stable.
type AuditEntry struct {
	At        time.Time `json:"at"`
	Job       string    `json:"job"`
	Cycle     string    `json:"cycle,omitempty"`
	Kind      string    `json:"kind"`
	ChatID    int64     `json:"chat_id,omitempty"`
	MessageID int       `json:"message_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
}
