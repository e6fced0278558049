package model

import "time"

// AuditLogEntry is one immutable record of a mutating action.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditLogView is an entry decorated with the actor's display name.
type AuditLogView struct {
	AuditLogEntry
	Username string `json:"username"`
}
