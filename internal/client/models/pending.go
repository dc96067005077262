package models

import "time"

// PendingWrite is a create request recorded while the backend was
// unreachable. Seq orders the queue; LocalID identifies the write across
// restarts until the server assigns a real id.
type PendingWrite struct {
	Seq       int64
	LocalID   string
	Payload   DeveloperInput
	CreatedAt time.Time
}

// Placeholder is the record shown in the list until the write is synced.
func (p PendingWrite) Placeholder() Developer {
	return p.Payload.WithID(-p.Seq)
}
