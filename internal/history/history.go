// Package history keeps a durable log of what navigation sessions did:
// pages loaded, links followed and sync toggles.
package history

import "time"

// Action describes what a session did.
type Action string

const (
	ActionLoad       Action = "load"
	ActionHashChange Action = "hashchange"
	ActionFollow     Action = "follow"
	ActionSyncOn     Action = "sync_on"
	ActionSyncOff    Action = "sync_off"
)

// Entry is a single history record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Action    Action    `json:"action"`
	Location  string    `json:"location"`           // page#anchor as reported by the viewer
	Selected  []int     `json:"selected,omitempty"` // breadcrumb of the selected row afterwards
	Detail    string    `json:"detail,omitempty"`
}
