package models

import "time"

// EventSeverity ranks an installer event
type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "info"
	EventSeverityWarning  EventSeverity = "warning"
	EventSeverityError    EventSeverity = "error"
	EventSeverityCritical EventSeverity = "critical"
)

// Event is an entry of a cluster's or host's event log
type Event struct {
	ClusterID string        `json:"cluster_id"`
	HostID    string        `json:"host_id,omitempty"`
	Severity  EventSeverity `json:"severity"`
	Message   string        `json:"message"`
	EventTime time.Time     `json:"event_time"`
	RequestID string        `json:"request_id,omitempty"`
}
