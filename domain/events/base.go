package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// SourceScanner is the event bus source of every event this service emits.
const SourceScanner = "metadata.scanner"

const (
	EventTypeScanCompleted = "metadata.scan.completed"
	EventTypeScanFailed    = "metadata.scan.failed"
)

// ScanCompleted is raised when a scan run has persisted its slices.
type ScanCompleted struct {
	BaseEvent
	RunID        string         `json:"run_id"`
	AppID        string         `json:"app_id"`
	ProjectID    string         `json:"project_id"`
	Slices       map[string]int `json:"slices"`
	Placeholders int            `json:"placeholders"`
	DurationMs   int64          `json:"duration_ms"`
}

// NewScanCompleted creates a ScanCompleted event
func NewScanCompleted(runID, projectID, appID string, slices map[string]int, placeholders int, duration time.Duration, timestamp time.Time) ScanCompleted {
	return ScanCompleted{
		BaseEvent: BaseEvent{
			AggregateID: appID,
			EventType:   EventTypeScanCompleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		RunID:        runID,
		AppID:        appID,
		ProjectID:    projectID,
		Slices:       slices,
		Placeholders: placeholders,
		DurationMs:   duration.Milliseconds(),
	}
}

// ScanFailed is raised when a scan run aborts.
type ScanFailed struct {
	BaseEvent
	RunID     string `json:"run_id"`
	AppID     string `json:"app_id"`
	ProjectID string `json:"project_id"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

// NewScanFailed creates a ScanFailed event
func NewScanFailed(runID, projectID, appID, stage string, cause error, timestamp time.Time) ScanFailed {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return ScanFailed{
		BaseEvent: BaseEvent{
			AggregateID: appID,
			EventType:   EventTypeScanFailed,
			Timestamp:   timestamp,
			Version:     1,
		},
		RunID:     runID,
		AppID:     appID,
		ProjectID: projectID,
		Stage:     stage,
		Reason:    reason,
	}
}
