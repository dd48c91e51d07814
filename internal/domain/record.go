package domain

import "time"

// Milestone names a notable conversation event worth recording.
type Milestone string

const (
	// MilestoneFlowStarted marks the first inbound message of a flow.
	MilestoneFlowStarted Milestone = "flow_started"

	// MilestoneDelivered marks a successfully delivered artifact.
	MilestoneDelivered Milestone = "delivered"

	// MilestoneRegenerated marks an accepted regeneration request.
	MilestoneRegenerated Milestone = "regenerated"

	// MilestoneCommandAnswered marks an answered post-delivery command.
	MilestoneCommandAnswered Milestone = "command_answered"
)

// InteractionRecord is the write-once reporting record appended per
// milestone. Retention is bounded to the most recent N records.
type InteractionRecord struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Milestone Milestone         `json:"milestone"`
	Snapshot  map[string]string `json:"snapshot,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// InteractionStats is the aggregate view served to reporting consumers.
type InteractionStats struct {
	Total       int               `json:"total"`
	ByMilestone map[Milestone]int `json:"by_milestone"`
	Oldest      time.Time         `json:"oldest,omitempty"`
	Newest      time.Time         `json:"newest,omitempty"`
}
