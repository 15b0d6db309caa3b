package domain

import "time"

const (
	EventTypeToolExecuted        = "tool-executed"
	EventTypeEscalationRequested = "escalation-requested"
	EventVersionV1               = "v1"
)

// ToolExecutedEvent аудит вызова инструмента
type ToolExecutedEvent struct {
	SessionID  string     `json:"session_id"`
	LeadID     string     `json:"lead_id"`
	Tool       string     `json:"tool"`
	Status     ToolStatus `json:"status"`
	Code       ToolCode   `json:"code,omitempty"`
	Message    string     `json:"message"`
	DurationMs int64      `json:"duration_ms"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// EscalationRequestedEvent запрос эскалации сотруднику
type EscalationRequestedEvent struct {
	SessionID  string    `json:"session_id"`
	LeadID     string    `json:"lead_id"`
	To         string    `json:"to"`
	Text       string    `json:"text"`
	Delivered  bool      `json:"delivered"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
