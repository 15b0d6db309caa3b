package rest

import (
	"time"

	"github.com/jsamit27/ava/internal/core/domain"
)

const maxBodyBytes = 1 << 20

type InitRequestDTO struct {
	LeadID          string `json:"lead_id"`
	BuyerID         string `json:"buyer_id"`
	EscalationPhone string `json:"escalation_phone"`
}

type InitResponseDTO struct {
	Success      bool   `json:"success"`
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
	Message      string `json:"message"`
}

type ChatRequestDTO struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

type ChatResponseDTO struct {
	Reply string `json:"reply"`
}

type LogEntryDTO struct {
	Event  string `json:"event"`
	Detail string `json:"detail"`
	Raw    string `json:"raw,omitempty"`
	At     string `json:"ts"`
}

type LogsResponseDTO struct {
	Logs []LogEntryDTO `json:"logs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toLogEntryDTOs(entries []domain.LogEntry) []LogEntryDTO {
	out := make([]LogEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntryDTO{
			Event:  e.Event,
			Detail: e.Detail,
			Raw:    e.Raw,
			At:     e.At.UTC().Format(time.RFC3339),
		})
	}
	return out
}
