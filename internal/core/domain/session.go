package domain

import (
	"strconv"
	"strings"
	"time"
)

// Session состояние диалога одного лида. ID совпадает с id сессии Ava.
type Session struct {
	ID              string    `json:"id"`
	LeadID          string    `json:"lead_id"`
	BuyerID         string    `json:"buyer_id"`
	EscalationPhone string    `json:"escalation_phone"`
	AvaUser         string    `json:"ava_user"`
	AvaToken        string    `json:"ava_token"`
	CreatedAt       time.Time `json:"created_at"`
}

// NumericRef возвращает int64, если ссылка состоит только из цифр
func NumericRef(ref string) (int64, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, false
	}
	for _, r := range ref {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(ref, 10, 64)
	return n, err == nil
}

// Conversation данные для обращения к Ava от имени сессии
func (s Session) Conversation() AvaConversation {
	return AvaConversation{Token: s.AvaToken, User: s.AvaUser, SessionID: s.ID}
}

// LogEntry событие хода диалога, видно через /api/logs и /logs
type LogEntry struct {
	Event  string    `json:"event"`
	Detail string    `json:"detail"`
	Raw    string    `json:"raw,omitempty"`
	At     time.Time `json:"ts"`
}

const (
	EventUserInput             = "user_input"
	EventPlannerFail           = "planner_fail"
	EventPlanInvalid           = "plan_invalid"
	EventChat                  = "chat"
	EventToolCall              = "tool_call"
	EventToolResult            = "tool_result"
	EventToolResponseGenerated = "tool_response_generated"
)

// AvaConversation токен, пользователь и сессия Ava
type AvaConversation struct {
	Token     string
	User      string
	SessionID string
}

// Truncate обрезает строку до n рун
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
