package domain

// SessionParams параметры открытия сессии
type SessionParams struct {
	LeadID          string
	BuyerID         string
	EscalationPhone string
}

// InitSessionResult идентификатор и подписанный токен новой сессии
type InitSessionResult struct {
	SessionID    string
	SessionToken string
}
