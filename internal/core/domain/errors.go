package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotFound           = errors.New("record not found")
	ErrVINConflict        = errors.New("vin already exists")
	ErrForeignKey         = errors.New("invalid reference (foreign key)")
	ErrIntegrity          = errors.New("integrity constraint violated")
	ErrTokenInvalid       = errors.New("invalid session token")
	ErrAvaUnavailable     = errors.New("ava service unavailable")
	ErrNoSMSSender        = errors.New("no SMS-capable number found for this account")
	ErrEscalationTarget   = errors.New("escalation phone is not set for this session")
	ErrDependencyCycle    = errors.New("table dependency cycle detected")
	ErrUnknownDependency  = errors.New("table depends on an unknown table")
	ErrSourceUnavailable  = errors.New("migration source is unavailable")
	ErrSourceTableMissing = errors.New("table missing in migration source")
	ErrStateCSVMissing    = errors.New("no auction csv for state")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrDBUnavailable      = errors.New("database unavailable")
	ErrSessionParams      = errors.New("lead_id, buyer_id, and escalation_phone are required")
	ErrMessageRequired    = errors.New("message is required")
)
