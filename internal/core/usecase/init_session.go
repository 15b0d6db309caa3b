package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// AvaCredentials учетные данные для входа в Ava. Пустой User означает вход под lead_id.
type AvaCredentials struct {
	User     string
	Password string
}

type InitSessionUseCase struct {
	ava    port.AvaChatPort
	store  port.SessionStorePort
	tokens port.SessionTokenServicePort
	creds  AvaCredentials
}

func NewInitSessionUseCase(
	ava port.AvaChatPort,
	store port.SessionStorePort,
	tokens port.SessionTokenServicePort,
	creds AvaCredentials,
) *InitSessionUseCase {
	return &InitSessionUseCase{ava: ava, store: store, tokens: tokens, creds: creds}
}

func (uc *InitSessionUseCase) Execute(ctx context.Context, params domain.SessionParams) (*domain.InitSessionResult, error) {
	leadID := strings.TrimSpace(params.LeadID)
	buyerID := strings.TrimSpace(params.BuyerID)
	phone := strings.TrimSpace(params.EscalationPhone)
	if leadID == "" || buyerID == "" || phone == "" {
		return nil, domain.ErrSessionParams
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "InitSession",
		"lead_id":  leadID,
		"buyer_id": buyerID,
	})
	ucLogger.Info("Use case started", nil)

	sess, err := uc.store.FindByLead(ctx, leadID)
	if err != nil {
		ucLogger.Error("Failed to look up existing session", err, nil)
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if sess != nil {
		ucLogger.Info("Reusing existing session for lead", port.Fields{"session_id": shortID(sess.ID)})
	} else {
		loginUser := uc.creds.User
		if loginUser == "" {
			loginUser = leadID
		}
		token, err := uc.ava.Login(ctx, loginUser, uc.creds.Password)
		if err != nil {
			ucLogger.Error("Ava login failed", err, nil)
			return nil, fmt.Errorf("ava login failed: %w", err)
		}
		sessionID, err := uc.ava.CreateSession(ctx, token, leadID)
		if err != nil {
			ucLogger.Error("Ava session creation failed", err, nil)
			return nil, fmt.Errorf("ava session creation failed: %w", err)
		}

		sess = &domain.Session{
			ID:              sessionID,
			LeadID:          leadID,
			BuyerID:         buyerID,
			EscalationPhone: phone,
			AvaUser:         leadID,
			AvaToken:        token,
			CreatedAt:       time.Now().UTC(),
		}
		if err := uc.store.Save(ctx, *sess); err != nil {
			ucLogger.Error("Failed to save session", err, nil)
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		ucLogger.Info("New Ava session created", port.Fields{"session_id": shortID(sess.ID)})
	}

	signed, err := uc.tokens.GenerateToken(sess.ID, sess.LeadID)
	if err != nil {
		ucLogger.Error("Failed to sign session token", err, nil)
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"session_id": shortID(sess.ID)})
	return &domain.InitSessionResult{SessionID: sess.ID, SessionToken: signed}, nil
}

// shortID первые 8 символов id для логов
func shortID(id string) string {
	return domain.Truncate(id, 8)
}
