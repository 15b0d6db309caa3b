package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/port/usecases_port"
)

const (
	msgInvalidSession     = "Invalid or missing session_id. Please initialize session first."
	msgInvalidLogsSession = "Invalid or missing session_id"
	msgMessageRequired    = "Message is required"
	msgSessionInitialized = "Session initialized successfully"
)

type SessionHandler struct {
	initSessionUC usecases_port.InitSessionUseCasePort
	chatTurnUC    usecases_port.ChatTurnUseCasePort
	getLogsUC     usecases_port.GetSessionLogsUseCasePort
	tokens        port.SessionTokenServicePort
}

func NewSessionHandler(initSessionUC usecases_port.InitSessionUseCasePort,
	chatTurnUC usecases_port.ChatTurnUseCasePort,
	getLogsUC usecases_port.GetSessionLogsUseCasePort,
	tokens port.SessionTokenServicePort) *SessionHandler {
	return &SessionHandler{
		initSessionUC: initSessionUC,
		chatTurnUC:    chatTurnUC,
		getLogsUC:     getLogsUC,
		tokens:        tokens,
	}
}

// Init обрабатывает POST /api/init
func (h *SessionHandler) Init(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var req InitRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.initSessionUC.Execute(r.Context(), domain.SessionParams{
		LeadID:          req.LeadID,
		BuyerID:         req.BuyerID,
		EscalationPhone: req.EscalationPhone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionParams) {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Failed to initialize session", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to initialize: "+err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, InitResponseDTO{
		Success:      true,
		SessionID:    res.SessionID,
		SessionToken: res.SessionToken,
		Message:      msgSessionInitialized,
	})
}

// Chat обрабатывает POST /api/chat
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var req ChatRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID, ok := h.resolveSession(req.SessionID, req.SessionToken)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, msgInvalidSession)
		return
	}

	reply, err := h.chatTurnUC.Execute(r.Context(), sessionID, req.Message)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		WriteJSONError(w, http.StatusBadRequest, msgInvalidSession)
		return
	case errors.Is(err, domain.ErrMessageRequired):
		WriteJSONError(w, http.StatusBadRequest, msgMessageRequired)
		return
	case err != nil:
		logger.Error("Chat turn failed", err, port.Fields{"session_id": domain.Truncate(sessionID, 8)})
		WriteJSONError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, ChatResponseDTO{Reply: reply})
}

// Logs обрабатывает GET /api/logs
func (h *SessionHandler) Logs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID, ok := h.resolveSession(query.Get("session_id"), query.Get("session_token"))
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, msgInvalidLogsSession)
		return
	}

	logs, err := h.getLogsUC.Execute(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		WriteJSONError(w, http.StatusBadRequest, msgInvalidLogsSession)
		return
	}
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to read session logs", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, LogsResponseDTO{Logs: toLogEntryDTOs(logs)})
}

// resolveSession id из подписанного токена важнее id из тела
func (h *SessionHandler) resolveSession(sessionID, token string) (string, bool) {
	if token = strings.TrimSpace(token); token != "" && h.tokens != nil {
		id, err := h.tokens.ValidateToken(token)
		if err != nil {
			return "", false
		}
		return id, true
	}
	sessionID = strings.TrimSpace(sessionID)
	return sessionID, sessionID != ""
}
