package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/planner"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/port/usecases_port"
)

const (
	replyPlannerFail  = "Sorry—I couldn't figure out a plan. Could you rephrase?"
	replyPlanInvalid  = "Sorry—my plan came out malformed. Please try again."
	replyToolFallback = "That did not work."

	ReplySessionEnded = "Session ended. Thank you!"

	recentLogEntries = 3
	detailShort      = 120
	detailLong       = 200
)

var (
	fencedMessageRe = regexp.MustCompile("(?s)```json\\s*\\{.*?\"message\"\\s*:\\s*\"([^\"]+)\"")
	fenceOpenJSONRe = regexp.MustCompile("```json\\s*")
	fenceTailRe     = regexp.MustCompile("```\\s*$")
	fenceHeadRe     = regexp.MustCompile("^```\\s*")
)

// ChatTurnUseCase один ход диалога: план, при необходимости инструмент, ответ
type ChatTurnUseCase struct {
	ava     port.AvaChatPort
	store   port.SessionStorePort
	planner *planner.Planner
	tools   usecases_port.ExecuteToolUseCasePort
	metrics port.MetricsPort
	dbLabel string

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// metrics может быть nil. dbLabel попадает в контекст планировщика вместо адреса базы.
func NewChatTurnUseCase(
	ava port.AvaChatPort,
	store port.SessionStorePort,
	p *planner.Planner,
	tools usecases_port.ExecuteToolUseCasePort,
	metrics port.MetricsPort,
	dbLabel string,
) *ChatTurnUseCase {
	return &ChatTurnUseCase{
		ava:     ava,
		store:   store,
		planner: p,
		tools:   tools,
		metrics: metrics,
		dbLabel: dbLabel,
		locks:   make(map[string]*sessionLock),
	}
}

// lockSession ходы одной сессии выполняются по очереди.
// Запись удаляется, когда у сессии не остается ожидающих ходов.
func (uc *ChatTurnUseCase) lockSession(id string) func() {
	uc.mu.Lock()
	l, ok := uc.locks[id]
	if !ok {
		l = &sessionLock{}
		uc.locks[id] = l
	}
	l.refs++
	uc.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		uc.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(uc.locks, id)
		}
		uc.mu.Unlock()
	}
}

func (uc *ChatTurnUseCase) Execute(ctx context.Context, sessionID, message string) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ChatTurn", "session_id": shortID(sessionID)})

	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.ErrMessageRequired
	}
	if IsExitCommand(message) {
		return ReplySessionEnded, nil
	}

	unlock := uc.lockSession(sessionID)
	defer unlock()

	ucLogger.Info("Use case started", port.Fields{"message": domain.Truncate(message, detailLong)})

	if err := uc.appendLog(ctx, sessionID, domain.EventUserInput, message, ""); err != nil {
		return "", err
	}

	recent, err := uc.store.Logs(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to read session logs: %w", err)
	}
	if len(recent) > recentLogEntries {
		recent = recent[len(recent)-recentLogEntries:]
	}
	snippet := make([]string, 0, len(recent))
	for _, e := range recent {
		snippet = append(snippet, e.Event+":"+e.Detail)
	}

	prompt := uc.planner.BuildPrompt(message, planner.PromptContext{
		DatabaseLabel: uc.dbLabel,
		LeadID:        sess.LeadID,
		RecentLogs:    strings.Join(snippet, "; "),
	})

	raw, err := uc.ask(ctx, *sess, prompt)
	if err != nil {
		ucLogger.Error("Planner request to Ava failed", err, nil)
		return "", err
	}

	rawPlan := planner.ExtractJSON(raw)
	if rawPlan == nil {
		uc.observePlan("planner_fail")
		ucLogger.Warn("Planner reply has no JSON", port.Fields{"raw": domain.Truncate(raw, detailLong)})
		if err := uc.appendLog(ctx, sessionID, domain.EventPlannerFail, domain.Truncate(raw, detailLong), ""); err != nil {
			return "", err
		}
		return replyPlannerFail, nil
	}

	plan, err := uc.planner.Parse(rawPlan)
	if err != nil {
		uc.observePlan("plan_invalid")
		ucLogger.Warn("Planner produced an invalid plan", port.Fields{"reason": err.Error()})
		if err := uc.appendLog(ctx, sessionID, domain.EventPlanInvalid, err.Error(), domain.Truncate(raw, detailLong)); err != nil {
			return "", err
		}
		return replyPlanInvalid, nil
	}
	uc.observePlan(string(plan.Action))

	if plan.Action == domain.PlanActionChat {
		if err := uc.appendLog(ctx, sessionID, domain.EventChat, domain.Truncate(plan.Answer, detailShort), ""); err != nil {
			return "", err
		}
		ucLogger.Info("Use case finished successfully", port.Fields{"action": "chat"})
		return plan.Answer, nil
	}

	argsJSON, _ := json.Marshal(plan.Tool.Args)
	if err := uc.appendLog(ctx, sessionID, domain.EventToolCall, fmt.Sprintf("%s(%s)", plan.Tool.Name, argsJSON), ""); err != nil {
		return "", err
	}

	result := uc.tools.Execute(contextkeys.ContextWithLogger(ctx, ucLogger), *sess, plan.Tool)
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	if err := uc.appendLog(ctx, sessionID, domain.EventToolResult, domain.Truncate(string(resultJSON), detailLong), ""); err != nil {
		return "", err
	}

	if !result.IsSuccess() {
		ucLogger.Info("Use case finished successfully", port.Fields{"action": "tool", "tool": plan.Tool.Name, "status": result.Status})
		return failureReply(result), nil
	}

	followUp := fmt.Sprintf("The user asked: \"%s\"\n\nI called the tool '%s' and got this result:\n%s\n\n"+
		"Please provide a natural, conversational response to the user's question based on this tool result. "+
		"Be concise and directly answer what they asked. Return ONLY the response text, no JSON, no code blocks, "+
		"just plain conversational text.", message, plan.Tool.Name, resultJSON)

	answer, err := uc.ask(ctx, *sess, followUp)
	if err != nil {
		ucLogger.Error("Follow-up request to Ava failed", err, nil)
		return "", err
	}
	answer = cleanToolAnswer(answer)

	if err := uc.appendLog(ctx, sessionID, domain.EventToolResponseGenerated, domain.Truncate(answer, detailShort), ""); err != nil {
		return "", err
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"action": "tool", "tool": plan.Tool.Name})
	return answer, nil
}

// IsExitCommand exit или quit в любом регистре
func IsExitCommand(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	return m == "exit" || m == "quit"
}

func (uc *ChatTurnUseCase) ask(ctx context.Context, sess domain.Session, prompt string) (string, error) {
	start := time.Now()
	reply, err := uc.ava.Ask(ctx, sess.Conversation(), prompt)
	if uc.metrics != nil {
		uc.metrics.ObserveAva("ask", err, time.Since(start).Seconds())
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAvaUnavailable, err)
	}
	return reply, nil
}

func (uc *ChatTurnUseCase) observePlan(action string) {
	if uc.metrics != nil {
		uc.metrics.ObservePlan(action)
	}
}

func (uc *ChatTurnUseCase) appendLog(ctx context.Context, sessionID, event, detail, raw string) error {
	err := uc.store.AppendLog(ctx, sessionID, domain.LogEntry{Event: event, Detail: detail, Raw: raw, At: time.Now().UTC()})
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to append session log: %w", err)
	}
	return err
}

func failureReply(res domain.ToolResult) string {
	if res.Code == domain.CodeTimeAlreadyBooked {
		existing := ""
		if s, ok := res.Data["existing_schedule"].(domain.Schedule); ok {
			existing = s.ScheduleTime
		}
		return fmt.Sprintf("The buyer is already booked at %s. Please choose another time.", existing)
	}
	if res.Message == "" {
		return replyToolFallback
	}
	return res.Message
}

// cleanToolAnswer снимает кодовые блоки, которыми модель иногда оборачивает ответ
func cleanToolAnswer(s string) string {
	s = strings.TrimSpace(s)
	if m := fencedMessageRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	} else {
		s = fenceOpenJSONRe.ReplaceAllString(s, "")
		s = fenceTailRe.ReplaceAllString(s, "")
		s = fenceHeadRe.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
