package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jsamit27/ava/internal/core/domain"
)

const (
	recentLogsLimit = 300
	closingLine     = "\n\nReturn only ONE JSON object inside ```json fences."
)

// Ключи, которые подставляет среда выполнения
var runtimeArgKeys = []string{"sqlite_path", "lead_id", "buyer_id", "receiver_number"}

const restrictedOfferKey = "buyer_offer_cents"

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	anyObjectRe  = regexp.MustCompile(`(?s)(\{.*\})`)
)

// PromptContext окружение, которое видит планировщик
type PromptContext struct {
	DatabaseLabel string
	LeadID        string
	RecentLogs    string
}

// Planner строит промпты и разбирает планы модели
type Planner struct {
	catalog *Catalog
	system  string
}

func New(catalog *Catalog) *Planner {
	return &Planner{catalog: catalog, system: buildSystemRules(catalog.Names())}
}

func (p *Planner) Catalog() *Catalog {
	return p.catalog
}

func buildSystemRules(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	allowed := "[" + strings.Join(quoted, ", ") + "]"

	var b strings.Builder
	b.WriteString("You are a planner that decides whether to respond directly or call ONE tool.\n\n")
	b.WriteString("Return EXACTLY ONE JSON object (and nothing else) inside ```json code fences.\n\n")
	b.WriteString("Valid outputs:\n\n")
	b.WriteString("```json\n{\"action\":\"chat\",\"answer\":\"<final user-facing text>\"}\n```\nOR\n")
	b.WriteString("```json\n{\"action\":\"tool\",\"name\":\"<one_of:" + allowed + ">\",\"args\":{}}\n```\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- If you do not have enough details to call a tool, ask a short clarifying question with action=\"chat\".\n")
	b.WriteString("- NEVER include sqlite_path, lead_id, buyer_id, receiver_number, or buyer_offer_cents in args " +
		"(runtime injects the first four; buyer_offer_cents can only be set by GMTV employees, not by Ava).\n")
	b.WriteString("- IMPORTANT: You represent GMTV(Give me the vin company) (the buyer). Customers are sellers. " +
		"You can ask customers what they want to sell for (seller_ask_cents), but you CANNOT set buyer_offer_cents " +
		"(GMTV's offer - only employees can do that).\n")
	b.WriteString("- Use ONE tool only per response.\n")
	b.WriteString("- Keep args minimal and valid for the chosen tool (e.g., for car_retrieve use one of: car_id, vin, model, make, year).\n")
	b.WriteString("- Output must be valid JSON (double quotes, no trailing commas).\n")
	b.WriteString("- Always attempt tool calls when the user's request matches a tool's purpose, even if previous tool calls failed. " +
		"Previous errors don't mean all tools are broken - try the appropriate tool for the current request.\n")
	return b.String()
}

// BuildPrompt собирает промпт: правила, каталог, контекст, сообщение пользователя
func (p *Planner) BuildPrompt(userMsg string, pc PromptContext) string {
	ctxLines := []string{
		"- sqlite_path: " + pc.DatabaseLabel,
		"- lead_id: " + pc.LeadID,
	}
	if pc.RecentLogs != "" {
		ctxLines = append(ctxLines, "- recent_logs: "+domain.Truncate(pc.RecentLogs, recentLogsLimit))
	}

	var b strings.Builder
	b.WriteString(p.system)
	b.WriteString("\n\nAvailable Tools:\n")
	b.WriteString(p.catalog.Lines())
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(ctxLines, "\n"))
	b.WriteString("\n\nUser says:\n")
	b.WriteString(userMsg)
	b.WriteString(closingLine)
	return b.String()
}

// ExtractJSON достает первый JSON-объект из ответа модели.
// Сначала ищется блок ```json, затем самый широкий {...}. nil если разобрать не удалось.
func ExtractJSON(text string) map[string]interface{} {
	candidate := ""
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := anyObjectRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}
	if candidate == "" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	// после объекта допустимы только пробелы
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PlanError причина отклонения плана
type PlanError struct {
	Reason string
}

func (e *PlanError) Error() string { return e.Reason }

func (e *PlanError) Unwrap() error { return domain.ErrInvalidPlan }

func invalid(format string, args ...interface{}) error {
	return &PlanError{Reason: fmt.Sprintf(format, args...)}
}

// Parse проверяет сырой план и превращает его в domain.Plan
func (p *Planner) Parse(raw interface{}) (domain.Plan, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok || obj == nil {
		return domain.Plan{}, invalid("plan is not a JSON object")
	}

	action, _ := obj["action"].(string)
	switch domain.PlanAction(action) {
	case domain.PlanActionChat:
		answer, ok := obj["answer"].(string)
		if !ok {
			return domain.Plan{}, invalid("chat plan must include string 'answer'")
		}
		return domain.Plan{Action: domain.PlanActionChat, Answer: answer}, nil

	case domain.PlanActionTool:
		name, _ := obj["name"].(string)
		if !p.catalog.Has(name) {
			return domain.Plan{}, invalid("unknown tool '%s'", name)
		}
		args, ok := obj["args"].(map[string]interface{})
		if !ok {
			return domain.Plan{}, invalid("tool plan must include object 'args'")
		}
		for _, k := range runtimeArgKeys {
			if _, present := args[k]; present {
				return domain.Plan{}, invalid("args must not include sqlite_path, lead_id, buyer_id, or receiver_number")
			}
		}
		if _, present := args[restrictedOfferKey]; present {
			return domain.Plan{}, invalid("args must not include buyer_offer_cents (only GMTV employees can set the company's offer)")
		}
		return domain.Plan{Action: domain.PlanActionTool, Tool: domain.ToolCall{Name: name, Args: args}}, nil
	}

	return domain.Plan{}, invalid("action must be 'chat' or 'tool'")
}
