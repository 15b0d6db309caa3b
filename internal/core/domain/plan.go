package domain

type PlanAction string

const (
	PlanActionChat PlanAction = "chat"
	PlanActionTool PlanAction = "tool"
)

// Plan решение планировщика: ответить текстом или вызвать один инструмент
type Plan struct {
	Action PlanAction
	Answer string
	Tool   ToolCall
}
