package domain

type ToolStatus string

const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
	ToolStatusUnsure  ToolStatus = "unsure"
)

type ToolCode string

const (
	CodeInvalidInput       ToolCode = "INVALID_INPUT"
	CodeDBUnavailable      ToolCode = "DB_UNAVAILABLE"
	CodeNotFound           ToolCode = "NOT_FOUND"
	CodeTxnFailed          ToolCode = "TXN_FAILED"
	CodeTimeAlreadyBooked  ToolCode = "TIME_ALREADY_BOOKED"
	CodePreconditionFailed ToolCode = "PRECONDITION_FAILED"
	CodeConflictVIN        ToolCode = "CONFLICT_VIN"
	CodeAmbiguous          ToolCode = "AMBIGUOUS"
	CodeForbidden          ToolCode = "FORBIDDEN"
	CodeUnknownTool        ToolCode = "UNKNOWN_TOOL"
)

// ToolResult конверт ответа инструмента, уходит модели в виде JSON
type ToolResult struct {
	Status  ToolStatus             `json:"status"`
	Code    ToolCode               `json:"code,omitempty"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func ToolSuccess(message string, data map[string]interface{}) ToolResult {
	if data == nil {
		data = map[string]interface{}{}
	}
	return ToolResult{Status: ToolStatusSuccess, Message: message, Data: data}
}

func ToolFailure(code ToolCode, message string, data map[string]interface{}) ToolResult {
	if data == nil {
		data = map[string]interface{}{}
	}
	return ToolResult{Status: ToolStatusError, Code: code, Message: message, Data: data}
}

func ToolUnsure(code ToolCode, message string, data map[string]interface{}) ToolResult {
	if data == nil {
		data = map[string]interface{}{}
	}
	return ToolResult{Status: ToolStatusUnsure, Code: code, Message: message, Data: data}
}

func (r ToolResult) IsSuccess() bool {
	return r.Status == ToolStatusSuccess
}

// ToolCall вызов инструмента с уже проверенными аргументами
type ToolCall struct {
	Name string
	Args map[string]interface{}
}
