package constants

// Обменник и ключи маршрутизации событий ассистента
const (
	EventsExchangeType = "topic"

	ToolExecutedRoutingKey        = "ava.tool.executed"
	EscalationRequestedRoutingKey = "ava.escalation.requested"
)

// Заголовки AMQP сообщений
const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
	HeaderTraceID      = "x-trace-id"
)
