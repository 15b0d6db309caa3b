package port

// Fields структурированные поля записи лога
type Fields map[string]interface{}

// LoggerPort контракт системы логирования
type LoggerPort interface {
	Info(msg string, fields Fields)

	Warn(msg string, fields Fields)

	Error(msg string, err error, fields Fields)

	Debug(msg string, fields Fields)
	// WithFields возвращает логгер с добавленными полями
	WithFields(fields Fields) LoggerPort
}
