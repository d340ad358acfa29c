package request

import "billingapp/pkg/logger/interfaces"

// Config определяет параметры конфигурации для RequestHandler.
type Config struct {
	// BufferSize определяет размер каналов для запросов.
	BufferSize int

	// Logger логгер для ошибок выполнения запросов. Если nil, ошибки не логируются.
	Logger interfaces.SimpleLogger
}

// DefaultConfig возвращает новый экземпляр Config со стандартными настройками.
func DefaultConfig() Config {
	return Config{
		BufferSize: 1000,
	}
}
