package request

import (
	"context"
	"errors"
	"sync"
	"time"

	"billingapp/pkg/logger/interfaces"
)

// Request отложенный запрос к внешнему сервису
type Request func() error

// RequestHandler управляет обработкой запросов к внешним сервисам с поддержкой
// приоритизации и паузы между запросами, чтобы не упереться в лимиты провайдеров.
type RequestHandler struct {
	requests            chan Request
	lowPriorityRequests chan Request
	ctx                 context.Context
	cancel              context.CancelFunc
	mu                  sync.Mutex
	isProcessing        bool
	logger              interfaces.SimpleLogger
}

// NewRequestHandler создает новый экземпляр RequestHandler с заданной конфигурацией.
// Инициализирует каналы запросов согласно конфигурации.
func NewRequestHandler(config Config) (*RequestHandler, error) {
	if config.BufferSize <= 0 {
		return nil, errors.New("размер буфера должен быть больше нуля")
	}

	ctx, cancel := context.WithCancel(context.Background())

	handler := &RequestHandler{
		requests:            make(chan Request, config.BufferSize),
		lowPriorityRequests: make(chan Request, config.BufferSize),
		ctx:                 ctx,
		cancel:              cancel,
		logger:              config.Logger,
	}

	return handler, nil
}

func (app *RequestHandler) logError(format string, args ...interface{}) {
	if app.logger == nil {
		return
	}
	app.logger.Errorf(format, args...)
}

// HandleRequest добавляет запрос в канал обычного приоритета.
// Возвращает ошибку, если очередь остановлена.
func (app *RequestHandler) HandleRequest(req Request) error {
	select {
	case <-app.ctx.Done():
		return errors.New("невозможно добавить запрос: обработка остановлена")
	default:
	}

	app.requests <- req
	return nil
}

// HandleLowPriorityRequest добавляет запрос в канал низкого приоритета.
// Возвращает ошибку, если очередь остановлена.
func (app *RequestHandler) HandleLowPriorityRequest(req Request) error {
	select {
	case <-app.ctx.Done():
		return errors.New("невозможно добавить запрос: обработка остановлена")
	default:
	}

	app.lowPriorityRequests <- req
	return nil
}

// ProcessRequests запускает обработку запросов из обоих каналов с фиксированной паузой между запросами.
// Сначала обрабатываются запросы обычного приоритета, затем низкоприоритетные.
// Обработка продолжается до вызова StopProcessing или отмены контекста.
func (app *RequestHandler) ProcessRequests(pause time.Duration) {
	app.mu.Lock()
	if app.isProcessing {
		app.logError("Невозможно запустить обработку запросов: уже запущена")
		app.mu.Unlock()
		return
	}
	app.isProcessing = true
	app.mu.Unlock()

	for {
		select {
		case <-app.ctx.Done():
			app.mu.Lock()
			app.isProcessing = false
			app.mu.Unlock()
			return
		case req := <-app.requests:
			if err := req(); err != nil {
				app.logError("Ошибка выполнения запроса: %v", err)
			}
		case req := <-app.lowPriorityRequests:
			if err := req(); err != nil {
				app.logError("Ошибка выполнения низкоприоритетного запроса: %v", err)
			}
		}
		time.Sleep(pause)
	}
}

// StopProcessing останавливает обработку запросов и освобождает ресурсы.
// После вызова этого метода новые запросы не будут обрабатываться до повторного
// вызова ProcessRequests.
func (app *RequestHandler) StopProcessing() {
	app.cancel()
	app.mu.Lock()
	app.isProcessing = false
	app.mu.Unlock()
}

// HandleSyncRequest отправляет запрос в очередь и ждет его выполнения.
// Возвращает ошибку, если запрос не удалось выполнить.
func (h *RequestHandler) HandleSyncRequest(fn func() error) error {
	var wg sync.WaitGroup
	var resultErr error

	wg.Add(1)
	err := h.HandleRequest(func() error {
		defer wg.Done()
		if err := fn(); err != nil {
			resultErr = err
			return err
		}
		return nil
	})
	if err != nil {
		wg.Done()
		return err
	}

	wg.Wait()
	return resultErr
}
