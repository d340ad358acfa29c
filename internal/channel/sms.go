package channel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billingapp/pkg/logger/interfaces"
	"billingapp/pkg/request"

	"github.com/tidwall/gjson"
)

// smsSender отправляет SMS через HTTP API провайдера. Запросы идут через
// очередь с паузой — провайдеры режут частые обращения.
type smsSender struct {
	conf       SmsConfig
	httpClient *http.Client
	req        *request.RequestHandler
	configured bool
}

func newSmsSender(conf SmsConfig, log interfaces.SimpleLogger) *smsSender {
	sender := &smsSender{
		conf:       conf,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if conf.AccountID == "" || conf.Token == "" || conf.FromNumber == "" || conf.APIURL == "" {
		if log != nil {
			log.Info("SMS канал не настроен: не заданы реквизиты провайдера")
		}
		return sender
	}

	bufferSize := conf.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	req, err := request.NewRequestHandler(request.Config{
		BufferSize: bufferSize,
		Logger:     log,
	})
	if err != nil {
		if log != nil {
			log.Errorf("Не удалось создать очередь отправки SMS: %v", err)
		}
		return sender
	}

	pause := conf.SendPause
	if pause <= 0 {
		pause = 200 * time.Millisecond
	}
	go req.ProcessRequests(pause)

	sender.req = req
	sender.configured = true
	return sender
}

// Send отправляет одно SMS. Ответ провайдера разбирается без привязки к
// конкретному вендору: ID сообщения ищется в типовых полях ответа.
func (s *smsSender) Send(phoneNumber, message string) DeliveryResult {
	if !s.configured {
		return failure("SMS канал не настроен")
	}
	if phoneNumber == "" {
		return failure("у представителя не указан номер телефона")
	}

	var result DeliveryResult
	err := s.req.HandleSyncRequest(func() error {
		result = s.deliver(phoneNumber, message)
		return nil
	})
	if err != nil {
		return failure("очередь отправки SMS недоступна: %v", err)
	}

	return result
}

func (s *smsSender) deliver(phoneNumber, message string) DeliveryResult {
	payload, err := json.Marshal(map[string]string{
		"from": s.conf.FromNumber,
		"to":   phoneNumber,
		"body": message,
	})
	if err != nil {
		return failure("не удалось сериализовать запрос к SMS провайдеру: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.conf.APIURL, bytes.NewReader(payload))
	if err != nil {
		return failure("не удалось подготовить запрос к SMS провайдеру: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(s.conf.AccountID, s.conf.Token)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return failure("SMS провайдер недоступен: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure("не удалось прочитать ответ SMS провайдера: %v", err)
	}
	text := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerMsg := firstString(text, "message", "error", "detail")
		if providerMsg == "" {
			providerMsg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return failure("SMS провайдер отклонил сообщение: %s", providerMsg)
	}

	return DeliveryResult{
		Success:   true,
		MessageID: firstString(text, "sid", "message_id", "id"),
		Cost:      firstString(text, "price", "cost"),
	}
}

// firstString возвращает первое непустое строковое значение из перечисленных
// полей JSON ответа
func firstString(body string, paths ...string) string {
	for _, path := range paths {
		if value := gjson.Get(body, path); value.Exists() {
			return value.String()
		}
	}
	return ""
}
