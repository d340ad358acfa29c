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
)

// emailSender отправляет письма через HTTP API провайдера
type emailSender struct {
	conf       EmailConfig
	httpClient *http.Client
	req        *request.RequestHandler
	configured bool
}

func newEmailSender(conf EmailConfig, log interfaces.SimpleLogger) *emailSender {
	sender := &emailSender{
		conf:       conf,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if conf.APIKey == "" || conf.APIURL == "" {
		if log != nil {
			log.Info("Email канал не настроен: не задан ключ API провайдера")
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
			log.Errorf("Не удалось создать очередь отправки email: %v", err)
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

// Send отправляет одно письмо
func (s *emailSender) Send(address, subject, body string) DeliveryResult {
	if !s.configured {
		return failure("email канал не настроен")
	}
	if address == "" {
		return failure("у представителя не указан email")
	}

	var result DeliveryResult
	err := s.req.HandleSyncRequest(func() error {
		result = s.deliver(address, subject, body)
		return nil
	})
	if err != nil {
		return failure("очередь отправки email недоступна: %v", err)
	}

	return result
}

func (s *emailSender) deliver(address, subject, body string) DeliveryResult {
	payload, err := json.Marshal(map[string]string{
		"from":    s.conf.FromAddress,
		"to":      address,
		"subject": subject,
		"html":    body,
	})
	if err != nil {
		return failure("не удалось сериализовать запрос к email провайдеру: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.conf.APIURL, bytes.NewReader(payload))
	if err != nil {
		return failure("не удалось подготовить запрос к email провайдеру: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.conf.APIKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return failure("email провайдер недоступен: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure("не удалось прочитать ответ email провайдера: %v", err)
	}
	text := string(respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerMsg := firstString(text, "message", "error", "detail")
		if providerMsg == "" {
			providerMsg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return failure("email провайдер отклонил письмо: %s", providerMsg)
	}

	return DeliveryResult{
		Success:   true,
		MessageID: firstString(text, "id", "message_id"),
	}
}
