// Пакет channel реализует шлюз доставки напоминаний: телеграм, SMS и email.
// Каждый канал настраивается независимо. Отсутствие настроек канала — не ошибка
// запуска: такой канал просто всегда возвращает неуспешный результат доставки.
package channel

import (
	"fmt"
	"time"

	"billingapp/pkg/logger/interfaces"
)

// DeliveryResult результат попытки доставки по одному каналу. Ожидаемые сбои
// (канал не настроен, провайдер отклонил сообщение) выражаются полями Success и
// Error, а не ошибкой Go: отправители никогда не паникуют и не возвращают error.
type DeliveryResult struct {
	Success   bool
	MessageID string // ID сообщения у провайдера
	Error     string // Человекочитаемое описание сбоя
	Cost      string // Стоимость отправки, десятичная строка
}

func failure(format string, args ...interface{}) DeliveryResult {
	return DeliveryResult{Error: fmt.Sprintf(format, args...)}
}

// TelegramConfig настройки телеграм канала
type TelegramConfig struct {
	Token      string        // Токен бота. Пустой токен — канал не настроен
	BufferSize int           // Размер буфера очереди отправки
	SendPause  time.Duration // Пауза между отправками
}

// SmsConfig настройки SMS провайдера
type SmsConfig struct {
	AccountID  string // ID аккаунта у провайдера
	Token      string // Токен доступа к API
	FromNumber string // Номер отправителя
	APIURL     string // URL API провайдера
	BufferSize int
	SendPause  time.Duration
}

// EmailConfig настройки email провайдера
type EmailConfig struct {
	APIKey      string // Ключ API провайдера. Пустой ключ — канал не настроен
	FromAddress string // Адрес отправителя
	APIURL      string // URL API провайдера
	BufferSize  int
	SendPause   time.Duration
}

// Config конфигурация шлюза доставки
type Config struct {
	Telegram TelegramConfig
	Sms      SmsConfig
	Email    EmailConfig
	Logger   interfaces.SimpleLogger
}

// Gateway единая точка отправки сообщений по всем каналам
type Gateway struct {
	telegram *telegramSender
	sms      *smsSender
	email    *emailSender
}

// NewGateway создает шлюз доставки. Недоступные каналы отмечаются как
// ненастроенные, но конструктор при этом не падает.
func NewGateway(conf Config) *Gateway {
	return &Gateway{
		telegram: newTelegramSender(conf.Telegram, conf.Logger),
		sms:      newSmsSender(conf.Sms, conf.Logger),
		email:    newEmailSender(conf.Email, conf.Logger),
	}
}

// SendTelegram отправляет сообщение представителю в телеграм. Если известен ID
// чата с ботом, отправка идет по нему, иначе по логину панели.
func (g *Gateway) SendTelegram(username string, chatID int64, message string) DeliveryResult {
	return g.telegram.Send(username, chatID, message)
}

// SendSms отправляет SMS на указанный номер
func (g *Gateway) SendSms(phoneNumber, message string) DeliveryResult {
	return g.sms.Send(phoneNumber, message)
}

// SendEmail отправляет письмо на указанный адрес
func (g *Gateway) SendEmail(address, subject, body string) DeliveryResult {
	return g.email.Send(address, subject, body)
}
