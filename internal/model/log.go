package model

import (
	"time"

	"gorm.io/gorm"
)

// Статусы доставки напоминания
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// ReminderLog журнал попыток доставки напоминаний. Таблица только для добавления:
// одна строка на каждую пару (аккаунт, канал) в рамках одного срабатывания правила.
// После создания строка не изменяется, кроме отдельного пути отметки ответа.
type ReminderLog struct {
	gorm.Model

	RepresentativeID uint      `gorm:"column:representative_id;index;not null"` // Аккаунт, которому отправляли
	RuleID           uint      `gorm:"column:rule_id;index;not null"`           // Правило, по которому отправляли
	ExecutionID      string    `gorm:"column:execution_id;type:varchar(36)"`    // ID срабатывания правила
	Channel          string    `gorm:"column:channel;not null"`                 // Канал доставки
	MessageContent   string    `gorm:"column:message_content;type:text"`        // Отрендеренный текст сообщения
	DeliveryStatus   string    `gorm:"column:delivery_status;not null"`         // sent или failed
	ProviderMessageID string   `gorm:"column:provider_message_id"`              // ID сообщения у провайдера
	ErrorMessage     string    `gorm:"column:error_message;type:text"`          // Текст ошибки доставки
	Cost             string    `gorm:"column:cost;type:decimal(12,4)"`          // Стоимость отправки у провайдера
	ResponseReceived bool      `gorm:"column:response_received;not null;default:false"` // Был ли ответ представителя
	SentAt           time.Time `gorm:"column:sent_at;index;not null"`           // Время попытки отправки
}
