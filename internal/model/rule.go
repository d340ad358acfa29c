package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Идентификаторы каналов доставки
const (
	ChannelTelegram = "telegram"
	ChannelSms      = "sms"
	ChannelEmail    = "email"
)

// KnownChannel проверяет, что имя канала одно из поддерживаемых
func KnownChannel(name string) bool {
	switch name {
	case ChannelTelegram, ChannelSms, ChannelEmail:
		return true
	}
	return false
}

// TriggerConditions условия срабатывания правила. Все заполненные поля
// должны выполняться одновременно (логическое И). Незаполненное поле
// не накладывает ограничений.
type TriggerConditions struct {
	DebtAmountMin   *decimal.Decimal `json:"debtAmountMin,omitempty"`   // Долг не меньше (включительно)
	DebtAmountMax   *decimal.Decimal `json:"debtAmountMax,omitempty"`   // Долг не больше (включительно)
	DaysOverdue     *int             `json:"daysOverdue,omitempty"`     // Просрочка не меньше N дней
	LastPaymentDays *int             `json:"lastPaymentDays,omitempty"` // Последний платеж не позже N дней назад
	RiskScore       *int             `json:"riskScore,omitempty"`       // Оценка риска не меньше N
}

func (c TriggerConditions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *TriggerConditions) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = TriggerConditions{}
		return nil
	}
	return fmt.Errorf("неподдерживаемый тип столбца условий: %T", value)
}

// StringList jsonb-список строк (каналы правила, переменные шаблона)
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("неподдерживаемый тип столбца списка: %T", value)
}

// ReminderRule правило автоматических напоминаний о задолженности.
// Удаление правила — мягкая деактивация: строка остается для истории.
type ReminderRule struct {
	gorm.Model

	Name              string            `gorm:"column:name;not null"`                   // Название правила
	IsActive          bool              `gorm:"column:is_active;not null;default:true"` // Активно ли правило
	TriggerConditions TriggerConditions `gorm:"column:trigger_conditions;type:jsonb"`   // Условия отбора аккаунтов
	SchedulePattern   string            `gorm:"column:schedule_pattern;not null"`       // Cron выражение из 5 полей
	Channels          StringList        `gorm:"column:channels;type:jsonb;not null"`    // Упорядоченный список каналов доставки
	TemplateID        *uint             `gorm:"column:template_id"`                     // Ссылка на шаблон сообщения. Может отсутствовать
}
