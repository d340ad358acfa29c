package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Representative аккаунт представителя (должника) в биллинговой панели.
// Движок напоминаний читает эту таблицу, но никогда не изменяет ее.
type Representative struct {
	gorm.Model

	StoreName     string     `gorm:"column:store_name;not null"`                  // Название магазина представителя
	OwnerName     string     `gorm:"column:owner_name"`                           // Имя владельца
	PanelUsername string     `gorm:"column:panel_username;uniqueIndex;not null"`  // Логин в панели, он же идентификатор для телеграм бота
	TelegramChatID int64     `gorm:"column:telegram_chat_id"`                     // ID чата с ботом, если представитель привязал телеграм
	PhoneNumber   string     `gorm:"column:phone_number"`                         // Телефон для SMS. Может отсутствовать
	Email         string     `gorm:"column:email"`                                // Email. Может отсутствовать
	DebtAmount    string     `gorm:"column:debt_amount;type:decimal(20,2);not null;default:0"` // Текущий долг, хранится десятичной строкой
	RiskScore     int        `gorm:"column:risk_score;not null;default:0"`        // Оценка риска представителя
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`      // Активен ли аккаунт
	LastPaymentAt *time.Time `gorm:"column:last_payment_at"`                      // Время последнего платежа
	LastActivityAt *time.Time `gorm:"column:last_activity_at"`                    // Время последней активности в панели
}

// Debt возвращает долг как десятичное число. Невалидная строка трактуется как ноль.
func (r *Representative) Debt() decimal.Decimal {
	d, err := decimal.NewFromString(r.DebtAmount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ReferenceDate дата, от которой считается просрочка: последняя активность,
// а если ее не было — дата создания аккаунта.
func (r *Representative) ReferenceDate() time.Time {
	if r.LastActivityAt != nil {
		return *r.LastActivityAt
	}
	return r.CreatedAt
}
