package model

import "gorm.io/gorm"

// MessageTemplate шаблон сообщения с плейсхолдерами вида {{имя}}.
// Нераспознанные плейсхолдеры при рендеринге остаются как есть.
type MessageTemplate struct {
	gorm.Model

	Name      string     `gorm:"column:name;not null"`             // Название шаблона
	Language  string     `gorm:"column:language;not null;default:fa"` // Язык шаблона
	Channel   string     `gorm:"column:channel;not null"`          // Канал, для которого предназначен шаблон
	Subject   string     `gorm:"column:subject"`                   // Тема письма. Используется только для email
	Content   string     `gorm:"column:content;not null"`          // Тело сообщения с плейсхолдерами
	Variables StringList `gorm:"column:variables;type:jsonb"`      // Объявленные имена плейсхолдеров
}
