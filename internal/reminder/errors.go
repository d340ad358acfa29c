package reminder

import "errors"

// Ошибки движка напоминаний. Проверяются через errors.Is, веб-слой
// переводит их в коды HTTP ответов.
var (
	ErrInvalidSchedule  = errors.New("невалидное cron выражение")
	ErrInvalidChannel   = errors.New("неизвестный канал доставки")
	ErrRuleNotFound     = errors.New("правило не найдено")
	ErrTemplateNotFound = errors.New("шаблон не найден")
	ErrLogNotFound      = errors.New("запись журнала не найдена")
)
