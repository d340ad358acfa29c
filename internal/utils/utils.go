package utils

import (
	"fmt"
	"math"
	"time"
)

// InitGlobalLocationTime устанавливает часовой пояс по умолчанию для всего процесса.
// Напоминания чувствительны к часовому поясу: расписания всех правил считаются
// в одном бизнес-поясе.
func InitGlobalLocationTime(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("ошибка при смене локации на %s: %w", name, err)
	}
	time.Local = loc
	return nil
}

// DaysSinceCeil возвращает количество полных дней, прошедших с момента from,
// округленное вверх. Будущие даты дают ноль.
func DaysSinceCeil(from, now time.Time) int {
	elapsed := now.Sub(from)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}
