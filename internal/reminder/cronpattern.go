package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronField допустимый диапазон одного поля cron выражения
type cronField struct {
	name string
	min  int
	max  int
}

var cronFields = [5]cronField{
	{"минуты", 0, 59},
	{"часы", 0, 23},
	{"день месяца", 1, 31},
	{"месяц", 1, 12},
	{"день недели", 0, 6},
}

// ValidateSchedulePattern проверяет cron выражение из 5 полей. Каждое поле —
// либо *, либо целое число в диапазоне поля, либо шаг вида */N. Диапазоны,
// списки и имена месяцев не допускаются, хотя библиотека планировщика их
// понимает: правило должно отклоняться при создании, а не удивлять при
// срабатывании. Невалидное выражение возвращает ErrInvalidSchedule.
func ValidateSchedulePattern(pattern string) error {
	fields := strings.Fields(strings.TrimSpace(pattern))
	if len(fields) != 5 {
		return fmt.Errorf("%w: ожидается 5 полей, получено %d", ErrInvalidSchedule, len(fields))
	}

	for i, field := range fields {
		if err := validateCronField(field, cronFields[i]); err != nil {
			return fmt.Errorf("%w: поле %q (%s): %v", ErrInvalidSchedule, field, cronFields[i].name, err)
		}
	}

	return nil
}

func validateCronField(field string, bounds cronField) error {
	if field == "*" {
		return nil
	}

	if step, ok := strings.CutPrefix(field, "*/"); ok {
		n, err := strconv.Atoi(step)
		if err != nil {
			return fmt.Errorf("шаг должен быть целым числом")
		}
		if n < 1 || n > bounds.max {
			return fmt.Errorf("шаг %d вне диапазона 1–%d", n, bounds.max)
		}
		return nil
	}

	n, err := strconv.Atoi(field)
	if err != nil {
		return fmt.Errorf("ожидается *, число или */N")
	}
	if n < bounds.min || n > bounds.max {
		return fmt.Errorf("значение %d вне диапазона %d–%d", n, bounds.min, bounds.max)
	}
	return nil
}

// NextFireTime возвращает ближайшее время срабатывания выражения после from.
// Выражение должно быть заранее проверено через ValidateSchedulePattern.
func NextFireTime(pattern string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(pattern)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return schedule.Next(from), nil
}
