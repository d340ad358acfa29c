package reminder

import (
	"time"

	"billingapp/internal/model"
)

// EligibilityEvaluator отбирает аккаунты представителей, подходящие под
// условия срабатывания правила
type EligibilityEvaluator struct {
	reps RepresentativeStore
	now  func() time.Time
}

// NewEligibilityEvaluator создает оценщик условий поверх хранилища аккаунтов
func NewEligibilityEvaluator(reps RepresentativeStore) *EligibilityEvaluator {
	return &EligibilityEvaluator{
		reps: reps,
		now:  time.Now,
	}
}

// FindEligible возвращает активные аккаунты, удовлетворяющие всем заполненным
// условиям. Пустой набор условий отбирает все активные аккаунты.
// Пороговые сравнения долга выполняются над десятичными числами в коде,
// а не собранными в строку SQL выражениями.
func (e *EligibilityEvaluator) FindEligible(conditions model.TriggerConditions) ([]model.Representative, error) {
	reps, err := e.reps.ListActive()
	if err != nil {
		return nil, err
	}

	now := e.now()
	eligible := make([]model.Representative, 0, len(reps))
	for _, rep := range reps {
		if matchesConditions(&rep, conditions, now) {
			eligible = append(eligible, rep)
		}
	}

	return eligible, nil
}

// matchesConditions проверяет один аккаунт. Все заполненные поля условий
// должны выполняться одновременно, незаполненные не накладывают ограничений.
func matchesConditions(rep *model.Representative, c model.TriggerConditions, now time.Time) bool {
	if c.DebtAmountMin != nil && rep.Debt().LessThan(*c.DebtAmountMin) {
		return false
	}
	if c.DebtAmountMax != nil && rep.Debt().GreaterThan(*c.DebtAmountMax) {
		return false
	}
	if c.DaysOverdue != nil {
		// Дата отсчета должна быть как минимум N дней в прошлом
		threshold := now.AddDate(0, 0, -*c.DaysOverdue)
		if rep.ReferenceDate().After(threshold) {
			return false
		}
	}
	if c.LastPaymentDays != nil && rep.LastPaymentAt != nil {
		// Аккаунт без единого платежа считается просроченным по определению
		threshold := now.AddDate(0, 0, -*c.LastPaymentDays)
		if rep.LastPaymentAt.After(threshold) {
			return false
		}
	}
	if c.RiskScore != nil && rep.RiskScore < *c.RiskScore {
		return false
	}
	return true
}
