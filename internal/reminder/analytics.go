package reminder

import (
	"time"

	"billingapp/internal/model"
)

// Analytics сводка доставки напоминаний за период
type Analytics struct {
	TotalSent        int            `json:"totalSent"`        // Всего попыток доставки
	SuccessRate      float64        `json:"successRate"`      // Доля успешных доставок
	ResponseRate     float64        `json:"responseRate"`     // Доля попыток с ответом представителя
	ChannelBreakdown map[string]int `json:"channelBreakdown"` // Количество попыток по каналам
}

// Aggregator считает сводку по журналу доставки
type Aggregator struct {
	logs LogStore
}

// NewAggregator создает агрегатор поверх журнала доставки
func NewAggregator(logs LogStore) *Aggregator {
	return &Aggregator{logs: logs}
}

// GetAnalytics возвращает сводку за период [start, end]
func (a *Aggregator) GetAnalytics(start, end time.Time) (Analytics, error) {
	entries, err := a.logs.List(LogFilter{Start: start, End: end})
	if err != nil {
		return Analytics{ChannelBreakdown: map[string]int{}}, err
	}
	return ComputeAnalytics(entries), nil
}

// ComputeAnalytics считает сводку по готовой выборке журнала. Пустая выборка
// дает нулевые доли, а не деление на ноль.
func ComputeAnalytics(entries []model.ReminderLog) Analytics {
	analytics := Analytics{
		ChannelBreakdown: make(map[string]int),
	}

	sent := 0
	responded := 0
	for _, entry := range entries {
		analytics.TotalSent++
		analytics.ChannelBreakdown[entry.Channel]++
		if entry.DeliveryStatus == model.DeliverySent {
			sent++
		}
		if entry.ResponseReceived {
			responded++
		}
	}

	if analytics.TotalSent > 0 {
		analytics.SuccessRate = float64(sent) / float64(analytics.TotalSent)
		analytics.ResponseRate = float64(responded) / float64(analytics.TotalSent)
	}

	return analytics
}
