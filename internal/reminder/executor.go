package reminder

import (
	"fmt"
	"strconv"
	"time"

	"billingapp/internal/channel"
	"billingapp/internal/infrastructure/logger"
	"billingapp/internal/model"
	"billingapp/internal/template"
	"billingapp/internal/utils"

	"github.com/google/uuid"
)

// DeliveryGateway отправка сообщений по каналам. Реализации не возвращают
// ошибок Go для ожидаемых сбоев: любой исход выражается DeliveryResult.
type DeliveryGateway interface {
	SendTelegram(username string, chatID int64, message string) channel.DeliveryResult
	SendSms(phoneNumber, message string) channel.DeliveryResult
	SendEmail(address, subject, body string) channel.DeliveryResult
}

// ExecutionSummary итог одного срабатывания правила
type ExecutionSummary struct {
	SuccessCount int   `json:"successCount"` // Аккаунты, обработанные без ошибок
	FailureCount int   `json:"failureCount"` // Аккаунты с необработанной ошибкой
	SkippedCount int   `json:"skippedCount"` // Аккаунты, пропущенные из-за окна охлаждения
	DurationMs   int64 `json:"durationMs"`
}

// ReminderContext значения плейсхолдеров для одного аккаунта в одном срабатывании
type ReminderContext struct {
	RepresentativeName string
	StoreName          string
	DebtAmount         string
	DaysOverdue        int
	PanelUsername      string
}

// Values возвращает значения в виде карты плейсхолдеров шаблона
func (c ReminderContext) Values() map[string]string {
	return map[string]string{
		"representativeName": c.RepresentativeName,
		"storeName":          c.StoreName,
		"debtAmount":         c.DebtAmount,
		"daysOverdue":        strconv.Itoa(c.DaysOverdue),
		"panelUsername":      c.PanelUsername,
	}
}

type accountResult int

const (
	accountDelivered accountResult = iota
	accountSkipped
	accountFailed
)

// Executor выполняет одно срабатывание правила: отбор аккаунтов, окно
// охлаждения, рендеринг шаблона, доставка по каналам и записи в журнал.
type Executor struct {
	evaluator       *EligibilityEvaluator
	guard           *DedupGuard
	templates       TemplateStore
	logs            LogStore
	gateway         DeliveryGateway
	defaultLanguage string
	now             func() time.Time
}

// NewExecutor создает исполнитель правил
func NewExecutor(evaluator *EligibilityEvaluator, guard *DedupGuard, templates TemplateStore, logs LogStore, gateway DeliveryGateway, defaultLanguage string) *Executor {
	if defaultLanguage == "" {
		defaultLanguage = "fa"
	}
	return &Executor{
		evaluator:       evaluator,
		guard:           guard,
		templates:       templates,
		logs:            logs,
		gateway:         gateway,
		defaultLanguage: defaultLanguage,
		now:             time.Now,
	}
}

// ExecuteRule обрабатывает одно срабатывание правила. Ошибка одного аккаунта
// не прерывает обработку остальных.
func (e *Executor) ExecuteRule(rule *model.ReminderRule) ExecutionSummary {
	start := e.now()
	var summary ExecutionSummary

	reps, err := e.evaluator.FindEligible(rule.TriggerConditions)
	if err != nil {
		logger.Errorf("Правило %q (%d): не удалось отобрать аккаунты: %v", rule.Name, rule.ID, err)
		summary.DurationMs = e.now().Sub(start).Milliseconds()
		return summary
	}

	executionID := uuid.NewString()
	logger.Infof("Правило %q (%d): отобрано %d аккаунтов", rule.Name, rule.ID, len(reps))

	for i := range reps {
		switch e.processAccount(rule, &reps[i], executionID) {
		case accountSkipped:
			summary.SkippedCount++
		case accountFailed:
			summary.FailureCount++
		default:
			summary.SuccessCount++
		}
	}

	summary.DurationMs = e.now().Sub(start).Milliseconds()
	logger.Infof("Правило %q (%d): обработано %d, ошибок %d, пропущено %d за %d мс",
		rule.Name, rule.ID, summary.SuccessCount, summary.FailureCount, summary.SkippedCount, summary.DurationMs)
	return summary
}

// processAccount обрабатывает один аккаунт. Паника внутри обработки гасится
// и считается ошибкой аккаунта, чтобы партия продолжилась.
func (e *Executor) processAccount(rule *model.ReminderRule, rep *model.Representative, executionID string) (result accountResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Правило %d, аккаунт %d: необработанная ошибка: %v", rule.ID, rep.ID, r)
			result = accountFailed
		}
	}()

	if e.guard.WasRecentlyReminded(rep.ID, rule.ID) {
		return accountSkipped
	}

	tpl, err := e.resolveTemplate(rule)
	if err != nil {
		logger.Errorf("Правило %d, аккаунт %d: не удалось подобрать шаблон: %v", rule.ID, rep.ID, err)
		return accountFailed
	}

	ctx := e.buildContext(rep)
	content := template.Render(tpl.Content, ctx.Values())
	subject := template.Render(tpl.Subject, ctx.Values())

	// Аккаунт без контакта для канала пропускает канал, это не ошибка доставки.
	// В журнал попадает только реальная попытка отправки.
	attempted := false
	for _, ch := range rule.Channels {
		var res channel.DeliveryResult
		switch ch {
		case model.ChannelTelegram:
			if rep.PanelUsername == "" && rep.TelegramChatID == 0 {
				continue
			}
			res = e.gateway.SendTelegram(rep.PanelUsername, rep.TelegramChatID, content)
		case model.ChannelSms:
			if rep.PhoneNumber == "" {
				continue
			}
			res = e.gateway.SendSms(rep.PhoneNumber, content)
		case model.ChannelEmail:
			if rep.Email == "" {
				continue
			}
			res = e.gateway.SendEmail(rep.Email, subject, content)
		default:
			logger.Warnf("Правило %d: канал %q пропущен как неизвестный", rule.ID, ch)
			continue
		}

		attempted = true
		e.appendLog(rule, rep, executionID, ch, content, res)
	}

	if attempted {
		e.guard.MarkReminded(rep.ID, rule.ID)
	}
	return accountDelivered
}

// resolveTemplate возвращает шаблон правила, а при его отсутствии — самый
// свежий шаблон для первого канала правила на языке по умолчанию
func (e *Executor) resolveTemplate(rule *model.ReminderRule) (*model.MessageTemplate, error) {
	if rule.TemplateID != nil {
		return e.templates.ByID(*rule.TemplateID)
	}
	if len(rule.Channels) == 0 {
		return nil, fmt.Errorf("%w: у правила нет каналов", ErrTemplateNotFound)
	}
	return e.templates.Newest(rule.Channels[0], e.defaultLanguage)
}

func (e *Executor) buildContext(rep *model.Representative) ReminderContext {
	name := rep.OwnerName
	if name == "" {
		name = rep.StoreName
	}
	return ReminderContext{
		RepresentativeName: name,
		StoreName:          rep.StoreName,
		DebtAmount:         rep.Debt().String(),
		DaysOverdue:        utils.DaysSinceCeil(rep.ReferenceDate(), e.now()),
		PanelUsername:      rep.PanelUsername,
	}
}

func (e *Executor) appendLog(rule *model.ReminderRule, rep *model.Representative, executionID, ch, content string, res channel.DeliveryResult) {
	status := model.DeliverySent
	if !res.Success {
		status = model.DeliveryFailed
	}

	entry := &model.ReminderLog{
		RepresentativeID:  rep.ID,
		RuleID:            rule.ID,
		ExecutionID:       executionID,
		Channel:           ch,
		MessageContent:    content,
		DeliveryStatus:    status,
		ProviderMessageID: res.MessageID,
		ErrorMessage:      res.Error,
		Cost:              res.Cost,
		SentAt:            e.now(),
	}

	if err := e.logs.Append(entry); err != nil {
		logger.Errorf("Правило %d, аккаунт %d: не удалось записать журнал доставки: %v", rule.ID, rep.ID, err)
	}
}
