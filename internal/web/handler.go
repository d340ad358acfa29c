package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"billingapp/internal/infrastructure/logger"
	"billingapp/internal/model"
	"billingapp/internal/reminder"

	"github.com/gorilla/mux"
)

// apiResponse единый конверт ответов API
type apiResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Не удалось записать ответ: ", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusFor(err))
	if encErr := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: err.Error()}); encErr != nil {
		logger.Error("Не удалось записать ответ: ", encErr)
	}
}

// statusFor переводит ошибки доменного слоя в HTTP статусы
func statusFor(err error) int {
	var badRequest *badRequestError
	switch {
	case errors.As(err, &badRequest),
		errors.Is(err, reminder.ErrInvalidSchedule),
		errors.Is(err, reminder.ErrInvalidChannel):
		return http.StatusBadRequest
	case errors.Is(err, reminder.ErrRuleNotFound),
		errors.Is(err, reminder.ErrTemplateNotFound),
		errors.Is(err, reminder.ErrLogNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// badRequestError ошибка разбора входных данных запроса
type badRequestError struct {
	message string
}

func (e *badRequestError) Error() string { return e.message }

func errBadRequestf(format string, args ...interface{}) error {
	return &badRequestError{message: fmt.Sprintf(format, args...)}
}

func pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errBadRequestf("некорректный идентификатор %q", raw)
	}
	return uint(id), nil
}

// HandleGetRules список всех правил, новые первыми
func (app *WebApp) HandleGetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := app.rules.ListAll()
	if err != nil {
		logger.Error("HandleGetRules. Не удалось получить правила: ", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rules)
}

// HandlePostRule создание правила
func (app *WebApp) HandlePostRule(w http.ResponseWriter, r *http.Request) {
	var spec reminder.RuleSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, errBadRequestf("ошибка при разборе JSON: %v", err))
		return
	}

	rule, err := app.scheduler.CreateRule(spec)
	if err != nil {
		logger.Warn("(", r.RemoteAddr, ") HandlePostRule. Правило отклонено: ", err)
		writeError(w, err)
		return
	}

	logger.Info("(", r.RemoteAddr, ") HandlePostRule. Создано правило ", rule.Name, " (", rule.ID, ")")
	writeData(w, http.StatusCreated, rule)
}

// HandlePutRule частичное обновление правила
func (app *WebApp) HandlePutRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch reminder.RulePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, errBadRequestf("ошибка при разборе JSON: %v", err))
		return
	}

	rule, err := app.scheduler.UpdateRule(id, patch)
	if err != nil {
		logger.Warn("(", r.RemoteAddr, ") HandlePutRule. Обновление отклонено: ", err)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, rule)
}

// HandleDeleteRule мягкая деактивация правила
func (app *WebApp) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := app.scheduler.DeactivateRule(id); err != nil {
		writeError(w, err)
		return
	}

	logger.Info("(", r.RemoteAddr, ") HandleDeleteRule. Правило ", id, " деактивировано")
	writeData(w, http.StatusOK, nil)
}

// dryRunReport результат пробного запуска правила. Отправки не происходит.
type dryRunReport struct {
	RuleName            string                  `json:"ruleName"`
	NextFireTime        time.Time               `json:"nextFireTime"`
	EstimatedRecipients int                     `json:"estimatedRecipients"`
	Channels            []string                `json:"channels"`
	Conditions          model.TriggerConditions `json:"conditions"`
}

// HandleTestRule пробный запуск: показывает, кого правило заденет при
// следующем срабатывании, без отправки сообщений
func (app *WebApp) HandleTestRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rule, err := app.rules.ByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	next, err := app.scheduler.NextFireTime(rule)
	if err != nil {
		writeError(w, err)
		return
	}

	eligible, err := app.evaluator.FindEligible(rule.TriggerConditions)
	if err != nil {
		writeError(w, err)
		return
	}

	recipients := 0
	for _, rep := range eligible {
		if !app.guard.WasRecentlyReminded(rep.ID, rule.ID) {
			recipients++
		}
	}

	writeData(w, http.StatusOK, dryRunReport{
		RuleName:            rule.Name,
		NextFireTime:        next,
		EstimatedRecipients: recipients,
		Channels:            rule.Channels,
		Conditions:          rule.TriggerConditions,
	})
}

// HandleGetTemplates список шаблонов с фильтрами по каналу и языку
func (app *WebApp) HandleGetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := app.templates.List(r.URL.Query().Get("channel"), r.URL.Query().Get("language"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, templates)
}

// HandlePostTemplate создание шаблона
func (app *WebApp) HandlePostTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl model.MessageTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeError(w, errBadRequestf("ошибка при разборе JSON: %v", err))
		return
	}

	if tpl.Content == "" {
		writeError(w, errBadRequestf("тело шаблона не может быть пустым"))
		return
	}
	if !model.KnownChannel(tpl.Channel) {
		writeError(w, errBadRequestf("неизвестный канал %q", tpl.Channel))
		return
	}

	if err := app.templates.Create(&tpl); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, tpl)
}

// logsReport выборка журнала вместе со сводкой по ней
type logsReport struct {
	Entries []model.ReminderLog `json:"entries"`
	Summary reminder.Analytics  `json:"summary"`
}

// HandleGetLogs журнал доставки с фильтрами периода, правила, канала и статуса
func (app *WebApp) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := reminder.LogFilter{
		Channel: query.Get("channel"),
		Status:  query.Get("status"),
	}

	var err error
	if filter.Start, err = parseOptionalTime(query.Get("start")); err != nil {
		writeError(w, err)
		return
	}
	if filter.End, err = parseOptionalTime(query.Get("end")); err != nil {
		writeError(w, err)
		return
	}
	if raw := query.Get("ruleId"); raw != "" {
		ruleID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, errBadRequestf("некорректный ruleId %q", raw))
			return
		}
		filter.RuleID = uint(ruleID)
	}

	entries, err := app.logs.List(filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, logsReport{
		Entries: entries,
		Summary: reminder.ComputeAnalytics(entries),
	})
}

// HandlePostLogResponse отметка о том, что представитель отреагировал на
// напоминание. Вызывается внешней интеграцией панели.
func (app *WebApp) HandlePostLogResponse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := app.logs.MarkResponseReceived(id); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, nil)
}

// HandleGetAnalytics сводка доставки за период. Период обязателен.
func (app *WebApp) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("start") == "" || query.Get("end") == "" {
		writeError(w, errBadRequestf("параметры start и end обязательны"))
		return
	}

	start, err := parseOptionalTime(query.Get("start"))
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseOptionalTime(query.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}

	analytics, err := app.aggregator.GetAnalytics(start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, analytics)
}

// parseOptionalTime принимает RFC3339 или дату без времени
func parseOptionalTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, errBadRequestf("не удалось разобрать время %q", raw)
}
