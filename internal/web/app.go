package web

import (
	"net/http"

	"billingapp/internal/config"
	"billingapp/internal/infrastructure/logger"
	"billingapp/internal/reminder"

	"github.com/gorilla/mux"
)

// WebApp веб приложение панели напоминаний. Отдает REST для управления
// правилами, шаблонами и журналом доставки.
type WebApp struct {
	Router *mux.Router // Маршрутизатор

	scheduler  *reminder.Scheduler
	evaluator  *reminder.EligibilityEvaluator
	guard      *reminder.DedupGuard
	rules      reminder.RuleStore
	templates  reminder.TemplateStore
	logs       reminder.LogStore
	aggregator *reminder.Aggregator
}

// Deps зависимости веб приложения
type Deps struct {
	Scheduler  *reminder.Scheduler
	Evaluator  *reminder.EligibilityEvaluator
	Guard      *reminder.DedupGuard
	Rules      reminder.RuleStore
	Templates  reminder.TemplateStore
	Logs       reminder.LogStore
	Aggregator *reminder.Aggregator
}

// NewWebApp создает и возвращает веб приложение
func NewWebApp(deps Deps) *WebApp {
	app := WebApp{
		scheduler:  deps.Scheduler,
		evaluator:  deps.Evaluator,
		guard:      deps.Guard,
		rules:      deps.Rules,
		templates:  deps.Templates,
		logs:       deps.Logs,
		aggregator: deps.Aggregator,
	}
	app.Router = app.SetRoutes()
	return &app
}

// HandleUpdates запускает прослушивание HTTP запросов
func (app *WebApp) HandleUpdates() error {
	addr := config.File.WebConfig.APPIP + ":" + config.File.WebConfig.APPPORT
	logger.Info("Веб приложение слушает ", addr)
	return http.ListenAndServe(addr, app.Router)
}
