package main

import (
	"os"
	"time"

	"billingapp/internal/channel"
	"billingapp/internal/config"
	"billingapp/internal/infrastructure/db"
	"billingapp/internal/infrastructure/logger"
	"billingapp/internal/reminder"
	u "billingapp/internal/utils"
	"billingapp/internal/web"
)

func main() {
	HandleFatalError(u.InitGlobalLocationTime(config.File.ReminderConfig.Timezone))

	HandleFatalError(db.Init())

	stores := reminder.NewStores(db.DB)

	gateway := channel.NewGateway(channel.Config{
		Telegram: channel.TelegramConfig{
			Token:      config.File.TelegramConfig.Token,
			BufferSize: config.File.TelegramConfig.MsgBufferSize,
			SendPause:  time.Duration(config.File.TelegramConfig.RequestUpdatePause) * time.Millisecond,
		},
		Sms: channel.SmsConfig{
			AccountID:  config.File.SmsConfig.AccountID,
			Token:      config.File.SmsConfig.Token,
			FromNumber: config.File.SmsConfig.FromNumber,
			APIURL:     config.File.SmsConfig.APIURL,
			BufferSize: config.File.SmsConfig.BufferSize,
			SendPause:  time.Duration(config.File.SmsConfig.SendPause) * time.Millisecond,
		},
		Email: channel.EmailConfig{
			APIKey:      config.File.EmailConfig.APIKey,
			FromAddress: config.File.EmailConfig.FromAddress,
			APIURL:      config.File.EmailConfig.APIURL,
			BufferSize:  config.File.EmailConfig.BufferSize,
			SendPause:   time.Duration(config.File.EmailConfig.SendPause) * time.Millisecond,
		},
		Logger: logger.Log,
	})

	evaluator := reminder.NewEligibilityEvaluator(stores.Representatives)
	guard := reminder.NewDedupGuard(stores.Logs, time.Duration(config.File.ReminderConfig.CooldownHours)*time.Hour)
	executor := reminder.NewExecutor(evaluator, guard, stores.Templates, stores.Logs, gateway, config.File.ReminderConfig.DefaultLanguage)

	scheduler := reminder.NewScheduler(stores.Rules, executor, time.Local)
	defer scheduler.Stop()

	HandleFatalError(scheduler.Initialize())

	app := web.NewWebApp(web.Deps{
		Scheduler:  scheduler,
		Evaluator:  evaluator,
		Guard:      guard,
		Rules:      stores.Rules,
		Templates:  stores.Templates,
		Logs:       stores.Logs,
		Aggregator: reminder.NewAggregator(stores.Logs),
	})

	HandleFatalError(app.HandleUpdates())
}

// HandleFatalError если err ошибка, то логгирует ее и завершает процесс
func HandleFatalError(err error) error {
	if err != nil {
		logger.Error("Критическая ошибка: ", err)
		os.Exit(1)
	}
	return nil
}
