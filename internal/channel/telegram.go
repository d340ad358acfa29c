package channel

import (
	"strconv"
	"time"

	"billingapp/pkg/logger/interfaces"
	"billingapp/pkg/request"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramSender отправляет напоминания через телеграм бота. Все отправки идут
// через очередь с паузой, чтобы не упереться в лимиты Bot API.
type telegramSender struct {
	bot *tgbotapi.BotAPI
	req *request.RequestHandler
}

func newTelegramSender(conf TelegramConfig, log interfaces.SimpleLogger) *telegramSender {
	sender := &telegramSender{}

	if conf.Token == "" {
		if log != nil {
			log.Info("Телеграм канал не настроен: токен бота не задан")
		}
		return sender
	}

	bot, err := tgbotapi.NewBotAPI(conf.Token)
	if err != nil {
		if log != nil {
			log.Errorf("Не удается инициализировать бота telegram, канал будет недоступен: %v", err)
		}
		return sender
	}

	bufferSize := conf.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	req, err := request.NewRequestHandler(request.Config{
		BufferSize: bufferSize,
		Logger:     log,
	})
	if err != nil {
		if log != nil {
			log.Errorf("Не удалось создать очередь отправки телеграм: %v", err)
		}
		return sender
	}

	pause := conf.SendPause
	if pause <= 0 {
		pause = time.Second
	}
	go req.ProcessRequests(pause)

	sender.bot = bot
	sender.req = req
	return sender
}

// Send отправляет сообщение. Если chatID нулевой, сообщение уходит на
// @username: так работает привязка представителя, который еще не писал боту.
func (s *telegramSender) Send(username string, chatID int64, message string) DeliveryResult {
	if s.bot == nil {
		return failure("телеграм канал не настроен")
	}
	if username == "" && chatID == 0 {
		return failure("у представителя нет логина панели для телеграм")
	}

	var msg tgbotapi.MessageConfig
	if chatID != 0 {
		msg = tgbotapi.NewMessage(chatID, message)
	} else {
		msg = tgbotapi.NewMessageToChannel("@"+username, message)
	}
	msg.ParseMode = "html"

	var result DeliveryResult
	err := s.req.HandleSyncRequest(func() error {
		sent, err := s.bot.Send(msg)
		if err != nil {
			result = failure("телеграм не принял сообщение: %v", err)
			return nil
		}
		result = DeliveryResult{
			Success:   true,
			MessageID: strconv.Itoa(sent.MessageID),
		}
		return nil
	})
	if err != nil {
		return failure("очередь отправки телеграм недоступна: %v", err)
	}

	return result
}
