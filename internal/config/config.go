package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	WebConfig
	TelegramConfig
	SmsConfig
	EmailConfig
	DataBaseConfig
	ReminderConfig
	LoggerConfig
}

type WebConfig struct {
	APPIP   string `envconfig:"APP_IP" default:"localhost"` // IP адрес приложения
	APPPORT string `envconfig:"APP_PORT" default:"8080"`    // Порт приложения
	// Ограничение количества запросов от одного IP (запросов в секунду)
	RateLimitPerSecond float64 `envconfig:"APP_RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int     `envconfig:"APP_RATE_LIMIT_BURST" default:"20"`
}

// TelegramConfig настройки телеграм канала. Пустой токен означает, что канал
// не настроен: отправка будет возвращать ошибку доставки, но приложение запустится.
type TelegramConfig struct {
	Token              string `envconfig:"TELEGRAM_TOKEN" default:""`                                // Токен бота
	MsgBufferSize      int    `envconfig:"TELEGRAM_MESSAGE_BUFFER_SIZE" default:"100"`               // Размер буфера для сообщений
	RequestUpdatePause int    `envconfig:"TELEGRAM_REQUEST_UPDATE_PAUSE_MILLISECOND" default:"1000"` // Пауза между отправками сообщений
}

// SmsConfig настройки SMS провайдера. Отсутствие любого из полей означает,
// что канал не настроен.
type SmsConfig struct {
	AccountID  string `envconfig:"SMS_ACCOUNT_ID" default:""`              // ID аккаунта у провайдера
	Token      string `envconfig:"SMS_TOKEN" default:""`                   // Токен доступа к API провайдера
	FromNumber string `envconfig:"SMS_FROM_NUMBER" default:""`             // Номер отправителя
	APIURL     string `envconfig:"SMS_API_URL" default:""`                 // URL API провайдера
	BufferSize int    `envconfig:"SMS_BUFFER_SIZE" default:"100"`          // Размер буфера запросов к провайдеру
	SendPause  int    `envconfig:"SMS_SEND_PAUSE_MILLISECOND" default:"200"` // Пауза между запросами к провайдеру
}

// EmailConfig настройки email провайдера. Пустой ключ — канал не настроен.
type EmailConfig struct {
	APIKey      string `envconfig:"EMAIL_API_KEY" default:""`                  // Ключ API провайдера
	FromAddress string `envconfig:"EMAIL_FROM_ADDRESS" default:""`             // Адрес отправителя
	APIURL      string `envconfig:"EMAIL_API_URL" default:""`                  // URL API провайдера
	BufferSize  int    `envconfig:"EMAIL_BUFFER_SIZE" default:"100"`           // Размер буфера запросов к провайдеру
	SendPause   int    `envconfig:"EMAIL_SEND_PAUSE_MILLISECOND" default:"200"` // Пауза между запросами к провайдеру
}

type DataBaseConfig struct {
	Host     string `envconfig:"DBHOST" default:"localhost"` // IP адрес для подключения к БД
	Port     string `envconfig:"DBPORT" default:""`          // Port для подключения к БД
	DBName   string `envconfig:"DBNAME" default:"billing"`   // Имя базы данных
	UserName string `envconfig:"DBUSER" default:"postgres"`  // Имя пользователя
	Password string `envconfig:"DBPASS" default:""`          // Пароль пользователя
	SSLMode  string `envconfig:"DBSSLMODE" default:"disable"`
}

type ReminderConfig struct {
	// Часовой пояс, в котором считаются расписания напоминаний. Один на все правила.
	Timezone string `envconfig:"REMINDER_TIMEZONE" default:"Asia/Tehran"`
	// Окно подавления повторных напоминаний по одной паре (аккаунт, правило), в часах
	CooldownHours int `envconfig:"REMINDER_COOLDOWN_HOURS" default:"24"`
	// Язык шаблона по умолчанию, если правило не ссылается на шаблон явно
	DefaultLanguage string `envconfig:"REMINDER_DEFAULT_LANGUAGE" default:"fa"`
}

type LoggerConfig struct {
	LogDir      string `envconfig:"LOG_DIR" default:""` // Директория для логов. Пустая строка — только консоль
	MaxFileSize int64  `envconfig:"LOG_MAX_FILE_SIZE" default:"10485760"` // 10MB в байтах
	TimeFormat  string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02_15-04-05"`
	FilePattern string `envconfig:"LOG_FILE_PATTERN" default:"reminder_bot_%s.log"`
}

var File *Config

func init() {
	// Загрузка файла .env. Отсутствие файла не ошибка: все параметры имеют
	// значения по умолчанию, а каналы без настроек считаются недоступными.
	if err := godotenv.Load("../../config/reminder_bot/.env"); err != nil {
		_ = godotenv.Load()
	}

	File = &Config{}
	err := envconfig.Process("", File)
	if err != nil {
		panic(err)
	}
	fmt.Println("Загруженные параметры: \n", File)
}
