package db

import (
	"billingapp/internal/config"
	"billingapp/internal/model"
	"billingapp/pkg/db"

	"gorm.io/gorm"
)

var DB *gorm.DB

// Init подключается к базе данных и мигрирует таблицы движка напоминаний.
// Вызывается один раз при старте из main.
func Init() error {
	var err error

	DB, err = db.NewDatabase(db.Config{
		Host:     config.File.DataBaseConfig.Host,
		Port:     config.File.DataBaseConfig.Port,
		UserName: config.File.DataBaseConfig.UserName,
		DBName:   config.File.DataBaseConfig.DBName,
		Password: config.File.DataBaseConfig.Password,
		SSLMode:  config.File.DataBaseConfig.SSLMode,
	})
	if err != nil {
		return err
	}

	return DB.AutoMigrate(
		&model.Representative{},
		&model.ReminderRule{},
		&model.MessageTemplate{},
		&model.ReminderLog{},
	)
}
