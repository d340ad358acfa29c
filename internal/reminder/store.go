package reminder

import (
	"errors"
	"time"

	"billingapp/internal/model"

	"gorm.io/gorm"
)

// RepresentativeStore доступ к аккаунтам представителей. Движок только читает их.
type RepresentativeStore interface {
	ListActive() ([]model.Representative, error)
}

// RuleStore хранилище правил напоминаний
type RuleStore interface {
	Create(rule *model.ReminderRule) error
	Save(rule *model.ReminderRule) error
	ByID(id uint) (*model.ReminderRule, error)
	ListAll() ([]model.ReminderRule, error)
	ListActive() ([]model.ReminderRule, error)
}

// TemplateStore хранилище шаблонов сообщений
type TemplateStore interface {
	Create(tpl *model.MessageTemplate) error
	ByID(id uint) (*model.MessageTemplate, error)
	List(channel, language string) ([]model.MessageTemplate, error)
	Newest(channel, language string) (*model.MessageTemplate, error)
}

// LogFilter фильтр выборки журнала доставки
type LogFilter struct {
	Start   time.Time
	End     time.Time
	RuleID  uint
	Channel string
	Status  string
}

// LogStore журнал доставки, только для добавления. Единственное разрешенное
// изменение существующей строки — отметка о полученном ответе.
type LogStore interface {
	Append(entry *model.ReminderLog) error
	HasRecent(representativeID, ruleID uint, since time.Time) (bool, error)
	List(filter LogFilter) ([]model.ReminderLog, error)
	MarkResponseReceived(id uint) error
}

// Stores все хранилища движка поверх одной базы данных
type Stores struct {
	Representatives RepresentativeStore
	Rules           RuleStore
	Templates       TemplateStore
	Logs            LogStore
}

// NewStores создает gorm реализации всех хранилищ
func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Representatives: &gormRepresentativeStore{db: db},
		Rules:           &gormRuleStore{db: db},
		Templates:       &gormTemplateStore{db: db},
		Logs:            &gormLogStore{db: db},
	}
}

type gormRepresentativeStore struct {
	db *gorm.DB
}

func (s *gormRepresentativeStore) ListActive() ([]model.Representative, error) {
	var reps []model.Representative
	err := s.db.Where("is_active = ?", true).Find(&reps).Error
	return reps, err
}

type gormRuleStore struct {
	db *gorm.DB
}

func (s *gormRuleStore) Create(rule *model.ReminderRule) error {
	return s.db.Create(rule).Error
}

func (s *gormRuleStore) Save(rule *model.ReminderRule) error {
	return s.db.Save(rule).Error
}

func (s *gormRuleStore) ByID(id uint) (*model.ReminderRule, error) {
	var rule model.ReminderRule
	err := s.db.First(&rule, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *gormRuleStore) ListAll() ([]model.ReminderRule, error) {
	var rules []model.ReminderRule
	err := s.db.Order("created_at DESC").Find(&rules).Error
	return rules, err
}

func (s *gormRuleStore) ListActive() ([]model.ReminderRule, error) {
	var rules []model.ReminderRule
	err := s.db.Where("is_active = ?", true).Find(&rules).Error
	return rules, err
}

type gormTemplateStore struct {
	db *gorm.DB
}

func (s *gormTemplateStore) Create(tpl *model.MessageTemplate) error {
	return s.db.Create(tpl).Error
}

func (s *gormTemplateStore) ByID(id uint) (*model.MessageTemplate, error) {
	var tpl model.MessageTemplate
	err := s.db.First(&tpl, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *gormTemplateStore) List(channel, language string) ([]model.MessageTemplate, error) {
	query := s.db.Order("created_at DESC")
	if channel != "" {
		query = query.Where("channel = ?", channel)
	}
	if language != "" {
		query = query.Where("language = ?", language)
	}

	var templates []model.MessageTemplate
	err := query.Find(&templates).Error
	return templates, err
}

func (s *gormTemplateStore) Newest(channel, language string) (*model.MessageTemplate, error) {
	var tpl model.MessageTemplate
	err := s.db.Where("channel = ? AND language = ?", channel, language).
		Order("created_at DESC").
		First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

type gormLogStore struct {
	db *gorm.DB
}

func (s *gormLogStore) Append(entry *model.ReminderLog) error {
	return s.db.Create(entry).Error
}

func (s *gormLogStore) HasRecent(representativeID, ruleID uint, since time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&model.ReminderLog{}).
		Where("representative_id = ? AND rule_id = ? AND sent_at >= ?", representativeID, ruleID, since).
		Count(&count).Error
	return count > 0, err
}

func (s *gormLogStore) List(filter LogFilter) ([]model.ReminderLog, error) {
	query := s.db.Order("sent_at DESC")
	if !filter.Start.IsZero() {
		query = query.Where("sent_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		query = query.Where("sent_at <= ?", filter.End)
	}
	if filter.RuleID != 0 {
		query = query.Where("rule_id = ?", filter.RuleID)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}
	if filter.Status != "" {
		query = query.Where("delivery_status = ?", filter.Status)
	}

	var entries []model.ReminderLog
	err := query.Find(&entries).Error
	return entries, err
}

func (s *gormLogStore) MarkResponseReceived(id uint) error {
	result := s.db.Model(&model.ReminderLog{}).
		Where("id = ?", id).
		Update("response_received", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLogNotFound
	}
	return nil
}
