package reminder

import (
	"fmt"
	"sync"
	"time"

	"billingapp/internal/infrastructure/logger"
	"billingapp/internal/model"

	"github.com/robfig/cron/v3"
)

// RuleSpec данные для создания правила
type RuleSpec struct {
	Name              string                  `json:"name"`
	TriggerConditions model.TriggerConditions `json:"triggerConditions"`
	SchedulePattern   string                  `json:"schedulePattern"`
	Channels          []string                `json:"channels"`
	TemplateID        *uint                   `json:"templateId"`
}

// RulePatch частичное обновление правила. Нулевые указатели — поле не меняется.
// ClearTemplate снимает явную привязку шаблона: правило возвращается к подбору
// шаблона по первому каналу. Указатель на ноль этого выразить не может.
type RulePatch struct {
	Name              *string                  `json:"name"`
	TriggerConditions *model.TriggerConditions `json:"triggerConditions"`
	SchedulePattern   *string                  `json:"schedulePattern"`
	Channels          *[]string                `json:"channels"`
	TemplateID        *uint                    `json:"templateId"`
	ClearTemplate     bool                     `json:"clearTemplate"`
	IsActive          *bool                    `json:"isActive"`
}

// Scheduler владеет набором активных правил и их таймерами. Каждое активное
// правило держит одну запись в планировщике; все изменения реестра идут через
// методы этого объекта. Расписания всех правил считаются в одном
// бизнес-поясе.
type Scheduler struct {
	rules    RuleStore
	executor *Executor
	location *time.Location

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[uint]cron.EntryID
}

// NewScheduler создает планировщик правил и запускает его цикл.
// Срабатывания выполняются планировщиком в отдельных горутинах, поэтому
// долгое правило не задерживает остальные.
func NewScheduler(rules RuleStore, executor *Executor, location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}

	c := cron.New(cron.WithLocation(location))
	c.Start()

	return &Scheduler{
		rules:    rules,
		executor: executor,
		location: location,
		cron:     c,
		entries:  make(map[uint]cron.EntryID),
	}
}

// Initialize загружает все активные правила из хранилища и регистрирует их
// расписания. Сбой регистрации одного правила не мешает загрузке остальных.
func (s *Scheduler) Initialize() error {
	rules, err := s.rules.ListActive()
	if err != nil {
		return fmt.Errorf("не удалось загрузить активные правила: %w", err)
	}

	registered := 0
	for i := range rules {
		rule := &rules[i]
		// В хранилище могло попасть правило с испорченным выражением
		if err := ValidateSchedulePattern(rule.SchedulePattern); err != nil {
			logger.Errorf("Правило %q (%d) пропущено: %v", rule.Name, rule.ID, err)
			continue
		}
		if err := s.register(rule.ID, rule.SchedulePattern); err != nil {
			logger.Errorf("Правило %q (%d) пропущено: не удалось зарегистрировать расписание: %v", rule.Name, rule.ID, err)
			continue
		}
		registered++
	}

	logger.Infof("Запланировано %d правил напоминаний из %d активных", registered, len(rules))
	return nil
}

// CreateRule проверяет, сохраняет и немедленно планирует новое правило.
// При невалидном расписании или канале правило не сохраняется.
func (s *Scheduler) CreateRule(spec RuleSpec) (*model.ReminderRule, error) {
	if err := ValidateSchedulePattern(spec.SchedulePattern); err != nil {
		return nil, err
	}
	if err := validateChannels(spec.Channels); err != nil {
		return nil, err
	}

	rule := &model.ReminderRule{
		Name:              spec.Name,
		IsActive:          true,
		TriggerConditions: spec.TriggerConditions,
		SchedulePattern:   spec.SchedulePattern,
		Channels:          model.StringList(spec.Channels),
		TemplateID:        spec.TemplateID,
	}

	if err := s.rules.Create(rule); err != nil {
		return nil, err
	}

	if err := s.register(rule.ID, rule.SchedulePattern); err != nil {
		// Выражение уже проверено, сюда попасть почти невозможно
		logger.Errorf("Правило %q (%d) сохранено, но не запланировано: %v", rule.Name, rule.ID, err)
	}

	return rule, nil
}

// UpdateRule применяет частичное обновление. Старая регистрация расписания
// снимается, и если правило осталось активным, регистрируется новая.
func (s *Scheduler) UpdateRule(id uint, patch RulePatch) (*model.ReminderRule, error) {
	rule, err := s.rules.ByID(id)
	if err != nil {
		return nil, err
	}

	if patch.SchedulePattern != nil {
		if err := ValidateSchedulePattern(*patch.SchedulePattern); err != nil {
			return nil, err
		}
		rule.SchedulePattern = *patch.SchedulePattern
	}
	if patch.Channels != nil {
		if err := validateChannels(*patch.Channels); err != nil {
			return nil, err
		}
		rule.Channels = model.StringList(*patch.Channels)
	}
	if patch.Name != nil {
		rule.Name = *patch.Name
	}
	if patch.TriggerConditions != nil {
		rule.TriggerConditions = *patch.TriggerConditions
	}
	if patch.ClearTemplate {
		rule.TemplateID = nil
	} else if patch.TemplateID != nil {
		rule.TemplateID = patch.TemplateID
	}
	if patch.IsActive != nil {
		rule.IsActive = *patch.IsActive
	}

	if err := s.rules.Save(rule); err != nil {
		return nil, err
	}

	s.cancel(id)
	if rule.IsActive {
		if err := s.register(rule.ID, rule.SchedulePattern); err != nil {
			logger.Errorf("Правило %q (%d) обновлено, но не запланировано: %v", rule.Name, rule.ID, err)
		}
	}

	return rule, nil
}

// DeactivateRule мягко деактивирует правило и снимает его расписание.
// Повторная деактивация — не ошибка. Строка правила остается для истории.
func (s *Scheduler) DeactivateRule(id uint) error {
	rule, err := s.rules.ByID(id)
	if err != nil {
		return err
	}

	if rule.IsActive {
		rule.IsActive = false
		if err := s.rules.Save(rule); err != nil {
			return err
		}
	}

	s.cancel(id)
	return nil
}

// NextFireTime ближайшее срабатывание правила в бизнес-поясе
func (s *Scheduler) NextFireTime(rule *model.ReminderRule) (time.Time, error) {
	return NextFireTime(rule.SchedulePattern, time.Now().In(s.location))
}

// Stop останавливает цикл планировщика. Уже начатые срабатывания завершаются.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func validateChannels(channels []string) error {
	if len(channels) == 0 {
		return fmt.Errorf("%w: список каналов пуст", ErrInvalidChannel)
	}
	for _, ch := range channels {
		if !model.KnownChannel(ch) {
			return fmt.Errorf("%w: %q", ErrInvalidChannel, ch)
		}
	}
	return nil
}

// register атомарно заменяет запись расписания правила
func (s *Scheduler) register(ruleID uint, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[ruleID]; ok {
		s.cron.Remove(old)
		delete(s.entries, ruleID)
	}

	entryID, err := s.cron.AddFunc(pattern, func() {
		s.runRule(ruleID)
	})
	if err != nil {
		return err
	}

	s.entries[ruleID] = entryID
	return nil
}

// cancel снимает запись расписания правила, если она есть
func (s *Scheduler) cancel(ruleID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[ruleID]; ok {
		s.cron.Remove(old)
		delete(s.entries, ruleID)
	}
}

// scheduled проверяет наличие записи расписания у правила
func (s *Scheduler) scheduled(ruleID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[ruleID]
	return ok
}

// runRule выполняется планировщиком при срабатывании таймера правила.
// Правило перечитывается из хранилища: между срабатываниями его могли
// обновить или деактивировать.
func (s *Scheduler) runRule(ruleID uint) {
	rule, err := s.rules.ByID(ruleID)
	if err != nil {
		logger.Errorf("Срабатывание правила %d отменено: %v", ruleID, err)
		return
	}
	if !rule.IsActive {
		return
	}

	s.executor.ExecuteRule(rule)
}
