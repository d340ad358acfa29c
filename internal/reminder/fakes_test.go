package reminder

import (
	"fmt"
	"time"

	"billingapp/internal/channel"
	"billingapp/internal/model"
)

type fakeRepresentativeStore struct {
	reps []model.Representative
}

func (s *fakeRepresentativeStore) ListActive() ([]model.Representative, error) {
	active := make([]model.Representative, 0, len(s.reps))
	for _, rep := range s.reps {
		if rep.IsActive {
			active = append(active, rep)
		}
	}
	return active, nil
}

type fakeRuleStore struct {
	nextID uint
	rules  map[uint]model.ReminderRule
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{rules: make(map[uint]model.ReminderRule)}
}

func (s *fakeRuleStore) Create(rule *model.ReminderRule) error {
	s.nextID++
	rule.ID = s.nextID
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	s.rules[rule.ID] = *rule
	return nil
}

func (s *fakeRuleStore) Save(rule *model.ReminderRule) error {
	if _, ok := s.rules[rule.ID]; !ok {
		return fmt.Errorf("правило %d отсутствует", rule.ID)
	}
	rule.UpdatedAt = time.Now()
	s.rules[rule.ID] = *rule
	return nil
}

func (s *fakeRuleStore) ByID(id uint) (*model.ReminderRule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}

func (s *fakeRuleStore) ListAll() ([]model.ReminderRule, error) {
	all := make([]model.ReminderRule, 0, len(s.rules))
	for _, rule := range s.rules {
		all = append(all, rule)
	}
	return all, nil
}

func (s *fakeRuleStore) ListActive() ([]model.ReminderRule, error) {
	active := make([]model.ReminderRule, 0, len(s.rules))
	for _, rule := range s.rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	return active, nil
}

type fakeTemplateStore struct {
	nextID    uint
	templates map[uint]model.MessageTemplate
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{templates: make(map[uint]model.MessageTemplate)}
}

func (s *fakeTemplateStore) Create(tpl *model.MessageTemplate) error {
	s.nextID++
	tpl.ID = s.nextID
	tpl.CreatedAt = time.Now()
	s.templates[tpl.ID] = *tpl
	return nil
}

func (s *fakeTemplateStore) ByID(id uint) (*model.MessageTemplate, error) {
	tpl, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return &tpl, nil
}

func (s *fakeTemplateStore) List(channelName, language string) ([]model.MessageTemplate, error) {
	var result []model.MessageTemplate
	for _, tpl := range s.templates {
		if channelName != "" && tpl.Channel != channelName {
			continue
		}
		if language != "" && tpl.Language != language {
			continue
		}
		result = append(result, tpl)
	}
	return result, nil
}

func (s *fakeTemplateStore) Newest(channelName, language string) (*model.MessageTemplate, error) {
	var newest *model.MessageTemplate
	for id := range s.templates {
		tpl := s.templates[id]
		if tpl.Channel != channelName || tpl.Language != language {
			continue
		}
		if newest == nil || tpl.CreatedAt.After(newest.CreatedAt) {
			newest = &tpl
		}
	}
	if newest == nil {
		return nil, ErrTemplateNotFound
	}
	return newest, nil
}

type fakeLogStore struct {
	nextID  uint
	entries []model.ReminderLog
}

func (s *fakeLogStore) Append(entry *model.ReminderLog) error {
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeLogStore) HasRecent(representativeID, ruleID uint, since time.Time) (bool, error) {
	for _, entry := range s.entries {
		if entry.RepresentativeID == representativeID && entry.RuleID == ruleID && !entry.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeLogStore) List(filter LogFilter) ([]model.ReminderLog, error) {
	var result []model.ReminderLog
	for _, entry := range s.entries {
		if !filter.Start.IsZero() && entry.SentAt.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && entry.SentAt.After(filter.End) {
			continue
		}
		if filter.RuleID != 0 && entry.RuleID != filter.RuleID {
			continue
		}
		if filter.Channel != "" && entry.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && entry.DeliveryStatus != filter.Status {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *fakeLogStore) MarkResponseReceived(id uint) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].ResponseReceived = true
			return nil
		}
	}
	return ErrLogNotFound
}

type sentMessage struct {
	channel    string
	identifier string
	subject    string
	body       string
}

// fakeGateway отвечает заранее заданными результатами по каналам
type fakeGateway struct {
	results map[string]channel.DeliveryResult
	sent    []sentMessage
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{results: make(map[string]channel.DeliveryResult)}
}

func (g *fakeGateway) result(channelName string) channel.DeliveryResult {
	if res, ok := g.results[channelName]; ok {
		return res
	}
	return channel.DeliveryResult{Success: true, MessageID: "msg-1"}
}

func (g *fakeGateway) SendTelegram(username string, chatID int64, message string) channel.DeliveryResult {
	g.sent = append(g.sent, sentMessage{channel: model.ChannelTelegram, identifier: username, body: message})
	return g.result(model.ChannelTelegram)
}

func (g *fakeGateway) SendSms(phoneNumber, message string) channel.DeliveryResult {
	g.sent = append(g.sent, sentMessage{channel: model.ChannelSms, identifier: phoneNumber, body: message})
	return g.result(model.ChannelSms)
}

func (g *fakeGateway) SendEmail(address, subject, body string) channel.DeliveryResult {
	g.sent = append(g.sent, sentMessage{channel: model.ChannelEmail, identifier: address, subject: subject, body: body})
	return g.result(model.ChannelEmail)
}
