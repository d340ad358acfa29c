package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"billingapp/internal/model"
	"billingapp/internal/reminder"
)

type memRepStore struct {
	reps []model.Representative
}

func (s *memRepStore) ListActive() ([]model.Representative, error) {
	active := make([]model.Representative, 0, len(s.reps))
	for _, rep := range s.reps {
		if rep.IsActive {
			active = append(active, rep)
		}
	}
	return active, nil
}

type memRuleStore struct {
	nextID uint
	rules  map[uint]model.ReminderRule
}

func newMemRuleStore() *memRuleStore {
	return &memRuleStore{rules: make(map[uint]model.ReminderRule)}
}

func (s *memRuleStore) Create(rule *model.ReminderRule) error {
	s.nextID++
	rule.ID = s.nextID
	rule.CreatedAt = time.Now()
	s.rules[rule.ID] = *rule
	return nil
}

func (s *memRuleStore) Save(rule *model.ReminderRule) error {
	s.rules[rule.ID] = *rule
	return nil
}

func (s *memRuleStore) ByID(id uint) (*model.ReminderRule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, reminder.ErrRuleNotFound
	}
	return &rule, nil
}

func (s *memRuleStore) ListAll() ([]model.ReminderRule, error) {
	all := make([]model.ReminderRule, 0, len(s.rules))
	for _, rule := range s.rules {
		all = append(all, rule)
	}
	return all, nil
}

func (s *memRuleStore) ListActive() ([]model.ReminderRule, error) {
	active := make([]model.ReminderRule, 0, len(s.rules))
	for _, rule := range s.rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	return active, nil
}

type memTemplateStore struct {
	nextID    uint
	templates map[uint]model.MessageTemplate
}

func newMemTemplateStore() *memTemplateStore {
	return &memTemplateStore{templates: make(map[uint]model.MessageTemplate)}
}

func (s *memTemplateStore) Create(tpl *model.MessageTemplate) error {
	s.nextID++
	tpl.ID = s.nextID
	tpl.CreatedAt = time.Now()
	s.templates[tpl.ID] = *tpl
	return nil
}

func (s *memTemplateStore) ByID(id uint) (*model.MessageTemplate, error) {
	tpl, ok := s.templates[id]
	if !ok {
		return nil, reminder.ErrTemplateNotFound
	}
	return &tpl, nil
}

func (s *memTemplateStore) List(channelName, language string) ([]model.MessageTemplate, error) {
	result := make([]model.MessageTemplate, 0)
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

func (s *memTemplateStore) Newest(channelName, language string) (*model.MessageTemplate, error) {
	return nil, reminder.ErrTemplateNotFound
}

type memLogStore struct {
	nextID  uint
	entries []model.ReminderLog
}

func (s *memLogStore) Append(entry *model.ReminderLog) error {
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memLogStore) HasRecent(representativeID, ruleID uint, since time.Time) (bool, error) {
	for _, entry := range s.entries {
		if entry.RepresentativeID == representativeID && entry.RuleID == ruleID && !entry.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memLogStore) List(filter reminder.LogFilter) ([]model.ReminderLog, error) {
	result := make([]model.ReminderLog, 0)
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

func (s *memLogStore) MarkResponseReceived(id uint) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].ResponseReceived = true
			return nil
		}
	}
	return reminder.ErrLogNotFound
}

type webFixture struct {
	app   *WebApp
	rules *memRuleStore
	logs  *memLogStore
	reps  *memRepStore
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()

	rules := newMemRuleStore()
	logs := &memLogStore{}
	reps := &memRepStore{}
	templates := newMemTemplateStore()

	scheduler := reminder.NewScheduler(rules, nil, time.UTC)
	t.Cleanup(scheduler.Stop)

	evaluator := reminder.NewEligibilityEvaluator(reps)
	guard := reminder.NewDedupGuard(logs, 24*time.Hour)

	app := NewWebApp(Deps{
		Scheduler:  scheduler,
		Evaluator:  evaluator,
		Guard:      guard,
		Rules:      rules,
		Templates:  templates,
		Logs:       logs,
		Aggregator: reminder.NewAggregator(logs),
	})

	return &webFixture{app: app, rules: rules, logs: logs, reps: reps}
}

func (f *webFixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	f.app.Router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPostRuleCreated(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodPost, "/rules", map[string]interface{}{
		"name":            "weekly_debt",
		"schedulePattern": "0 9 * * 1",
		"channels":        []string{model.ChannelTelegram},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Len(t, f.rules.rules, 1)
}

func TestPostRuleInvalidSchedule(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodPost, "/rules", map[string]interface{}{
		"name":            "bad",
		"schedulePattern": "1-5 * * * *",
		"channels":        []string{model.ChannelSms},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
	require.Empty(t, f.rules.rules)
}

func TestPutRuleNotFound(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodPut, "/rules/42", map[string]interface{}{"name": "renamed"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRuleDeactivates(t *testing.T) {
	f := newWebFixture(t)

	created := f.do(t, http.MethodPost, "/rules", map[string]interface{}{
		"name":            "weekly",
		"schedulePattern": "0 9 * * 1",
		"channels":        []string{model.ChannelSms},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec := f.do(t, http.MethodDelete, "/rules/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := f.rules.ByID(1)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
}

func TestTestRuleDryRun(t *testing.T) {
	f := newWebFixture(t)

	repActive := model.Representative{PanelUsername: "shop_a", IsActive: true, DebtAmount: "500"}
	repActive.ID = 1
	repInactive := model.Representative{PanelUsername: "shop_b", IsActive: false, DebtAmount: "500"}
	repInactive.ID = 2
	f.reps.reps = []model.Representative{repActive, repInactive}

	created := f.do(t, http.MethodPost, "/rules", map[string]interface{}{
		"name":            "dry",
		"schedulePattern": "0 9 * * *",
		"channels":        []string{model.ChannelSms},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec := f.do(t, http.MethodPost, "/rules/1/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report dryRunReport
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Equal(t, "dry", report.RuleName)
	require.Equal(t, 1, report.EstimatedRecipients)
	require.Equal(t, []string{model.ChannelSms}, report.Channels)
	require.True(t, report.NextFireTime.After(time.Now().Add(-time.Minute)))

	// Пробный запуск ничего не отправляет и не пишет в журнал
	require.Empty(t, f.logs.entries)
}

func TestTestRuleNotFound(t *testing.T) {
	f := newWebFixture(t)
	rec := f.do(t, http.MethodPost, "/rules/9/test", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostTemplateUnknownChannel(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodPost, "/templates", map[string]interface{}{
		"name":    "bad",
		"channel": "pigeon",
		"content": "متن",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLogsIncludesSummary(t *testing.T) {
	f := newWebFixture(t)
	now := time.Now()
	require.NoError(t, f.logs.Append(&model.ReminderLog{RuleID: 1, Channel: model.ChannelSms, DeliveryStatus: model.DeliverySent, SentAt: now}))
	require.NoError(t, f.logs.Append(&model.ReminderLog{RuleID: 2, Channel: model.ChannelEmail, DeliveryStatus: model.DeliveryFailed, SentAt: now}))

	rec := f.do(t, http.MethodGet, "/logs?ruleId=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report logsReport
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Len(t, report.Entries, 1)
	require.Equal(t, 1, report.Summary.TotalSent)
	require.InDelta(t, 1.0, report.Summary.SuccessRate, 1e-9)
}

func TestPostLogResponse(t *testing.T) {
	f := newWebFixture(t)
	require.NoError(t, f.logs.Append(&model.ReminderLog{RuleID: 1, Channel: model.ChannelSms, DeliveryStatus: model.DeliverySent, SentAt: time.Now()}))

	rec := f.do(t, http.MethodPost, "/logs/1/response", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.logs.entries[0].ResponseReceived)

	rec = f.do(t, http.MethodPost, "/logs/99/response", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnalyticsRequiresPeriod(t *testing.T) {
	f := newWebFixture(t)

	rec := f.do(t, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/analytics?start=2026-01-01&end=2026-02-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
