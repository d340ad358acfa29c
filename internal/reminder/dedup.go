package reminder

import (
	"fmt"
	"time"

	"billingapp/internal/infrastructure/logger"

	gocache "github.com/patrickmn/go-cache"
)

// DedupGuard подавляет повторные напоминания одному аккаунту по одному правилу
// внутри окна охлаждения. Считается любая попытка, включая неуспешную: иначе
// сломанный канал долбил бы представителя при каждом срабатывании.
type DedupGuard struct {
	logs   LogStore
	cache  *gocache.Cache
	window time.Duration
	now    func() time.Time
}

// NewDedupGuard создает страж с указанным окном охлаждения. Неположительное
// окно заменяется сутками.
func NewDedupGuard(logs LogStore, window time.Duration) *DedupGuard {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &DedupGuard{
		logs:   logs,
		cache:  gocache.New(window, 30*time.Minute),
		window: window,
		now:    time.Now,
	}
}

// Window возвращает длительность окна охлаждения
func (g *DedupGuard) Window() time.Duration {
	return g.window
}

func dedupKey(representativeID, ruleID uint) string {
	return fmt.Sprintf("%d:%d", representativeID, ruleID)
}

// WasRecentlyReminded проверяет, было ли напоминание по паре (аккаунт, правило)
// внутри окна охлаждения. Сначала смотрит в кэш, затем в журнал доставки.
// Находка из журнала не кэшируется: ее остаток окна короче полного TTL кэша,
// и запись с полным TTL подавляла бы напоминание дольше окна. В кэш пишет
// только MarkReminded в момент попытки доставки.
// Ошибка журнала трактуется как отсутствие напоминания: лучше изредка отправить
// лишнее, чем молча не отправить ничего.
func (g *DedupGuard) WasRecentlyReminded(representativeID, ruleID uint) bool {
	if _, found := g.cache.Get(dedupKey(representativeID, ruleID)); found {
		return true
	}

	since := g.now().Add(-g.window)
	recent, err := g.logs.HasRecent(representativeID, ruleID, since)
	if err != nil {
		logger.Errorf("Не удалось проверить журнал напоминаний для аккаунта %d правила %d: %v", representativeID, ruleID, err)
		return false
	}

	return recent
}

// MarkReminded отмечает пару (аккаунт, правило) в кэше после попытки доставки
func (g *DedupGuard) MarkReminded(representativeID, ruleID uint) {
	g.cache.SetDefault(dedupKey(representativeID, ruleID), struct{}{})
}
