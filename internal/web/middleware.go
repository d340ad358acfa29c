package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"billingapp/internal/config"

	"golang.org/x/time/rate"
)

var (
	limitersMu sync.Mutex
	limiters   = make(map[string]*limiterEntry)
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func init() {
	// Чистка лимитеров давно неактивных IP
	go func() {
		for range time.Tick(10 * time.Minute) {
			limitersMu.Lock()
			for ip, entry := range limiters {
				if time.Since(entry.lastSeen) > 30*time.Minute {
					delete(limiters, ip)
				}
			}
			limitersMu.Unlock()
		}
	}()
}

func limiterFor(ip string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	entry, ok := limiters[ip]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(
				rate.Limit(config.File.WebConfig.RateLimitPerSecond),
				config.File.WebConfig.RateLimitBurst,
			),
		}
		limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// LimitMiddleware ограничение количества запросов от одного IP
func LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !limiterFor(ip).Allow() {
			http.Error(w, "Слишком много запросов", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
