package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"conectaloja/internal/pkg/cache"
	"conectaloja/internal/pkg/logger"
)

// RateLimiter limita cada IP a limit requisições por janela fixa de duração period.
// Se o contador no Redis falhar, a requisição passa (e a falha é registrada).
func RateLimiter(counter cache.Counter, limit int, period time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			count, err := counter.Incr(r.Context(), key, period)
			if err != nil {
				log.Error("Falha no contador de rate limit. Liberando requisição.", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			if count > int64(limit) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(period.Seconds())))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
