package middleware

import (
	"net/http"
	"os"
)

// CronSecurityMiddleware protects the scheduler endpoints. The cron job
// sends the shared secret in a header; nothing else may trigger a sweep.
func CronSecurityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("CRON_SECRET")
		if secret == "" || r.Header.Get("X-Cron-Secret") != secret {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
