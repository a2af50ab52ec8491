package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitorIdle is how long a client's limiter is kept after its last request.
// A limiter refills completely within a minute, so dropping it later loses nothing.
const visitorIdle = 3 * time.Minute

// visitor tracks the rate limiter and last seen time for a client IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(perMinute int, now func() time.Time) *ipLimiter {
	return &ipLimiter{
		visitors:  make(map[string]*visitor),
		every:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		lastSweep: now(),
		now:       now,
	}
}

// allow reports whether ip may make another request, evicting idle
// visitors at most once per visitorIdle.
func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= visitorIdle {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= visitorIdle {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimit throttles requests per client IP to perMinute with a burst of
// the same size.
func RateLimit(perMinute int) gin.HandlerFunc {
	return rateLimit(newIPLimiter(perMinute, time.Now))
}

func rateLimit(l *ipLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, please try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}
