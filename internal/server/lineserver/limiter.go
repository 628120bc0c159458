package lineserver

import (
	"github.com/bluele/gcache"
	"golang.org/x/time/rate"
)

// DefaultRateLimitClients bounds how many client IPs keep a limiter.
const DefaultRateLimitClients = 1024

// ipLimiter is a token bucket per client IP. Buckets live in an LRU, so a
// flood of distinct addresses evicts old buckets instead of growing memory.
type ipLimiter struct {
	cache gcache.Cache
}

// newIPLimiter returns nil, which allows everything, when perSecond <= 0.
func newIPLimiter(perSecond, burst, clients int) *ipLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perSecond
	}
	if clients <= 0 {
		clients = DefaultRateLimitClients
	}
	limit := rate.Limit(perSecond)
	return &ipLimiter{
		cache: gcache.New(clients).
			LRU().
			LoaderFunc(func(key interface{}) (interface{}, error) {
				return rate.NewLimiter(limit, burst), nil
			}).
			Build(),
	}
}

// allow consumes one token from ip's bucket.
func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	v, err := l.cache.Get(ip)
	if err != nil {
		return true
	}
	return v.(*rate.Limiter).Allow()
}

// tracked returns the number of IPs currently holding a bucket.
func (l *ipLimiter) tracked() int {
	if l == nil {
		return 0
	}
	return l.cache.Len(false)
}
