// Package limiter provides token bucket rate limiters keyed by route
// Package limiter 提供按路由键控的令牌桶限流器
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face rate limiter interface used by the middleware
// Face 中间件使用的限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule token bucket rule
// BucketRule 令牌桶规则
type BucketRule struct {
	// Key route path, e.g. /api/admin/auth
	// Key 路由路径
	Key string
	// FillInterval interval between refills
	// FillInterval 填充间隔
	FillInterval time.Duration
	// Capacity bucket capacity
	// Capacity 桶容量
	Capacity int64
	// Quantum tokens added per interval
	// Quantum 每次填充的令牌数
	Quantum int64
}

func (r BucketRule) newBucket() *ratelimit.Bucket {
	return ratelimit.NewBucketWithQuantum(r.FillInterval, r.Capacity, r.Quantum)
}

func routeKey(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	uri := c.Request.RequestURI
	if index := strings.Index(uri, "?"); index != -1 {
		return uri[:index]
	}
	return uri
}

// MethodLimiter one shared bucket per route
// MethodLimiter 每个路由共享一个令牌桶
type MethodLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*ratelimit.Bucket
}

func NewMethodLimiter() Face {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

func (l *MethodLimiter) Key(c *gin.Context) string {
	return routeKey(c)
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	bucket, ok := l.buckets[key]
	return bucket, ok
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		if _, ok := l.buckets[rule.Key]; !ok {
			l.buckets[rule.Key] = rule.newBucket()
		}
	}
	return l
}

// ClientLimiter one bucket per route and client IP, created on first use
// ClientLimiter 每个路由与客户端 IP 一个令牌桶，首次访问时创建
type ClientLimiter struct {
	mu      sync.RWMutex
	rules   map[string]BucketRule
	buckets sync.Map // map[string]*ratelimit.Bucket
}

func NewClientLimiter() Face {
	return &ClientLimiter{rules: make(map[string]BucketRule)}
}

func (l *ClientLimiter) Key(c *gin.Context) string {
	return routeKey(c) + "|" + c.ClientIP()
}

func (l *ClientLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*ratelimit.Bucket), true
	}
	route := key
	if index := strings.LastIndex(key, "|"); index != -1 {
		route = key[:index]
	}
	l.mu.RLock()
	rule, ok := l.rules[route]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	actual, _ := l.buckets.LoadOrStore(key, rule.newBucket())
	return actual.(*ratelimit.Bucket), true
}

func (l *ClientLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		l.rules[rule.Key] = rule
	}
	return l
}
