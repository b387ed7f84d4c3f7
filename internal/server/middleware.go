package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"bidding-marketplace/internal/biddingerrors"
	"bidding-marketplace/internal/models"
	"bidding-marketplace/services/bidding/helpers"
	"bidding-marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "bidding-marketplace/internal/server"

// CallerResolver turns a bearer token into the calling user
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (models.User, error)
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"status":    c.Writer.Status(),
		"latency":   time.Since(start).String(),
		"client_ip": c.ClientIP(),
	}
	if caller, ok := helpers.Caller(c); ok {
		fields["caller_id"] = caller.ID
	}
	if span := trace.SpanContextFromContext(c.Request.Context()); span.HasTraceID() {
		fields["trace_id"] = span.TraceID().String()
	}
	utils.Info("HTTP Request", fields)
}

// TracingMiddleware starts a server span per request, continuing any trace
// propagated in the request headers
func TracingMiddleware(c *gin.Context) {
	ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, c.Request.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(c.Request.Method),
			semconv.HTTPRoute(route),
		),
	)
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	c.Next()

	status := c.Writer.Status()
	span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// AuthMiddleware requires a valid bearer token and stores the resolved caller
// in the gin context
func AuthMiddleware(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			utils.JSONAbort(c, http.StatusUnauthorized, err, "authentication required")
			utils.Warn("AuthMiddleware: missing bearer token", map[string]any{"path": c.Request.URL.Path})
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "authentication required"
			if biddingerrors.KindOf(err) != biddingerrors.KindUnauthenticated {
				status, message = http.StatusInternalServerError, "internal server error"
			}
			utils.JSONAbort(c, status, errors.New(message), message)
			utils.Warn("AuthMiddleware: caller not resolved", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			return
		}

		c.Set(helpers.CallerKey, caller)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: expected 'Authorization: Bearer <token>'", biddingerrors.ErrInvalidToken)
	}
	return strings.TrimSpace(token), nil
}

const (
	// limiterIdleTTL is how long a client may stay silent before its bucket is dropped
	limiterIdleTTL = 3 * time.Minute
	// limiterSweepEvery bounds how often get scans the map for idle clients
	limiterSweepEvery = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than idleTTL are evicted so the map tracks recent clients only.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.evictIdle(now)
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// evictIdle must be called with mu held
func (l *ipRateLimiter) evictIdle(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, ip)
		}
	}
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimitMiddleware rejects clients exceeding rps requests per second
// (with the given burst) with 429
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(rps, burst)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.get(ip).Allow() {
			utils.JSONAbort(c, http.StatusTooManyRequests, errors.New("rate limit exceeded"), "too many requests")
			utils.Warn("RateLimitMiddleware: request throttled", map[string]any{
				"client_ip": ip,
				"path":      c.Request.URL.Path,
			})
			return
		}
		c.Next()
	}
}
