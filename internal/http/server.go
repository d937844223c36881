package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bindo/internal/cache"
	"bindo/internal/core"
	"bindo/internal/services"
)

// rangeKey identifies a cached calendar projection.
type rangeKey struct {
	from time.Time
	to   time.Time
}

// statsKey identifies a cached stats aggregation.
type statsKey struct {
	from        time.Time
	to          time.Time
	granularity core.Granularity
}

type Server struct {
	http.Server

	items    *services.ItemService
	schedule *services.ScheduleService
	calendar *services.CalendarService
	stats    *services.StatsService
	loc      *time.Location

	horizon time.Duration

	rateLimiter *rateLimiter

	calendarCache *cache.LRUCache[rangeKey, []core.CalendarEvent]
	statsCache    *cache.LRUCache[statsKey, []core.StatsBucket]
	cacheManager  *cache.Manager

	started      time.Time
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter once a minute has passed.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute.
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// Options carries the dependencies and tunables for NewServer.
type Options struct {
	Items    *services.ItemService
	Schedule *services.ScheduleService
	Calendar *services.CalendarService
	Stats    *services.StatsService
	Location *time.Location

	// ProjectionHorizon bounds default ranges when a request omits them.
	ProjectionHorizon time.Duration
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	horizon := opts.ProjectionHorizon
	if horizon <= 0 {
		horizon = 365 * 24 * time.Hour
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		items:         opts.Items,
		schedule:      opts.Schedule,
		calendar:      opts.Calendar,
		stats:         opts.Stats,
		loc:           loc,
		horizon:       horizon,
		rateLimiter:   newRateLimiter(),
		calendarCache: cache.NewLRUCache[rangeKey, []core.CalendarEvent](100, 5*time.Minute),
		statsCache:    cache.NewLRUCache[statsKey, []core.StatsBucket](100, 5*time.Minute),
		cacheManager:  cache.NewManager(),
		started:       time.Now(),
	}

	s.cacheManager.Register(s.calendarCache)
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/items", s.withMiddleware(s.handleItems))
	mux.HandleFunc("/api/item", s.withMiddleware(s.handleItem))
	mux.HandleFunc("/api/item/schedule", s.withMiddleware(s.handleItemSchedule))
	mux.HandleFunc("/api/item/occurrences", s.withMiddleware(s.handleItemOccurrences))
	mux.HandleFunc("/api/calendar", s.withMiddleware(s.handleCalendar))
	mux.HandleFunc("/api/stats", s.withMiddleware(s.handleStats))
	mux.HandleFunc("/api/infer", s.withMiddleware(s.handleInfer))
	mux.HandleFunc("/api/export/csv", s.withMiddleware(s.handleExportCSV))
	mux.HandleFunc("/api/export/ics", s.withMiddleware(s.handleExportICS))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateProjections drops cached calendar and stats results. Any item
// write can shift pay days, so the whole projection goes.
func (s *Server) invalidateProjections() {
	s.calendarCache.Clear()
	s.statsCache.Clear()
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit writes only, reads are cached anyway.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.items == nil {
		checks["storage"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if _, err := s.items.ListItems(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]any{
		"calendar_entries": s.calendarCache.Size(),
		"stats_entries":    s.statsCache.Size(),
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
