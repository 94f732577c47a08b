package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const metricsInterval = 7 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports liveness and streams runtime metrics via SSE.
type SystemHandler struct {
	db        Pinger
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db Pinger, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// ---------- Health ----------

type healthStatus struct {
	Status    string `json:"status"`
	Postgres  string `json:"postgres"`
	Redis     string `json:"redis"`
	MailQueue int64  `json:"mail_queue"`
	Uptime    string `json:"uptime"`
}

// Health godoc
// GET /health
// 200 when Postgres and Redis answer, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	st := healthStatus{
		Status:   "ok",
		Postgres: "ok",
		Redis:    "ok",
		Uptime:   formatDuration(time.Since(h.startTime)),
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Postgres ping failed")
			st.Postgres = "down"
			st.Status = "degraded"
		}
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis ping failed")
		st.Redis = "down"
		st.Status = "degraded"
	} else {
		st.MailQueue, _ = h.rdb.LLen(ctx, config.WorkerKey.MailQueue).Result()
	}

	code := http.StatusOK
	if st.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, st)
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	StackInuse uint64 `json:"stack_inuse"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	MailQueue int64 `json:"mail_queue"`
}

// SystemMetricsSSE godoc
// GET /api/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.Sys,
		StackInuse: ms.StackInuse,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}
	m.MailQueue, _ = h.rdb.LLen(ctx, config.WorkerKey.MailQueue).Result()
	return m
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
