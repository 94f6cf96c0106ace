package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Metrics struct {
	mu           sync.RWMutex
	RequestCount int64
	ErrorCount   int64
	StatusCounts map[int]int64
	TotalLatency time.Duration
	StartedAt    time.Time
}

var metrics = &Metrics{
	StatusCounts: make(map[int]int64),
	StartedAt:    time.Now(),
}

// MetricsMiddleware counts every request, its status class and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		metrics.mu.Lock()
		metrics.RequestCount++
		metrics.StatusCounts[c.Writer.Status()]++
		if c.Writer.Status() >= http.StatusInternalServerError {
			metrics.ErrorCount++
		}
		metrics.TotalLatency += elapsed
		metrics.mu.Unlock()
	}
}

type SystemMetrics struct {
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heap_alloc_mb"`
	SysMB       uint64 `json:"sys_mb"`
	NumGC       uint32 `json:"num_gc"`
}

func GetSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemMetrics{
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: bToMb(m.HeapAlloc),
		SysMB:       bToMb(m.Sys),
		NumGC:       m.NumGC,
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.mu.RLock()
		snapshot := gin.H{
			"request_count": metrics.RequestCount,
			"error_count":   metrics.ErrorCount,
			"status_counts": metrics.StatusCounts,
			"started_at":    metrics.StartedAt,
			"uptime":        time.Since(metrics.StartedAt).String(),
		}
		if metrics.RequestCount > 0 {
			snapshot["average_latency"] = (metrics.TotalLatency / time.Duration(metrics.RequestCount)).String()
		}
		metrics.mu.RUnlock()

		snapshot["system"] = GetSystemMetrics()
		c.JSON(http.StatusOK, snapshot)
	}
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadinessHandler reports whether the store behind the API answers.
func ReadinessHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
