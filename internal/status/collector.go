package status

import (
	"runtime"
	"time"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/registry"
)

// Metrics is the full status payload
type Metrics struct {
	Status          string         `json:"status"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	Timestamp       int64          `json:"timestamp"`
	Runtime         RuntimeMetrics `json:"runtime"`
	Games           registry.Stats `json:"games"`
	LeaderboardSize int            `json:"leaderboard_size"`
}

// RuntimeMetrics reports Go runtime resource usage
type RuntimeMetrics struct {
	Goroutines     int    `json:"goroutines"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64 `json:"heap_sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

// StatsSource exposes read-only registry counts
type StatsSource interface {
	Stats() registry.Stats
}

// Collector derives server metrics by read-only inspection; it never
// mutates registry state
type Collector struct {
	source    StatsSource
	clock     clock.Clock
	startTime time.Time
}

// NewCollector creates a collector anchored at the process start time
func NewCollector(source StatsSource, clk clock.Clock) *Collector {
	return &Collector{
		source:    source,
		clock:     clk,
		startTime: clk.Now(),
	}
}

// Collect gathers a point-in-time snapshot of server metrics
func (c *Collector) Collect() Metrics {
	now := c.clock.Now()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Metrics{
		Status:        "online",
		UptimeSeconds: int64(now.Sub(c.startTime).Seconds()),
		Timestamp:     now.Unix(),
		Runtime: RuntimeMetrics{
			Goroutines:     runtime.NumGoroutine(),
			HeapAllocBytes: mem.HeapAlloc,
			HeapSysBytes:   mem.HeapSys,
			NumGC:          mem.NumGC,
		},
		Games: c.source.Stats(),
	}
}
