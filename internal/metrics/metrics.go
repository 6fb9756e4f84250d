// Package metrics collects server health and request statistics.
// file: internal/metrics/metrics.go.
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// Snapshot holds a point-in-time view of server health and traffic.
type Snapshot struct {
	// Server uptime and basic info.
	StartTime     time.Time     `json:"startTime"`
	Uptime        time.Duration `json:"uptime"`
	GoVersion     string        `json:"goVersion"`
	NumGoroutines int           `json:"numGoroutines"`

	// Memory stats.
	MemoryAllocated uint64 `json:"memoryAllocated"`
	MemoryGCCount   uint32 `json:"memoryGCCount"`

	// Request stats.
	TotalRequests    int            `json:"totalRequests"`
	FailedRequests   int            `json:"failedRequests"`
	RequestLatencies map[string]int `json:"requestLatencies"` // Method to average ms.

	// Tool dispatch stats.
	ToolCalls  map[string]int `json:"toolCalls"`
	ToolErrors map[string]int `json:"toolErrors"`

	// Last errors.
	LastErrors []ErrorInfo `json:"lastErrors,omitempty"`
}

// ErrorInfo contains details about an error that occurred.
type ErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// Collector accumulates metrics; all methods are safe for concurrent use.
type Collector struct {
	mu          sync.RWMutex
	startTime   time.Time
	total       int
	failed      int
	latencies   map[string]int
	toolCalls   map[string]int
	toolErrors  map[string]int
	errorBuffer []ErrorInfo
	bufferSize  int
}

// NewCollector creates a collector keeping the last errorBufferSize errors.
func NewCollector(errorBufferSize int) *Collector {
	if errorBufferSize <= 0 {
		errorBufferSize = 10
	}
	return &Collector{
		startTime:   time.Now(),
		latencies:   make(map[string]int),
		toolCalls:   make(map[string]int),
		toolErrors:  make(map[string]int),
		errorBuffer: make([]ErrorInfo, 0, errorBufferSize),
		bufferSize:  errorBufferSize,
	}
}

// RecordRequest records one dispatched request.
func (c *Collector) RecordRequest(method string, latency time.Duration, success bool) {
	latencyMs := int(latency.Milliseconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if !success {
		c.failed++
	}

	if existing, ok := c.latencies[method]; ok {
		// Simple moving average.
		c.latencies[method] = (existing + latencyMs) / 2
	} else {
		c.latencies[method] = latencyMs
	}
}

// RecordToolCall records one tool dispatch. inBandError marks a result the
// provider flagged as failed.
func (c *Collector) RecordToolCall(tool string, inBandError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toolCalls[tool]++
	if inBandError {
		c.toolErrors[tool]++
	}
}

// RecordError adds an error to the rolling buffer.
func (c *Collector) RecordError(component, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.errorBuffer) >= c.bufferSize {
		c.errorBuffer = c.errorBuffer[1:]
	}
	c.errorBuffer = append(c.errorBuffer, ErrorInfo{
		Timestamp: time.Now(),
		Component: component,
		Message:   message,
	})
}

// CurrentSnapshot returns a copy of the current metrics.
func (c *Collector) CurrentSnapshot() Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := Snapshot{
		StartTime:        c.startTime,
		Uptime:           time.Since(c.startTime),
		GoVersion:        runtime.Version(),
		NumGoroutines:    runtime.NumGoroutine(),
		MemoryAllocated:  memStats.Alloc,
		MemoryGCCount:    memStats.NumGC,
		TotalRequests:    c.total,
		FailedRequests:   c.failed,
		RequestLatencies: make(map[string]int, len(c.latencies)),
		ToolCalls:        make(map[string]int, len(c.toolCalls)),
		ToolErrors:       make(map[string]int, len(c.toolErrors)),
	}
	for method, ms := range c.latencies {
		snapshot.RequestLatencies[method] = ms
	}
	for tool, count := range c.toolCalls {
		snapshot.ToolCalls[tool] = count
	}
	for tool, count := range c.toolErrors {
		snapshot.ToolErrors[tool] = count
	}
	if len(c.errorBuffer) > 0 {
		snapshot.LastErrors = make([]ErrorInfo, len(c.errorBuffer))
		copy(snapshot.LastErrors, c.errorBuffer)
	}
	return snapshot
}
