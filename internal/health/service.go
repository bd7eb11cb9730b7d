package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"propshare-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// LedgerCounter exposes the ledger's id counters; *ledger.Ledger satisfies it.
type LedgerCounter interface {
	PropertyCount() uint64
	ProposalCount() uint64
}

// CollectResult is the shape served by /health/json and embedded in the dashboard.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Ledger       LedgerInfo           `json:"ledger"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

// MemoryInfo is in MiB.
type MemoryInfo struct {
	RSS      int `json:"rss"`
	HeapUsed int `json:"heapUsed"`
}

type LedgerInfo struct {
	Loaded     bool   `json:"loaded"`
	Properties uint64 `json:"properties"`
	Proposals  uint64 `json:"proposals"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

func ping(f func() error) DepStatus {
	start := time.Now()
	if err := f(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// CollectHealth gathers health data from Redis, the optional DB and the ledger.
// Status is "ok" only when both stores answer and the ledger is loaded.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, lc LedgerCounter) CollectResult {
	result := CollectResult{
		Dependencies: map[string]DepStatus{
			"database": {Status: "disconnected"},
			"redis":    {Status: "disconnected"},
		},
		Traffic: TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"},
	}
	startedMs := time.Now().UnixMilli()

	if db != nil {
		result.Dependencies["database"] = ping(db.Ping)
	}
	if rdb != nil {
		dep := ping(func() error { return rdb.Ping(ctx).Err() })
		result.Dependencies["redis"] = dep
		if dep.Status == "connected" {
			startedMs = readTraffic(ctx, rdb, &result.Traffic, startedMs)
		}
	}
	if lc != nil {
		result.Ledger = LedgerInfo{Loaded: true, Properties: lc.PropertyCount(), Proposals: lc.ProposalCount()}
	}
	result.Runtime = runtimeInfo(startedMs)

	result.Status = "issue"
	if result.Dependencies["database"].Status == "connected" &&
		result.Dependencies["redis"].Status == "connected" &&
		result.Ledger.Loaded {
		result.Status = "ok"
	}
	return result
}

// readTraffic fills t from the counters written by middleware.HealthMarker and returns the
// recorded start time, initialising it to now on first use.
func readTraffic(ctx context.Context, rdb *redis.Client, t *TrafficInfo, now int64) int64 {
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	if err != nil {
		return now
	}
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i], _ = v.(string)
	}

	t.TotalRequests, _ = strconv.Atoi(s[0])
	t.FailedCount, _ = strconv.Atoi(s[1])
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(s[2], 64)
	if n, _ := strconv.Atoi(s[3]); n > 0 {
		t.AvgResponseTime = strconv.FormatFloat(timeSum/float64(n), 'f', 2, 64)
	}
	if s[5] != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(s[5]), &last) == nil {
			t.LastRequest = last
		}
	}

	if started, err := strconv.ParseInt(s[4], 10, 64); err == nil {
		return started
	}
	rdb.Set(ctx, middleware.KeyStartTime, now, 0)
	return now
}

func runtimeInfo(startedMs int64) RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startedMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	return RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{RSS: int(m.Sys >> 20), HeapUsed: int(m.HeapInuse >> 20)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
}
