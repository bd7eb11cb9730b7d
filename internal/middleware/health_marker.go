package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys of the request statistics shown by the health dashboard.
// Exported for use by health handlers (reset, collectHealth).
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"

	errorLogSize = 50
)

// HealthMarker counts API traffic in Redis for the health dashboard. The status page itself
// (/, /reset, /health*) and favicon requests are not counted. A request counts as failed when
// it ends with a 5xx or an unhandled error; failures are kept in a capped log with their trace id.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || path == "/reset" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		ctx := context.Background()
		start := time.Now()
		last, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		_, _ = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, KeyLastReq, last, 0)
			pipe.Incr(ctx, KeyReqTotal)
			return nil
		})

		err := c.Next()

		status := c.Response().StatusCode()
		failed := status >= 500 || err != nil
		var entry []byte
		if failed {
			e := map[string]interface{}{
				"time":     time.Now(),
				"path":     c.OriginalURL(),
				"method":   c.Method(),
				"status":   status,
				"trace_id": GetTraceID(c),
			}
			if err != nil {
				e["message"] = err.Error()
			}
			entry, _ = json.Marshal(e)
		}
		_, _ = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, KeyResCount)
			pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
			if failed {
				pipe.Incr(ctx, KeyReqErrors)
				pipe.LPush(ctx, KeyErrorLog, entry)
				pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			}
			return nil
		})
		return err
	}
}
