package health

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"uptime": func(s int64) string {
		d := time.Duration(s) * time.Second
		return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	},
	"pill": func(status string) string {
		if status == "connected" {
			return "ok"
		}
		return "err"
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>PropShare · Ledger Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --ink: #1f2a44; --ok: #0f766e; --err: #dc2626; --muted: #64748b; }
    body { font-family: system-ui, sans-serif; color: var(--ink); background: #f8fafc; margin: 0; padding: 40px; }
    h1 { font-size: 40px; margin: 0 0 24px; }
    .grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 20px; }
    .card { background: white; border-radius: 16px; padding: 24px; box-shadow: 0 10px 30px rgba(0,0,0,0.05); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: var(--muted); margin-bottom: 12px; }
    .big { font-size: 32px; font-weight: 800; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; }
    .ok { color: var(--ok); } .err { color: var(--err); }
    footer { margin-top: 24px; font-family: monospace; color: var(--muted); }
    @media (max-width: 900px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  {{if eq .Status "ok"}}<h1 class="ok">All Systems Operational</h1>{{else}}<h1 class="err">System Issues Detected</h1>{{end}}
  <div class="grid">
    <div class="card">
      <div class="label">Traffic</div>
      <div class="big">{{.Traffic.TotalRequests}}</div>
      <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
      <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
      <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
      <div class="row"><span>Avg Latency</span><span>{{.Traffic.AvgResponseTime}}ms</span></div>
    </div>
    <div class="card">
      <div class="label">Ledger</div>
      <div class="big">{{.Ledger.Properties}}</div>
      <div class="row"><span>Properties</span><span>{{.Ledger.Properties}}</span></div>
      <div class="row"><span>Proposals</span><span>{{.Ledger.Proposals}}</span></div>
      <div class="row"><span>Loaded</span><span>{{.Ledger.Loaded}}</span></div>
    </div>
    <div class="card">
      <div class="label">Resources</div>
      <div class="big">{{uptime .Runtime.UptimeSeconds}}</div>
      <div class="row"><span>Heap Used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
      <div class="row"><span>Memory (Sys)</span><span>{{.Runtime.Memory.RSS}} MB</span></div>
      <div class="row"><span>Platform</span><span>{{.Runtime.Platform}}</span></div>
      <div class="row"><span>Go</span><span>{{.Runtime.GoVersion}}</span></div>
    </div>
    <div class="card">
      <div class="label">Connectivity</div>
      {{range $name, $dep := .Dependencies}}<div class="row"><span>{{$name}}</span><span class="{{pill $dep.Status}}">{{$dep.Status}}</span></div>
      {{end}}
    </div>
  </div>
  <footer>Raw data: <a href="/health/json">/health/json</a> · Error log: <a href="/health/errors">/health/errors</a></footer>
</body>
</html>`))

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(health CollectResult) (string, error) {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, health); err != nil {
		return "", err
	}
	return buf.String(), nil
}
