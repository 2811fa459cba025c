package health

import (
	"context"
	"fmt"
	"time"
)

// Result is the report of one probe invocation.
type Result struct {
	Name         string         `json:"name"`
	Status       Status         `json:"status"`
	ResponseTime int64          `json:"responseTime"`
	Error        string         `json:"error,omitempty"`
	Metrics      map[string]any `json:"metrics"`
	DisplayName  string         `json:"displayName,omitempty"`
	Description  string         `json:"description,omitempty"`
	Tags         []string       `json:"tags"`
}

// Outcome is what a probe returns on success. Message is reported in the
// result's error field, which lets a Warning explain itself.
type Outcome struct {
	Status  Status
	Message string
	Metrics map[string]any
}

// Probe inspects one dependency or resource.
type Probe interface {
	Name() string
	Check(ctx context.Context) (Outcome, error)
}

// Describer is optionally implemented by probes that carry presentation
// metadata.
type Describer interface {
	DisplayName() string
	Description() string
	Tags() []string
}

// Run executes p and turns its outcome into a Result. Errors and panics
// become Unhealthy results. The response time covers the whole call.
func Run(ctx context.Context, p Probe) (res Result) {
	start := time.Now()
	res = describe(p)

	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusUnhealthy
			res.Error = fmt.Sprintf("probe panicked: %v", r)
			res.Metrics = map[string]any{"error": res.Error}
		}
		res.ResponseTime = time.Since(start).Milliseconds()
	}()

	out, err := p.Check(ctx)
	if err != nil {
		res.Status = StatusUnhealthy
		res.Error = err.Error()
		res.Metrics = map[string]any{"error": err.Error()}
		return res
	}

	res.Status = out.Status
	if res.Status == "" {
		res.Status = StatusHealthy
	}
	res.Error = out.Message
	res.Metrics = out.Metrics
	if res.Metrics == nil {
		res.Metrics = map[string]any{}
	}
	return res
}

func describe(p Probe) Result {
	name := p.Name()
	res := Result{
		Name:        name,
		DisplayName: name,
		Description: "Health check for " + name,
		Tags:        []string{"health-check"},
	}

	d, ok := p.(Describer)
	if !ok {
		return res
	}
	if v := d.DisplayName(); v != "" {
		res.DisplayName = v
	}
	if v := d.Description(); v != "" {
		res.Description = v
	}
	if v := d.Tags(); len(v) > 0 {
		res.Tags = v
	}
	return res
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context) (Outcome, error)
}

func (f ProbeFunc) Name() string { return f.ProbeName }

func (f ProbeFunc) Check(ctx context.Context) (Outcome, error) { return f.Fn(ctx) }
