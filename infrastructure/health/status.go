// Package health implements composable health probes and their aggregation
// into a single service status.
package health

// Status is the outcome of a probe or of the whole service.
type Status string

const (
	StatusHealthy   Status = "Healthy"
	StatusWarning   Status = "Warning"
	StatusUnhealthy Status = "Unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}

// Worst returns the most severe status: Unhealthy beats Warning beats
// Healthy. No statuses means Healthy. Unknown values count as Unhealthy.
func Worst(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	if worst.severity() == StatusUnhealthy.severity() {
		return StatusUnhealthy
	}
	return worst
}
