package core

// Severity bands a utilization percentage for presentation.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Utilization returns spent as a percentage of budget. A zero or absent
// budget means no utilization constraint and reports 0%, never an error.
func Utilization(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spent / budget * 100
}

// SeverityFor bands a utilization percentage. The thresholds are inclusive
// lower bounds: 90 is already critical, 75 already warning.
func SeverityFor(percentage float64) Severity {
	switch {
	case percentage >= 90:
		return SeverityCritical
	case percentage >= 75:
		return SeverityWarning
	}
	return SeverityOK
}

// Color returns the dashboard color hex for the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#ef4444"
	case SeverityWarning:
		return "#f59e0b"
	}
	return "#22c55e"
}
