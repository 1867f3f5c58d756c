// Package remediate implements the hardening procedures run against a domain
// controller. Each procedure is sequential, returns a Result instead of
// raising, and keeps going past per-item failures.
package remediate

import (
	"fmt"

	"dc-harden/pkg/model"
)

// Result accumulates the ordered log lines and worst severity of one
// procedure run. Severity only escalates, never downgrades.
type Result struct {
	severity model.Severity
	lines    []string
}

func NewResult() *Result {
	return &Result{severity: model.SeverityInfo}
}

func (r *Result) append(line string) {
	r.lines = append(r.lines, line)
}

// Logf appends a line without changing severity.
func (r *Result) Logf(format string, args ...interface{}) {
	r.append(fmt.Sprintf(format, args...))
}

// Warnf appends a line and escalates to at least Warning.
func (r *Result) Warnf(format string, args ...interface{}) {
	r.Escalate(model.SeverityWarning)
	r.append(fmt.Sprintf(format, args...))
}

// Errorf appends a line and escalates to Error.
func (r *Result) Errorf(format string, args ...interface{}) {
	r.Escalate(model.SeverityError)
	r.append(fmt.Sprintf(format, args...))
}

// Escalate raises the severity; a lower value is ignored.
func (r *Result) Escalate(s model.Severity) {
	r.severity = model.Worst(r.severity, s)
}

func (r *Result) Severity() model.Severity { return r.severity }

// Lines returns the accumulated log in append order.
func (r *Result) Lines() []string { return r.lines }
