package model

import "time"

// Procedure names reported by the agent.
const (
	ProcedureAccountQuota     = "account_quota"
	ProcedureSubnets          = "subnets"
	ProcedurePasswordPolicies = "password_policies"
)

// RemediationReport captures the outcome of one procedure run on one host:
// the worst severity seen plus the ordered log lines produced along the way.
type RemediationReport struct {
	RunID     string    `json:"runId"`
	Host      string    `json:"host"`
	Domain    string    `json:"domain,omitempty"`
	Procedure string    `json:"procedure"`
	Severity  Severity  `json:"severity"`
	Logs      []string  `json:"logs,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
