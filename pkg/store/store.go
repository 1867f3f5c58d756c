package store

import "dc-harden/pkg/model"

// ReportStore defines the persistence layer for remediation reports and the
// controller audit trail. Backed by memory by default, Consul KV when built
// with the consul tag.
type ReportStore interface {
	SaveReport(model.RemediationReport) error
	// ListReports returns reports for one host, or all hosts when host is
	// empty; limit <= 0 means no limit. Oldest first.
	ListReports(host string, limit int) ([]model.RemediationReport, error)
	AppendAudit(model.AuditEntry) error
	ListAudit(limit int) ([]model.AuditEntry, error)
	Ping() error
}
