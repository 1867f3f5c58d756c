// Package agent orchestrates remediation runs: execute, log to the event
// sink, record local history, and report to the controller when configured.
package agent

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dc-harden/pkg/directory"
	"dc-harden/pkg/eventlog"
	"dc-harden/pkg/model"
	"dc-harden/pkg/remediate"
)

// Runner executes remediation procedures against one domain controller.
type Runner struct {
	dir        directory.Client
	sink       *eventlog.Sink
	host       string
	domain     string
	controller string
	token      string
	httpClient *http.Client
	ws         *wsClient
}

func NewRunner(dir directory.Client, sink *eventlog.Sink, host, domain, controller, token string) *Runner {
	r := &Runner{
		dir:        dir,
		sink:       sink,
		host:       host,
		domain:     domain,
		controller: controller,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	if controller != "" {
		r.ws = newWSClient(controller, host, token)
		r.ws.start()
	}
	return r
}

// Run executes the named procedures in order and returns the worst severity
// across all of them. Procedures are independent; one failing does not stop
// the next.
func (r *Runner) Run(procedures []string, defs []model.PolicyDefinition) model.Severity {
	worst := model.SeverityInfo
	for _, proc := range procedures {
		sev := r.runOne(proc, defs)
		worst = model.Worst(worst, sev)
	}
	return worst
}

func (r *Runner) runOne(procedure string, defs []model.PolicyDefinition) model.Severity {
	var res *remediate.Result
	switch procedure {
	case model.ProcedureAccountQuota:
		res = remediate.FixAccountQuota(r.dir)
	case model.ProcedureSubnets:
		addrs, err := remediate.LocalAdapterAddrs()
		if err != nil {
			res = remediate.NewResult()
			res.Errorf("enumerate local adapters: %v", err)
		} else {
			res = remediate.RegisterSubnets(r.dir, addrs)
		}
	case model.ProcedurePasswordPolicies:
		res = remediate.ProvisionPasswordPolicies(r.dir, defs)
	default:
		res = remediate.NewResult()
		res.Errorf("unknown procedure %q", procedure)
	}

	report := model.RemediationReport{
		RunID:     uuid.NewString(),
		Host:      r.host,
		Domain:    r.domain,
		Procedure: procedure,
		Severity:  res.Severity(),
		Logs:      res.Lines(),
		Timestamp: time.Now(),
	}

	if err := r.sink.Emit(procedure, report.Severity, report.Logs); err != nil {
		log.Printf("event sink emit failed: %v", err)
	}
	recordRun(report)
	if r.ws != nil {
		for _, line := range report.Logs {
			r.ws.pushLog(procedure + ": " + line)
		}
	}
	if r.controller != "" {
		if err := postJSON(r.httpClient, r.controller+"/api/v1/reports", r.token, report); err != nil {
			log.Printf("report to controller failed: %v", err)
		}
	}
	log.Printf("procedure %s finished severity=%s lines=%d", procedure, report.Severity, len(report.Logs))
	return report.Severity
}
