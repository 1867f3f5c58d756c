//go:build consul

// Package consul provides a Consul KV-backed report store so multiple
// controllers can share remediation history.
package consul

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"dc-harden/pkg/model"
)

const (
	reportPrefix = "dc-harden/reports/"
	auditPrefix  = "dc-harden/audit/"
)

// Store is a Consul-backed ReportStore implementation.
type Store struct {
	cli *consulapi.Client
}

func NewStore(addr string) *Store {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return &Store{}
	}
	return &Store{cli: cli}
}

func (s *Store) SaveReport(r model.RemediationReport) error {
	if s.cli == nil {
		return fmt.Errorf("consul client not configured")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := reportPrefix + r.Host + "/" + strconv.FormatInt(r.Timestamp.UnixNano(), 10) + "-" + r.Procedure
	_, err = s.cli.KV().Put(&consulapi.KVPair{Key: key, Value: b}, nil)
	return err
}

func (s *Store) ListReports(host string, limit int) ([]model.RemediationReport, error) {
	if s.cli == nil {
		return nil, fmt.Errorf("consul client not configured")
	}
	prefix := reportPrefix
	if host != "" {
		prefix += host + "/"
	}
	pairs, _, err := s.cli.KV().List(prefix, nil)
	if err != nil {
		return nil, err
	}
	var out []model.RemediationReport
	for _, p := range pairs {
		var r model.RemediationReport
		if err := json.Unmarshal(p.Value, &r); err == nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) AppendAudit(entry model.AuditEntry) error {
	if s.cli == nil {
		return fmt.Errorf("consul client not configured")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := auditPrefix + strconv.FormatInt(entry.Timestamp.UnixNano(), 10)
	_, err = s.cli.KV().Put(&consulapi.KVPair{Key: key, Value: b}, nil)
	return err
}

func (s *Store) ListAudit(limit int) ([]model.AuditEntry, error) {
	if s.cli == nil {
		return nil, fmt.Errorf("consul client not configured")
	}
	pairs, _, err := s.cli.KV().List(auditPrefix, nil)
	if err != nil {
		return nil, err
	}
	var out []model.AuditEntry
	for _, p := range pairs {
		var e model.AuditEntry
		if err := json.Unmarshal(p.Value, &e); err == nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) Ping() error {
	if s.cli == nil {
		return fmt.Errorf("consul client not configured")
	}
	_, err := s.cli.Status().Leader()
	return err
}
