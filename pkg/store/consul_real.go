//go:build consul

package store

import (
	"dc-harden/pkg/consul"
)

// NewConsulStore creates a Consul-backed store (requires build tag consul).
func NewConsulStore(addr string) ReportStore {
	return consul.NewStore(addr)
}
