package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dc-harden/pkg/model"
)

func TestMemoryStoreReports(t *testing.T) {
	st := NewMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveReport(model.RemediationReport{
			Host:      "dc01",
			Procedure: model.ProcedureSubnets,
			Severity:  model.SeverityInfo,
			Timestamp: time.Now(),
		}))
	}
	require.NoError(t, st.SaveReport(model.RemediationReport{
		Host:      "dc02",
		Procedure: model.ProcedureAccountQuota,
		Severity:  model.SeverityError,
		Timestamp: time.Now(),
	}))

	byHost, err := st.ListReports("dc01", 0)
	require.NoError(t, err)
	assert.Len(t, byHost, 3)

	all, err := st.ListReports("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	limited, err := st.ListReports("dc01", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStoreCapsPerHostHistory(t *testing.T) {
	st := NewMemoryStore()
	for i := 0; i < maxReportsPerHost+10; i++ {
		require.NoError(t, st.SaveReport(model.RemediationReport{Host: "dc01", Procedure: "p"}))
	}
	list, err := st.ListReports("dc01", 0)
	require.NoError(t, err)
	assert.Len(t, list, maxReportsPerHost)
}

func TestMemoryStoreAudit(t *testing.T) {
	st := NewMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, st.AppendAudit(model.AuditEntry{Actor: "dc01", Action: "report"}))
	}
	entries, err := st.ListAudit(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	all, err := st.ListAudit(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
