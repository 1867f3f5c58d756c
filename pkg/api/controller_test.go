package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dc-harden/pkg/model"
	"dc-harden/pkg/store"
)

func newTestServer(t *testing.T, token string) (*httptest.Server, store.ReportStore) {
	t.Helper()
	st := store.NewMemoryStore()
	mux := http.NewServeMux()
	RegisterRoutes(mux, st, token)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

func postReport(t *testing.T, url, token string, r model.RemediationReport) *http.Response {
	t.Helper()
	body, _ := json.Marshal(r)
	req, err := http.NewRequest(http.MethodPost, url+"/api/v1/reports", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestReportIngestAndList(t *testing.T) {
	srv, st := newTestServer(t, "")

	resp := postReport(t, srv.URL, "", model.RemediationReport{
		RunID:     "r1",
		Host:      "dc01",
		Procedure: model.ProcedureAccountQuota,
		Severity:  model.SeverityWarning,
		Logs:      []string{"quota written but reads back as 5, expected 0"},
		Timestamp: time.Now(),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := st.ListReports("dc01", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, model.SeverityWarning, stored[0].Severity)

	audit, err := st.ListAudit(0)
	require.NoError(t, err)
	assert.Len(t, audit, 1)
}

func TestReportIngestRejectsIncomplete(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp := postReport(t, srv.URL, "", model.RemediationReport{Procedure: "subnets"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStaticTokenGuardsRoutes(t *testing.T) {
	srv, _ := newTestServer(t, "s3cret")

	resp, err := http.Get(srv.URL + "/api/v1/reports")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ok := postReport(t, srv.URL, "s3cret", model.RemediationReport{
		Host: "dc01", Procedure: model.ProcedureSubnets,
	})
	ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestStatusSummaryWorstSeverity(t *testing.T) {
	srv, st := newTestServer(t, "")
	require.NoError(t, st.SaveReport(model.RemediationReport{
		Host: "dc01", Procedure: model.ProcedureAccountQuota, Severity: model.SeverityInfo, Timestamp: time.Now(),
	}))
	require.NoError(t, st.SaveReport(model.RemediationReport{
		Host: "dc01", Procedure: model.ProcedureSubnets, Severity: model.SeverityError, Timestamp: time.Now(),
	}))

	resp, err := http.Get(srv.URL + "/api/v1/status/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary []HostSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	require.Len(t, summary, 1)
	assert.Equal(t, "dc01", summary[0].Host)
	assert.Equal(t, model.SeverityError, summary[0].Worst)
	assert.Equal(t, model.SeverityInfo, summary[0].Procedures[model.ProcedureAccountQuota])
}

func TestSummaryUsesLatestReportPerProcedure(t *testing.T) {
	reports := []model.RemediationReport{
		{Host: "dc01", Procedure: "subnets", Severity: model.SeverityError, Timestamp: time.Now().Add(-time.Hour)},
		{Host: "dc01", Procedure: "subnets", Severity: model.SeverityInfo, Timestamp: time.Now()},
	}
	summary := buildSummary(reports)
	require.Len(t, summary, 1)
	assert.Equal(t, model.SeverityInfo, summary[0].Procedures["subnets"], "a later clean run supersedes an earlier failure")
}
