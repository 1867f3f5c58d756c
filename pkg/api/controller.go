package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dc-harden/pkg/model"
	"dc-harden/pkg/store"
)

// RegisterRoutes wires the HTTP handlers on the provided mux.
func RegisterRoutes(mux *http.ServeMux, st store.ReportStore, token string) {
	auth := authFunc(token)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("dc-harden controller"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := st.Ping(); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/reports", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodPost:
			handleReportIngest(w, r, st)
		case http.MethodGet:
			host := r.URL.Query().Get("host")
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			reports, err := st.ListReports(host, limit)
			if err != nil {
				http.Error(w, "failed to list reports", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, reports)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/status/summary", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		reports, err := st.ListReports("", 0)
		if err != nil {
			http.Error(w, "failed to list reports", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, buildSummary(reports))
	})

	mux.HandleFunc("/api/v1/audit", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := st.ListAudit(limit)
		if err != nil {
			http.Error(w, "failed to list audit entries", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

func handleReportIngest(w http.ResponseWriter, r *http.Request, st store.ReportStore) {
	var report model.RemediationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if report.Host == "" || report.Procedure == "" {
		http.Error(w, "host and procedure are required", http.StatusBadRequest)
		return
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	if err := st.SaveReport(report); err != nil {
		http.Error(w, "failed to persist report", http.StatusInternalServerError)
		return
	}
	_ = st.AppendAudit(model.AuditEntry{
		Actor:     report.Host,
		Action:    "report",
		Target:    report.Procedure,
		Detail:    report.Severity.String(),
		Timestamp: time.Now(),
	})
	if dbRef != nil {
		rec := model.RunRecord{
			RunID:     report.RunID,
			Host:      report.Host,
			Domain:    report.Domain,
			Procedure: report.Procedure,
			Severity:  int(report.Severity),
			Logs:      strings.Join(report.Logs, "\n"),
			CreatedAt: report.Timestamp,
		}
		if err := dbRef.Create(&rec).Error; err != nil {
			log.Printf("run record persist failed: %v", err)
		}
	}
	log.Printf("report from %s procedure=%s severity=%s", report.Host, report.Procedure, report.Severity)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// HostSummary is the worst recent outcome per procedure for one host.
type HostSummary struct {
	Host       string                    `json:"host"`
	Procedures map[string]model.Severity `json:"procedures"`
	Worst      model.Severity            `json:"worst"`
	LastReport time.Time                 `json:"lastReport"`
}

func buildSummary(reports []model.RemediationReport) []HostSummary {
	byHost := map[string]*HostSummary{}
	for _, r := range reports {
		s, ok := byHost[r.Host]
		if !ok {
			s = &HostSummary{Host: r.Host, Procedures: map[string]model.Severity{}}
			byHost[r.Host] = s
		}
		// Latest report per procedure wins; reports arrive oldest first.
		s.Procedures[r.Procedure] = r.Severity
		if r.Timestamp.After(s.LastReport) {
			s.LastReport = r.Timestamp
		}
	}
	out := make([]HostSummary, 0, len(byHost))
	for _, s := range byHost {
		for _, sev := range s.Procedures {
			s.Worst = model.Worst(s.Worst, sev)
		}
		out = append(out, *s)
	}
	return out
}
