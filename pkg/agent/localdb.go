package agent

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"dc-harden/pkg/model"
)

var (
	sqliteOnce sync.Once
	sqliteDB   *sql.DB
)

const defaultStateDir = "/var/lib/dc-harden"

func statePath() string {
	dir := os.Getenv("DCHARDEN_STATE_DIR")
	if dir == "" {
		dir = defaultStateDir
	}
	return filepath.Join(dir, "state.db")
}

func initSQLite() {
	sqliteOnce.Do(func() {
		path := statePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Printf("sqlite init mkdir failed: %v", err)
			return
		}
		dsn := "file:" + path + "?_pragma=busy_timeout=5000"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Printf("sqlite open failed: %v", err)
			return
		}
		db.SetMaxOpenConns(1)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("sqlite ping failed: %v", err)
			_ = db.Close()
			return
		}
		schema := `CREATE TABLE IF NOT EXISTS remediation_runs(run_id TEXT, procedure TEXT, severity INTEGER, logs TEXT, ts INTEGER);
CREATE INDEX IF NOT EXISTS idx_runs_proc ON remediation_runs(procedure);`
		if _, err := db.ExecContext(ctx, schema); err != nil {
			log.Printf("sqlite init schema failed: %v", err)
			_ = db.Close()
			return
		}
		sqliteDB = db
	})
}

// recordRun appends the run to local history, best effort.
func recordRun(r model.RemediationReport) {
	initSQLite()
	if sqliteDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _ = sqliteDB.ExecContext(ctx,
		`INSERT INTO remediation_runs(run_id, procedure, severity, logs, ts) VALUES(?,?,?,?,?)`,
		r.RunID, r.Procedure, int(r.Severity), strings.Join(r.Logs, "\n"), r.Timestamp.Unix())
}

// RecentRuns returns up to limit local run records, newest first.
func RecentRuns(limit int) []model.RemediationReport {
	initSQLite()
	if sqliteDB == nil {
		return nil
	}
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rows, err := sqliteDB.QueryContext(ctx,
		`SELECT run_id, procedure, severity, logs, ts FROM remediation_runs ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.RemediationReport
	for rows.Next() {
		var r model.RemediationReport
		var sev int
		var logs string
		var ts int64
		if err := rows.Scan(&r.RunID, &r.Procedure, &sev, &logs, &ts); err != nil {
			continue
		}
		r.Severity = model.Severity(sev)
		if logs != "" {
			r.Logs = strings.Split(logs, "\n")
		}
		r.Timestamp = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out
}
