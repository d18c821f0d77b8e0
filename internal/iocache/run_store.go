package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
)

// Table names for run tracking.
const (
	runsTable        = "mlforensics_runs"
	evaluationsTable = "mlforensics_evaluations"
)

// runTables lists the run tracking tables in creation order.
var runTables = []string{runsTable, evaluationsTable}

// evaluationColumns is the column order used for evaluation inserts and reads.
const evaluationColumns = `run_id, repo_index, repo_url, clone_path, evaluated_at,
	total_files, source_files, contributors, commits, age_days, age_months,
	match_count, kept, reason, duration_ms`

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		runsTable:        getCreateRunsQuery(backend),
		evaluationsTable: getCreateEvaluationsQuery(backend),
	}
	for _, table := range runTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for mlforensics_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(26) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_candidates INT NOT NULL DEFAULT 0,
				total_kept INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(26) PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_candidates INT NOT NULL DEFAULT 0,
				total_kept INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_candidates INTEGER NOT NULL DEFAULT 0,
				total_kept INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateEvaluationsQuery returns the CREATE TABLE query for mlforensics_evaluations.
func getCreateEvaluationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(evaluationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(26) NOT NULL,
				repo_index INT NOT NULL,
				repo_url VARCHAR(512) NOT NULL,
				clone_path VARCHAR(512) NOT NULL,
				evaluated_at DATETIME(6) NOT NULL,
				total_files INT NOT NULL,
				source_files INT NOT NULL,
				contributors INT NOT NULL,
				commits INT NOT NULL,
				age_days INT NOT NULL,
				age_months DOUBLE NOT NULL,
				match_count INT NOT NULL,
				kept BOOLEAN NOT NULL,
				reason VARCHAR(50) NOT NULL,
				duration_ms BIGINT NOT NULL,
				PRIMARY KEY (run_id, repo_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(26) NOT NULL,
				repo_index INT NOT NULL,
				repo_url TEXT NOT NULL,
				clone_path TEXT NOT NULL,
				evaluated_at TIMESTAMPTZ NOT NULL,
				total_files INT NOT NULL,
				source_files INT NOT NULL,
				contributors INT NOT NULL,
				commits INT NOT NULL,
				age_days INT NOT NULL,
				age_months DOUBLE PRECISION NOT NULL,
				match_count INT NOT NULL,
				kept BOOLEAN NOT NULL,
				reason VARCHAR(50) NOT NULL,
				duration_ms BIGINT NOT NULL,
				PRIMARY KEY (run_id, repo_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				repo_index INTEGER NOT NULL,
				repo_url TEXT NOT NULL,
				clone_path TEXT NOT NULL,
				evaluated_at TEXT NOT NULL,
				total_files INTEGER NOT NULL,
				source_files INTEGER NOT NULL,
				contributors INTEGER NOT NULL,
				commits INTEGER NOT NULL,
				age_days INTEGER NOT NULL,
				age_months REAL NOT NULL,
				match_count INTEGER NOT NULL,
				kept INTEGER NOT NULL,
				reason TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				PRIMARY KEY (run_id, repo_index)
			);
		`, quotedTableName)
	}
}

// BeginRun records the start of a mining run.
func (rs *RunStoreImpl) BeginRun(runID string, startTime time.Time, configParams map[string]any) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	var configJSON *string
	if configParams != nil {
		data, err := json.Marshal(configParams)
		if err != nil {
			return fmt.Errorf("failed to marshal config params: %w", err)
		}
		s := string(data)
		configJSON = &s
	}

	query := fmt.Sprintf("INSERT INTO %s (run_id, start_time, config_params) VALUES (%s)",
		quoteTableName(runsTable, rs.backend), placeholders(rs.backend, 3))
	if _, err := rs.db.Exec(query, runID, formatTime(startTime, rs.backend), configJSON); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// RecordEvaluation stores the outcome for one candidate. Recording the same
// (run, index) pair again replaces the earlier row.
func (rs *RunStoreImpl) RecordEvaluation(r schema.EvaluationRecord) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(evaluationsTable, rs.backend)
	values := placeholders(rs.backend, 15)

	var query string
	switch rs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE repo_url = new.repo_url, clone_path = new.clone_path,
			evaluated_at = new.evaluated_at, total_files = new.total_files, source_files = new.source_files,
			contributors = new.contributors, commits = new.commits, age_days = new.age_days,
			age_months = new.age_months, match_count = new.match_count, kept = new.kept,
			reason = new.reason, duration_ms = new.duration_ms`, quotedTableName, evaluationColumns, values)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (run_id, repo_index) DO UPDATE SET repo_url = EXCLUDED.repo_url,
			clone_path = EXCLUDED.clone_path, evaluated_at = EXCLUDED.evaluated_at,
			total_files = EXCLUDED.total_files, source_files = EXCLUDED.source_files,
			contributors = EXCLUDED.contributors, commits = EXCLUDED.commits, age_days = EXCLUDED.age_days,
			age_months = EXCLUDED.age_months, match_count = EXCLUDED.match_count, kept = EXCLUDED.kept,
			reason = EXCLUDED.reason, duration_ms = EXCLUDED.duration_ms`, quotedTableName, evaluationColumns, values)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quotedTableName, evaluationColumns, values)
	}

	_, err := rs.db.Exec(query,
		r.RunID, r.RepoIndex, r.RepoURL, r.ClonePath, formatTime(r.EvaluatedAt, rs.backend),
		r.TotalFiles, r.SourceFiles, r.Contributors, r.Commits, r.AgeDays, r.AgeMonths,
		r.MatchCount, r.Kept, r.Reason, r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation %d of run %s: %w", r.RepoIndex, r.RunID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, totalCandidates, totalKept int) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// The duration is derived from the stored start time
	startQuery := fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", quotedTableName, placeholder(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(startQuery, runID))
	if err != nil {
		return fmt.Errorf("failed to get start time of run %s: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_candidates = $3, total_kept = $4 WHERE run_id = $5`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_candidates = ?, total_kept = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := rs.db.Exec(query, formatTime(endTime, rs.backend), durationMs, totalCandidates, totalKept, runID); err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return nil
}

// scanTime reads a single timestamp column, parsing SQLite's text form.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	quotedEvals := quoteTableName(evaluationsTable, rs.backend)

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// ULIDs sort by creation time
		lastQuery := fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		timeQuery := fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", quotedRuns, placeholder(rs.backend, 1))
		lastRunTime, err := rs.scanTime(rs.db.QueryRow(timeQuery, status.LastRunID))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		oldestRunTime, err := rs.scanTime(rs.db.QueryRow(oldestQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedEvals)).Scan(&status.TotalEvaluations); err != nil {
		return status, fmt.Errorf("failed to get total evaluations: %w", err)
	}
	keptQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE kept = %s", quotedEvals, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(keptQuery, true).Scan(&status.TotalKept); err != nil {
		return status, fmt.Errorf("failed to get total kept: %w", err)
	}

	status.TableSizes[runsTable] = int64(status.TotalRuns)
	status.TableSizes[evaluationsTable] = int64(status.TotalEvaluations)
	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_candidates, total_kept, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.TotalCandidates, &record.TotalKept, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := parseTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalCandidates, &record.TotalKept, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllEvaluations retrieves all evaluations ordered by run and candidate index.
func (rs *RunStoreImpl) GetAllEvaluations() ([]schema.EvaluationRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY run_id, repo_index`,
		evaluationColumns, quoteTableName(evaluationsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.EvaluationRecord
	for rows.Next() {
		var r schema.EvaluationRecord
		var evaluatedAt any
		if rs.backend == schema.SQLiteBackend {
			evaluatedAt = new(string)
		} else {
			evaluatedAt = &r.EvaluatedAt
		}

		if err := rows.Scan(&r.RunID, &r.RepoIndex, &r.RepoURL, &r.ClonePath, evaluatedAt,
			&r.TotalFiles, &r.SourceFiles, &r.Contributors, &r.Commits, &r.AgeDays, &r.AgeMonths,
			&r.MatchCount, &r.Kept, &r.Reason, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}

		if s, ok := evaluatedAt.(*string); ok {
			t, err := parseTime(*s)
			if err != nil {
				return nil, fmt.Errorf("failed to parse evaluated_at: %w", err)
			}
			r.EvaluatedAt = t
		}

		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluations: %w", err)
	}
	return results, nil
}
