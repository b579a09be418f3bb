// Package history persists completed pipeline runs in a SQLite database
// under ~/.cmdai/history/. Runs are append-only; the stats subcommand
// aggregates over the whole table.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/carohq/cmdai/internal/domain"
	"github.com/carohq/cmdai/internal/pkg/filesystem"
	"github.com/carohq/cmdai/internal/ports"
)

// SQLiteStore implements ports.HistoryRepository over a single runs table.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path. An empty path
// defaults to ~/.cmdai/history/runs.db.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".cmdai", "history", "runs.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		timestamp TEXT,
		prompt TEXT,
		command TEXT,
		backend TEXT,
		risk_level TEXT,
		refused INTEGER,
		executed INTEGER,
		exit_code INTEGER,
		latency_ms INTEGER,
		token_count INTEGER
	);`)
	return err
}

// Save inserts a new run record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO runs
		(run_id, timestamp, prompt, command, backend, risk_level, refused, executed, exit_code, latency_ms, token_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Timestamp.Format(time.RFC3339),
		record.Prompt,
		record.Command,
		record.Backend,
		string(record.RiskLevel),
		boolToInt(record.Refused),
		boolToInt(record.Executed),
		record.ExitCode,
		record.Latency.Milliseconds(),
		record.TokenCount,
	)
	return err
}

// Records returns stored runs, newest first. limit <= 0 means all; search
// filters prompt and command by substring.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT run_id, timestamp, prompt, command, backend, risk_level, refused, executed, exit_code, latency_ms, token_count FROM runs`)
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			rec               domain.HistoryRecord
			ts, risk          string
			refused, executed int
			latencyMS         int64
		)
		if err := rows.Scan(&rec.RunID, &ts, &rec.Prompt, &rec.Command, &rec.Backend, &risk, &refused, &executed, &rec.ExitCode, &latencyMS, &rec.TokenCount); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.RiskLevel = domain.RiskLevel(risk)
		rec.Refused = refused == 1
		rec.Executed = executed == 1
		rec.Latency = time.Duration(latencyMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates the whole table in one pass.
func (s *SQLiteStore) Stats() (domain.HistoryStats, error) {
	records, err := s.Records(0, "")
	if err != nil {
		return domain.HistoryStats{}, err
	}
	stats := domain.HistoryStats{
		ByRiskLevel: make(map[domain.RiskLevel]int),
		ByBackend:   make(map[string]int),
	}
	var totalLatency time.Duration
	for _, rec := range records {
		stats.TotalRuns++
		if rec.Executed {
			stats.Executed++
		}
		if rec.Refused {
			stats.Refused++
		}
		if rec.RiskLevel != "" {
			stats.ByRiskLevel[rec.RiskLevel]++
		}
		if rec.Backend != "" {
			stats.ByBackend[rec.Backend]++
		}
		stats.TotalTokens += rec.TokenCount
		totalLatency += rec.Latency
		if stats.OldestRecord.IsZero() || rec.Timestamp.Before(stats.OldestRecord) {
			stats.OldestRecord = rec.Timestamp
		}
	}
	if stats.TotalRuns > 0 {
		stats.AvgLatency = totalLatency / time.Duration(stats.TotalRuns)
	}
	return stats, nil
}

// Clear deletes all stored runs.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
