package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// SQLiteStore persists interaction records in SQLite. It backs the raw
// export path of the reporting surface, where records must survive Redis
// eviction.
type SQLiteStore struct {
	db        *sql.DB
	retention int
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string, retention int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		milestone TEXT NOT NULL,
		snapshot TEXT,
		ts TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_ts ON interactions(ts DESC);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, retention: retention}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, rec *domain.InteractionRecord) error {
	snapshot, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, session_id, milestone, snapshot, ts) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, string(rec.Milestone), string(snapshot), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	if s.retention > 0 {
		// Oldest records beyond the retention bound are silently dropped.
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM interactions WHERE id NOT IN (
				SELECT id FROM interactions ORDER BY ts DESC LIMIT ?
			)`, s.retention)
		if err != nil {
			return fmt.Errorf("trim interactions: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error) {
	query := `SELECT id, session_id, milestone, snapshot, ts FROM interactions ORDER BY ts DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var records []*domain.InteractionRecord
	for rows.Next() {
		var (
			rec      domain.InteractionRecord
			snapshot string
			ms       string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &ms, &snapshot, &rec.Timestamp); err != nil {
			return records, fmt.Errorf("scan interaction: %w", err)
		}
		rec.Milestone = domain.Milestone(ms)
		if snapshot != "" {
			_ = json.Unmarshal([]byte(snapshot), &rec.Snapshot)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (*domain.InteractionStats, error) {
	stats := &domain.InteractionStats{
		ByMilestone: make(map[domain.Milestone]int),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT milestone, COUNT(*) FROM interactions GROUP BY milestone`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ms    string
			count int
		)
		if err := rows.Scan(&ms, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByMilestone[domain.Milestone(ms)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullTime
	if err := s.db.QueryRowContext(ctx,
		`SELECT MIN(ts), MAX(ts) FROM interactions`).Scan(&oldest, &newest); err != nil {
		return nil, fmt.Errorf("query stats range: %w", err)
	}
	if oldest.Valid {
		stats.Oldest = oldest.Time.UTC()
	}
	if newest.Valid {
		stats.Newest = newest.Time.UTC()
	}

	return stats, nil
}
