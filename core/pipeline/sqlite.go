package pipeline

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	stage      TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (run_id, stage)
);`

// sqliteStore keeps run artifacts in a sqlite database so later stages or
// repeated runs can reload intermediates instead of recomputing them.
type sqliteStore struct {
	db    *sql.DB
	runID string
}

func openSQLiteStore(path string) (*sqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init artifact store: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Begin(runID string) error {
	s.runID = runID
	_, err := s.db.Exec(`INSERT INTO runs (id, created_at) VALUES (?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	return nil
}

func (s *sqliteStore) Put(stage string, artifact any) error {
	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", stage, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO artifacts (run_id, stage, body, created_at) VALUES (?, ?, ?, ?)`,
		s.runID, stage, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store %s artifact: %w", stage, err)
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// LoadArtifact reads one stage artifact of a run back out of a sqlite
// store into dst.
func LoadArtifact(path, runID, stage string, dst any) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer db.Close()

	var body string
	err = db.QueryRow(`SELECT body FROM artifacts WHERE run_id = ? AND stage = ?`, runID, stage).Scan(&body)
	if err != nil {
		return fmt.Errorf("load %s artifact of run %s: %w", stage, runID, err)
	}
	return json.Unmarshal([]byte(body), dst)
}
