package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"

	"ragdesk/internal/domain"
	"ragdesk/internal/vectorstore"
)

// Store persists index entries in a local SQLite database. Vectors are
// stored JSON-encoded; search loads all vectors and ranks by cosine
// similarity in process, which is adequate for the collection sizes
// this tool targets.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates the database file (and parent directories) if needed
// and sets up the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	s := &Store{conn: conn, path: path}
	if err := s.setup(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) setup() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			vector TEXT NOT NULL,
			text TEXT NOT NULL,
			source_id TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			upload_id TEXT NOT NULL,
			file_type TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.conn.Exec(q); err != nil {
			return fmt.Errorf("setup schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	stored, err := s.storedDimension()
	if err != nil {
		return err
	}
	if stored != 0 && stored != dimension {
		return fmt.Errorf("index has dimension %d, embedder produces %d", stored, dimension)
	}
	if stored == 0 {
		_, err = s.conn.Exec(
			`INSERT INTO meta (key, value) VALUES ('dimension', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			strconv.Itoa(dimension))
	}
	return err
}

func (s *Store) storedDimension() (int, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// Upsert inserts all entries in one transaction, so a failure leaves
// the store unchanged.
func (s *Store) Upsert(entries []domain.IndexEntry) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO entries (id, vector, text, source_id, start_offset, upload_id, file_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		vec, err := json.Marshal(e.Vector)
		if err != nil {
			return fmt.Errorf("marshal vector: %w", err)
		}
		if _, err := stmt.Exec(e.ID, string(vec), e.Chunk.Text, e.Chunk.SourceID,
			e.Chunk.StartOffset, e.Chunk.UploadID, e.Chunk.FileType); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Search(vector []float32, k int) ([]vectorstore.Scored, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.conn.Query(
		`SELECT id, vector, text, source_id, start_offset, upload_id, file_type FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var scored []vectorstore.Scored
	for rows.Next() {
		var e domain.IndexEntry
		var vec string
		if err := rows.Scan(&e.ID, &vec, &e.Chunk.Text, &e.Chunk.SourceID,
			&e.Chunk.StartOffset, &e.Chunk.UploadID, &e.Chunk.FileType); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(vec), &e.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector for %s: %w", e.ID, err)
		}
		scored = append(scored, vectorstore.Scored{Entry: e, Score: vectorstore.Cosine(e.Vector, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *Store) Stats() (domain.IndexStats, error) {
	stats := domain.IndexStats{CountsByFileType: make(map[string]int)}
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&stats.Count); err != nil {
		return stats, fmt.Errorf("count entries: %w", err)
	}

	rows, err := s.conn.Query(`SELECT DISTINCT source_id FROM entries ORDER BY source_id`)
	if err != nil {
		return stats, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return stats, err
		}
		stats.DistinctSources = append(stats.DistinctSources, src)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	typeRows, err := s.conn.Query(`SELECT file_type, COUNT(*) FROM entries GROUP BY file_type`)
	if err != nil {
		return stats, fmt.Errorf("query file types: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var ft string
		var n int
		if err := typeRows.Scan(&ft, &n); err != nil {
			return stats, err
		}
		stats.CountsByFileType[ft] = n
	}
	return stats, typeRows.Err()
}

// Clear drops all entries and the recorded dimension immediately.
func (s *Store) Clear() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM meta WHERE key = 'dimension'`); err != nil {
		return fmt.Errorf("clear dimension: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Close() error { return s.conn.Close() }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }
