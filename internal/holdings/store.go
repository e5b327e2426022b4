package holdings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// listKey is the fixed key the holdings list lives under.
const listKey = "holdings"

// Store persists the holdings list as a JSON document under a fixed key
// in a local SQLite database. Load is called once at startup; Save on
// every mutation. There is no partial-write semantics to speak of: the
// value is replaced wholesale.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the store at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if !strings.HasPrefix(path, "file:") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving store path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		path = abs
	}

	connStr := path + "?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// One writer at a time; this is a single-user local store.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing store schema: %w", err)
	}

	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

// Load returns the persisted holdings list. A missing key means a fresh
// install and yields an empty list. A value that no longer parses is
// logged and treated as empty rather than failing startup.
func (s *Store) Load() ([]Holding, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, listKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}

	var list []Holding
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		s.log.Warn().Err(err).Msg("stored holdings unparsable; starting with empty list")
		return nil, nil
	}
	for i := range list {
		list[i].Symbol = strings.ToUpper(strings.TrimSpace(list[i].Symbol))
	}
	return list, nil
}

// Save replaces the persisted holdings list.
func (s *Store) Save(list []Holding) error {
	if list == nil {
		list = []Holding{}
	}
	value, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding holdings: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		listKey, string(value),
	)
	if err != nil {
		return fmt.Errorf("saving holdings: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
