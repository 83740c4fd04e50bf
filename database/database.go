package database

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/storage"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Snapshot is one saved version of the whole tree.
type Snapshot struct {
	ID          int64  `json:"id"`
	PersonCount int    `json:"person_count"`
	CreatedAt   int64  `json:"created_at"`
	Data        []byte `json:"-"`
}

func InitDB(dataSourceName string, log *logrus.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable write-ahead logging so readers never block the autosave writer
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		log.Warnf("failed to set WAL mode: %v", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_count INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	log.WithField("dsn", dataSourceName).Info("database initialized")
	return db, nil
}

// InsertSnapshot stores a new version and returns its id.
func InsertSnapshot(db *sql.DB, data []byte, personCount int) (int64, error) {
	queryBuilder := psql.Insert("snapshots").
		Columns("person_count", "data", "created_at").
		Values(personCount, string(data), time.Now().Unix())

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL query for InsertSnapshot: %w", err)
	}
	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return result.LastInsertId()
}

// GetLatestSnapshot returns sql.ErrNoRows when no version has been saved.
func GetLatestSnapshot(db *sql.DB) (Snapshot, error) {
	var s Snapshot
	var data string

	queryBuilder := psql.Select("id", "person_count", "data", "created_at").
		From("snapshots").
		OrderBy("id DESC").
		Limit(1)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to build SQL query for GetLatestSnapshot: %w", err)
	}

	err = db.QueryRow(sqlStr, args...).Scan(&s.ID, &s.PersonCount, &data, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, sql.ErrNoRows
		}
		return Snapshot{}, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	s.Data = []byte(data)
	return s, nil
}

// ListSnapshots returns version metadata, newest first, without the data column.
func ListSnapshots(db *sql.DB, limit uint64) ([]Snapshot, error) {
	queryBuilder := psql.Select("id", "person_count", "created_at").
		From("snapshots").
		OrderBy("id DESC")
	if limit > 0 {
		queryBuilder = queryBuilder.Limit(limit)
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListSnapshots: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListSnapshots query: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.PersonCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return snapshots, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snapshots, nil
}

// PruneSnapshots deletes everything but the newest keep versions.
func PruneSnapshots(db *sql.DB, keep int) error {
	if keep <= 0 {
		return nil
	}
	queryBuilder := psql.Delete("snapshots").
		Where("id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)", keep)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for PruneSnapshots: %w", err)
	}
	if _, err := db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

func DeleteAllSnapshots(db *sql.DB) error {
	sqlStr, args, err := psql.Delete("snapshots").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for DeleteAllSnapshots: %w", err)
	}
	if _, err := db.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// SnapshotStore is a storage.Adapter that appends a version on every save and
// loads the newest one.
type SnapshotStore struct {
	DB   *sql.DB
	Keep int // versions retained after each save, 0 keeps all
}

func NewSnapshotStore(db *sql.DB, keep int) *SnapshotStore {
	return &SnapshotStore{DB: db, Keep: keep}
}

func (s *SnapshotStore) Load() (family.People, bool, error) {
	snap, err := GetLatestSnapshot(s.DB)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	people, err := storage.Import(bytes.NewReader(snap.Data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot %d: %w", snap.ID, err)
	}
	return people, true, nil
}

func (s *SnapshotStore) Save(people family.People) error {
	data, err := json.Marshal(people)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := InsertSnapshot(s.DB, data, len(people)); err != nil {
		return err
	}
	return PruneSnapshots(s.DB, s.Keep)
}

func (s *SnapshotStore) Clear() error {
	return DeleteAllSnapshots(s.DB)
}

// History lists saved versions, newest first. A zero limit lists all of them.
func (s *SnapshotStore) History(limit uint64) ([]Snapshot, error) {
	return ListSnapshots(s.DB, limit)
}
