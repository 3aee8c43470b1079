package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/harbinger/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver registration
)

// timeLayout is fixed width so text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect struct {
	driver    string
	numbered  bool // $1 placeholders instead of ?
	serialPK  string
	forUpdate string
}

var (
	sqliteDialect = dialect{
		driver:   "sqlite3",
		serialPK: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	postgresDialect = dialect{
		driver:    "pgx",
		numbered:  true,
		serialPK:  "BIGSERIAL PRIMARY KEY",
		forUpdate: " FOR UPDATE",
	}
)

// SQLStore is a Store backed by SQLite or PostgreSQL. Incidents are kept as
// JSON payloads next to the columns List filters and orders on.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn and creates the schema if needed. postgres selects the
// pgx driver; otherwise dsn is a go-sqlite3 data source.
func Open(ctx context.Context, dsn string, postgres bool) (*SQLStore, error) {
	d := sqliteDialect
	if postgres {
		d = postgresDialect
	} else if !strings.Contains(dsn, "_busy_timeout") {
		if strings.Contains(dsn, "?") {
			dsn += "&_busy_timeout=5000"
		} else {
			dsn += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if !postgres {
		// SQLite allows one writer; a single connection also keeps
		// :memory: databases shared.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS incidents (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			status TEXT NOT NULL,
			queue_key INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_queue ON incidents(queue_key, created_at)`,
		`CREATE TABLE IF NOT EXISTS actions (
			id ` + s.dialect.serialPK + `,
			incident_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			actor TEXT NOT NULL,
			details TEXT NOT NULL,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_incident ON actions(incident_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLStore) rebind(q string) string {
	if !s.dialect.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, inc domain.Incident) (bool, error) {
	payload, err := json.Marshal(inc)
	if err != nil {
		return false, fmt.Errorf("encode incident: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO incidents (id, created_at, status, queue_key, payload) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		inc.ID, inc.CreatedAt.UTC().Format(timeLayout), string(inc.Status), domain.QueueKey(inc), string(payload))
	if err != nil {
		return false, fmt.Errorf("insert incident %s: %w", inc.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert incident %s: %w", inc.ID, err)
	}
	if n == 0 {
		return false, nil
	}

	if err := s.insertAction(ctx, tx, reportedAction(inc)); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit incident %s: %w", inc.ID, err)
	}
	return true, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (domain.Incident, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM incidents WHERE id = ?`), id)
	return scanIncident(row, id)
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]domain.Incident, error) {
	q := `SELECT payload FROM incidents`
	var args []any
	if f.Unverified {
		q += ` WHERE status <> ?`
		args = append(args, string(domain.StatusVerified))
	}
	q += ` ORDER BY queue_key DESC, created_at ASC, id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		var inc domain.Incident
		if err := json.Unmarshal([]byte(payload), &inc); err != nil {
			return nil, fmt.Errorf("decode incident: %w", err)
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Verify(ctx context.Context, id string, decision domain.Decision, by, notes string) (domain.Incident, error) {
	return s.update(ctx, id, func(inc *domain.Incident) (domain.Action, error) {
		return inc.Verify(decision, by, notes, domain.Now())
	})
}

func (s *SQLStore) Assign(ctx context.Context, id, volunteer string) (domain.Incident, error) {
	return s.update(ctx, id, func(inc *domain.Incident) (domain.Action, error) {
		return inc.Assign(volunteer, domain.Now())
	})
}

// update applies a workflow change and its action log entry atomically.
func (s *SQLStore) update(ctx context.Context, id string, fn func(*domain.Incident) (domain.Action, error)) (domain.Incident, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, s.rebind(`SELECT payload FROM incidents WHERE id = ?`+s.dialect.forUpdate), id)
	inc, err := scanIncident(row, id)
	if err != nil {
		return domain.Incident{}, err
	}

	action, err := fn(&inc)
	if err != nil {
		return domain.Incident{}, err
	}

	payload, err := json.Marshal(inc)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("encode incident: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		`UPDATE incidents SET status = ?, queue_key = ?, payload = ? WHERE id = ?`),
		string(inc.Status), domain.QueueKey(inc), string(payload), id); err != nil {
		return domain.Incident{}, fmt.Errorf("update incident %s: %w", id, err)
	}
	if err := s.insertAction(ctx, tx, action); err != nil {
		return domain.Incident{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Incident{}, fmt.Errorf("commit incident %s: %w", id, err)
	}
	return inc, nil
}

func (s *SQLStore) Actions(ctx context.Context, id string) ([]domain.Action, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM incidents WHERE id = ?`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get incident %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, incident_id, kind, actor, details, at FROM actions WHERE incident_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []domain.Action
	for rows.Next() {
		var (
			a  domain.Action
			at string
		)
		if err := rows.Scan(&a.ID, &a.IncidentID, &a.Kind, &a.Actor, &a.Details, &at); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if a.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse action time: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CheckReadiness pings the database.
func (s *SQLStore) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) insertAction(ctx context.Context, tx *sql.Tx, a domain.Action) error {
	_, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO actions (incident_id, kind, actor, details, at) VALUES (?, ?, ?, ?, ?)`),
		a.IncidentID, a.Kind, a.Actor, a.Details, a.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func scanIncident(row *sql.Row, id string) (domain.Incident, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Incident{}, notFound(id)
		}
		return domain.Incident{}, fmt.Errorf("get incident %s: %w", id, err)
	}
	var inc domain.Incident
	if err := json.Unmarshal([]byte(payload), &inc); err != nil {
		return domain.Incident{}, fmt.Errorf("decode incident %s: %w", id, err)
	}
	return inc, nil
}
