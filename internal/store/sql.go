package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/timetracker-bot/internal/domain"
)

// Supported values of the driver argument to Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	name   string
	dollar bool // $1, $2 placeholders instead of ?
}

func dialectFor(driver string) dialect {
	if driver == DriverPostgres {
		return dialect{name: DriverPostgres, dollar: true}
	}
	return dialect{name: DriverSQLite}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(q string) string {
	if !d.dollar {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// SQLRepo implements Repo over database/sql. Every operation acquires its
// own connection and releases it before returning.
type SQLRepo struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database, creates the schema if needed and returns a
// repository. For SQLite dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (*SQLRepo, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && !isMemoryDSN(dsn) {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	// No idle pool: each statement scope opens and closes its connection.
	db.SetMaxIdleConns(0)
	if driver == DriverSQLite {
		// single-writer engine
		db.SetMaxOpenConns(1)
		if isMemoryDSN(dsn) {
			// an in-memory database lives as long as its connection
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(0)
			db.SetConnMaxIdleTime(0)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := EnsureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	return &SQLRepo{db: db, dialect: dialectFor(driver)}, nil
}

// isMemoryDSN reports whether dsn names an in-memory SQLite database.
func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

// sqliteDSN adds per-connection PRAGMAs to a plain file path.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path + "?_pragma=foreign_keys(1)"
	}
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
}

// Close releases the underlying database resources.
func (r *SQLRepo) Close() error {
	return r.db.Close()
}

// withConn runs fn on a dedicated connection and always releases it.
func (r *SQLRepo) withConn(ctx context.Context, fn func(c *sql.Conn) error) error {
	c, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer c.Close()
	return fn(c)
}

// withTx runs fn in a transaction on a dedicated connection.
func (r *SQLRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.withConn(ctx, func(c *sql.Conn) error {
		tx, err := c.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func (r *SQLRepo) q(query string) string {
	return r.dialect.rebind(query)
}

// GetUser returns a user by Telegram id or ErrNotFound.
func (r *SQLRepo) GetUser(ctx context.Context, platformID int64) (*domain.User, error) {
	var u *domain.User
	err := r.withConn(ctx, func(c *sql.Conn) error {
		var (
			id   int64
			pid  int64
			data string
		)
		err := c.QueryRowContext(ctx, r.q(`
			SELECT id, user_id, data
			FROM users
			WHERE user_id = ?`),
			platformID,
		).Scan(&id, &pid, &data)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		u, err = decodeUser(id, pid, data)
		if err != nil {
			return fmt.Errorf("decode user %d: %w", pid, err)
		}
		return nil
	})
	return u, err
}

// InsertUser creates a user row and sets u.ID.
func (r *SQLRepo) InsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	data, err := encodeUser(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.withConn(ctx, func(c *sql.Conn) error {
		err := c.QueryRowContext(ctx, r.q(`
			INSERT INTO users (user_id, data)
			VALUES (?, ?)
			RETURNING id`),
			u.PlatformID, data,
		).Scan(&u.ID)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

// UpdateUser rewrites the profile and settings document of a user.
func (r *SQLRepo) UpdateUser(ctx context.Context, u *domain.User) error {
	data, err := encodeUser(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.withConn(ctx, func(c *sql.Conn) error {
		res, err := c.ExecContext(ctx, r.q(`UPDATE users SET data = ? WHERE id = ?`), data, u.ID)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return expectAffected(res)
	})
}

// InsertEvent stores a new event with its tags and sets e.ID.
// Uniqueness of (user, message id) is enforced by the schema.
func (r *SQLRepo) InsertEvent(ctx context.Context, e *domain.Event) error {
	if e == nil {
		return errors.New("nil event")
	}
	data, err := encodePayload(e.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, r.q(`
			INSERT INTO events (user_id, description, data, event_time, message_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`),
			e.UserID, e.Title, data, toUnix(e.EventTime), e.MessageID,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return r.insertTags(ctx, tx, e.ID, e.Payload.Tags)
	})
}

// FindEvent looks an event up by its natural key or returns ErrNotFound.
func (r *SQLRepo) FindEvent(ctx context.Context, userID, messageID int64) (*domain.Event, error) {
	var e *domain.Event
	err := r.withConn(ctx, func(c *sql.Conn) error {
		var (
			out  domain.Event
			data string
			ts   int64
		)
		err := c.QueryRowContext(ctx, r.q(`
			SELECT id, user_id, description, data, event_time, message_id
			FROM events
			WHERE user_id = ? AND message_id = ?`),
			userID, messageID,
		).Scan(&out.ID, &out.UserID, &out.Title, &data, &ts, &out.MessageID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find event: %w", err)
		}
		if out.Payload, err = decodePayload(data); err != nil {
			return fmt.Errorf("decode payload of event %d: %w", out.ID, err)
		}
		out.EventTime = fromUnix(ts)
		e = &out
		return nil
	})
	return e, err
}

// UpdateEvent rewrites title, payload and tags of an existing event.
func (r *SQLRepo) UpdateEvent(ctx context.Context, e *domain.Event) error {
	data, err := encodePayload(e.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.q(`
			UPDATE events
			SET description = ?, data = ?
			WHERE id = ?`),
			e.Title, data, e.ID,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM event_tags WHERE event_id = ?`), e.ID); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		return r.insertTags(ctx, tx, e.ID, e.Payload.Tags)
	})
}

func (r *SQLRepo) insertTags(ctx context.Context, tx *sql.Tx, eventID int64, tags []string) error {
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO event_tags (event_id, position, tag)
			VALUES (?, ?, ?)`),
			eventID, i, tag,
		); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	return nil
}

// QueryRange returns a user's events with from <= event_time <= to,
// ordered by event time ascending, each with its tags in original order.
func (r *SQLRepo) QueryRange(ctx context.Context, userID int64, from, to time.Time) ([]domain.Row, error) {
	var res []domain.Row
	err := r.withConn(ctx, func(c *sql.Conn) error {
		rows, err := c.QueryContext(ctx, r.q(`
			SELECT e.id, e.event_time, e.description, t.tag
			FROM events e
			LEFT JOIN event_tags t ON t.event_id = e.id
			WHERE e.user_id = ?
			  AND e.event_time BETWEEN ? AND ?
			ORDER BY e.event_time ASC, e.id ASC, t.position ASC`),
			userID, toUnix(from), toUnix(to),
		)
		if err != nil {
			return fmt.Errorf("query range: %w", err)
		}
		defer rows.Close()

		lastID := int64(-1)
		for rows.Next() {
			var (
				id    int64
				ts    int64
				title string
				tag   sql.NullString
			)
			if err := rows.Scan(&id, &ts, &title, &tag); err != nil {
				return err
			}
			if id != lastID {
				res = append(res, domain.Row{At: fromUnix(ts), Title: title, Tags: []string{}})
				lastID = id
			}
			if tag.Valid {
				cur := &res[len(res)-1]
				cur.Tags = append(cur.Tags, tag.String)
			}
		}
		return rows.Err()
	})
	return res, err
}

// FirstTimestampOnDate returns the earliest event inside day carrying tag,
// or nil if there is none.
func (r *SQLRepo) FirstTimestampOnDate(ctx context.Context, userID int64, day domain.Window, tag string) (*time.Time, error) {
	return r.firstTagged(ctx, `
		SELECT MIN(e.event_time)
		FROM events e
		JOIN event_tags t ON t.event_id = e.id
		WHERE e.user_id = ?
		  AND t.tag = ?
		  AND e.event_time BETWEEN ? AND ?`,
		userID, tag, toUnix(day.Start), toUnix(day.End),
	)
}

// FirstTimestampAfterDate returns the earliest event at or after the given
// instant carrying tag, or nil if there is none.
func (r *SQLRepo) FirstTimestampAfterDate(ctx context.Context, userID int64, after time.Time, tag string) (*time.Time, error) {
	return r.firstTagged(ctx, `
		SELECT MIN(e.event_time)
		FROM events e
		JOIN event_tags t ON t.event_id = e.id
		WHERE e.user_id = ?
		  AND t.tag = ?
		  AND e.event_time >= ?`,
		userID, tag, toUnix(after),
	)
}

func (r *SQLRepo) firstTagged(ctx context.Context, query string, args ...any) (*time.Time, error) {
	var ts *time.Time
	err := r.withConn(ctx, func(c *sql.Conn) error {
		var ns sql.NullInt64
		if err := c.QueryRowContext(ctx, r.q(query), args...).Scan(&ns); err != nil {
			return fmt.Errorf("first tagged event: %w", err)
		}
		ts = fromNullInt64(ns)
		return nil
	})
	return ts, err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
