package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBlob stores blobs in a single key/value table. WAL mode plus
// busy_timeout lets the app and a display-refresh process share the file;
// each Put is one transaction, so readers never observe a torn payload.
// Lock wraps a whole load-mutate-save cycle in a BEGIN IMMEDIATE
// transaction, which takes the database write lock up front and so
// serializes cycles across processes.
type SQLiteBlob struct {
	db *sql.DB

	mu     sync.Mutex
	txConn *sql.Conn // set while the write lock is held
}

// OpenSQLiteBlob opens (and creates if missing) the blob database at path.
func OpenSQLiteBlob(path string) (*SQLiteBlob, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(2)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate blobs: %w", err)
	}
	return &SQLiteBlob{db: db}, nil
}

// queryRow routes through the locked connection when the write lock is
// held, so reads inside a cycle see the cycle's own transaction.
func (b *SQLiteBlob) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	b.mu.Lock()
	conn := b.txConn
	b.mu.Unlock()
	if conn != nil {
		return conn.QueryRowContext(ctx, query, args...)
	}
	return b.db.QueryRowContext(ctx, query, args...)
}

func (b *SQLiteBlob) exec(ctx context.Context, query string, args ...any) error {
	b.mu.Lock()
	conn := b.txConn
	b.mu.Unlock()
	if conn != nil {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	}
	_, err := b.db.ExecContext(ctx, query, args...)
	return err
}

func (b *SQLiteBlob) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.queryRow(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob get %s: %w", key, err)
	}
	return data, nil
}

func (b *SQLiteBlob) Put(ctx context.Context, key string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOp(defaultRetryConfig, func() error {
		return b.exec(ctx, `
			INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
		`, key, data, now)
	})
	if err != nil {
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBlob) Quarantine(ctx context.Context, key string, data []byte) error {
	side := fmt.Sprintf("%s.corrupt-%d", key, time.Now().Unix())
	return b.Put(ctx, side, data)
}

// Lock pins a connection and opens a BEGIN IMMEDIATE transaction on it.
// Another process's Lock blocks on the database write lock (bounded by
// busy_timeout) until release commits.
func (b *SQLiteBlob) Lock(ctx context.Context) (func(), error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock conn: %w", err)
	}
	err = retryOp(defaultRetryConfig, func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		return err
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin immediate: %w", err)
	}
	b.mu.Lock()
	b.txConn = conn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.txConn = nil
		b.mu.Unlock()
		if _, err := conn.ExecContext(context.Background(), "COMMIT"); err != nil {
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
		conn.Close()
	}, nil
}

func (b *SQLiteBlob) Close() error { return b.db.Close() }

var _ BlobStore = (*SQLiteBlob)(nil)
