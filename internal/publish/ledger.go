package publish

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const ledgerSchema = `CREATE TABLE IF NOT EXISTS chart_publish (
	content_hash CHAR(64)     NOT NULL PRIMARY KEY,
	url          VARCHAR(512) NOT NULL,
	sharing      VARCHAR(16)  NOT NULL,
	published_at DATETIME     NOT NULL
)`

// SQLLedger stores published URLs in the chart_publish table.
type SQLLedger struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLLedger wraps db.  Call EnsureSchema once during boot.
func NewSQLLedger(db *sqlx.DB) *SQLLedger {
	return &SQLLedger{db: db, now: time.Now}
}

// EnsureSchema creates the table when missing.
func (l *SQLLedger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, ledgerSchema)
	return err
}

// Lookup returns the URL recorded for hash.
func (l *SQLLedger) Lookup(ctx context.Context, hash string) (string, bool, error) {
	var url string
	err := l.db.GetContext(ctx, &url,
		`SELECT url FROM chart_publish WHERE content_hash = ?`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// Record upserts the URL for hash.
func (l *SQLLedger) Record(ctx context.Context, hash, url, sharing string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO chart_publish (content_hash, url, sharing, published_at)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE url = VALUES(url), sharing = VALUES(sharing), published_at = VALUES(published_at)`,
		hash, url, sharing, l.now().UTC())
	return err
}
