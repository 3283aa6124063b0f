package session

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Settings keys for the persisted session scalars.
const (
	keyToken  = "jwt_token"
	keyExpiry = "jwt_expiry"
)

// Store persists a session in the local settings table so it survives
// process restarts.
type Store struct {
	db *sql.DB
}

// NewStore returns a session store backed by the given state database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts the session's token and expiry.
func (s *Store) Save(ctx context.Context, sess Session) error {
	pairs := map[string]string{
		keyToken:  sess.Token,
		keyExpiry: strconv.FormatInt(sess.Expiry, 10),
	}
	for key, value := range pairs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
	}
	return nil
}

// Load returns the persisted session, or nil if none is stored.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, keyToken,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}

	sess := &Session{Token: token}

	var expiry string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, keyExpiry,
	).Scan(&expiry)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("querying expiry: %w", err)
	}
	if err == nil {
		sess.Expiry, err = strconv.ParseInt(expiry, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing stored expiry: %w", err)
		}
	}

	return sess, nil
}

// Clear removes the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key IN (?, ?)`, keyToken, keyExpiry,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
