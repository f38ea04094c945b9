package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at,
	ip_address, client_name, device_name`

// scanSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.Session.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session

	var (
		refreshTokenHash sql.NullString
		expiresAt        string
		createdAt        string
		lastSeenAt       string
		ipAddress        sql.NullString
		clientName       sql.NullString
		deviceName       sql.NullString
	)

	err := scanner.Scan(
		&s.ID,
		&s.UserID,
		&refreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
		&ipAddress,
		&clientName,
		&deviceName,
	)
	if err != nil {
		return nil, err
	}

	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.LastSeenAt, err = parseTime(lastSeenAt); err != nil {
		return nil, err
	}

	if refreshTokenHash.Valid {
		s.RefreshTokenHash = refreshTokenHash.String
	}
	if ipAddress.Valid {
		s.IPAddress = ipAddress.String
	}
	if clientName.Valid {
		s.ClientName = clientName.String
	}
	if deviceName.Valid {
		s.DeviceName = deviceName.String
	}

	return &s, nil
}

// CreateSession inserts a new session into the database.
// Returns store.ErrAlreadyExists if the session ID already exists.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at,
			ip_address, client_name, device_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
		session.IPAddress,
		session.ClientName,
		session.DeviceName,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSession retrieves a session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionByRefreshTokenHash retrieves a session by its hashed refresh token.
// Returns store.ErrNotFound if no session matches.
func (s *Store) GetSessionByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, hash)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ListUserSessions returns all sessions belonging to a user, oldest first.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// UpdateSession performs a full row update on an existing session.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			user_id = ?,
			refresh_token_hash = ?,
			expires_at = ?,
			last_seen_at = ?,
			ip_address = ?,
			client_name = ?,
			device_name = ?
		WHERE id = ?`,
		session.UserID,
		session.RefreshTokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.LastSeenAt),
		session.IPAddress,
		session.ClientName,
		session.DeviceName,
		session.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteSession performs a hard delete of a session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry is before now.
// Returns the number of sessions removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
