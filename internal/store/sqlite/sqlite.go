package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chatify/chatify-server/internal/store"
)

// Schema is the database schema applied on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name        TEXT NOT NULL,
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	profile_pic      TEXT NOT NULL DEFAULT '',
	is_verified      BOOLEAN NOT NULL DEFAULT 0,
	otp              TEXT,
	otp_expires_at   DATETIME,
	reset_otp        TEXT,
	reset_expires_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id   INTEGER NOT NULL,
	receiver_id INTEGER NOT NULL,
	text        TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (receiver_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, created_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

const userColumns = `id, full_name, email, password_hash, profile_pic, is_verified,
	COALESCE(otp, ''), otp_expires_at, COALESCE(reset_otp, ''), reset_expires_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePic,
		&user.IsVerified,
		&user.OTP,
		&user.OTPExpiresAt,
		&user.ResetOTP,
		&user.ResetExpires,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a new unverified user with a pending OTP.
func (s *SQLiteStore) CreateUser(ctx context.Context, fullName, email, passwordHash, otp string, otpExpires time.Time) (*store.User, error) {
	query := `
		INSERT INTO users (full_name, email, password_hash, otp, otp_expires_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, fullName, email, passwordHash, otp, otpExpires)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// OverwritePendingUser replaces the signup data of an unverified account.
func (s *SQLiteStore) OverwritePendingUser(ctx context.Context, id int64, fullName, passwordHash, otp string, otpExpires time.Time) error {
	query := `
		UPDATE users
		SET full_name = ?, password_hash = ?, otp = ?, otp_expires_at = ?
		WHERE id = ? AND is_verified = 0
	`
	if _, err := s.db.ExecContext(ctx, query, fullName, passwordHash, otp, otpExpires, id); err != nil {
		return fmt.Errorf("overwrite pending user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// SetOTP stores a fresh verification OTP.
func (s *SQLiteStore) SetOTP(ctx context.Context, id int64, otp string, expires time.Time) error {
	query := `UPDATE users SET otp = ?, otp_expires_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, otp, expires, id); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

// MarkVerified marks the account verified and clears the OTP.
func (s *SQLiteStore) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_verified = 1, otp = NULL, otp_expires_at = NULL WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// SetResetOTP stores a password-reset OTP.
func (s *SQLiteStore) SetResetOTP(ctx context.Context, id int64, otp string, expires time.Time) error {
	query := `UPDATE users SET reset_otp = ?, reset_expires_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, otp, expires, id); err != nil {
		return fmt.Errorf("set reset otp: %w", err)
	}
	return nil
}

// ResetPassword replaces the password hash and clears the reset OTP.
func (s *SQLiteStore) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, reset_otp = NULL, reset_expires_at = NULL WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateProfilePic updates the profile picture URL and returns the user.
func (s *SQLiteStore) UpdateProfilePic(ctx context.Context, id int64, url string) (*store.User, error) {
	query := `UPDATE users SET profile_pic = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, url, id); err != nil {
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// ListUsers lists all verified users except the given one.
func (s *SQLiteStore) ListUsers(ctx context.Context, excludeID int64) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id != ? AND is_verified = 1 ORDER BY full_name`
	rows, err := s.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*store.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and fills in ID and CreatedAt.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, text, image_url)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.SenderID, msg.ReceiverID, msg.Text, msg.ImageURL)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id

	row := s.db.QueryRowContext(ctx, `SELECT created_at FROM messages WHERE id = ?`, id)
	if err := row.Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("read message timestamp: %w", err)
	}
	return nil
}

// ListConversation returns all messages exchanged between two users, oldest first.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB int64) ([]*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListChatPartnerIDs returns the distinct users the given user has exchanged messages with.
func (s *SQLiteStore) ListChatPartnerIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query chat partners: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan partner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteMessages deletes the given messages, restricted to those sent by
// senderID, and returns the deleted rows so callers can notify counterparties.
func (s *SQLiteStore) DeleteMessages(ctx context.Context, ids []int64, senderID int64) ([]*store.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, senderID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT id, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE id IN (` + placeholders + `) AND sender_id = ?
	`
	rows, err := tx.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages to delete: %w", err)
	}
	deleted, err := scanMessages(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	deleteQuery := `DELETE FROM messages WHERE id IN (` + placeholders + `) AND sender_id = ?`
	if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		return nil, fmt.Errorf("delete messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}
	return deleted, nil
}

func scanMessages(rows *sql.Rows) ([]*store.Message, error) {
	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Text,
			&msg.ImageURL,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
