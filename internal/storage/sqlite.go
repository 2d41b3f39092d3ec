package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"engagesphere/internal/model"
	"engagesphere/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (or creates) the sqlite database and runs migrations.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- Users ----

func (s *sqliteStore) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(email, name, hashed_password, job_title, is_admin, interests, contact_method, phone_number, telegram_chat_id)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		strings.ToLower(strings.TrimSpace(u.Email)), u.Name, u.HashedPassword, u.JobTitle,
		boolToInt(u.IsAdmin), u.Interests, defaultContact(u.ContactMethod), u.PhoneNumber, u.TelegramChatID,
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

const userCols = `id, email, name, hashed_password, job_title, is_admin, interests, contact_method, phone_number, telegram_chat_id`

func (s *sqliteStore) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var isAdmin int
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.HashedPassword, &u.JobTitle,
		&isAdmin, &u.Interests, &u.ContactMethod, &u.PhoneNumber, &u.TelegramChatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	return &u, nil
}

func (s *sqliteStore) FindUser(ctx context.Context, id int64) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id))
}

func (s *sqliteStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email))
}

func (s *sqliteStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (s *sqliteStore) UpdateUserProfile(ctx context.Context, id int64, name, jobTitle, interests string) error {
	return s.execOne(ctx, `UPDATE users SET name = ?, job_title = ?, interests = ? WHERE id = ?`,
		name, jobTitle, interests, id)
}

func (s *sqliteStore) UpdateUserContact(ctx context.Context, id int64, method, phone string, telegramChatID int64) error {
	return s.execOne(ctx, `UPDATE users SET contact_method = ?, phone_number = ?, telegram_chat_id = ? WHERE id = ?`,
		defaultContact(method), phone, telegramChatID, id)
}

func (s *sqliteStore) UpdateUserInterests(ctx context.Context, id int64, interests string) error {
	return s.execOne(ctx, `UPDATE users SET interests = ? WHERE id = ?`, interests, id)
}

// ---- Events ----

func (s *sqliteStore) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events(name, description, event_time, image_url, recording_url) VALUES(?,?,?,?,?)`,
		// Whole-second RFC3339 keeps timestamps fixed width, so TEXT
		// comparison in SQL matches chronological order.
		e.Name, e.Description, e.EventTime.UTC().Format(time.RFC3339), e.ImageURL, e.RecordingURL,
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) FindEvent(ctx context.Context, id int64) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, event_time, image_url, recording_url FROM events WHERE id = ?`, id)
	return scanEvent(row.Scan)
}

func (s *sqliteStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, event_time, image_url, recording_url FROM events ORDER BY event_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteEvent(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM events WHERE id = ?`, id)
}

func scanEvent(scan func(dest ...any) error) (*model.Event, error) {
	var e model.Event
	var ts string
	err := scan(&e.ID, &e.Name, &e.Description, &ts, &e.ImageURL, &e.RecordingURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("bad event_time %q: %w", ts, err)
	}
	e.EventTime = t.UTC()
	return &e, nil
}

// ---- Registrations ----

func (s *sqliteStore) CreateRegistration(ctx context.Context, r *model.Registration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations(user_id, event_id, registration_time) VALUES(?,?,?)`,
		r.UserID, r.EventID, r.RegistrationTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) FindRegistration(ctx context.Context, userID, eventID int64) (*model.Registration, error) {
	var r model.Registration
	var ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, registration_time FROM registrations WHERE user_id = ? AND event_id = ?`,
		userID, eventID,
	).Scan(&r.ID, &r.UserID, &r.EventID, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("bad registration_time %q: %w", ts, err)
	}
	r.RegistrationTime = t.UTC()
	return &r, nil
}

func (s *sqliteStore) DeleteRegistration(ctx context.Context, userID, eventID int64) error {
	return s.execOne(ctx, `DELETE FROM registrations WHERE user_id = ? AND event_id = ?`, userID, eventID)
}

func (s *sqliteStore) ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, registration_time FROM registrations WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Registration
	for rows.Next() {
		var r model.Registration
		var ts string
		if err := rows.Scan(&r.ID, &r.UserID, &r.EventID, &ts); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("bad registration_time %q: %w", ts, err)
		}
		r.RegistrationTime = t.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ListUpcomingEventsForUser(ctx context.Context, userID int64, now time.Time) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.description, e.event_time, e.image_url, e.recording_url
		 FROM events e JOIN registrations r ON r.event_id = e.id
		 WHERE r.user_id = ? AND e.event_time >= ?
		 ORDER BY e.event_time`,
		userID, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ---- helpers ----

func (s *sqliteStore) execOne(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	// modernc.org/sqlite surfaces constraint violations in the error text;
	// match on the sqlite message to stay driver-version agnostic.
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func defaultContact(method string) string {
	switch method {
	case model.ContactEmail, model.ContactWhatsApp, model.ContactTelegram:
		return method
	default:
		return model.ContactEmail
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
