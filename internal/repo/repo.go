package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"entrypass/internal/model"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrCapacityExceeded = errors.New("physical capacity exceeded")
	ErrTokenNotFound    = errors.New("redemption token not found")
	ErrPinNotFound      = errors.New("scanner pin not found")
	ErrAdminNotFound    = errors.New("admin not found")
)

type Repository interface {
	UpsertEvent(ctx context.Context, e *model.Event) (*model.Event, error)
	CreateRegistrationTx(ctx context.Context, eventID int64, user *model.User, ticketType, accessCode, qrToken string) (*model.Registration, bool, error)
	CheckInByToken(ctx context.Context, token string) (*model.CheckIn, error)
	GetEventStats(ctx context.Context, eventID int64) (*model.EventStats, error)
	FindActivePin(ctx context.Context, pin string) (*model.ScannerPin, error)
	CreatePin(ctx context.Context, pin, label string) (*model.ScannerPin, error)
	ListPins(ctx context.Context) ([]model.ScannerPin, error)
	TogglePin(ctx context.Context, id int64) (*model.ScannerPin, error)
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	EnsureAdmin(ctx context.Context, email, loginCodeHash string) error
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

// UpsertEvent creates the event on first registration and returns the
// existing row on every later call. The no-op DO UPDATE makes RETURNING
// yield the row in both cases.
func (r *repository) UpsertEvent(ctx context.Context, e *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (slug, name, event_date, physical_limit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, slug, name, event_date, physical_limit, created_at
	`

	row := r.db.QueryRowContext(ctx, query, e.Slug, e.Name, e.Date, e.PhysicalLimit)

	var out model.Event
	if err := row.Scan(&out.ID, &out.Slug, &out.Name, &out.Date, &out.PhysicalLimit, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert event: %w", err)
	}
	return &out, nil
}

// CreateRegistrationTx upserts the user by e-mail and creates the
// registration under the capacity gate. The event row is locked FOR UPDATE
// so concurrent physical registrations serialize on the count check.
// Returns the registration and whether it was newly created; an existing
// (event, user) registration is returned unchanged with its prior codes.
func (r *repository) CreateRegistrationTx(ctx context.Context, eventID int64, user *model.User, ticketType, accessCode, qrToken string) (*model.Registration, bool, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var physicalLimit int
	err = tx.QueryRowContext(ctx, `
		SELECT physical_limit
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&physicalLimit)
	if err != nil {
		_ = tx.Rollback()
		return nil, false, ErrEventNotFound
	}

	var userID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING id
	`, strings.ToLower(user.Email), user.Name, user.Phone).Scan(&userID)
	if err != nil {
		_ = tx.Rollback()
		return nil, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	user.ID = userID

	var existing model.Registration
	err = tx.QueryRowContext(ctx, `
		SELECT id, event_id, user_id, ticket_type, status, access_code, qr_token, checked_in_at, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(
		&existing.ID,
		&existing.EventID,
		&existing.UserID,
		&existing.TicketType,
		&existing.Status,
		&existing.AccessCode,
		&existing.QRToken,
		&existing.CheckedInAt,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if err == nil {
		// Re-registration is idempotent: keep the original ticket type
		// and codes, write nothing new.
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, false, fmt.Errorf("failed to check existing registration: %w", err)
	}

	if ticketType == model.TicketPhysical {
		var count int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*)
			FROM registrations
			WHERE event_id = $1 AND ticket_type = $2
		`, eventID, model.TicketPhysical).Scan(&count)
		if err != nil {
			_ = tx.Rollback()
			return nil, false, fmt.Errorf("failed to count physical registrations: %w", err)
		}

		if count >= physicalLimit {
			_ = tx.Rollback()
			return nil, false, ErrCapacityExceeded
		}
	}

	reg := model.Registration{
		EventID:    eventID,
		UserID:     userID,
		TicketType: ticketType,
		Status:     model.StatusIssued,
		AccessCode: accessCode,
		QRToken:    qrToken,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id, ticket_type, status, access_code, qr_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, reg.EventID, reg.UserID, reg.TicketType, reg.Status, reg.AccessCode, reg.QRToken).Scan(
		&reg.ID, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, false, fmt.Errorf("failed to create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &reg, true, nil
}

// CheckInByToken redeems a scanned token at most once. The transition is a
// single conditional UPDATE, so of two concurrent scans exactly one sees the
// row flip and the other reports the ticket as already used.
func (r *repository) CheckInByToken(ctx context.Context, token string) (*model.CheckIn, error) {
	var (
		result      model.CheckIn
		status      string
		checkedInAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT r.id, u.name, r.status, r.checked_in_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.qr_token = $1
	`, token).Scan(&result.RegistrationID, &result.HolderName, &status, &checkedInAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	err = r.db.Master.QueryRowContext(ctx, `
		UPDATE registrations
		SET status = $1, checked_in_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status <> $1
		RETURNING checked_in_at
	`, model.StatusCheckedIn, result.RegistrationID).Scan(&result.CheckedInAt)
	if err == nil {
		return &result, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check in registration: %w", err)
	}

	// Lost the race or scanned twice: report the original stamp.
	result.AlreadyUsed = true
	if checkedInAt.Valid {
		result.CheckedInAt = checkedInAt.Time
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT checked_in_at FROM registrations WHERE id = $1
		`, result.RegistrationID).Scan(&result.CheckedInAt)
		if err != nil {
			return nil, fmt.Errorf("failed to read check-in time: %w", err)
		}
	}
	return &result, nil
}

func (r *repository) GetEventStats(ctx context.Context, eventID int64) (*model.EventStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE ticket_type = $2),
			COUNT(*) FILTER (WHERE ticket_type = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM registrations
		WHERE event_id = $1
	`

	var stats model.EventStats
	err := r.db.QueryRowContext(ctx, query,
		eventID, model.TicketPhysical, model.TicketVirtual, model.StatusCheckedIn,
	).Scan(&stats.TotalPhysical, &stats.TotalVirtual, &stats.TotalCheckedIn)
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}
	return &stats, nil
}

func (r *repository) FindActivePin(ctx context.Context, pin string) (*model.ScannerPin, error) {
	query := `
		SELECT id, pin, label, is_active, created_at
		FROM scanner_pins
		WHERE pin = $1 AND is_active = TRUE
		LIMIT 1
	`

	var p model.ScannerPin
	err := r.db.QueryRowContext(ctx, query, pin).Scan(&p.ID, &p.Pin, &p.Label, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pin: %w", err)
	}
	return &p, nil
}

func (r *repository) CreatePin(ctx context.Context, pin, label string) (*model.ScannerPin, error) {
	query := `
		INSERT INTO scanner_pins (pin, label)
		VALUES ($1, $2)
		RETURNING id, pin, label, is_active, created_at
	`

	var p model.ScannerPin
	err := r.db.QueryRowContext(ctx, query, pin, label).Scan(&p.ID, &p.Pin, &p.Label, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create pin: %w", err)
	}
	return &p, nil
}

func (r *repository) ListPins(ctx context.Context) ([]model.ScannerPin, error) {
	query := `
		SELECT id, pin, label, is_active, created_at
		FROM scanner_pins
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	defer rows.Close()

	var pins []model.ScannerPin
	for rows.Next() {
		var p model.ScannerPin
		if err := rows.Scan(&p.ID, &p.Pin, &p.Label, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		pins = append(pins, p)
	}

	return pins, nil
}

// TogglePin flips is_active inside the store. The caller never supplies
// the prior state, so a stale dashboard cannot produce a stale toggle.
func (r *repository) TogglePin(ctx context.Context, id int64) (*model.ScannerPin, error) {
	query := `
		UPDATE scanner_pins
		SET is_active = NOT is_active
		WHERE id = $1
		RETURNING id, pin, label, is_active, created_at
	`

	var p model.ScannerPin
	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Pin, &p.Label, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle pin: %w", err)
	}
	return &p, nil
}

func (r *repository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `
		SELECT id, email, login_code_hash, created_at
		FROM admins
		WHERE email = LOWER($1)
	`

	var a model.Admin
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.LoginCodeHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (r *repository) EnsureAdmin(ctx context.Context, email, loginCodeHash string) error {
	query := `
		INSERT INTO admins (email, login_code_hash)
		VALUES (LOWER($1), $2)
		ON CONFLICT (email) DO UPDATE SET login_code_hash = EXCLUDED.login_code_hash
	`

	if _, err := r.db.ExecContext(ctx, query, email, loginCodeHash); err != nil {
		return fmt.Errorf("failed to ensure admin: %w", err)
	}
	return nil
}
