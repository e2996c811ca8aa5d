package model

import "time"

const (
	TicketPhysical = "PHYSICAL"
	TicketVirtual  = "VIRTUAL"

	StatusIssued    = "ISSUED"
	StatusCheckedIn = "CHECKED_IN"
)

type Event struct {
	ID            int64     `db:"id" json:"id"`
	Slug          string    `db:"slug" json:"slug"`
	Name          string    `db:"name" json:"name"`
	Date          time.Time `db:"event_date" json:"date"`
	PhysicalLimit int       `db:"physical_limit" json:"physical_limit"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Registration struct {
	ID          int64      `db:"id" json:"id"`
	EventID     int64      `db:"event_id" json:"event_id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	TicketType  string     `db:"ticket_type" json:"ticket_type"`
	Status      string     `db:"status" json:"status"`
	AccessCode  string     `db:"access_code" json:"access_code"`
	QRToken     string     `db:"qr_token" json:"qr_token"`
	CheckedInAt *time.Time `db:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type ScannerPin struct {
	ID        int64     `db:"id" json:"id"`
	Pin       string    `db:"pin" json:"pin"`
	Label     string    `db:"label" json:"label"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Admin struct {
	ID            int64     `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	LoginCodeHash string    `db:"login_code_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CheckIn is the outcome of redeeming a QR token against the store.
type CheckIn struct {
	RegistrationID int64
	HolderName     string
	CheckedInAt    time.Time
	AlreadyUsed    bool
}

type EventStats struct {
	TotalPhysical  int `db:"total_physical" json:"total_physical"`
	TotalVirtual   int `db:"total_virtual" json:"total_virtual"`
	TotalCheckedIn int `db:"total_checked_in" json:"total_checked_in"`
}
