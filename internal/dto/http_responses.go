package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	CapacityExceeded   = "CAPACITY_EXCEEDED"
	InvalidPin         = "INVALID_PIN"
	InvalidCredentials = "INVALID_CREDENTIALS"
	Unauthorized       = "UNAUTHORIZED"
	PinNotFound        = "PIN_NOT_FOUND"

	// Redemption outcomes. These are business results, not errors,
	// and travel in CheckInResponse.Status.
	ScanValid       = "VALID"
	ScanAlreadyUsed = "ALREADY_USED"
	ScanInvalid     = "INVALID"
)

type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=32"`
	TicketType string `json:"ticket_type" validate:"required,oneof=PHYSICAL VIRTUAL"`
}

type RegisterResponse struct {
	AccessCode string `json:"access_code"`
	QRToken    string `json:"qr_token"`
	TicketType string `json:"ticket_type"`
	Status     string `json:"status"`
}

type CheckInRequest struct {
	Token string `json:"token" validate:"required"`
}

type CheckInResponse struct {
	Status      string     `json:"status"`
	Name        string     `json:"name,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	Message     string     `json:"message"`
}

type ScannerLoginRequest struct {
	Pin string `json:"pin" validate:"required,len=4,numeric"`
}

type HostLoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	LoginCode string `json:"login_code" validate:"required"`
}

type CreatePinRequest struct {
	Label string `json:"label" validate:"required,max=100"`
}

type PinResponse struct {
	ID        int64     `json:"id"`
	Pin       string    `json:"pin"`
	Label     string    `json:"label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type StatsResponse struct {
	TotalPhysical     int `json:"total_physical"`
	TotalVirtual      int `json:"total_virtual"`
	TotalCheckedIn    int `json:"total_checked_in"`
	PhysicalLimit     int `json:"physical_limit"`
	PhysicalRemaining int `json:"physical_remaining"`
}

type EventInfoResponse struct {
	Slug              string    `json:"slug"`
	Name              string    `json:"name"`
	Date              time.Time `json:"date"`
	PhysicalLimit     int       `json:"physical_limit"`
	PhysicalRemaining int       `json:"physical_remaining"`
}

// TicketEmailMessage is the queue job that asks the worker to send
// the confirmation mail with the QR ticket and backup code.
type TicketEmailMessage struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	EventName  string `json:"event_name"`
	AccessCode string `json:"access_code"`
	QRToken    string `json:"qr_token"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldIncorrect, "Field '"+fieldName+"' is incorrect")
}

func CapacityExceededError(c *ginext.Context) {
	BadResponseError(c, CapacityExceeded,
		"We're sorry, physical seats are completely sold out! Please register for a Virtual Pass instead.")
}

func InvalidPinError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: InvalidPin,
			Desc: "Invalid or deactivated PIN.",
		},
	})
}

func InvalidCredentialsError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: InvalidCredentials,
			Desc: "Invalid email or login code.",
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: "Authentication required",
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
