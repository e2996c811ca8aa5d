package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"entrypass/internal/auth"
	"entrypass/internal/dto"
	"entrypass/internal/model"
	"entrypass/internal/repo"
	"entrypass/pkg/validator"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
)

// Publisher pushes ticket-email jobs to the queue. Satisfied by *rabbit.Client.
type Publisher interface {
	Publish(message []byte) error
}

// EventConfig describes the single event this deployment serves. The row
// is created lazily, upserted by slug on first use.
type EventConfig struct {
	Slug          string
	Name          string
	Date          time.Time
	PhysicalLimit int
}

type Service interface {
	Register(ctx *ginext.Context)
	GetEventInfo(ctx *ginext.Context)
	ScannerLogin(ctx *ginext.Context)
	HostLogin(ctx *ginext.Context)
	CheckIn(ctx *ginext.Context)
	GetStats(ctx *ginext.Context)
	ListPins(ctx *ginext.Context)
	GeneratePin(ctx *ginext.Context)
	TogglePin(ctx *ginext.Context)
}

type service struct {
	repo          repo.Repository
	log           *zerolog.Logger
	pub           Publisher
	sessions      *auth.Sessions
	event         EventConfig
	secureCookies bool
}

func NewService(repo repo.Repository, logger *zerolog.Logger, pub Publisher, sessions *auth.Sessions, event EventConfig, secureCookies bool) Service {
	return &service{
		repo:          repo,
		log:           logger,
		pub:           pub,
		sessions:      sessions,
		event:         event,
		secureCookies: secureCookies,
	}
}

func (s *service) ensureEvent(ctx *ginext.Context) (*model.Event, error) {
	return s.repo.UpsertEvent(ctx.Request.Context(), &model.Event{
		Slug:          s.event.Slug,
		Name:          s.event.Name,
		Date:          s.event.Date,
		PhysicalLimit: s.event.PhysicalLimit,
	})
}

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.ensureEvent(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to ensure event")
		dto.InternalServerError(ctx)
		return
	}

	accessCode, err := auth.NewAccessCode()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate access code")
		dto.InternalServerError(ctx)
		return
	}
	qrToken := auth.NewQRToken()

	user := &model.User{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	}
	reg, created, err := s.repo.CreateRegistrationTx(ctx.Request.Context(), event.ID, user, req.TicketType, accessCode, qrToken)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrCapacityExceeded):
			dto.CapacityExceededError(ctx)
		case errors.Is(err, repo.ErrEventNotFound):
			s.log.Error().Err(err).Msg("event vanished between upsert and registration")
			dto.InternalServerError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to create registration")
			dto.InternalServerError(ctx)
		}
		return
	}

	if created {
		s.log.Info().
			Int64("registration_id", reg.ID).
			Str("ticket_type", reg.TicketType).
			Msg("registration created successfully")

		msg := dto.TicketEmailMessage{
			Email:      user.Email,
			Name:       user.Name,
			EventName:  event.Name,
			AccessCode: reg.AccessCode,
			QRToken:    reg.QRToken,
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to marshal ticket email message")
		} else if err := s.pub.Publish(payload); err != nil {
			// Registration already exists; a lost mail is recoverable.
			s.log.Warn().Err(err).Msg("failed to publish ticket email job")
		}
	} else {
		s.log.Info().
			Int64("registration_id", reg.ID).
			Msg("existing registration returned for repeat e-mail")
	}

	resp := dto.RegisterResponse{
		AccessCode: reg.AccessCode,
		QRToken:    reg.QRToken,
		TicketType: reg.TicketType,
		Status:     reg.Status,
	}
	if created {
		dto.SuccessCreatedResponse(ctx, resp)
	} else {
		dto.SuccessResponse(ctx, resp)
	}
}

func (s *service) GetEventInfo(ctx *ginext.Context) {
	event, err := s.ensureEvent(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to ensure event")
		dto.InternalServerError(ctx)
		return
	}

	stats, err := s.repo.GetEventStats(ctx.Request.Context(), event.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event stats")
		dto.InternalServerError(ctx)
		return
	}

	remaining := event.PhysicalLimit - stats.TotalPhysical
	if remaining < 0 {
		remaining = 0
	}

	dto.SuccessResponse(ctx, dto.EventInfoResponse{
		Slug:              event.Slug,
		Name:              event.Name,
		Date:              event.Date,
		PhysicalLimit:     event.PhysicalLimit,
		PhysicalRemaining: remaining,
	})
}

func (s *service) CheckIn(ctx *ginext.Context) {
	var req dto.CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	result, err := s.repo.CheckInByToken(ctx.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			dto.SuccessResponse(ctx, dto.CheckInResponse{
				Status:  dto.ScanInvalid,
				Message: "Ticket not found. Please verify the code and try again.",
			})
			return
		}
		s.log.Error().Err(err).Msg("failed to check in ticket")
		dto.InternalServerError(ctx)
		return
	}

	if result.AlreadyUsed {
		s.log.Warn().
			Int64("registration_id", result.RegistrationID).
			Time("checked_in_at", result.CheckedInAt).
			Msg("duplicate scan rejected")

		checkedInAt := result.CheckedInAt
		dto.SuccessResponse(ctx, dto.CheckInResponse{
			Status:      dto.ScanAlreadyUsed,
			Name:        result.HolderName,
			CheckedInAt: &checkedInAt,
			Message:     "This ticket has already been scanned.",
		})
		return
	}

	s.log.Info().
		Int64("registration_id", result.RegistrationID).
		Msg("ticket checked in")

	checkedInAt := result.CheckedInAt
	dto.SuccessResponse(ctx, dto.CheckInResponse{
		Status:      dto.ScanValid,
		Name:        result.HolderName,
		CheckedInAt: &checkedInAt,
		Message:     "Welcome! Entry approved.",
	})
}

func (s *service) ScannerLogin(ctx *ginext.Context) {
	var req dto.ScannerLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if _, err := s.repo.FindActivePin(ctx.Request.Context(), req.Pin); err != nil {
		if errors.Is(err, repo.ErrPinNotFound) {
			dto.InvalidPinError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to verify scanner pin")
		dto.InternalServerError(ctx)
		return
	}

	token, err := s.sessions.Issue(auth.RoleScanner, auth.ScannerSessionTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to issue scanner session")
		dto.InternalServerError(ctx)
		return
	}

	s.setSessionCookie(ctx, auth.ScannerCookie, token, auth.ScannerSessionTTL, "/admin/scanner")
	dto.SuccessResponse(ctx, map[string]string{"role": auth.RoleScanner})
}

func (s *service) HostLogin(ctx *ginext.Context) {
	var req dto.HostLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	admin, err := s.repo.GetAdminByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrAdminNotFound) {
			// One generic message: never reveal which part was wrong.
			dto.InvalidCredentialsError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to look up admin")
		dto.InternalServerError(ctx)
		return
	}

	if !auth.VerifyLoginCode(admin.LoginCodeHash, req.LoginCode) {
		dto.InvalidCredentialsError(ctx)
		return
	}

	token, err := s.sessions.Issue(auth.RoleHost, auth.HostSessionTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to issue host session")
		dto.InternalServerError(ctx)
		return
	}

	s.setSessionCookie(ctx, auth.HostCookie, token, auth.HostSessionTTL, "/admin/host")
	dto.SuccessResponse(ctx, map[string]string{"role": auth.RoleHost})
}

func (s *service) GetStats(ctx *ginext.Context) {
	event, err := s.ensureEvent(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to ensure event")
		dto.InternalServerError(ctx)
		return
	}

	stats, err := s.repo.GetEventStats(ctx.Request.Context(), event.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get event stats")
		dto.InternalServerError(ctx)
		return
	}

	remaining := event.PhysicalLimit - stats.TotalPhysical
	if remaining < 0 {
		remaining = 0
	}

	dto.SuccessResponse(ctx, dto.StatsResponse{
		TotalPhysical:     stats.TotalPhysical,
		TotalVirtual:      stats.TotalVirtual,
		TotalCheckedIn:    stats.TotalCheckedIn,
		PhysicalLimit:     event.PhysicalLimit,
		PhysicalRemaining: remaining,
	})
}

func (s *service) ListPins(ctx *ginext.Context) {
	pins, err := s.repo.ListPins(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list pins")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.PinResponse, 0, len(pins))
	for _, p := range pins {
		resp = append(resp, dto.PinResponse{
			ID:        p.ID,
			Pin:       p.Pin,
			Label:     p.Label,
			IsActive:  p.IsActive,
			CreatedAt: p.CreatedAt,
		})
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) GeneratePin(ctx *ginext.Context) {
	var req dto.CreatePinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	pin, err := auth.NewScannerPin()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate pin")
		dto.InternalServerError(ctx)
		return
	}

	created, err := s.repo.CreatePin(ctx.Request.Context(), pin, req.Label)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create pin")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("pin_id", created.ID).Str("label", created.Label).Msg("scanner pin created")

	dto.SuccessCreatedResponse(ctx, dto.PinResponse{
		ID:        created.ID,
		Pin:       created.Pin,
		Label:     created.Label,
		IsActive:  created.IsActive,
		CreatedAt: created.CreatedAt,
	})
}

func (s *service) TogglePin(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid pin ID")
		return
	}

	toggled, err := s.repo.TogglePin(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrPinNotFound) {
			dto.BadResponseError(ctx, dto.PinNotFound, "Pin not found")
			return
		}
		s.log.Error().Err(err).Msg("failed to toggle pin")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("pin_id", toggled.ID).Bool("is_active", toggled.IsActive).Msg("scanner pin toggled")

	dto.SuccessResponse(ctx, dto.PinResponse{
		ID:        toggled.ID,
		Pin:       toggled.Pin,
		Label:     toggled.Label,
		IsActive:  toggled.IsActive,
		CreatedAt: toggled.CreatedAt,
	})
}

func (s *service) setSessionCookie(ctx *ginext.Context, name, token string, ttl time.Duration, path string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, token, int(ttl.Seconds()), path, "", s.secureCookies, true)
}
