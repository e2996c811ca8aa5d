package consumerWorker

import (
	"context"
	"encoding/json"

	"entrypass/internal/dto"
	"entrypass/internal/rabbit"

	"github.com/wb-go/wbf/zlog"
)

// Sender delivers the rendered ticket mail. Satisfied by *mailer.Mailer.
type Sender interface {
	SendTicketEmail(to, name, eventName, accessCode, qrToken string) error
}

// Reader drains ticket-email jobs from the queue and hands them to the
// mailer. Delivery failures are logged and the job is dropped: the
// registration and its codes already exist, so a resend can recover.
type Reader struct {
	RMQ    *rabbit.Client
	sender Sender
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, sender Sender) *Reader {
	return &Reader{
		RMQ:    rmq,
		sender: sender,
		done:   make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("Ticket email worker started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.Handle); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("Ticket email worker stopped by context")
	}()
}

// Handle processes one queued job. A nil return acks the message.
func (r *Reader) Handle(body []byte) error {
	var msg dto.TicketEmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		zlog.Logger.Error().
			Err(err).
			Msgf("Failed to unmarshal ticket email message: %s", string(body))
		// Malformed jobs never become valid; drop instead of requeueing.
		return nil
	}

	zlog.Logger.Info().
		Str("email", msg.Email).
		Msg("Received ticket email job")

	if err := r.sender.SendTicketEmail(msg.Email, msg.Name, msg.EventName, msg.AccessCode, msg.QRToken); err != nil {
		zlog.Logger.Warn().
			Err(err).
			Str("email", msg.Email).
			Msg("Failed to send ticket email")
		return nil
	}

	zlog.Logger.Info().
		Str("email", msg.Email).
		Msg("Ticket email sent successfully")

	return nil
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
