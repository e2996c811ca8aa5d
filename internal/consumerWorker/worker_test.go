package consumerWorker

import (
	"encoding/json"
	"errors"
	"testing"

	"entrypass/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	calls []dto.TicketEmailMessage
	err   error
}

func (f *fakeSender) SendTicketEmail(to, name, eventName, accessCode, qrToken string) error {
	f.calls = append(f.calls, dto.TicketEmailMessage{
		Email:      to,
		Name:       name,
		EventName:  eventName,
		AccessCode: accessCode,
		QRToken:    qrToken,
	})
	return f.err
}

func TestHandleSendsTicketEmail(t *testing.T) {
	sender := &fakeSender{}
	r := NewReader(nil, sender)

	msg := dto.TicketEmailMessage{
		Email:      "ada@example.com",
		Name:       "Ada Lovelace",
		EventName:  "Crafted for Excellence",
		AccessCode: "123456",
		QRToken:    "tok-1",
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	require.NoError(t, r.Handle(body))
	require.Len(t, sender.calls, 1)
	assert.Equal(t, msg, sender.calls[0])
}

func TestHandleDropsMalformedJobs(t *testing.T) {
	sender := &fakeSender{}
	r := NewReader(nil, sender)

	// Malformed payloads are acked away, never requeued.
	assert.NoError(t, r.Handle([]byte("{not json")))
	assert.Empty(t, sender.calls)
}

func TestHandleAcksOnSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	r := NewReader(nil, sender)

	body, err := json.Marshal(dto.TicketEmailMessage{Email: "ada@example.com"})
	require.NoError(t, err)

	// Delivery failure does not fail the job: the registration exists
	// and a resend can recover the ticket.
	assert.NoError(t, r.Handle(body))
	assert.Len(t, sender.calls, 1)
}
