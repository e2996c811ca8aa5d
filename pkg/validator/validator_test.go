package validator_test

import (
	"context"
	"testing"

	"entrypass/internal/dto"
	"entrypass/pkg/validator"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegisterRequest(t *testing.T) {
	ctx := context.Background()

	ok := dto.RegisterRequest{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		TicketType: "PHYSICAL",
	}
	assert.NoError(t, validator.Validate(ctx, ok))

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"missing name", dto.RegisterRequest{Email: "ada@example.com", TicketType: "VIRTUAL"}},
		{"missing email", dto.RegisterRequest{Name: "Ada", TicketType: "VIRTUAL"}},
		{"bad email", dto.RegisterRequest{Name: "Ada", Email: "not-an-email", TicketType: "VIRTUAL"}},
		{"bad ticket type", dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", TicketType: "TELEPATHIC"}},
		{"lowercase ticket type", dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", TicketType: "physical"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, validator.Validate(ctx, tc.req))
		})
	}
}

func TestValidateScannerLoginRequest(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, validator.Validate(ctx, dto.ScannerLoginRequest{Pin: "1234"}))
	assert.Error(t, validator.Validate(ctx, dto.ScannerLoginRequest{Pin: ""}))
	assert.Error(t, validator.Validate(ctx, dto.ScannerLoginRequest{Pin: "123"}))
	assert.Error(t, validator.Validate(ctx, dto.ScannerLoginRequest{Pin: "12345"}))
	assert.Error(t, validator.Validate(ctx, dto.ScannerLoginRequest{Pin: "abcd"}))
}

func TestValidateHostLoginRequest(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, validator.Validate(ctx, dto.HostLoginRequest{Email: "host@example.com", LoginCode: "x"}))
	assert.Error(t, validator.Validate(ctx, dto.HostLoginRequest{Email: "host@example.com"}))
	assert.Error(t, validator.Validate(ctx, dto.HostLoginRequest{Email: "nope", LoginCode: "x"}))
}

func TestValidateCheckInRequest(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, validator.Validate(ctx, dto.CheckInRequest{Token: "some-token"}))
	assert.Error(t, validator.Validate(ctx, dto.CheckInRequest{}))
}
