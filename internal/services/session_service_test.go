package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
)

func TestSessionService_RejectsInvalidMSISDN(t *testing.T) {
	svc := NewSessionService(nil, time.Minute, logging.Logger)
	ctx := context.Background()

	_, err := svc.Bootstrap(ctx, "not-a-phone")
	assert.ErrorIs(t, err, models.ErrInvalidMSISDN)

	_, err = svc.Get(ctx, "12")
	assert.ErrorIs(t, err, models.ErrInvalidMSISDN)

	err = svc.Save(ctx, &models.TaxpayerSession{Msisdn: "abc"})
	assert.ErrorIs(t, err, models.ErrInvalidMSISDN)

	err = svc.Clear(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidMSISDN)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:+254712345678", sessionKey("+254712345678"))
}
