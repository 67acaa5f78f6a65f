package service

import (
	"context"
	"fmt"
	"math"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/model"
)

// Currency charged for every class.
const Currency = "usd"

type PaymentService struct {
	provider PaymentProvider
	log      echo.Logger
}

func NewPaymentService(provider PaymentProvider, logger echo.Logger) *PaymentService {
	return &PaymentService{provider: provider, log: logger}
}

// AmountInCents converts a dollar price to cents, truncating fractions
// of a cent toward zero.  A small epsilon in the direction of the sign
// absorbs binary representation error so that 19.99 yields 1999 and not
// 1998.
func AmountInCents(price float64) int64 {
	return int64(math.Trunc(price*100 + math.Copysign(1e-9, price)))
}

// CreateIntent starts a card payment for price and returns the client
// secret.  A missing or zero price is rejected before the provider is
// contacted.
func (s *PaymentService) CreateIntent(ctx context.Context, price *float64) (string, error) {
	if price == nil || *price == 0 {
		return "", fmt.Errorf("%w: price is required", model.ErrValidation)
	}
	amount := AmountInCents(*price)
	secret, err := s.provider.CreateIntent(ctx, amount, Currency)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("failed").Inc()
		s.log.Errorf("payment: create intent for %d cents: %v", amount, err)
		return "", fmt.Errorf("%w: %v", model.ErrUpstream, err)
	}
	metrics.PaymentIntents.WithLabelValues("created").Inc()
	return secret, nil
}
