package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventure/eventure-api/internal/domain"
)

// ErrPaymentDeclined means the processor refused the charge; the
// registration is never committed.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentProcessor is the payment collaborator boundary. The simulator
// below is the default; a real gateway client sits behind the same
// interface.
type PaymentProcessor interface {
	Charge(ctx context.Context, amount int64, method string) (domain.PaymentOutcome, error)
}

// PaymentSimulator approves every charge after a bounded simulated
// delay and mints synthetic transaction identifiers.
type PaymentSimulator struct {
	delay time.Duration

	// declineAll flips the simulator into refusing every charge, for
	// exercising the decline path in tests.
	declineAll bool
}

func NewPaymentSimulator(delay time.Duration) *PaymentSimulator {
	return &PaymentSimulator{
		delay: delay,
	}
}

// NewDecliningSimulator returns a simulator that refuses every charge.
func NewDecliningSimulator() *PaymentSimulator {
	return &PaymentSimulator{declineAll: true}
}

func (p *PaymentSimulator) Charge(ctx context.Context, amount int64, method string) (domain.PaymentOutcome, error) {
	if amount <= 0 {
		return domain.PaymentOutcome{}, fmt.Errorf("%w: non-positive amount", ErrPaymentDeclined)
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return domain.PaymentOutcome{}, ctx.Err()
		}
	}

	if p.declineAll {
		return domain.PaymentOutcome{}, ErrPaymentDeclined
	}

	return domain.PaymentOutcome{
		TransactionID: fmt.Sprintf("DUMMY_%d", time.Now().UnixMilli()),
	}, nil
}
