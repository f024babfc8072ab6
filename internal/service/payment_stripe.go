package service

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"

	"github.com/eventure/eventure-api/internal/domain"
)

// StripeProcessor charges through Stripe PaymentIntents. Selected with
// payment.provider "stripe"; everything upstream only ever sees the
// PaymentProcessor interface.
type StripeProcessor struct{}

func NewStripeProcessor(apiKey string) *StripeProcessor {
	stripe.Key = apiKey
	return &StripeProcessor{}
}

func (p *StripeProcessor) Charge(ctx context.Context, amount int64, method string) (domain.PaymentOutcome, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyINR)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return domain.PaymentOutcome{}, fmt.Errorf("%w: %v", ErrPaymentDeclined, stripeErr.Msg)
		}
		return domain.PaymentOutcome{}, fmt.Errorf("paymentintent.New -> %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return domain.PaymentOutcome{}, fmt.Errorf("%w: intent status %v", ErrPaymentDeclined, intent.Status)
	}

	return domain.PaymentOutcome{TransactionID: intent.ID}, nil
}
