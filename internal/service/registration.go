package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventure/eventure-api/internal/config"
	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository"
)

var (
	// ErrEventNotOpen covers unapproved, deactivated and past-deadline
	// events alike.
	ErrEventNotOpen = errors.New("event is not open for registration")
	// ErrInvalidRequest marks a ticket count outside the per-user cap.
	ErrInvalidRequest = errors.New("invalid registration request")

	ErrEventFull            = repository.ErrEventFull
	ErrHoldExpired          = repository.ErrHoldExpired
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrTicketCodeExhausted  = repository.ErrTicketCodeExhausted
)

type RegistrationRepository interface {
	ReserveCommitted(ctx context.Context, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error)
	ReserveHold(ctx context.Context, hold domain.SeatHold) (domain.SeatHold, error)
	ConfirmHold(ctx context.Context, token string, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error)
	ReleaseHold(ctx context.Context, token string) error
	ReapExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteAndRelease(ctx context.Context, registrationID, userID uint) error
	TicketsHeldByUser(ctx context.Context, eventID, userID uint, now time.Time) (int, error)
	RemainingSeats(ctx context.Context, eventID uint, now time.Time) (int, error)
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Registration, error)
}

type CatalogReader interface {
	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
}

// CodeSource supplies ticket codes; collisions are retried inside the
// storage layer and never surface here.
type CodeSource interface {
	Next() (string, error)
}

type RegisterInput struct {
	TicketCount    int
	PaymentMethod  string
	ContactNumber  string
	SpecialRequest string
}

// RegistrationService is the only writer of registrations. It drives
// the validate → reserve → pay → commit sequence and keeps the
// capacity invariant by delegating every check-and-reserve to a single
// atomic storage operation.
type RegistrationService struct {
	repo     RegistrationRepository
	catalog  CatalogReader
	users    RoleReader
	codes    CodeSource
	payments PaymentProcessor
	notifier Notifier

	now     func() time.Time
	holdTTL func() time.Duration
}

func NewRegistrationService(
	repo RegistrationRepository,
	catalog CatalogReader,
	users RoleReader,
	codes CodeSource,
	payments PaymentProcessor,
	notifier Notifier,
) *RegistrationService {
	return &RegistrationService{
		repo:     repo,
		catalog:  catalog,
		users:    users,
		codes:    codes,
		payments: payments,
		notifier: notifier,
		now:      time.Now,
		holdTTL:  config.HoldTTL,
	}
}

// Register allocates seats for the caller. Free events commit
// immediately; paid events reserve a time-bounded hold, charge the
// payment processor, and only commit on success.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID uint, input RegisterInput) (domain.Registration, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Registration{}, err
	}

	now := s.now()
	if !event.IsRegisterable(now) {
		return domain.Registration{}, ErrEventNotOpen
	}

	if input.TicketCount < 1 {
		return domain.Registration{}, fmt.Errorf("%w: ticket count must be at least 1", ErrInvalidRequest)
	}
	if input.ContactNumber == "" {
		return domain.Registration{}, fmt.Errorf("%w: contact number is required", ErrInvalidRequest)
	}

	// The per-user cap is cumulative: committed tickets plus live
	// holds from earlier attempts all count against it. This read is
	// only a fast path for a friendly error message; the storage layer
	// re-checks the cap under the event row lock.
	already, err := s.repo.TicketsHeldByUser(ctx, eventID, userID, now)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.TicketsHeldByUser -> %w", err)
	}
	if already+input.TicketCount > event.MaxTicketsPerUser {
		return domain.Registration{}, fmt.Errorf("%w: at most %d tickets per user for this event",
			ErrInvalidRequest, event.MaxTicketsPerUser)
	}

	var registration domain.Registration
	if event.IsFree() {
		registration, err = s.registerFree(ctx, event, userID, input, now)
	} else {
		registration, err = s.registerPaid(ctx, event, userID, input, now)
	}
	if err != nil {
		return domain.Registration{}, err
	}

	s.notifyIssued(ctx, event, registration)

	return registration, nil
}

func (s *RegistrationService) registerFree(ctx context.Context, event domain.Event, userID uint, input RegisterInput, now time.Time) (domain.Registration, error) {
	registration := domain.Registration{
		EventID:        event.ID,
		UserID:         userID,
		TicketCount:    input.TicketCount,
		PaymentStatus:  domain.PaymentCompleted,
		PaymentMethod:  domain.PaymentMethodNone,
		ContactNumber:  input.ContactNumber,
		SpecialRequest: input.SpecialRequest,
		RegisteredAt:   now,
	}

	created, err := s.repo.ReserveCommitted(ctx, registration, s.codes.Next)
	if err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return domain.Registration{}, ErrEventFull
		}
		if errors.Is(err, repository.ErrTicketCapExceeded) {
			return domain.Registration{}, fmt.Errorf("%w: at most %d tickets per user for this event",
				ErrInvalidRequest, event.MaxTicketsPerUser)
		}
		return domain.Registration{}, fmt.Errorf("s.repo.ReserveCommitted -> %w", err)
	}

	return created, nil
}

func (s *RegistrationService) registerPaid(ctx context.Context, event domain.Event, userID uint, input RegisterInput, now time.Time) (domain.Registration, error) {
	if input.PaymentMethod != domain.PaymentMethodUPI && input.PaymentMethod != domain.PaymentMethodCard {
		return domain.Registration{}, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidRequest, input.PaymentMethod)
	}

	hold := domain.SeatHold{
		Token:       uuid.New().String(),
		EventID:     event.ID,
		UserID:      userID,
		TicketCount: input.TicketCount,
		Status:      domain.HoldActive,
		ExpiresAt:   now.Add(s.holdTTL()),
		CreatedAt:   now,
	}

	hold, err := s.repo.ReserveHold(ctx, hold)
	if err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return domain.Registration{}, ErrEventFull
		}
		if errors.Is(err, repository.ErrTicketCapExceeded) {
			return domain.Registration{}, fmt.Errorf("%w: at most %d tickets per user for this event",
				ErrInvalidRequest, event.MaxTicketsPerUser)
		}
		return domain.Registration{}, fmt.Errorf("s.repo.ReserveHold -> %w", err)
	}

	amount := event.Price * int64(input.TicketCount)
	outcome, err := s.payments.Charge(ctx, amount, input.PaymentMethod)
	if err != nil {
		// Whatever went wrong, the seats go back to the pool now
		// rather than waiting for the hold to expire. The request
		// context may already be cancelled, e.g. a client timeout
		// killed the charge, so the release must not inherit it.
		if releaseErr := s.repo.ReleaseHold(context.WithoutCancel(ctx), hold.Token); releaseErr != nil {
			zap.L().Error("failed to release hold after payment failure",
				zap.String("token", hold.Token), zap.Error(releaseErr))
		}

		if errors.Is(err, ErrPaymentDeclined) {
			return domain.Registration{}, err
		}
		return domain.Registration{}, fmt.Errorf("s.payments.Charge -> %w", err)
	}

	registration := domain.Registration{
		PaymentStatus:  domain.PaymentCompleted,
		PaymentMethod:  input.PaymentMethod,
		TransactionID:  outcome.TransactionID,
		ContactNumber:  input.ContactNumber,
		SpecialRequest: input.SpecialRequest,
		RegisteredAt:   s.now(),
	}

	created, err := s.repo.ConfirmHold(ctx, hold.Token, registration, s.codes.Next)
	if err != nil {
		if errors.Is(err, repository.ErrHoldExpired) {
			return domain.Registration{}, ErrHoldExpired
		}
		return domain.Registration{}, fmt.Errorf("s.repo.ConfirmHold -> %w", err)
	}

	return created, nil
}

func (s *RegistrationService) notifyIssued(ctx context.Context, event domain.Event, registration domain.Registration) {
	recipient := ""
	if user, err := s.users.FindByID(ctx, registration.UserID); err == nil {
		recipient = user.Email
	}

	notice := TicketNotice{
		EventTitle: event.Title,
		TicketCode: registration.TicketCode,
		EventDate:  event.StartsAt,
		Recipient:  recipient,
	}
	if err := s.notifier.TicketIssued(ctx, notice); err != nil {
		zap.L().Warn("ticket notification failed",
			zap.String("ticket_code", registration.TicketCode), zap.Error(err))
	}
}

// Cancel removes the caller's registration and releases its seats.
// Only events that opted into cancellation allow it.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, userID uint) error {
	registration, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if registration.UserID != userID {
		return fmt.Errorf("%w: registration %v does not belong to user %v", ErrForbidden, registrationID, userID)
	}

	event, err := s.catalog.GetEvent(ctx, registration.EventID)
	if err != nil {
		return err
	}
	if !event.AllowCancellation {
		return fmt.Errorf("%w: event %v does not allow cancellation", ErrForbidden, event.ID)
	}

	if err := s.repo.DeleteAndRelease(ctx, registrationID, userID); err != nil {
		return fmt.Errorf("s.repo.DeleteAndRelease -> %w", err)
	}

	return nil
}

// RemainingSeats is the live capacity query clients poll after losing
// a capacity race.
func (s *RegistrationService) RemainingSeats(ctx context.Context, eventID uint) (int, error) {
	remaining, err := s.repo.RemainingSeats(ctx, eventID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, fmt.Errorf("s.repo.RemainingSeats -> %w", err)
	}

	return remaining, nil
}

func (s *RegistrationService) GetRegistration(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return registration, nil
}

func (s *RegistrationService) ListByUser(ctx context.Context, userID uint) ([]domain.Registration, error) {
	registrations, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUser -> %w", err)
	}

	return registrations, nil
}

func (s *RegistrationService) ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	registrations, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}

	return registrations, nil
}

// StartHoldReaper expires overdue payment holds on a fixed interval
// until ctx is cancelled. Capacity checks already ignore overdue
// holds; the reaper keeps the table tidy and the seat counts honest in
// dashboards.
func (s *RegistrationService) StartHoldReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reaped, err := s.repo.ReapExpired(ctx, s.now())
				if err != nil {
					zap.L().Error("hold reaper failed", zap.Error(err))
					continue
				}
				if reaped > 0 {
					zap.L().Info("expired seat holds reaped", zap.Int64("count", reaped))
				}
			}
		}
	}()
}
