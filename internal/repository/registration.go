package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrEventFull            = dao.ErrEventFull
	ErrTicketCapExceeded    = dao.ErrTicketCapExceeded
	ErrHoldNotFound         = dao.ErrHoldNotFound
	ErrHoldExpired          = dao.ErrHoldExpired
	ErrTicketCodeExhausted  = dao.ErrTicketCodeExhausted
)

type RegistrationDAO interface {
	ReserveCommitted(ctx context.Context, registration dao.Registration, nextCode dao.CodeFunc) (dao.Registration, error)
	ReserveHold(ctx context.Context, hold dao.SeatHold) (dao.SeatHold, error)
	ConfirmHold(ctx context.Context, token string, registration dao.Registration, nextCode dao.CodeFunc) (dao.Registration, error)
	ReleaseHold(ctx context.Context, token string) error
	ReapExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteAndRelease(ctx context.Context, registrationID, userID uint) error
	TicketsHeldByUser(ctx context.Context, eventID, userID uint, now time.Time) (int, error)
	RemainingSeats(ctx context.Context, eventID uint, now time.Time) (int, error)
	FindByID(ctx context.Context, id uint) (dao.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Registration, error)
	FindByUser(ctx context.Context, userID uint) ([]dao.Registration, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) domainToDao(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:             reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		TicketCode:     reg.TicketCode,
		TicketCount:    reg.TicketCount,
		PaymentStatus:  string(reg.PaymentStatus),
		PaymentMethod:  reg.PaymentMethod,
		TransactionID:  reg.TransactionID,
		ContactNumber:  reg.ContactNumber,
		SpecialRequest: reg.SpecialRequest,
		RegisteredAt:   reg.RegisteredAt,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:             reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		TicketCode:     reg.TicketCode,
		TicketCount:    reg.TicketCount,
		PaymentStatus:  domain.PaymentStatus(reg.PaymentStatus),
		PaymentMethod:  reg.PaymentMethod,
		TransactionID:  reg.TransactionID,
		ContactNumber:  reg.ContactNumber,
		SpecialRequest: reg.SpecialRequest,
		RegisteredAt:   reg.RegisteredAt,
	}
}

func (r *RegistrationRepository) daosToDomain(regs []dao.Registration) []domain.Registration {
	out := make([]domain.Registration, len(regs))
	for i, reg := range regs {
		out[i] = r.daoToDomain(reg)
	}
	return out
}

func (r *RegistrationRepository) holdDomainToDao(h domain.SeatHold) dao.SeatHold {
	return dao.SeatHold{
		ID:          h.ID,
		Token:       h.Token,
		EventID:     h.EventID,
		UserID:      h.UserID,
		TicketCount: h.TicketCount,
		Status:      string(h.Status),
		ExpiresAt:   h.ExpiresAt,
		CreatedAt:   h.CreatedAt,
	}
}

func (r *RegistrationRepository) holdDaoToDomain(h dao.SeatHold) domain.SeatHold {
	return domain.SeatHold{
		ID:          h.ID,
		Token:       h.Token,
		EventID:     h.EventID,
		UserID:      h.UserID,
		TicketCount: h.TicketCount,
		Status:      domain.HoldStatus(h.Status),
		ExpiresAt:   h.ExpiresAt,
		CreatedAt:   h.CreatedAt,
	}
}

func (r *RegistrationRepository) ReserveCommitted(ctx context.Context, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error) {
	created, err := r.dao.ReserveCommitted(ctx, r.domainToDao(registration), nextCode)
	if err != nil {
		if isReserveSentinel(err) {
			return domain.Registration{}, err
		}
		return domain.Registration{}, fmt.Errorf("r.dao.ReserveCommitted -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) ReserveHold(ctx context.Context, hold domain.SeatHold) (domain.SeatHold, error) {
	created, err := r.dao.ReserveHold(ctx, r.holdDomainToDao(hold))
	if err != nil {
		if isReserveSentinel(err) {
			return domain.SeatHold{}, err
		}
		return domain.SeatHold{}, fmt.Errorf("r.dao.ReserveHold -> %w", err)
	}

	return r.holdDaoToDomain(created), nil
}

func (r *RegistrationRepository) ConfirmHold(ctx context.Context, token string, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error) {
	created, err := r.dao.ConfirmHold(ctx, token, r.domainToDao(registration), nextCode)
	if err != nil {
		if isReserveSentinel(err) {
			return domain.Registration{}, err
		}
		return domain.Registration{}, fmt.Errorf("r.dao.ConfirmHold -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) ReleaseHold(ctx context.Context, token string) error {
	if err := r.dao.ReleaseHold(ctx, token); err != nil {
		return fmt.Errorf("r.dao.ReleaseHold -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	reaped, err := r.dao.ReapExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ReapExpired -> %w", err)
	}

	return reaped, nil
}

func (r *RegistrationRepository) DeleteAndRelease(ctx context.Context, registrationID, userID uint) error {
	if err := r.dao.DeleteAndRelease(ctx, registrationID, userID); err != nil {
		if errors.Is(err, dao.ErrRegistrationNotFound) || errors.Is(err, dao.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("r.dao.DeleteAndRelease -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) TicketsHeldByUser(ctx context.Context, eventID, userID uint, now time.Time) (int, error) {
	held, err := r.dao.TicketsHeldByUser(ctx, eventID, userID, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.TicketsHeldByUser -> %w", err)
	}

	return held, nil
}

func (r *RegistrationRepository) RemainingSeats(ctx context.Context, eventID uint, now time.Time) (int, error) {
	remaining, err := r.dao.RemainingSeats(ctx, eventID, now)
	if err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, fmt.Errorf("r.dao.RemainingSeats -> %w", err)
	}

	return remaining, nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := r.dao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(registration), nil
}

func (r *RegistrationRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUser -> %w", err)
	}

	return r.daosToDomain(registrations), nil
}

// isReserveSentinel keeps the engine's domain errors unwrapped so the
// service and handlers can match them with errors.Is.
func isReserveSentinel(err error) bool {
	return errors.Is(err, dao.ErrEventNotFound) ||
		errors.Is(err, dao.ErrEventFull) ||
		errors.Is(err, dao.ErrTicketCapExceeded) ||
		errors.Is(err, dao.ErrHoldNotFound) ||
		errors.Is(err, dao.ErrHoldExpired) ||
		errors.Is(err, dao.ErrTicketCodeExhausted)
}
