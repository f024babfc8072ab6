package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrEventFull            = errors.New("event is fully booked")
	ErrTicketCapExceeded    = errors.New("per-user ticket cap exceeded")
	ErrHoldNotFound         = errors.New("seat hold not found")
	ErrHoldExpired          = errors.New("seat hold has expired")
	ErrTicketCodeExhausted  = errors.New("ticket code namespace exhausted")
)

type Registration struct {
	ID      uint `gorm:"primaryKey"`
	EventID uint `gorm:"not null;index"`
	UserID  uint `gorm:"not null;index"`

	TicketCode  string `gorm:"not null;uniqueIndex"`
	TicketCount int    `gorm:"not null"`

	PaymentStatus string `gorm:"not null"`
	PaymentMethod string `gorm:"not null"`
	TransactionID string

	ContactNumber  string `gorm:"not null"`
	SpecialRequest string

	RegisteredAt time.Time `gorm:"not null"`
}

type SeatHold struct {
	ID      uint   `gorm:"primaryKey"`
	Token   string `gorm:"not null;uniqueIndex"`
	EventID uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null;index"`

	TicketCount int    `gorm:"not null"`
	Status      string `gorm:"not null;default:'active';index"`
	ExpiresAt   time.Time `gorm:"not null;index"`

	CreatedAt time.Time
}

// CodeFunc supplies candidate ticket codes. The dao retries it when
// the unique index rejects a collision.
type CodeFunc func() (string, error)

const (
	// codeAttempts bounds retries on a ticket code collision. With a
	// 32^8 namespace even one retry is already astronomically rare.
	codeAttempts = 5

	// conflictAttempts bounds retries of the whole reserve transaction
	// when postgres reports a serialization conflict.
	conflictAttempts = 3
)

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// lockEvent takes the row-level exclusive lock that serializes all
// capacity mutations for one event. Row granularity means event A
// never blocks event B.
func lockEvent(tx *gorm.DB, eventID uint) (Event, error) {
	var event Event

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// activeHoldSeats sums the seats pinned by unexpired active holds.
// Must run inside the same transaction as the event row lock so the
// count cannot move underneath the capacity check.
func activeHoldSeats(tx *gorm.DB, eventID uint, now time.Time) (int, error) {
	var held int

	result := tx.Model(&SeatHold{}).
		Where("event_id = ? AND status = ? AND expires_at > ?", eventID, "active", now).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&held)
	if result.Error != nil {
		return 0, result.Error
	}

	return held, nil
}

// userHeldSeats sums one user's committed tickets plus unexpired active
// holds for an event. The per-user cap must be enforced with this query
// inside the reserve transaction, under the event row lock; a
// read-then-reserve from outside would let two concurrent requests from
// the same user both pass the cap.
func userHeldSeats(tx *gorm.DB, eventID, userID uint, now time.Time) (int, error) {
	var committed int
	result := tx.Model(&Registration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&committed)
	if result.Error != nil {
		return 0, result.Error
	}

	var held int
	result = tx.Model(&SeatHold{}).
		Where("event_id = ? AND user_id = ? AND status = ? AND expires_at > ?", eventID, userID, "active", now).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&held)
	if result.Error != nil {
		return 0, result.Error
	}

	return committed + held, nil
}

// insertWithCode inserts the registration, drawing fresh ticket codes
// until the unique index accepts one. Collisions never surface to the
// caller; running out of attempts does.
func insertWithCode(tx *gorm.DB, registration *Registration, nextCode CodeFunc) error {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := nextCode()
		if err != nil {
			return err
		}
		registration.TicketCode = code
		registration.ID = 0

		result := tx.Create(registration)
		if result.Error == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) &&
			pgErr.Code == pgerrcode.UniqueViolation &&
			strings.Contains(pgErr.Message, "ticket_code") {
			continue
		}

		return result.Error
	}

	return ErrTicketCodeExhausted
}

func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		(pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected)
}

// withConflictRetry reruns fn a bounded number of times on a
// serialization conflict. Only the check-and-reserve is retried, never
// the surrounding user flow.
func (d *RegistrationDAO) withConflictRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < conflictAttempts; attempt++ {
		err = d.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isSerializationConflict(err) {
			return err
		}
	}

	return err
}

// ReserveCommitted is the free-path check-and-reserve: one transaction
// locks the event row, verifies capacity against committed seats plus
// active holds, inserts the registration and bumps the aggregate.
// Read-then-write outside this lock would let two callers racing for
// the last seat both succeed.
func (d *RegistrationDAO) ReserveCommitted(ctx context.Context, registration Registration, nextCode CodeFunc) (Registration, error) {
	now := registration.RegisteredAt

	err := d.withConflictRetry(ctx, func(tx *gorm.DB) error {
		event, err := lockEvent(tx, registration.EventID)
		if err != nil {
			return err
		}

		userHeld, err := userHeldSeats(tx, event.ID, registration.UserID, now)
		if err != nil {
			return err
		}
		if userHeld+registration.TicketCount > event.MaxTicketsPerUser {
			return ErrTicketCapExceeded
		}

		held, err := activeHoldSeats(tx, event.ID, now)
		if err != nil {
			return err
		}

		if event.SeatsTaken+held+registration.TicketCount > event.MaxAttendees {
			return ErrEventFull
		}

		if err := insertWithCode(tx, &registration, nextCode); err != nil {
			return err
		}

		return tx.Model(&Event{}).
			Where("id = ?", event.ID).
			Update("seats_taken", gorm.Expr("seats_taken + ?", registration.TicketCount)).Error
	})
	if err != nil {
		return Registration{}, err
	}

	return registration, nil
}

// ReserveHold is the paid-path check-and-reserve: same capacity check
// under the same lock, but the seats go into a time-bounded hold
// instead of a committed registration.
func (d *RegistrationDAO) ReserveHold(ctx context.Context, hold SeatHold) (SeatHold, error) {
	now := hold.CreatedAt

	err := d.withConflictRetry(ctx, func(tx *gorm.DB) error {
		event, err := lockEvent(tx, hold.EventID)
		if err != nil {
			return err
		}

		userHeld, err := userHeldSeats(tx, event.ID, hold.UserID, now)
		if err != nil {
			return err
		}
		if userHeld+hold.TicketCount > event.MaxTicketsPerUser {
			return ErrTicketCapExceeded
		}

		held, err := activeHoldSeats(tx, event.ID, now)
		if err != nil {
			return err
		}

		if event.SeatsTaken+held+hold.TicketCount > event.MaxAttendees {
			return ErrEventFull
		}

		return tx.Create(&hold).Error
	})
	if err != nil {
		return SeatHold{}, err
	}

	return hold, nil
}

// ConfirmHold turns a still-active hold into a committed registration.
// The event row lock is taken first, matching the lock order of every
// other capacity path.
func (d *RegistrationDAO) ConfirmHold(ctx context.Context, token string, registration Registration, nextCode CodeFunc) (Registration, error) {
	now := registration.RegisteredAt

	err := d.withConflictRetry(ctx, func(tx *gorm.DB) error {
		var hold SeatHold
		if err := tx.First(&hold, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHoldNotFound
			}
			return err
		}

		if _, err := lockEvent(tx, hold.EventID); err != nil {
			return err
		}

		// Re-read under the event lock; the reaper may have expired it.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&hold, "token = ?", token).Error; err != nil {
			return err
		}

		if hold.Status != "active" || !now.Before(hold.ExpiresAt) {
			return ErrHoldExpired
		}

		registration.EventID = hold.EventID
		registration.UserID = hold.UserID
		registration.TicketCount = hold.TicketCount

		if err := insertWithCode(tx, &registration, nextCode); err != nil {
			return err
		}

		if err := tx.Model(&Event{}).
			Where("id = ?", hold.EventID).
			Update("seats_taken", gorm.Expr("seats_taken + ?", hold.TicketCount)).Error; err != nil {
			return err
		}

		return tx.Model(&SeatHold{}).
			Where("id = ?", hold.ID).
			Update("status", "confirmed").Error
	})
	if err != nil {
		return Registration{}, err
	}

	return registration, nil
}

// ReleaseHold frees a hold after an abandoned or declined payment.
// Releasing a hold that was already confirmed or reaped is a no-op.
func (d *RegistrationDAO) ReleaseHold(ctx context.Context, token string) error {
	return d.db.WithContext(ctx).
		Model(&SeatHold{}).
		Where("token = ? AND status = ?", token, "active").
		Update("status", "released").Error
}

// ReapExpired marks overdue active holds as expired and reports how
// many were reaped. Capacity checks already ignore overdue holds, so
// reaping is bookkeeping, not correctness.
func (d *RegistrationDAO) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&SeatHold{}).
		Where("status = ? AND expires_at <= ?", "active", now).
		Update("status", "expired")
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteAndRelease removes a registration and returns its seats to the
// pool in one transaction under the event row lock.
func (d *RegistrationDAO) DeleteAndRelease(ctx context.Context, registrationID, userID uint) error {
	return d.withConflictRetry(ctx, func(tx *gorm.DB) error {
		var registration Registration
		if err := tx.First(&registration, "id = ? AND user_id = ?", registrationID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		if _, err := lockEvent(tx, registration.EventID); err != nil {
			return err
		}

		if err := tx.Delete(&Registration{}, registration.ID).Error; err != nil {
			return err
		}

		return tx.Model(&Event{}).
			Where("id = ?", registration.EventID).
			Update("seats_taken", gorm.Expr("seats_taken - ?", registration.TicketCount)).Error
	})
}

// TicketsHeldByUser sums the caller's committed tickets plus unexpired
// active holds for one event, for the cumulative per-user cap.
func (d *RegistrationDAO) TicketsHeldByUser(ctx context.Context, eventID, userID uint, now time.Time) (int, error) {
	var committed int
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&committed)
	if result.Error != nil {
		return 0, result.Error
	}

	var held int
	result = d.db.WithContext(ctx).
		Model(&SeatHold{}).
		Where("event_id = ? AND user_id = ? AND status = ? AND expires_at > ?", eventID, userID, "active", now).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&held)
	if result.Error != nil {
		return 0, result.Error
	}

	return committed + held, nil
}

// RemainingSeats answers the live capacity query clients poll after an
// event-full rejection.
func (d *RegistrationDAO) RemainingSeats(ctx context.Context, eventID uint, now time.Time) (int, error) {
	var event Event
	if err := d.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}

	var held int
	result := d.db.WithContext(ctx).
		Model(&SeatHold{}).
		Where("event_id = ? AND status = ? AND expires_at > ?", eventID, "active", now).
		Select("COALESCE(SUM(ticket_count), 0)").
		Scan(&held)
	if result.Error != nil {
		return 0, result.Error
	}

	remaining := event.MaxAttendees - event.SeatsTaken - held
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var registration Registration

	result := d.db.WithContext(ctx).First(&registration, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindByUser(ctx context.Context, userID uint) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}
