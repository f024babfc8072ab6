package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventNotPending = errors.New("event has already been decided")
)

type Event struct {
	ID     uint `gorm:"primaryKey"`
	HostID uint `gorm:"not null;index"`

	Title       string    `gorm:"not null"`
	Description string
	StartsAt    time.Time `gorm:"not null"`
	Location    string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	ImageURL    string

	Price                int64 `gorm:"not null;default:0"`
	MaxAttendees         int   `gorm:"not null"`
	RegistrationDeadline *time.Time
	MaxTicketsPerUser    int  `gorm:"not null;default:1"`
	AllowCancellation    bool `gorm:"not null;default:false"`

	EventType string `gorm:"not null"`
	TeamSize  *int

	ApprovalStatus string `gorm:"not null;default:'pending';index"`
	Status         string `gorm:"not null;default:'active'"`

	// SeatsTaken is the committed-registration aggregate; it makes the
	// remaining-seat read O(1) and is only ever mutated under the event
	// row lock.
	SeatsTaken int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindPublic lists events visible in the public catalog: approved by an
// admin, regardless of the host's active toggle (an inactive approved
// event is visible but not registerable).
func (d *EventDAO) FindPublic(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("approval_status = ?", "approved").
		Order("starts_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByHost(ctx context.Context, hostID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByApproval(ctx context.Context, approvalStatus string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("approval_status = ?", approvalStatus).
		Order("created_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// UpdateApproval performs the one-way pending → approved/rejected
// transition. The WHERE clause on the current status makes the
// transition race-safe: two concurrent decisions cannot both match the
// pending row, so the loser reports ErrEventNotPending.
func (d *EventDAO) UpdateApproval(ctx context.Context, id uint, approvalStatus string) error {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND approval_status = ?", id, "pending").
		Update("approval_status", approvalStatus)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrEventNotPending
	}

	return nil
}

func (d *EventDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) UpdateImageURL(ctx context.Context, id uint, imageURL string) error {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("image_url", imageURL)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}
