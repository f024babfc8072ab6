package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository/dao"
)

var (
	ErrEventNotFound   = dao.ErrEventNotFound
	ErrEventNotPending = dao.ErrEventNotPending
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindPublic(ctx context.Context) ([]dao.Event, error)
	FindByHost(ctx context.Context, hostID uint) ([]dao.Event, error)
	FindByApproval(ctx context.Context, approvalStatus string) ([]dao.Event, error)
	UpdateApproval(ctx context.Context, id uint, approvalStatus string) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	UpdateImageURL(ctx context.Context, id uint, imageURL string) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                   e.ID,
		HostID:               e.HostID,
		Title:                e.Title,
		Description:          e.Description,
		StartsAt:             e.StartsAt,
		Location:             e.Location,
		Category:             e.Category,
		ImageURL:             e.ImageURL,
		Price:                e.Price,
		MaxAttendees:         e.MaxAttendees,
		RegistrationDeadline: e.RegistrationDeadline,
		MaxTicketsPerUser:    e.MaxTicketsPerUser,
		AllowCancellation:    e.AllowCancellation,
		EventType:            string(e.EventType),
		TeamSize:             e.TeamSize,
		ApprovalStatus:       string(e.ApprovalStatus),
		Status:               string(e.Status),
		SeatsTaken:           e.SeatsTaken,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                   e.ID,
		HostID:               e.HostID,
		Title:                e.Title,
		Description:          e.Description,
		StartsAt:             e.StartsAt,
		Location:             e.Location,
		Category:             e.Category,
		ImageURL:             e.ImageURL,
		Price:                e.Price,
		MaxAttendees:         e.MaxAttendees,
		RegistrationDeadline: e.RegistrationDeadline,
		MaxTicketsPerUser:    e.MaxTicketsPerUser,
		AllowCancellation:    e.AllowCancellation,
		EventType:            domain.EventType(e.EventType),
		TeamSize:             e.TeamSize,
		ApprovalStatus:       domain.ApprovalStatus(e.ApprovalStatus),
		Status:               domain.EventStatus(e.Status),
		SeatsTaken:           e.SeatsTaken,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	out := make([]domain.Event, len(events))
	for i, e := range events {
		out[i] = r.daoToDomain(e)
	}
	return out
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) FindPublic(ctx context.Context) ([]domain.Event, error) {
	events, err := r.dao.FindPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPublic -> %w", err)
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) FindByHost(ctx context.Context, hostID uint) ([]domain.Event, error) {
	events, err := r.dao.FindByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByHost -> %w", err)
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) FindPending(ctx context.Context) ([]domain.Event, error) {
	events, err := r.dao.FindByApproval(ctx, string(domain.ApprovalPending))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByApproval -> %w", err)
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) UpdateApproval(ctx context.Context, id uint, status domain.ApprovalStatus) error {
	if err := r.dao.UpdateApproval(ctx, id, string(status)); err != nil {
		if errors.Is(err, dao.ErrEventNotFound) || errors.Is(err, dao.ErrEventNotPending) {
			return err
		}
		return fmt.Errorf("r.dao.UpdateApproval -> %w", err)
	}

	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id uint, status domain.EventStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(status)); err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *EventRepository) UpdateImageURL(ctx context.Context, id uint, imageURL string) error {
	if err := r.dao.UpdateImageURL(ctx, id, imageURL); err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("r.dao.UpdateImageURL -> %w", err)
	}

	return nil
}
