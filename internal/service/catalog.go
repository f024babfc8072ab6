package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound

	// ErrValidation marks malformed drafts the caller can correct.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState marks an illegal approval re-transition; a
	// decided event is never re-reviewed.
	ErrInvalidState = repository.ErrEventNotPending
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindPublic(ctx context.Context) ([]domain.Event, error)
	FindByHost(ctx context.Context, hostID uint) ([]domain.Event, error)
	FindPending(ctx context.Context) ([]domain.Event, error)
	UpdateApproval(ctx context.Context, id uint, status domain.ApprovalStatus) error
	UpdateStatus(ctx context.Context, id uint, status domain.EventStatus) error
	UpdateImageURL(ctx context.Context, id uint, imageURL string) error
}

type ImageStore interface {
	Store(data []byte) (string, error)
}

// CatalogService owns the event lifecycle: submission into pending,
// the one-way admin decision, and the host's orthogonal active toggle.
// It is the single source of truth the registration engine consults
// for capacity, deadline and approval facts.
type CatalogService struct {
	repo   EventRepository
	images ImageStore
}

func NewCatalogService(repo EventRepository, images ImageStore) *CatalogService {
	return &CatalogService{
		repo:   repo,
		images: images,
	}
}

// Submit validates a draft and creates it in pending, awaiting an
// admin decision.
func (s *CatalogService) Submit(ctx context.Context, draft domain.Event, hostID uint) (domain.Event, error) {
	if err := validateDraft(&draft); err != nil {
		return domain.Event{}, err
	}

	draft.HostID = hostID
	draft.ApprovalStatus = domain.ApprovalPending
	draft.Status = domain.EventActive
	draft.SeatsTaken = 0

	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func validateDraft(draft *domain.Event) error {
	draft.Title = strings.TrimSpace(draft.Title)
	switch {
	case draft.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case draft.Location == "":
		return fmt.Errorf("%w: location is required", ErrValidation)
	case draft.Category == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case draft.StartsAt.IsZero():
		return fmt.Errorf("%w: event date is required", ErrValidation)
	case draft.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case draft.MaxAttendees <= 0:
		return fmt.Errorf("%w: max attendees must be positive", ErrValidation)
	}

	if draft.MaxTicketsPerUser == 0 {
		draft.MaxTicketsPerUser = 1
	}
	if draft.MaxTicketsPerUser < 1 {
		return fmt.Errorf("%w: max tickets per user must be at least 1", ErrValidation)
	}

	switch draft.EventType {
	case domain.EventTypeIndividual:
		if draft.TeamSize != nil {
			return fmt.Errorf("%w: team size is only valid for team events", ErrValidation)
		}
	case domain.EventTypeTeam:
		if draft.TeamSize == nil || *draft.TeamSize < 2 {
			return fmt.Errorf("%w: team events require a team size of at least 2", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, draft.EventType)
	}

	if draft.RegistrationDeadline != nil && draft.RegistrationDeadline.After(draft.StartsAt) {
		return fmt.Errorf("%w: registration deadline cannot be after the event start", ErrValidation)
	}

	return nil
}

// Decide applies the admin's one-way approve/reject transition.
// Calling it on an already-decided event fails with ErrInvalidState
// regardless of the earlier outcome.
func (s *CatalogService) Decide(ctx context.Context, eventID uint, approve bool) (domain.Event, error) {
	status := domain.ApprovalRejected
	if approve {
		status = domain.ApprovalApproved
	}

	if err := s.repo.UpdateApproval(ctx, eventID, status); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) || errors.Is(err, repository.ErrEventNotPending) {
			return domain.Event{}, err
		}
		return domain.Event{}, fmt.Errorf("s.repo.UpdateApproval -> %w", err)
	}

	return s.GetEvent(ctx, eventID)
}

// SetActive toggles registrations on an event the caller hosts. The
// toggle is orthogonal to approval and can flip back and forth.
func (s *CatalogService) SetActive(ctx context.Context, eventID, hostID uint, active bool) (domain.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.HostID != hostID {
		return domain.Event{}, fmt.Errorf("%w: user %v does not host event %v", ErrForbidden, hostID, eventID)
	}

	status := domain.EventInactive
	if active {
		status = domain.EventActive
	}

	if err := s.repo.UpdateStatus(ctx, eventID, status); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	event.Status = status
	return event, nil
}

// AttachImage delegates the bytes to the blob store and records the
// returned URL verbatim.
func (s *CatalogService) AttachImage(ctx context.Context, eventID, hostID uint, data []byte) (string, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	if event.HostID != hostID {
		return "", fmt.Errorf("%w: user %v does not host event %v", ErrForbidden, hostID, eventID)
	}

	url, err := s.images.Store(data)
	if err != nil {
		return "", fmt.Errorf("s.images.Store -> %w", err)
	}

	if err := s.repo.UpdateImageURL(ctx, eventID, url); err != nil {
		return "", fmt.Errorf("s.repo.UpdateImageURL -> %w", err)
	}

	return url, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *CatalogService) ListPublic(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPublic -> %w", err)
	}

	return events, nil
}

func (s *CatalogService) ListByHost(ctx context.Context, hostID uint) ([]domain.Event, error) {
	events, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByHost -> %w", err)
	}

	return events, nil
}

func (s *CatalogService) ListPending(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPending -> %w", err)
	}

	return events, nil
}

// IsRegisterable answers whether the event accepts registrations at
// the given instant.
func (s *CatalogService) IsRegisterable(ctx context.Context, eventID uint, at time.Time) (bool, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return false, err
	}

	return event.IsRegisterable(at), nil
}
