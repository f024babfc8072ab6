package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository"
)

// fakeRegistrationRepo mirrors the storage contract in memory: every
// reserve operation checks capacity and commits under one lock, the
// way the real DAO does inside a row-locking transaction.
type fakeRegistrationRepo struct {
	mu sync.Mutex

	capacity      map[uint]int
	maxPerUser    map[uint]int
	seatsTaken    map[uint]int
	registrations map[uint]domain.Registration
	holds         map[string]domain.SeatHold
	nextID        uint
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		capacity:      make(map[uint]int),
		maxPerUser:    make(map[uint]int),
		seatsTaken:    make(map[uint]int),
		registrations: make(map[uint]domain.Registration),
		holds:         make(map[string]domain.SeatHold),
		nextID:        1,
	}
}

func (f *fakeRegistrationRepo) addEvent(id uint, capacity, maxPerUser int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capacity[id] = capacity
	f.maxPerUser[id] = maxPerUser
}

func (f *fakeRegistrationRepo) activeHoldSeats(eventID uint, now time.Time) int {
	total := 0
	for _, h := range f.holds {
		if h.EventID == eventID && h.Usable(now) {
			total += h.TicketCount
		}
	}
	return total
}

func (f *fakeRegistrationRepo) remaining(eventID uint, now time.Time) int {
	return f.capacity[eventID] - f.seatsTaken[eventID] - f.activeHoldSeats(eventID, now)
}

func (f *fakeRegistrationRepo) userHeld(eventID, userID uint, now time.Time) int {
	total := 0
	for _, r := range f.registrations {
		if r.EventID == eventID && r.UserID == userID {
			total += r.TicketCount
		}
	}
	for _, h := range f.holds {
		if h.EventID == eventID && h.UserID == userID && h.Usable(now) {
			total += h.TicketCount
		}
	}
	return total
}

func (f *fakeRegistrationRepo) ReserveCommitted(_ context.Context, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.userHeld(registration.EventID, registration.UserID, registration.RegisteredAt)+registration.TicketCount > f.maxPerUser[registration.EventID] {
		return domain.Registration{}, repository.ErrTicketCapExceeded
	}
	if f.remaining(registration.EventID, registration.RegisteredAt) < registration.TicketCount {
		return domain.Registration{}, repository.ErrEventFull
	}

	code, err := nextCode()
	if err != nil {
		return domain.Registration{}, err
	}

	registration.ID = f.nextID
	f.nextID++
	registration.TicketCode = code
	f.registrations[registration.ID] = registration
	f.seatsTaken[registration.EventID] += registration.TicketCount

	return registration, nil
}

func (f *fakeRegistrationRepo) ReserveHold(_ context.Context, hold domain.SeatHold) (domain.SeatHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.userHeld(hold.EventID, hold.UserID, hold.CreatedAt)+hold.TicketCount > f.maxPerUser[hold.EventID] {
		return domain.SeatHold{}, repository.ErrTicketCapExceeded
	}
	if f.remaining(hold.EventID, hold.CreatedAt) < hold.TicketCount {
		return domain.SeatHold{}, repository.ErrEventFull
	}

	hold.ID = f.nextID
	f.nextID++
	f.holds[hold.Token] = hold

	return hold, nil
}

func (f *fakeRegistrationRepo) ConfirmHold(_ context.Context, token string, registration domain.Registration, nextCode func() (string, error)) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hold, ok := f.holds[token]
	if !ok {
		return domain.Registration{}, repository.ErrHoldNotFound
	}
	if !hold.Usable(registration.RegisteredAt) {
		return domain.Registration{}, repository.ErrHoldExpired
	}

	code, err := nextCode()
	if err != nil {
		return domain.Registration{}, err
	}

	registration.ID = f.nextID
	f.nextID++
	registration.TicketCode = code
	registration.EventID = hold.EventID
	registration.UserID = hold.UserID
	registration.TicketCount = hold.TicketCount
	f.registrations[registration.ID] = registration
	f.seatsTaken[hold.EventID] += hold.TicketCount

	hold.Status = domain.HoldConfirmed
	f.holds[token] = hold

	return registration, nil
}

func (f *fakeRegistrationRepo) ReleaseHold(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	hold, ok := f.holds[token]
	if !ok || hold.Status != domain.HoldActive {
		return nil
	}

	hold.Status = domain.HoldReleased
	f.holds[token] = hold
	return nil
}

func (f *fakeRegistrationRepo) ReapExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reaped int64
	for token, hold := range f.holds {
		if hold.Status == domain.HoldActive && !now.Before(hold.ExpiresAt) {
			hold.Status = domain.HoldExpired
			f.holds[token] = hold
			reaped++
		}
	}
	return reaped, nil
}

func (f *fakeRegistrationRepo) DeleteAndRelease(_ context.Context, registrationID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	registration, ok := f.registrations[registrationID]
	if !ok || registration.UserID != userID {
		return repository.ErrRegistrationNotFound
	}

	delete(f.registrations, registrationID)
	f.seatsTaken[registration.EventID] -= registration.TicketCount
	return nil
}

func (f *fakeRegistrationRepo) TicketsHeldByUser(_ context.Context, eventID, userID uint, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, r := range f.registrations {
		if r.EventID == eventID && r.UserID == userID {
			total += r.TicketCount
		}
	}
	for _, h := range f.holds {
		if h.EventID == eventID && h.UserID == userID && h.Usable(now) {
			total += h.TicketCount
		}
	}
	return total, nil
}

func (f *fakeRegistrationRepo) RemainingSeats(_ context.Context, eventID uint, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.capacity[eventID]; !ok {
		return 0, repository.ErrEventNotFound
	}
	return f.remaining(eventID, now), nil
}

func (f *fakeRegistrationRepo) FindByID(_ context.Context, id uint) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	registration, ok := f.registrations[id]
	if !ok {
		return domain.Registration{}, repository.ErrRegistrationNotFound
	}
	return registration, nil
}

func (f *fakeRegistrationRepo) FindByEvent(_ context.Context, eventID uint) ([]domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Registration
	for _, r := range f.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) FindByUser(_ context.Context, userID uint) ([]domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Registration
	for _, r := range f.registrations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	events map[uint]domain.Event
}

func (f *fakeCatalog) GetEvent(_ context.Context, eventID uint) (domain.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	return event, nil
}

type paymentSpy struct {
	mu      sync.Mutex
	calls   int
	amounts []int64
	err     error
}

func (p *paymentSpy) Charge(_ context.Context, amount int64, _ string) (domain.PaymentOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.amounts = append(p.amounts, amount)
	if p.err != nil {
		return domain.PaymentOutcome{}, p.err
	}
	return domain.PaymentOutcome{TransactionID: fmt.Sprintf("DUMMY_%d", p.calls)}, nil
}

func (p *paymentSpy) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type notifierSpy struct {
	mu      sync.Mutex
	notices []TicketNotice
}

func (n *notifierSpy) TicketIssued(_ context.Context, notice TicketNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

// countingCodes hands out sequential codes so assertions stay
// deterministic.
type countingCodes struct {
	mu sync.Mutex
	n  int
}

func (c *countingCodes) Next() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("TKT-%08d", c.n), nil
}

type registrationFixture struct {
	svc      *RegistrationService
	repo     *fakeRegistrationRepo
	catalog  *fakeCatalog
	payments *paymentSpy
	notifier *notifierSpy
	now      time.Time
}

func newRegistrationFixture(t *testing.T, event domain.Event) *registrationFixture {
	t.Helper()

	repo := newFakeRegistrationRepo()
	repo.addEvent(event.ID, event.MaxAttendees, event.MaxTicketsPerUser)

	catalog := &fakeCatalog{events: map[uint]domain.Event{event.ID: event}}
	payments := &paymentSpy{}
	notifier := &notifierSpy{}
	users := &fakeRoleReader{users: map[uint]domain.User{}}

	svc := NewRegistrationService(repo, catalog, users, &countingCodes{}, payments, notifier)

	f := &registrationFixture{
		svc:      svc,
		repo:     repo,
		catalog:  catalog,
		payments: payments,
		notifier: notifier,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return f.now }
	svc.holdTTL = func() time.Duration { return 10 * time.Minute }

	return f
}

func openEvent(id uint, price int64, capacity, maxPerUser int) domain.Event {
	return domain.Event{
		ID:                id,
		HostID:            1,
		Title:             "Go Conf 2026",
		StartsAt:          time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
		Price:             price,
		MaxAttendees:      capacity,
		MaxTicketsPerUser: maxPerUser,
		AllowCancellation: true,
		EventType:         domain.EventTypeIndividual,
		ApprovalStatus:    domain.ApprovalApproved,
		Status:            domain.EventActive,
	}
}

func TestRegistrationService_Register_Free(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), registration.EventID)
	assert.Equal(t, uint(42), registration.UserID)
	assert.Equal(t, 2, registration.TicketCount)
	assert.NotEmpty(t, registration.TicketCode)
	assert.Equal(t, domain.PaymentCompleted, registration.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodNone, registration.PaymentMethod)

	assert.Zero(t, f.payments.callCount(), "free registrations never touch the payment processor")

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 98, remaining)
}

func TestRegistrationService_Register_EventNotFound(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 1))

	_, err := f.svc.Register(context.Background(), 404, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegistrationService_Register_NotOpen(t *testing.T) {
	pastDeadline := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(e *domain.Event)
	}{
		{name: "pending approval", mutate: func(e *domain.Event) { e.ApprovalStatus = domain.ApprovalPending }},
		{name: "rejected", mutate: func(e *domain.Event) { e.ApprovalStatus = domain.ApprovalRejected }},
		{name: "deactivated", mutate: func(e *domain.Event) { e.Status = domain.EventInactive }},
		{name: "past deadline", mutate: func(e *domain.Event) { e.RegistrationDeadline = &pastDeadline }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := openEvent(1, 0, 100, 1)
			tt.mutate(&event)
			f := newRegistrationFixture(t, event)

			_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
				TicketCount:   1,
				ContactNumber: "+4915123456789",
			})
			assert.ErrorIs(t, err, ErrEventNotOpen)
		})
	}
}

func TestRegistrationService_Register_InvalidInput(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   0,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRegistrationService_Register_CumulativeTicketCap(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 3))

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	// 2 already committed; 2 more would breach the cap of 3.
	_, err = f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// One more is exactly at the cap.
	_, err = f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	assert.NoError(t, err)
}

func TestRegistrationService_Register_ActiveHoldCountsAgainstCap(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	_, err := f.repo.ReserveHold(context.Background(), domain.SeatHold{
		Token:       "t-1",
		EventID:     1,
		UserID:      42,
		TicketCount: 2,
		Status:      domain.HoldActive,
		ExpiresAt:   f.now.Add(10 * time.Minute),
		CreatedAt:   f.now,
	})
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRegistrationService_Register_SameUserCapRace(t *testing.T) {
	const workers = 20

	f := newRegistrationFixture(t, openEvent(1, 0, 100, 1))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		capped    int
	)

	// Every request comes from the same user against a cap of 1. The
	// storage layer must serialize the cap check with the reserve, so
	// only one can win no matter how the requests interleave.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
				TicketCount:   1,
				ContactNumber: "+4915123456789",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrInvalidRequest):
				capped++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, capped)

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 99, remaining)
}

func TestRegistrationService_Register_EventFull(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 1, 5))

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestRegistrationService_Register_NoOversellUnderContention(t *testing.T) {
	const (
		capacity = 10
		workers  = 50
	)

	f := newRegistrationFixture(t, openEvent(1, 0, capacity, 1))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
		codes     = make(map[string]struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()

			registration, err := f.svc.Register(context.Background(), 1, userID, RegisterInput{
				TicketCount:   1,
				ContactNumber: "+4915123456789",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
				codes[registration.TicketCode] = struct{}{}
			case assert.ErrorIs(t, err, ErrEventFull):
				full++
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, workers-capacity, full)
	assert.Len(t, codes, capacity, "every issued ticket code is unique")

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestRegistrationService_Register_LastSeatRace(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 1, 1))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()

			_, err := f.svc.Register(context.Background(), 1, userID, RegisterInput{
				TicketCount:   1,
				ContactNumber: "+4915123456789",
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one of two racers wins the last seat")
}

func TestRegistrationService_Register_PaidSuccess(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 100, 3))

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		PaymentMethod: domain.PaymentMethodUPI,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.payments.callCount())
	assert.Equal(t, int64(5000), f.payments.amounts[0], "amount is price times ticket count")
	assert.Equal(t, domain.PaymentCompleted, registration.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodUPI, registration.PaymentMethod)
	assert.NotEmpty(t, registration.TransactionID)
	assert.Equal(t, 2, registration.TicketCount)

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 98, remaining)
}

func TestRegistrationService_Register_PaidDeclined(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 100, 3))
	f.payments.err = ErrPaymentDeclined

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		PaymentMethod: domain.PaymentMethodCard,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// The declined hold releases its seats immediately.
	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining)

	assert.Empty(t, f.repo.registrations, "no ticket is issued on a declined payment")
}

// cancellingPayment simulates a client that gives up mid-charge: the
// request context is cancelled before the charge error comes back.
type cancellingPayment struct {
	cancel context.CancelFunc
}

func (p *cancellingPayment) Charge(_ context.Context, _ int64, _ string) (domain.PaymentOutcome, error) {
	p.cancel()
	return domain.PaymentOutcome{}, errors.New("gateway timeout")
}

func TestRegistrationService_Register_ReleasesHoldAfterCancelledCharge(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 100, 3))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.payments = &cancellingPayment{cancel: cancel}

	_, err := f.svc.Register(ctx, 1, 42, RegisterInput{
		TicketCount:   2,
		PaymentMethod: domain.PaymentMethodCard,
		ContactNumber: "+4915123456789",
	})
	require.Error(t, err)

	// The release must not run on the dead request context; the seats
	// go back to the pool instead of waiting out the hold TTL.
	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining)
}

func TestRegistrationService_Register_PaidUnknownMethod(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 100, 3))

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		PaymentMethod: "cheque",
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, f.payments.callCount())
}

func TestRegistrationService_Register_HoldExpiresDuringPayment(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 100, 3))
	f.svc.holdTTL = func() time.Duration { return time.Minute }

	// The charge stalls long enough for the hold to lapse.
	slow := &slowPayment{fixture: f, advance: 2 * time.Minute}
	f.svc.payments = slow

	_, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		PaymentMethod: domain.PaymentMethodUPI,
		ContactNumber: "+4915123456789",
	})
	assert.ErrorIs(t, err, ErrHoldExpired)

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining, "a lapsed hold no longer pins capacity")
}

type slowPayment struct {
	fixture *registrationFixture
	advance time.Duration
}

func (p *slowPayment) Charge(_ context.Context, _ int64, _ string) (domain.PaymentOutcome, error) {
	p.fixture.now = p.fixture.now.Add(p.advance)
	return domain.PaymentOutcome{TransactionID: "DUMMY_1"}, nil
}

func TestRegistrationService_Cancel(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   2,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), registration.ID, 42))

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining)

	_, err = f.svc.GetRegistration(context.Background(), registration.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_Cancel_NotOwner(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), registration.ID, 43)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRegistrationService_Cancel_NotAllowed(t *testing.T) {
	event := openEvent(1, 0, 100, 2)
	event.AllowCancellation = false
	f := newRegistrationFixture(t, event)

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), registration.ID, 42)
	assert.ErrorIs(t, err, ErrForbidden)

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 99, remaining, "the seats stay allocated")
}

func TestRegistrationService_Cancel_NotFound(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 2))

	err := f.svc.Cancel(context.Background(), 404, 42)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_RemainingSeats_ExcludesActiveHolds(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 10, 5))

	_, err := f.repo.ReserveHold(context.Background(), domain.SeatHold{
		Token:       "t-1",
		EventID:     1,
		UserID:      7,
		TicketCount: 4,
		Status:      domain.HoldActive,
		ExpiresAt:   f.now.Add(10 * time.Minute),
		CreatedAt:   f.now,
	})
	require.NoError(t, err)

	remaining, err := f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	// Once the hold lapses the seats come back without any writes.
	f.now = f.now.Add(11 * time.Minute)
	remaining, err = f.svc.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestRegistrationService_RemainingSeats_UnknownEvent(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 10, 1))

	_, err := f.svc.RemainingSeats(context.Background(), 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegistrationService_StartHoldReaper(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 2500, 10, 5))

	_, err := f.repo.ReserveHold(context.Background(), domain.SeatHold{
		Token:       "t-1",
		EventID:     1,
		UserID:      7,
		TicketCount: 1,
		Status:      domain.HoldActive,
		ExpiresAt:   f.now.Add(-time.Minute),
		CreatedAt:   f.now.Add(-11 * time.Minute),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.StartHoldReaper(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		return f.repo.holds["t-1"].Status == domain.HoldExpired
	}, time.Second, 10*time.Millisecond)
}

func TestRegistrationService_Register_Notifies(t *testing.T) {
	f := newRegistrationFixture(t, openEvent(1, 0, 100, 1))

	registration, err := f.svc.Register(context.Background(), 1, 42, RegisterInput{
		TicketCount:   1,
		ContactNumber: "+4915123456789",
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, "Go Conf 2026", f.notifier.notices[0].EventTitle)
	assert.Equal(t, registration.TicketCode, f.notifier.notices[0].TicketCode)
}
