package service_test

import (
	"context"
	"sync"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) Create(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Update(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) List(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	args := m.Called(ctx, category, page, pageSize)
	return args.Get(0).([]domain.Equipment), args.Get(1).(int32), args.Error(2)
}

// MockOverrideRepo
type MockOverrideRepo struct {
	mock.Mock
}

func (m *MockOverrideRepo) Upsert(ctx context.Context, o *domain.AvailabilityOverride) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOverrideRepo) ListByEquipment(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error) {
	args := m.Called(ctx, equipmentID, from, to)
	return args.Get(0).([]domain.AvailabilityOverride), args.Error(1)
}

// MockAvailabilityRepo
type MockAvailabilityRepo struct {
	mock.Mock
}

func (m *MockAvailabilityRepo) Snapshot(ctx context.Context, equipmentID int32, from, to calendar.Date) (*domain.AvailabilitySnapshot, error) {
	args := m.Called(ctx, equipmentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilitySnapshot), args.Error(1)
}

// MockRentalRepo runs the verify callback against the snapshot given as the first return value,
// standing in for the locked read the real repository performs.
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateIfAvailable(ctx context.Context, rt *domain.RentalRequest, verify repository.VerifyFunc) (bool, error) {
	args := m.Called(ctx, rt)
	if snap, ok := args.Get(0).(*domain.AvailabilitySnapshot); ok {
		if err := verify(snap); err != nil {
			return false, err
		}
	}
	return args.Bool(1), args.Error(2)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) Transition(ctx context.Context, rt *domain.RentalRequest, from domain.RentalStatus) error {
	args := m.Called(ctx, rt, from)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByFarmer(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, farmerID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) List(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListByStatusAndStart(ctx context.Context, status domain.RentalStatus, start calendar.Date) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, status, start)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) ListByStatusAndEnd(ctx context.Context, status domain.RentalStatus, end calendar.Date) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, status, end)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) ListOverdue(ctx context.Context, today calendar.Date) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}

// MockAvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, equipmentID int32, today, from, to calendar.Date) (*availability.Calendar, string, bool) {
	args := m.Called(ctx, equipmentID, today, from, to)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Bool(2)
	}
	return args.Get(0).(*availability.Calendar), args.String(1), args.Bool(2)
}
func (m *MockAvailabilityCache) Put(ctx context.Context, key string, cal *availability.Calendar) {
	m.Called(ctx, key, cal)
}
func (m *MockAvailabilityCache) Invalidate(ctx context.Context, equipmentID int32) {
	m.Called(ctx, equipmentID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingPublisher) Dispatch(ev notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) types() []notification.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
